package pager

import (
	"context"
	"fmt"
	"net"
	"regexp"
	"time"
)

// DefaultConnectTimeout bounds the TCP dial to the transmitter
// appliance.
const DefaultConnectTimeout = 10 * time.Second

// Wire frame: decimal cap code, CR, ASCII body, double CR. The
// appliance reads nothing back; transmission is fire and forget.
var wireFrame = regexp.MustCompile(`^\d+\r[\x00-\x7F]+\r\r$`)

// Transmitter pushes one cap code + text frame to the paging hardware.
type Transmitter interface {
	Transmit(ctx context.Context, cap CapCode, text string) error
}

// ConnectError means the transmitter appliance could not be reached.
type ConnectError struct {
	Addr string
	Err  error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("pager transmitter %s not reachable: %v", e.Addr, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// WriteError means the connection broke during transmission.
type WriteError struct {
	Addr string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("pager transmitter %s broke connection during transmission: %v", e.Addr, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// TCPTransmitter speaks the frame protocol over a plain TCP socket.
type TCPTransmitter struct {
	addr   string
	dialer net.Dialer
}

func NewTCPTransmitter(host string, port int, connectTimeout time.Duration) *TCPTransmitter {
	if connectTimeout <= 0 {
		connectTimeout = DefaultConnectTimeout
	}
	return &TCPTransmitter{
		addr:   net.JoinHostPort(host, fmt.Sprintf("%d", port)),
		dialer: net.Dialer{Timeout: connectTimeout},
	}
}

// EncodeFrame renders and validates the wire frame for a transmission.
func EncodeFrame(cap CapCode, text string) (string, error) {
	frame := fmt.Sprintf("%d\r%s\r\r", cap.Int(), text)
	if !wireFrame.MatchString(frame) {
		return "", fmt.Errorf("pager frame is not valid ASCII")
	}
	return frame, nil
}

// Transmit dials the appliance, writes one frame and closes the
// connection. Nothing is read; there is no application level ack.
func (t *TCPTransmitter) Transmit(ctx context.Context, cap CapCode, text string) error {
	frame, err := EncodeFrame(cap, text)
	if err != nil {
		return err
	}

	conn, err := t.dialer.DialContext(ctx, "tcp", t.addr)
	if err != nil {
		return &ConnectError{Addr: t.addr, Err: err}
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetWriteDeadline(deadline)
	} else {
		_ = conn.SetWriteDeadline(time.Now().Add(t.dialer.Timeout))
	}

	if _, err := conn.Write([]byte(frame)); err != nil {
		return &WriteError{Addr: t.addr, Err: err}
	}
	return nil
}
