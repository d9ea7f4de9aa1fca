// Package dispatch orchestrates the path from an incoming message to
// per-transport sends.
package dispatch

import (
	"context"

	"opspager/internal/addressing"
	"opspager/internal/eventbus"
	"opspager/internal/recipient"
	"opspager/internal/transport"
	"opspager/pkg/logx"
)

// Resolver is the addressing surface the dispatcher needs.
type Resolver interface {
	ResolveAll(roots []recipient.Recipient, msg transport.Message) []addressing.AddressingResult
}

// Dispatcher resolves the addressed recipients of a message and hands
// one outgoing message per selected transport to its transport.
type Dispatcher struct {
	resolver Resolver
	bus      eventbus.Bus
	log      logx.Logger
}

func NewDispatcher(resolver Resolver, bus eventbus.Bus, log logx.Logger) *Dispatcher {
	return &Dispatcher{resolver: resolver, bus: bus, log: log}
}

// Dispatch fans the message out. Addressing dead ends (a recipient with
// neither selected transports nor members to expand) are recorded as
// failed outgoing messages; transport send errors are logged and do not
// stop delivery to the remaining recipients.
func (d *Dispatcher) Dispatch(ctx context.Context, to []recipient.Recipient, msg transport.Message) []addressing.AddressingResult {
	results := d.resolver.ResolveAll(to, msg)

	for _, result := range results {
		for _, addrErr := range result.Errors {
			d.log.Warn("addressing error",
				logx.String("type", string(addrErr.Type)),
				logx.String("recipient", result.Recipient.Name()),
				logx.String("details", addrErr.Details))
		}

		if !result.HasSelected() && !result.HasMembersToExpand() {
			// Dead end: nothing was delivered for this recipient.
			out := transport.NewFailedOutgoing(result.Recipient, msg)
			transport.PublishInitiated(d.bus, out, true)
			continue
		}

		for _, selected := range result.Selected {
			d.sendOne(ctx, result.Recipient, msg, selected)
		}
	}

	return results
}

func (d *Dispatcher) sendOne(ctx context.Context, rec recipient.Recipient, msg transport.Message, selected addressing.SelectedTransport) {
	out := transport.NewOutgoing(rec, msg, selected.Transport.Key())
	transport.PublishInitiated(d.bus, out, false)

	if err := selected.Transport.Send(ctx, out); err != nil {
		d.log.Error("transport send failed", logx.Err(err),
			logx.String("transport", selected.Transport.Key()),
			logx.String("recipient", rec.Name()),
			logx.String("outgoing_id", out.ID.String()))
	}
}
