package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"

	"opspager/internal/recipient"
	"opspager/internal/transport"
	"opspager/pkg/logx"
)

// RecipientDirectory resolves addressed recipient ids to graph nodes.
type RecipientDirectory interface {
	RecipientByID(ctx context.Context, id uuid.UUID) (recipient.Recipient, error)
}

// IngestServer accepts messages for dispatch over a small JSON HTTP
// endpoint. It is meant for the local machine or a trusted network;
// there is no authentication.
type IngestServer struct {
	addr       string
	dispatcher *Dispatcher
	directory  RecipientDirectory
	log        logx.Logger

	srv *http.Server
}

func NewIngestServer(addr string, dispatcher *Dispatcher, directory RecipientDirectory, log logx.Logger) *IngestServer {
	if addr == "" {
		addr = "127.0.0.1:8370"
	}
	return &IngestServer{addr: addr, dispatcher: dispatcher, directory: directory, log: log}
}

type ingestRequest struct {
	To       []string `json:"to"`
	Body     string   `json:"body"`
	Priority string   `json:"priority,omitempty"`
}

type ingestResponse struct {
	MessageID  string `json:"message_id"`
	Recipients int    `json:"recipients"`
	Selected   int    `json:"selected"`
	Failed     int    `json:"failed"`
}

// Start serves until the context is cancelled.
func (s *IngestServer) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /messages", s.handleMessage)

	s.srv = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		shCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = s.srv.Shutdown(shCtx)
	}()

	s.log.Info("ingest endpoint listening", logx.String("addr", s.addr))
	err = s.srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *IngestServer) handleMessage(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Body == "" || len(req.To) == 0 {
		http.Error(w, "body and to are required", http.StatusBadRequest)
		return
	}

	priority := transport.PriorityDefault
	if req.Priority != "" {
		p, err := transport.ParsePriority(req.Priority)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		priority = p
	}

	var roots []recipient.Recipient
	for _, raw := range req.To {
		id, err := uuid.Parse(raw)
		if err != nil {
			http.Error(w, "invalid recipient id "+raw, http.StatusBadRequest)
			return
		}
		rec, err := s.directory.RecipientByID(r.Context(), id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if rec == nil {
			http.Error(w, "unknown recipient "+raw, http.StatusNotFound)
			return
		}
		roots = append(roots, rec)
	}

	msg := transport.Message{ID: uuid.New(), Body: req.Body, Priority: priority}
	results := s.dispatcher.Dispatch(r.Context(), roots, msg)

	resp := ingestResponse{MessageID: msg.ID.String(), Recipients: len(results)}
	for _, result := range results {
		resp.Selected += len(result.Selected)
		if !result.HasSelected() && !result.HasMembersToExpand() {
			resp.Failed++
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(resp)
}
