package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"opspager/internal/eventbus"
	"opspager/internal/transport"
	"opspager/pkg/logx"
)

// EventRepo records outgoing message status changes as message history.
type EventRepo struct {
	s *DB
}

func NewEventRepo(s *DB) *EventRepo { return &EventRepo{s: s} }

func (r *EventRepo) Append(ctx context.Context, e transport.OutgoingMessageEvent) error {
	_, err := r.s.db.ExecContext(ctx,
		`INSERT INTO message_events(outgoing_id, at, status, detail) VALUES(?,?,?,?)`,
		e.OutgoingMessageID.String(), e.At.UnixMilli(), string(e.Status), nullStr(e.Detail),
	)
	return err
}

// History lists the recorded status changes of one outgoing message in
// chronological order.
func (r *EventRepo) History(ctx context.Context, outgoingID uuid.UUID) ([]transport.OutgoingMessageEvent, error) {
	rows, err := r.s.db.QueryContext(ctx,
		`SELECT at, status, detail FROM message_events WHERE outgoing_id = ? ORDER BY at, id`,
		outgoingID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []transport.OutgoingMessageEvent
	for rows.Next() {
		var (
			atMs   int64
			status string
			detail *string
		)
		if err := rows.Scan(&atMs, &status, &detail); err != nil {
			return nil, err
		}
		e := transport.OutgoingMessageEvent{
			OutgoingMessageID: outgoingID,
			At:                time.UnixMilli(atMs),
			Status:            transport.Status(status),
		}
		if detail != nil {
			e.Detail = *detail
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// EventSink subscribes to the bus and persists every status event.
type EventSink struct {
	repo *EventRepo
	bus  eventbus.Bus
	log  logx.Logger
}

func NewEventSink(repo *EventRepo, bus eventbus.Bus, log logx.Logger) *EventSink {
	return &EventSink{repo: repo, bus: bus, log: log}
}

// Run consumes bus events until the context is cancelled. Append
// failures are logged, never fatal; history is best effort.
func (s *EventSink) Run(ctx context.Context) {
	events, unsubscribe := s.bus.Subscribe(64)
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev.Type != transport.EventTypeOutgoingStatus {
				continue
			}
			e, ok := ev.Data.(transport.OutgoingMessageEvent)
			if !ok {
				continue
			}
			if err := s.repo.Append(ctx, e); err != nil {
				s.log.Error("persist message event", logx.Err(err),
					logx.String("outgoing_id", e.OutgoingMessageID.String()))
			}
		}
	}
}
