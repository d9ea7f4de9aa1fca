package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"opspager/internal/pager"
	"opspager/internal/transport"
)

// MessageRepo implements pager.MessageStore on the shared database.
type MessageRepo struct {
	s *DB
}

func NewMessageRepo(s *DB) *MessageRepo { return &MessageRepo{s: s} }

func (r *MessageRepo) Add(ctx context.Context, msg *pager.PagerMessage) error {
	_, err := r.s.db.ExecContext(ctx,
		`INSERT INTO pager_messages(id, transport, cap, body, priority, queued_on, transmitted_on, attempts)
		 VALUES(?,?,?,?,?,?,?,?)`,
		msg.ID().String(), msg.TransportKey(), msg.Cap().Int(), msg.Body(),
		int(msg.Priority()), msg.QueuedOn().UnixMilli(), msOrNil(msg.TransmittedOn()), msg.Attempts(),
	)
	return err
}

// ClaimNext claims the most urgent eligible message for the transport.
// The conditional UPDATE makes the claim atomic: concurrent callers can
// never both receive the same row, and an expired lease makes a crashed
// worker's claim reclaimable. Ordering is priority descending (urgent
// first), then oldest queued.
func (r *MessageRepo) ClaimNext(ctx context.Context, transportKey string, now time.Time) (*pager.PagerMessage, error) {
	nowMs := now.UnixMilli()
	maxAgeMs := now.Add(-pager.StalenessWindow).UnixMilli()
	leaseMs := now.Add(pager.ClaimLease).UnixMilli()

	row := r.s.db.QueryRowContext(ctx,
		`UPDATE pager_messages
		 SET claimed_until = ?
		 WHERE id = (
		     SELECT id FROM pager_messages
		     WHERE transport = ?
		       AND attempts < ?
		       AND transmitted_on IS NULL
		       AND queued_on > ?
		       AND (claimed_until IS NULL OR claimed_until <= ?)
		     ORDER BY priority DESC, queued_on ASC
		     LIMIT 1
		 )
		 RETURNING id, transport, cap, body, priority, queued_on, transmitted_on, attempts`,
		leaseMs, transportKey, pager.RetryLimit, maxAgeMs, nowMs,
	)

	msg, err := scanMessage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return msg, err
}

// Update persists transmission state and releases the claim.
func (r *MessageRepo) Update(ctx context.Context, msg *pager.PagerMessage) error {
	_, err := r.s.db.ExecContext(ctx,
		`UPDATE pager_messages
		 SET transmitted_on = ?, attempts = ?, claimed_until = NULL
		 WHERE id = ?`,
		msOrNil(msg.TransmittedOn()), msg.Attempts(), msg.ID().String(),
	)
	return err
}

// PruneOlderThan removes messages queued before the cutoff. Transmitted
// and abandoned rows are of no further interest to the delivery loop.
func (r *MessageRepo) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.s.db.ExecContext(ctx,
		`DELETE FROM pager_messages WHERE queued_on < ?`, cutoff.UnixMilli())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(row rowScanner) (*pager.PagerMessage, error) {
	var (
		idStr         string
		transportKey  string
		capInt        int
		body          string
		priorityInt   int
		queuedMs      int64
		transmittedMs sql.NullInt64
		attempts      int
	)
	if err := row.Scan(&idStr, &transportKey, &capInt, &body, &priorityInt, &queuedMs, &transmittedMs, &attempts); err != nil {
		return nil, err
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("pager message id %q: %w", idStr, err)
	}
	capCode, err := pager.NewCapCode(capInt)
	if err != nil {
		return nil, fmt.Errorf("pager message %s: %w", idStr, err)
	}

	var transmittedOn *time.Time
	if transmittedMs.Valid {
		t := time.UnixMilli(transmittedMs.Int64)
		transmittedOn = &t
	}

	return pager.RestorePagerMessage(
		id, transportKey, capCode, body,
		transport.Priority(priorityInt),
		time.UnixMilli(queuedMs), transmittedOn, attempts,
	), nil
}
