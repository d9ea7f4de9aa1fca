package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"opspager/internal/pager"
)

// ChannelRepo implements pager.ChannelStore on the shared database.
type ChannelRepo struct {
	s *DB
}

func NewChannelRepo(s *DB) *ChannelRepo { return &ChannelRepo{s: s} }

func (r *ChannelRepo) Save(ctx context.Context, c *pager.Channel) error {
	_, err := r.s.db.ExecContext(ctx,
		`INSERT INTO channels(id, name, cap, audible, vibration)
		 VALUES(?,?,?,?,?)
		 ON CONFLICT(id) DO UPDATE SET
		     name=excluded.name, cap=excluded.cap,
		     audible=excluded.audible, vibration=excluded.vibration`,
		c.ID().String(), c.Name(), c.CapCode().Int(), c.Audible(), c.Vibration(),
	)
	return err
}

// ChannelByID loads one channel, nil when unknown.
func (r *ChannelRepo) ChannelByID(ctx context.Context, id uuid.UUID) (*pager.Channel, error) {
	row := r.s.db.QueryRowContext(ctx,
		`SELECT id, name, cap, audible, vibration FROM channels WHERE id = ?`, id.String())

	var (
		idStr     string
		name      string
		capInt    int
		audible   bool
		vibration bool
	)
	err := row.Scan(&idStr, &name, &capInt, &audible, &vibration)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	cid, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("channel id %q: %w", idStr, err)
	}
	capCode, err := pager.NewCapCode(capInt)
	if err != nil {
		return nil, fmt.Errorf("channel %s: %w", idStr, err)
	}
	return pager.NewChannel(cid, name, capCode, audible, vibration), nil
}
