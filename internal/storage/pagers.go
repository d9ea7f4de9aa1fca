package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"opspager/internal/pager"
)

// PagerRepo implements pager.PagerStore on the shared database.
type PagerRepo struct {
	s *DB
}

func NewPagerRepo(s *DB) *PagerRepo { return &PagerRepo{s: s} }

// Save upserts the pager and rewrites its slot table.
func (r *PagerRepo) Save(ctx context.Context, p *pager.Pager) error {
	tx, err := r.s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var carriedBy any
	if id := p.CarriedBy(); id != nil {
		carriedBy = id.String()
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO pagers(id, label, number, comment, activated, carried_by)
		 VALUES(?,?,?,?,?,?)
		 ON CONFLICT(id) DO UPDATE SET
		     label=excluded.label, number=excluded.number, comment=excluded.comment,
		     activated=excluded.activated, carried_by=excluded.carried_by`,
		p.ID().String(), p.Label(), p.Number(), nullStr(p.Comment()), p.Activated(), carriedBy,
	)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM pager_slots WHERE pager_id = ?`, p.ID().String()); err != nil {
		return err
	}
	for _, a := range p.CapAssignments() {
		switch a := a.(type) {
		case pager.IndividualCapAssignment:
			_, err = tx.ExecContext(ctx,
				`INSERT INTO pager_slots(pager_id, slot, kind, cap, audible, vibration)
				 VALUES(?,?,'individual',?,?,?)`,
				p.ID().String(), a.Slot().Int(), a.CapCode().Int(), a.Audible(), a.Vibration())
		case pager.ChannelCapAssignment:
			_, err = tx.ExecContext(ctx,
				`INSERT INTO pager_slots(pager_id, slot, kind, channel_id)
				 VALUES(?,?,'channel',?)`,
				p.ID().String(), a.Slot().Int(), a.ChannelID().String())
		default:
			err = fmt.Errorf("unknown cap assignment type %T", a)
		}
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// PagerCarriedBy finds the pager carried by the recipient, nil when the
// recipient carries none.
func (r *PagerRepo) PagerCarriedBy(ctx context.Context, recipientID uuid.UUID) (*pager.Pager, error) {
	row := r.s.db.QueryRowContext(ctx,
		`SELECT id, label, number, comment, activated, carried_by
		 FROM pagers WHERE carried_by = ?`, recipientID.String())
	p, err := r.scanPager(ctx, row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

// PagerByID loads one pager, nil when unknown.
func (r *PagerRepo) PagerByID(ctx context.Context, id uuid.UUID) (*pager.Pager, error) {
	row := r.s.db.QueryRowContext(ctx,
		`SELECT id, label, number, comment, activated, carried_by
		 FROM pagers WHERE id = ?`, id.String())
	p, err := r.scanPager(ctx, row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

func (r *PagerRepo) scanPager(ctx context.Context, row rowScanner) (*pager.Pager, error) {
	var (
		idStr     string
		label     string
		number    int
		comment   sql.NullString
		activated bool
		carriedBy sql.NullString
	)
	if err := row.Scan(&idStr, &label, &number, &comment, &activated, &carriedBy); err != nil {
		return nil, err
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("pager id %q: %w", idStr, err)
	}
	p, err := pager.NewPager(id, label, number)
	if err != nil {
		return nil, err
	}
	p.SetComment(comment.String)
	p.SetActivated(activated)
	if carriedBy.Valid {
		rid, err := uuid.Parse(carriedBy.String)
		if err != nil {
			return nil, fmt.Errorf("pager %s carried_by %q: %w", idStr, carriedBy.String, err)
		}
		p.SetCarriedBy(&rid)
	}

	if err := r.loadSlots(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PagerRepo) loadSlots(ctx context.Context, p *pager.Pager) error {
	rows, err := r.s.db.QueryContext(ctx,
		`SELECT slot, kind, cap, audible, vibration, channel_id
		 FROM pager_slots WHERE pager_id = ? ORDER BY slot`, p.ID().String())
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			slotInt   int
			kind      string
			capInt    sql.NullInt64
			audible   sql.NullBool
			vibration sql.NullBool
			channelID sql.NullString
		)
		if err := rows.Scan(&slotInt, &kind, &capInt, &audible, &vibration, &channelID); err != nil {
			return err
		}
		slot, err := pager.NewSlot(slotInt)
		if err != nil {
			return fmt.Errorf("pager %s: %w", p.ID(), err)
		}

		switch kind {
		case "individual":
			capCode, err := pager.NewCapCode(int(capInt.Int64))
			if err != nil {
				return fmt.Errorf("pager %s slot %d: %w", p.ID(), slotInt, err)
			}
			p.AssignIndividualCap(slot, capCode, audible.Bool, vibration.Bool)
		case "channel":
			cid, err := uuid.Parse(channelID.String)
			if err != nil {
				return fmt.Errorf("pager %s slot %d channel id: %w", p.ID(), slotInt, err)
			}
			p.AssignChannel(slot, cid)
		default:
			return fmt.Errorf("pager %s slot %d: unknown kind %q", p.ID(), slotInt, kind)
		}
	}
	return rows.Err()
}
