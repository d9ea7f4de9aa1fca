package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"opspager/internal/recipient"
)

// RecipientRepo persists the recipient graph. Loading is all-or-nothing:
// the graph is small and membership links require every node in memory
// anyway.
type RecipientRepo struct {
	s *DB
}

func NewRecipientRepo(s *DB) *RecipientRepo { return &RecipientRepo{s: s} }

// Save upserts one recipient with its configurations and outgoing
// links. Members and delegates must be saved separately before their
// links resolve on load.
func (r *RecipientRepo) Save(ctx context.Context, rec recipient.Recipient) error {
	tx, err := r.s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var delegateID any
	if role, ok := rec.(*recipient.Role); ok {
		if d := role.Delegate(); d != nil {
			delegateID = d.ID().String()
		}
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO recipients(id, kind, name, delegate_id)
		 VALUES(?,?,?,?)
		 ON CONFLICT(id) DO UPDATE SET
		     kind=excluded.kind, name=excluded.name, delegate_id=excluded.delegate_id`,
		rec.ID().String(), rec.Kind().String(), rec.Name(), delegateID,
	)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM transport_configurations WHERE recipient_id = ?`, rec.ID().String()); err != nil {
		return err
	}
	for _, cfg := range rec.Configurations() {
		var vendorJSON any
		if cfg.VendorConfig != nil {
			b, err := json.Marshal(cfg.VendorConfig)
			if err != nil {
				return fmt.Errorf("marshal vendor config for %q: %w", cfg.TransportKey, err)
			}
			vendorJSON = string(b)
		}
		var continueIn any
		if cfg.ContinueInHierarchy != nil {
			continueIn = *cfg.ContinueInHierarchy
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO transport_configurations
			     (recipient_id, transport_key, rank, enabled, selection_expression,
			      continue_in_hierarchy, evaluate_others, vendor_config)
			 VALUES(?,?,?,?,?,?,?,?)`,
			rec.ID().String(), cfg.TransportKey, cfg.Rank, cfg.Enabled,
			cfg.SelectionExpression, continueIn, cfg.EvaluateOtherConfigurations, vendorJSON,
		)
		if err != nil {
			return err
		}
	}

	if group, ok := rec.(*recipient.Group); ok {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM group_members WHERE group_id = ?`, group.ID().String()); err != nil {
			return err
		}
		for _, m := range group.Members() {
			_, err = tx.ExecContext(ctx,
				`INSERT INTO group_members(group_id, member_id) VALUES(?,?)`,
				group.ID().String(), m.ID().String())
			if err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// LoadAll reconstructs the whole recipient graph keyed by id.
func (r *RecipientRepo) LoadAll(ctx context.Context) (map[uuid.UUID]recipient.Recipient, error) {
	recipients, delegates, err := r.loadNodes(ctx)
	if err != nil {
		return nil, err
	}
	if err := r.loadConfigurations(ctx, recipients); err != nil {
		return nil, err
	}
	if err := r.linkMembers(ctx, recipients); err != nil {
		return nil, err
	}

	for roleID, delegateID := range delegates {
		role := recipients[roleID].(*recipient.Role)
		delegate, ok := recipients[delegateID]
		if !ok {
			return nil, fmt.Errorf("role %s delegates to unknown recipient %s", roleID, delegateID)
		}
		ind, ok := delegate.(*recipient.Individual)
		if !ok {
			return nil, fmt.Errorf("role %s delegates to %s which is a %s, want individual",
				roleID, delegateID, delegate.Kind())
		}
		role.Bind(ind)
	}

	return recipients, nil
}

// RecipientByID loads the graph and returns one node; nil when unknown.
func (r *RecipientRepo) RecipientByID(ctx context.Context, id uuid.UUID) (recipient.Recipient, error) {
	all, err := r.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	return all[id], nil
}

func (r *RecipientRepo) loadNodes(ctx context.Context) (map[uuid.UUID]recipient.Recipient, map[uuid.UUID]uuid.UUID, error) {
	rows, err := r.s.db.QueryContext(ctx, `SELECT id, kind, name, delegate_id FROM recipients`)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	recipients := map[uuid.UUID]recipient.Recipient{}
	delegates := map[uuid.UUID]uuid.UUID{}

	for rows.Next() {
		var (
			idStr      string
			kind       string
			name       string
			delegateID sql.NullString
		)
		if err := rows.Scan(&idStr, &kind, &name, &delegateID); err != nil {
			return nil, nil, err
		}
		id, err := uuid.Parse(idStr)
		if err != nil {
			return nil, nil, fmt.Errorf("recipient id %q: %w", idStr, err)
		}

		switch kind {
		case "individual":
			recipients[id] = recipient.RestoreIndividual(id, name)
		case "role":
			recipients[id] = recipient.RestoreRole(id, name)
			if delegateID.Valid {
				did, err := uuid.Parse(delegateID.String)
				if err != nil {
					return nil, nil, fmt.Errorf("role %s delegate id %q: %w", idStr, delegateID.String, err)
				}
				delegates[id] = did
			}
		case "group":
			recipients[id] = recipient.RestoreGroup(id, name)
		default:
			return nil, nil, fmt.Errorf("recipient %s: unknown kind %q", idStr, kind)
		}
	}
	return recipients, delegates, rows.Err()
}

func (r *RecipientRepo) loadConfigurations(ctx context.Context, recipients map[uuid.UUID]recipient.Recipient) error {
	rows, err := r.s.db.QueryContext(ctx,
		`SELECT recipient_id, transport_key, rank, enabled, selection_expression,
		        continue_in_hierarchy, evaluate_others, vendor_config
		 FROM transport_configurations`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			recipientID string
			cfg         recipient.TransportConfiguration
			continueIn  sql.NullBool
			vendorJSON  sql.NullString
		)
		if err := rows.Scan(&recipientID, &cfg.TransportKey, &cfg.Rank, &cfg.Enabled,
			&cfg.SelectionExpression, &continueIn, &cfg.EvaluateOtherConfigurations, &vendorJSON); err != nil {
			return err
		}
		if continueIn.Valid {
			v := continueIn.Bool
			cfg.ContinueInHierarchy = &v
		}
		if vendorJSON.Valid {
			if err := json.Unmarshal([]byte(vendorJSON.String), &cfg.VendorConfig); err != nil {
				return fmt.Errorf("vendor config of %s/%s: %w", recipientID, cfg.TransportKey, err)
			}
		}

		id, err := uuid.Parse(recipientID)
		if err != nil {
			return fmt.Errorf("configuration recipient id %q: %w", recipientID, err)
		}
		rec, ok := recipients[id]
		if !ok {
			return fmt.Errorf("configuration references unknown recipient %s", recipientID)
		}

		c := cfg
		switch rec := rec.(type) {
		case *recipient.Individual:
			err = rec.AddConfiguration(&c)
		case *recipient.Role:
			err = rec.AddConfiguration(&c)
		case *recipient.Group:
			err = rec.AddConfiguration(&c)
		default:
			err = errors.New("unreachable recipient type")
		}
		if err != nil {
			return fmt.Errorf("recipient %s: %w", recipientID, err)
		}
	}
	return rows.Err()
}

func (r *RecipientRepo) linkMembers(ctx context.Context, recipients map[uuid.UUID]recipient.Recipient) error {
	rows, err := r.s.db.QueryContext(ctx, `SELECT group_id, member_id FROM group_members`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var groupID, memberID string
		if err := rows.Scan(&groupID, &memberID); err != nil {
			return err
		}
		gid, err := uuid.Parse(groupID)
		if err != nil {
			return fmt.Errorf("group id %q: %w", groupID, err)
		}
		mid, err := uuid.Parse(memberID)
		if err != nil {
			return fmt.Errorf("member id %q: %w", memberID, err)
		}

		group, ok := recipients[gid].(*recipient.Group)
		if !ok {
			return fmt.Errorf("membership references %s which is not a group", groupID)
		}
		member, ok := recipients[mid]
		if !ok {
			return fmt.Errorf("group %s references unknown member %s", groupID, memberID)
		}
		if err := group.AddMember(member); err != nil {
			return fmt.Errorf("group %s: %w", groupID, err)
		}
	}
	return rows.Err()
}
