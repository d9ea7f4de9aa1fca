package pager

import (
	"fmt"

	"github.com/google/uuid"
)

// Pager is one physical receiver. Its slot table maps each of the 8
// slots to at most one cap assignment. Deactivated pagers are skipped
// when sending.
type Pager struct {
	id        uuid.UUID
	label     string
	number    int
	comment   string
	activated bool
	carriedBy *uuid.UUID

	slots [SlotCount]CapAssignment
}

func NewPager(id uuid.UUID, label string, number int) (*Pager, error) {
	p := &Pager{id: id, number: number}
	if err := p.SetLabel(label); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Pager) ID() uuid.UUID { return p.id }

func (p *Pager) Label() string { return p.label }

// SetLabel enforces the 1 to 255 character bound on the human label.
func (p *Pager) SetLabel(label string) error {
	if label == "" || len(label) > 255 {
		return fmt.Errorf("pager label must be 1 to 255 characters, got %d", len(label))
	}
	p.label = label
	return nil
}

// Number is the identifier printed on the hardware.
func (p *Pager) Number() int         { return p.number }
func (p *Pager) SetNumber(n int)     { p.number = n }
func (p *Pager) Comment() string     { return p.comment }
func (p *Pager) SetComment(c string) { p.comment = c }

func (p *Pager) Activated() bool        { return p.activated }
func (p *Pager) SetActivated(on bool)   { p.activated = on }

// CarriedBy is the recipient currently carrying the pager, nil when it
// is unassigned.
func (p *Pager) CarriedBy() *uuid.UUID { return p.carriedBy }

func (p *Pager) SetCarriedBy(recipientID *uuid.UUID) { p.carriedBy = recipientID }

// CapAssignmentAt returns the assignment occupying the slot, nil when
// the slot is empty.
func (p *Pager) CapAssignmentAt(at Slot) CapAssignment {
	return p.slots[at.Int()]
}

// CapAssignments lists the occupied slots in slot order.
func (p *Pager) CapAssignments() []CapAssignment {
	var out []CapAssignment
	for _, a := range p.slots {
		if a != nil {
			out = append(out, a)
		}
	}
	return out
}

// AssignIndividualCap places an individual cap in the slot, replacing
// whatever occupied it.
func (p *Pager) AssignIndividualCap(slot Slot, cap CapCode, audible, vibration bool) *Pager {
	p.slots[slot.Int()] = NewIndividualCapAssignment(slot, cap, audible, vibration)
	return p
}

// AssignChannel subscribes the slot to a channel, replacing whatever
// occupied it.
func (p *Pager) AssignChannel(slot Slot, channelID uuid.UUID) *Pager {
	p.slots[slot.Int()] = NewChannelCapAssignment(slot, channelID)
	return p
}

func (p *Pager) ClearSlot(slot Slot) *Pager {
	p.slots[slot.Int()] = nil
	return p
}

// IndividualAlertCap is the cap of the first individual assignment, in
// slot order, that is audible. Nil when the pager has none.
func (p *Pager) IndividualAlertCap() *CapCode {
	return p.firstIndividualCap(true)
}

// IndividualNonAlertCap is the counterpart for silent delivery: the
// first individual assignment that is not audible.
func (p *Pager) IndividualNonAlertCap() *CapCode {
	return p.firstIndividualCap(false)
}

func (p *Pager) firstIndividualCap(audible bool) *CapCode {
	for _, a := range p.slots {
		ind, ok := a.(IndividualCapAssignment)
		if !ok {
			continue
		}
		if ind.Audible() == audible {
			code := ind.CapCode()
			return &code
		}
	}
	return nil
}
