package pager

import "github.com/google/uuid"

// CapAssignment is what occupies one pager slot: either a dedicated
// individual cap or a reference to a shared channel.
type CapAssignment interface {
	Slot() Slot
}

// IndividualCapAssignment binds a cap code to this pager alone.
type IndividualCapAssignment struct {
	slot      Slot
	cap       CapCode
	audible   bool
	vibration bool
}

func NewIndividualCapAssignment(slot Slot, cap CapCode, audible, vibration bool) IndividualCapAssignment {
	return IndividualCapAssignment{slot: slot, cap: cap, audible: audible, vibration: vibration}
}

func (a IndividualCapAssignment) Slot() Slot      { return a.slot }
func (a IndividualCapAssignment) CapCode() CapCode { return a.cap }
func (a IndividualCapAssignment) Audible() bool    { return a.audible }
func (a IndividualCapAssignment) Vibration() bool  { return a.vibration }

// ChannelCapAssignment subscribes the pager slot to a shared channel;
// the effective cap code lives on the channel.
type ChannelCapAssignment struct {
	slot      Slot
	channelID uuid.UUID
}

func NewChannelCapAssignment(slot Slot, channelID uuid.UUID) ChannelCapAssignment {
	return ChannelCapAssignment{slot: slot, channelID: channelID}
}

func (a ChannelCapAssignment) Slot() Slot           { return a.slot }
func (a ChannelCapAssignment) ChannelID() uuid.UUID { return a.channelID }
