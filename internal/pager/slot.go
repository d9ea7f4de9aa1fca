package pager

import "fmt"

const (
	// SlotMin and SlotMax bound the cap slots a pager exposes.
	SlotMin = 0
	SlotMax = 7

	// SlotCount is the number of addressable slots per pager.
	SlotCount = SlotMax - SlotMin + 1
)

// Slot is a position in a pager's cap assignment table.
type Slot struct {
	slot int
}

func NewSlot(slot int) (Slot, error) {
	if slot < SlotMin || slot > SlotMax {
		return Slot{}, fmt.Errorf("slot %d out of bounds [%d, %d]", slot, SlotMin, SlotMax)
	}
	return Slot{slot: slot}, nil
}

// MustSlot panics on an invalid slot. For tests and literals only.
func MustSlot(slot int) Slot {
	s, err := NewSlot(slot)
	if err != nil {
		panic(err)
	}
	return s
}

func (s Slot) Int() int { return s.slot }
