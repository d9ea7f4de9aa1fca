package pager

import "github.com/google/uuid"

// Channel is a shared cap code multiple pagers can subscribe to via
// channel cap assignments.
type Channel struct {
	id        uuid.UUID
	name      string
	cap       CapCode
	audible   bool
	vibration bool
}

func NewChannel(id uuid.UUID, name string, cap CapCode, audible, vibration bool) *Channel {
	return &Channel{id: id, name: name, cap: cap, audible: audible, vibration: vibration}
}

func (c *Channel) ID() uuid.UUID    { return c.id }
func (c *Channel) Name() string     { return c.name }
func (c *Channel) CapCode() CapCode { return c.cap }
func (c *Channel) Audible() bool    { return c.audible }
func (c *Channel) Vibration() bool  { return c.vibration }

func (c *Channel) SetCapCode(cap CapCode) { c.cap = cap }
func (c *Channel) SetAudible(on bool)     { c.audible = on }
func (c *Channel) SetVibration(on bool)   { c.vibration = on }
