// Package recipient models the polymorphic addressee graph: individuals,
// roles bound to an individual, and groups with (possibly nested) members.
package recipient

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// Kind is the explicit discriminant of a recipient variant.
type Kind int

const (
	KindIndividual Kind = iota
	KindRole
	KindGroup
)

func (k Kind) String() string {
	switch k {
	case KindIndividual:
		return "individual"
	case KindRole:
		return "role"
	case KindGroup:
		return "group"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Recipient is a message addressee. Identifiers are globally unique and
// are the only thing dedup during traversal may key on.
type Recipient interface {
	ID() uuid.UUID
	Name() string
	Kind() Kind

	// Configurations returns the attached transport configurations
	// sorted by descending rank (highest rank evaluated first).
	Configurations() []*TransportConfiguration

	// VendorConfigFor returns the vendor-specific settings of the
	// enabled configuration for the given transport key, if any.
	VendorConfigFor(transportKey string) (map[string]any, bool)
}

// base carries the state shared by all recipient variants.
type base struct {
	id      uuid.UUID
	name    string
	configs map[string]*TransportConfiguration
}

func newBase(name string) base {
	return base{
		id:      uuid.New(),
		name:    name,
		configs: map[string]*TransportConfiguration{},
	}
}

func (b *base) ID() uuid.UUID { return b.id }

func (b *base) Name() string { return b.name }

func (b *base) SetName(name string) { b.name = name }

// AddConfiguration attaches a transport configuration. A recipient holds
// at most one configuration per transport key.
func (b *base) AddConfiguration(cfg *TransportConfiguration) error {
	if cfg == nil {
		return fmt.Errorf("configuration must not be nil")
	}
	if _, exists := b.configs[cfg.TransportKey]; exists {
		return fmt.Errorf("transport configuration for key %q already exists", cfg.TransportKey)
	}
	b.configs[cfg.TransportKey] = cfg
	return nil
}

func (b *base) RemoveConfiguration(transportKey string) {
	delete(b.configs, transportKey)
}

func (b *base) ConfigurationFor(transportKey string) (*TransportConfiguration, bool) {
	cfg, ok := b.configs[transportKey]
	return cfg, ok
}

func (b *base) Configurations() []*TransportConfiguration {
	out := make([]*TransportConfiguration, 0, len(b.configs))
	for _, cfg := range b.configs {
		out = append(out, cfg)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Rank != out[j].Rank {
			return out[i].Rank > out[j].Rank
		}
		return out[i].TransportKey < out[j].TransportKey
	})
	return out
}

func (b *base) VendorConfigFor(transportKey string) (map[string]any, bool) {
	cfg, ok := b.configs[transportKey]
	if !ok || !cfg.Enabled {
		return nil, false
	}
	if cfg.VendorConfig == nil {
		return map[string]any{}, true
	}
	return cfg.VendorConfig, true
}

// Individual is a terminal recipient; it never expands further.
type Individual struct {
	base
}

func NewIndividual(name string) *Individual {
	return &Individual{base: newBase(name)}
}

func (*Individual) Kind() Kind { return KindIndividual }

// Role is a placeholder position (e.g. "on-call lead") optionally bound
// to the individual currently holding it.
type Role struct {
	base
	delegate *Individual
}

func NewRole(name string) *Role {
	return &Role{base: newBase(name)}
}

func (*Role) Kind() Kind { return KindRole }

// Delegate returns the bound individual, or nil when the role is vacant.
func (r *Role) Delegate() *Individual { return r.delegate }

func (r *Role) Bind(p *Individual) { r.delegate = p }

func (r *Role) Unbind() { r.delegate = nil }

// Group holds an ordered set of member recipients of any variant,
// including nested groups. Membership may form cycles through longer
// chains; the resolver, not the model, guarantees termination.
type Group struct {
	base
	members []Recipient
}

func NewGroup(name string) *Group {
	return &Group{base: newBase(name)}
}

func (*Group) Kind() Kind { return KindGroup }

// AddMember appends a member. A group must never contain itself; that
// invariant is enforced here, at mutation time.
func (g *Group) AddMember(m Recipient) error {
	if m == nil {
		return fmt.Errorf("member must not be nil")
	}
	if g.ID() == m.ID() {
		return fmt.Errorf("cannot add group %s to itself", g.ID())
	}
	g.members = append(g.members, m)
	return nil
}

func (g *Group) RemoveMember(id uuid.UUID) {
	kept := g.members[:0]
	for _, m := range g.members {
		if m.ID() != id {
			kept = append(kept, m)
		}
	}
	g.members = kept
}

func (g *Group) Members() []Recipient {
	out := make([]Recipient, len(g.members))
	copy(out, g.members)
	return out
}

func (g *Group) HasMembers() bool { return len(g.members) > 0 }
