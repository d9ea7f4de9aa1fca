package recipient

import "github.com/google/uuid"

// Restore constructors rebuild recipients from persisted state with
// their original identifiers. Membership and delegation are re-linked
// by the caller once all recipients exist.

func RestoreIndividual(id uuid.UUID, name string) *Individual {
	return &Individual{base: restoredBase(id, name)}
}

func RestoreRole(id uuid.UUID, name string) *Role {
	return &Role{base: restoredBase(id, name)}
}

func RestoreGroup(id uuid.UUID, name string) *Group {
	return &Group{base: restoredBase(id, name)}
}

func restoredBase(id uuid.UUID, name string) base {
	return base{
		id:      id,
		name:    name,
		configs: map[string]*TransportConfiguration{},
	}
}
