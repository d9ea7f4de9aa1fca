package addressing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opspager/internal/recipient"
	"opspager/internal/transport"
	"opspager/pkg/logx"
)

func newTestResolver(transports ...transport.Transport) *Resolver {
	return NewResolver(scriptedExpressions{}, lookupOf(transports...), logx.Nop())
}

func TestResolveOnCallGroup(t *testing.T) {
	t.Parallel()

	tg := newFakeTransport("telegram")
	r := newTestResolver(tg)

	alice := recipient.NewIndividual("Alice")
	require.NoError(t, alice.AddConfiguration(configFor("telegram", 0, "true")))
	lead := recipient.NewRole("Lead")
	lead.Bind(alice)

	bob := recipient.NewIndividual("Bob")
	require.NoError(t, bob.AddConfiguration(configFor("telegram", 0, "true")))

	oncall := recipient.NewGroup("OnCall")
	require.NoError(t, oncall.AddMember(lead))
	require.NoError(t, oncall.AddMember(bob))

	results := r.Resolve(oncall, transport.Message{Body: "db down", Priority: transport.PriorityHigh})
	require.Len(t, results, 3)

	group := results[0]
	assert.Equal(t, oncall.ID(), group.Recipient.ID())
	assert.False(t, group.HasSelected())
	require.Len(t, group.MembersToExpand, 2)
	assert.Equal(t, lead.ID(), group.MembersToExpand[0].ID())
	assert.Equal(t, bob.ID(), group.MembersToExpand[1].ID())

	// The vacant-config role hands off to Alice.
	delegated := results[1]
	assert.Equal(t, alice.ID(), delegated.Recipient.ID())
	require.NotNil(t, delegated.DelegatedFrom)
	assert.Equal(t, lead.ID(), delegated.DelegatedFrom.ID())
	require.Len(t, delegated.Selected, 1)

	direct := results[2]
	assert.Equal(t, bob.ID(), direct.Recipient.ID())
	assert.Nil(t, direct.DelegatedFrom)
	require.Len(t, direct.Selected, 1)
}

func TestResolveTerminatesOnCycles(t *testing.T) {
	t.Parallel()

	r := newTestResolver()

	a := recipient.NewGroup("a")
	b := recipient.NewGroup("b")
	require.NoError(t, a.AddMember(b))
	require.NoError(t, b.AddMember(a))

	results := r.Resolve(a, transport.Message{Priority: transport.PriorityDefault})
	require.Len(t, results, 2)

	seen := map[string]int{}
	for _, result := range results {
		seen[result.Recipient.ID().String()]++
	}
	for id, n := range seen {
		assert.Equal(t, 1, n, "recipient %s evaluated more than once", id)
	}
}

func TestResolveEmptyGroupWithoutConfigurations(t *testing.T) {
	t.Parallel()

	r := newTestResolver()
	g := recipient.NewGroup("ghost-town")

	results := r.Resolve(g, transport.Message{Priority: transport.PriorityDefault})
	require.Len(t, results, 1)
	require.Len(t, results[0].Errors, 1)
	assert.Equal(t, ErrEmptyGroupNoConfigurations, results[0].Errors[0].Type)
	assert.False(t, results[0].HasMembersToExpand())
}

func TestResolveGroupExpansionMatrix(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		continueIn []*bool // one matched config per entry
		wantExpand bool
	}{
		{"all explicit false stops", []*bool{boolPtr(false)}, false},
		{"explicit true continues", []*bool{boolPtr(true)}, true},
		{"inherited default continues", []*bool{nil}, true},
		{"one of two allows continuation", []*bool{boolPtr(false), boolPtr(true)}, true},
		{"false and inherited continues", []*bool{boolPtr(false), nil}, true},
		{"both explicit false stops", []*bool{boolPtr(false), boolPtr(false)}, false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var transports []transport.Transport
			group := recipient.NewGroup("ops")
			for i, ci := range tc.continueIn {
				key := string(rune('a' + i))
				transports = append(transports, newFakeTransport(key))
				cfg := configFor(key, 0, "true")
				cfg.ContinueInHierarchy = ci
				require.NoError(t, group.AddConfiguration(cfg))
			}
			require.NoError(t, group.AddMember(recipient.NewIndividual("member")))

			r := newTestResolver(transports...)
			results := r.Resolve(group, transport.Message{Priority: transport.PriorityDefault})

			groupResult := results[0]
			require.Len(t, groupResult.Selected, len(tc.continueIn))
			assert.Equal(t, tc.wantExpand, groupResult.HasMembersToExpand())
		})
	}
}

func TestResolveGroupWithoutConfigsExpandsMembers(t *testing.T) {
	t.Parallel()

	tg := newFakeTransport("telegram")
	r := newTestResolver(tg)

	member := recipient.NewIndividual("carol")
	require.NoError(t, member.AddConfiguration(configFor("telegram", 0, "true")))
	group := recipient.NewGroup("ops")
	require.NoError(t, group.AddMember(member))

	results := r.Resolve(group, transport.Message{Priority: transport.PriorityDefault})
	require.Len(t, results, 2)
	assert.False(t, results[0].HasSelected())
	assert.Empty(t, results[0].Errors)
	assert.True(t, results[0].HasMembersToExpand())
	assert.Len(t, results[1].Selected, 1)
}

func TestResolveGroupFailedMatchStillExpands(t *testing.T) {
	t.Parallel()

	tg := newFakeTransport("telegram")
	r := newTestResolver(tg)

	group := recipient.NewGroup("ops")
	// Matches nothing at low priority, but the group has members.
	require.NoError(t, group.AddConfiguration(configFor("telegram", 0, "priorityValue >= 40")))
	member := recipient.NewIndividual("carol")
	require.NoError(t, member.AddConfiguration(configFor("telegram", 0, "true")))
	require.NoError(t, group.AddMember(member))

	results := r.Resolve(group, transport.Message{Priority: transport.PriorityLow})
	require.Len(t, results, 2)
	assert.False(t, results[0].HasSelected())
	assert.True(t, results[0].HasMembersToExpand())
}

func TestResolveRoleWithOwnConfigurations(t *testing.T) {
	t.Parallel()

	tg := newFakeTransport("telegram")
	r := newTestResolver(tg)

	alice := recipient.NewIndividual("Alice")
	role := recipient.NewRole("Lead")
	// The role's own configuration wins over the delegate's.
	require.NoError(t, role.AddConfiguration(configFor("telegram", 0, "true")))
	role.Bind(alice)

	results := r.Resolve(role, transport.Message{Priority: transport.PriorityDefault})
	require.Len(t, results, 1)
	assert.Equal(t, role.ID(), results[0].Recipient.ID())
	assert.Nil(t, results[0].DelegatedFrom)
	assert.Len(t, results[0].Selected, 1)
}

func TestResolveVacantRoleWithoutConfigurations(t *testing.T) {
	t.Parallel()

	r := newTestResolver()
	role := recipient.NewRole("Lead")

	results := r.Resolve(role, transport.Message{Priority: transport.PriorityDefault})
	require.Len(t, results, 1)
	require.Len(t, results[0].Errors, 1)
	assert.Equal(t, ErrNoTransportConfigurations, results[0].Errors[0].Type)
}

func TestResolveAllSharesVisitedSet(t *testing.T) {
	t.Parallel()

	tg := newFakeTransport("telegram")
	r := newTestResolver(tg)

	shared := recipient.NewIndividual("shared")
	require.NoError(t, shared.AddConfiguration(configFor("telegram", 0, "true")))
	g1 := recipient.NewGroup("g1")
	g2 := recipient.NewGroup("g2")
	require.NoError(t, g1.AddMember(shared))
	require.NoError(t, g2.AddMember(shared))

	results := r.ResolveAll([]recipient.Recipient{g1, g2}, transport.Message{Priority: transport.PriorityDefault})
	// g1, g2 and shared exactly once.
	require.Len(t, results, 3)
}
