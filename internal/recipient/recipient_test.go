package recipient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigurationsSortedByRankDescending(t *testing.T) {
	t.Parallel()

	ind := NewIndividual("alice")
	for _, cfg := range []*TransportConfiguration{
		{TransportKey: "ntfy", Rank: 1, Enabled: true},
		{TransportKey: "telegram", Rank: 10, Enabled: true},
		{TransportKey: "intelpage", Rank: 5, Enabled: true},
	} {
		require.NoError(t, ind.AddConfiguration(cfg))
	}

	got := ind.Configurations()
	require.Len(t, got, 3)
	assert.Equal(t, "telegram", got[0].TransportKey)
	assert.Equal(t, "intelpage", got[1].TransportKey)
	assert.Equal(t, "ntfy", got[2].TransportKey)
}

func TestConfigurationsEqualRankOrderedByKey(t *testing.T) {
	t.Parallel()

	ind := NewIndividual("bob")
	require.NoError(t, ind.AddConfiguration(&TransportConfiguration{TransportKey: "zeta", Rank: 3}))
	require.NoError(t, ind.AddConfiguration(&TransportConfiguration{TransportKey: "alpha", Rank: 3}))

	got := ind.Configurations()
	require.Len(t, got, 2)
	assert.Equal(t, "alpha", got[0].TransportKey)
	assert.Equal(t, "zeta", got[1].TransportKey)
}

func TestAddConfigurationRejectsDuplicateKey(t *testing.T) {
	t.Parallel()

	ind := NewIndividual("carol")
	require.NoError(t, ind.AddConfiguration(NewTransportConfiguration("telegram")))
	assert.Error(t, ind.AddConfiguration(NewTransportConfiguration("telegram")))
	assert.Error(t, ind.AddConfiguration(nil))
}

func TestVendorConfigForSkipsDisabled(t *testing.T) {
	t.Parallel()

	ind := NewIndividual("dave")
	cfg := NewTransportConfiguration("intelpage")
	cfg.VendorConfig = map[string]any{"channel": "abc"}
	require.NoError(t, ind.AddConfiguration(cfg))

	got, ok := ind.VendorConfigFor("intelpage")
	require.True(t, ok)
	assert.Equal(t, "abc", got["channel"])

	cfg.Enabled = false
	_, ok = ind.VendorConfigFor("intelpage")
	assert.False(t, ok)

	_, ok = ind.VendorConfigFor("telegram")
	assert.False(t, ok)
}

func TestGroupRejectsSelfMembership(t *testing.T) {
	t.Parallel()

	g := NewGroup("oncall")
	assert.Error(t, g.AddMember(g))
	assert.Error(t, g.AddMember(nil))
	assert.False(t, g.HasMembers())

	other := NewGroup("nested")
	require.NoError(t, g.AddMember(other))
	require.NoError(t, g.AddMember(NewIndividual("eve")))
	assert.True(t, g.HasMembers())
	assert.Len(t, g.Members(), 2)

	g.RemoveMember(other.ID())
	assert.Len(t, g.Members(), 1)
}

func TestGroupCycleThroughOtherGroupAllowed(t *testing.T) {
	t.Parallel()

	a := NewGroup("a")
	b := NewGroup("b")
	require.NoError(t, a.AddMember(b))
	// Cycles via longer chains are legal at the model level; the
	// resolver guarantees termination.
	require.NoError(t, b.AddMember(a))
}

func TestRoleDelegation(t *testing.T) {
	t.Parallel()

	role := NewRole("duty-officer")
	assert.Nil(t, role.Delegate())

	alice := NewIndividual("alice")
	role.Bind(alice)
	require.NotNil(t, role.Delegate())
	assert.Equal(t, alice.ID(), role.Delegate().ID())

	role.Unbind()
	assert.Nil(t, role.Delegate())
}

func TestNewTransportConfigurationDefaults(t *testing.T) {
	t.Parallel()

	cfg := NewTransportConfiguration("telegram")
	assert.True(t, cfg.Enabled)
	assert.Equal(t, DefaultSelectionExpression, cfg.SelectionExpression)
	assert.True(t, cfg.EvaluateOtherConfigurations)
	assert.Nil(t, cfg.ContinueInHierarchy)
	assert.False(t, cfg.StopsHierarchyExpansion())

	f := false
	cfg.ContinueInHierarchy = &f
	assert.True(t, cfg.StopsHierarchyExpansion())

	tr := true
	cfg.ContinueInHierarchy = &tr
	assert.False(t, cfg.StopsHierarchyExpansion())
}
