package pager

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opspager/internal/transport"
)

func TestRecipientConfigChannel(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	cfg := NewRecipientConfig(map[string]any{KeyChannel: id.String()})
	require.True(t, cfg.HasChannel())

	got, err := cfg.ChannelID()
	require.NoError(t, err)
	assert.Equal(t, id, got)

	cfg = NewRecipientConfig(map[string]any{})
	assert.False(t, cfg.HasChannel())
	_, err = cfg.ChannelID()
	assert.Error(t, err)

	cfg = NewRecipientConfig(map[string]any{KeyChannel: "not-a-uuid"})
	assert.True(t, cfg.HasChannel())
	_, err = cfg.ChannelID()
	assert.Error(t, err)

	cfg = NewRecipientConfig(map[string]any{KeyChannel: 42})
	_, err = cfg.ChannelID()
	assert.Error(t, err)
}

func TestAlertFromPriority(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		cfg  map[string]any
		want transport.Priority
	}{
		{"absent defaults to high", map[string]any{}, transport.PriorityHigh},
		{"int value", map[string]any{KeyAlertFromPriority: 20}, transport.PriorityLow},
		{"json float value", map[string]any{KeyAlertFromPriority: float64(50)}, transport.PriorityUrgent},
		{"invalid value falls back", map[string]any{KeyAlertFromPriority: 37}, transport.PriorityHigh},
		{"wrong type falls back", map[string]any{KeyAlertFromPriority: "high"}, transport.PriorityHigh},
	}
	for _, tc := range cases {
		got := NewRecipientConfig(tc.cfg).AlertFromPriority()
		assert.Equal(t, tc.want, got, tc.name)
	}
}
