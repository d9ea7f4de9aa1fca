package dispatch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opspager/internal/addressing"
	"opspager/internal/recipient"
	"opspager/internal/transport"
	"opspager/pkg/logx"
)

type mapDirectory struct {
	recipients map[uuid.UUID]recipient.Recipient
}

func (d *mapDirectory) RecipientByID(_ context.Context, id uuid.UUID) (recipient.Recipient, error) {
	return d.recipients[id], nil
}

type recordingResolver struct {
	lastMsg   transport.Message
	lastRoots []recipient.Recipient
	results   []addressing.AddressingResult
}

func (r *recordingResolver) ResolveAll(roots []recipient.Recipient, msg transport.Message) []addressing.AddressingResult {
	r.lastRoots = roots
	r.lastMsg = msg
	return r.results
}

func ingestFixture(t *testing.T) (*IngestServer, *recordingResolver, *recipient.Individual) {
	t.Helper()
	alice := recipient.NewIndividual("alice")
	resolver := &recordingResolver{}
	dispatcher := NewDispatcher(resolver, &recordingBus{}, logx.Nop())
	directory := &mapDirectory{recipients: map[uuid.UUID]recipient.Recipient{alice.ID(): alice}}
	return NewIngestServer("", dispatcher, directory, logx.Nop()), resolver, alice
}

func postMessage(t *testing.T, s *IngestServer, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/messages", strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.handleMessage(rec, req)
	return rec
}

func TestIngestDispatches(t *testing.T) {
	t.Parallel()

	s, resolver, alice := ingestFixture(t)
	tg := &fakeTransport{key: "telegram"}
	resolver.results = []addressing.AddressingResult{{
		Recipient: alice,
		Selected:  []addressing.SelectedTransport{selection(tg)},
	}}

	rec := postMessage(t, s, `{"to": ["`+alice.ID().String()+`"], "body": "server down", "priority": "urgent"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)

	require.Len(t, resolver.lastRoots, 1)
	assert.Equal(t, alice.ID(), resolver.lastRoots[0].ID())
	assert.Equal(t, "server down", resolver.lastMsg.Body)
	assert.Equal(t, transport.PriorityUrgent, resolver.lastMsg.Priority)

	var resp ingestResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, resolver.lastMsg.ID.String(), resp.MessageID)
	assert.Equal(t, 1, resp.Recipients)
	assert.Equal(t, 1, resp.Selected)
	assert.Equal(t, 0, resp.Failed)
	require.Len(t, tg.sent, 1)
}

func TestIngestDefaultPriority(t *testing.T) {
	t.Parallel()

	s, resolver, alice := ingestFixture(t)

	rec := postMessage(t, s, `{"to": ["`+alice.ID().String()+`"], "body": "hello"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, transport.PriorityDefault, resolver.lastMsg.Priority)
}

func TestIngestCountsDeadEnds(t *testing.T) {
	t.Parallel()

	s, resolver, alice := ingestFixture(t)
	resolver.results = []addressing.AddressingResult{{Recipient: alice}}

	rec := postMessage(t, s, `{"to": ["`+alice.ID().String()+`"], "body": "hello"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp ingestResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Failed)
	assert.Equal(t, 0, resp.Selected)
}

func TestIngestRejectsBadRequests(t *testing.T) {
	t.Parallel()

	s, _, alice := ingestFixture(t)

	cases := []struct {
		name string
		body string
		code int
	}{
		{"invalid json", `{`, http.StatusBadRequest},
		{"unknown field", `{"to": ["` + alice.ID().String() + `"], "body": "x", "subject": "y"}`, http.StatusBadRequest},
		{"missing body", `{"to": ["` + alice.ID().String() + `"]}`, http.StatusBadRequest},
		{"missing recipients", `{"body": "x"}`, http.StatusBadRequest},
		{"bad priority", `{"to": ["` + alice.ID().String() + `"], "body": "x", "priority": "asap"}`, http.StatusBadRequest},
		{"malformed id", `{"to": ["not-a-uuid"], "body": "x"}`, http.StatusBadRequest},
		{"unknown recipient", `{"to": ["` + uuid.NewString() + `"], "body": "x"}`, http.StatusNotFound},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			rec := postMessage(t, s, tc.body)
			assert.Equal(t, tc.code, rec.Code)
		})
	}
}
