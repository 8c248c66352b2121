package lookup

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	resp *QueryResponse
	err  error

	gotReq QueryRequest
}

func (f *fakeClient) Query(ctx context.Context, req QueryRequest) (*QueryResponse, error) {
	f.gotReq = req
	return f.resp, f.err
}

func TestFetchFormatsAnswerAndSources(t *testing.T) {
	client := &fakeClient{resp: &QueryResponse{
		Answer: "Similar shaft failure on MV Atlantic in 2024, resolved in dock 1.",
		Sources: []Source{
			{Sender: "j.olsen", SenderRole: "Dock Scheduler", Subject: "Shaft repair schedule", Vessel: "MV Atlantic"},
			{Sender: "k.mehta", SenderRole: "Technical Lead", Subject: "Root cause report", Vessel: "MV Atlantic"},
		},
	}}
	a := NewAdapter(client, 3, nil)

	res := a.Fetch(context.Background(), "What happened with MV Baltic Trader?")

	require.False(t, res.Degraded)
	assert.Contains(t, res.Text, "Similar shaft failure on MV Atlantic")
	assert.Contains(t, res.Text, "1. [Dock Scheduler] j.olsen")
	assert.Contains(t, res.Text, "Subject: Root cause report")
	assert.Contains(t, res.Text, "Vessel: MV Atlantic")
	assert.Equal(t, 3, client.gotReq.TopK)
	assert.Equal(t, "What happened with MV Baltic Trader?", client.gotReq.Message)
}

func TestFetchCapsRenderedSources(t *testing.T) {
	client := &fakeClient{resp: &QueryResponse{
		Answer: "many matches",
		Sources: []Source{
			{Sender: "a"}, {Sender: "b"}, {Sender: "c"}, {Sender: "d"}, {Sender: "e"},
		},
	}}
	a := NewAdapter(client, 5, nil)

	res := a.Fetch(context.Background(), "q")
	assert.Contains(t, res.Text, "3. ")
	assert.NotContains(t, res.Text, "4. ")
}

func TestFetchDegradesOnError(t *testing.T) {
	client := &fakeClient{err: errors.New("connection refused")}
	a := NewAdapter(client, 3, nil)

	res := a.Fetch(context.Background(), "q")

	assert.True(t, res.Degraded)
	assert.Equal(t, "connection refused", res.Reason)
	assert.Contains(t, res.Text, "Error querying historical context")
}
