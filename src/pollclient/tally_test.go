package pollclient

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	voteErr   error
	votes     []string
	listErr   error
	voteCalls int
	listCalls int
	block     chan struct{} // when set, Vote waits until it closes
}

func (f *fakeAPI) Vote(ctx context.Context, pollID, optionID string) error {
	f.voteCalls++
	if f.block != nil {
		<-f.block
	}
	return f.voteErr
}

func (f *fakeAPI) ListVotes(ctx context.Context, pollID string) ([]string, error) {
	f.listCalls++
	return f.votes, f.listErr
}

func testPoll() *Poll {
	return &Poll{
		ID:       "poll-1",
		Question: "Cats or dogs?",
		Options: []Option{
			{ID: "opt-cats", PollID: "poll-1", Text: "Cats"},
			{ID: "opt-dogs", PollID: "poll-1", Text: "Dogs"},
		},
	}
}

func testMemory(t *testing.T) *Memory {
	t.Helper()
	m, err := OpenMemory(filepath.Join(t.TempDir(), "voted.json"))
	require.NoError(t, err)
	return m
}

func TestTallyStartsVoting(t *testing.T) {
	tally := NewTally(&fakeAPI{}, testMemory(t), testPoll(), nil)
	assert.Equal(t, StateVoting, tally.State())
	_, ok := tally.Selected()
	assert.False(t, ok)
}

func TestTallySeedsFromMemory(t *testing.T) {
	mem := testMemory(t)
	require.NoError(t, mem.Set("poll-1", "opt-dogs"))

	api := &fakeAPI{}
	tally := NewTally(api, mem, testPoll(), []string{"opt-dogs"})

	assert.Equal(t, StateVoted, tally.State())
	selected, ok := tally.Selected()
	assert.True(t, ok)
	assert.Equal(t, "opt-dogs", selected)
	assert.Zero(t, api.voteCalls, "remembered vote needs no network call")
}

func TestTallySubmitSuccess(t *testing.T) {
	mem := testMemory(t)
	// The fresh snapshot includes a vote that raced in during submission.
	api := &fakeAPI{votes: []string{"opt-cats", "opt-dogs"}}
	tally := NewTally(api, mem, testPoll(), nil)

	require.NoError(t, tally.Submit(context.Background(), "opt-cats"))

	assert.Equal(t, StateVoted, tally.State())
	counts, total := tally.Counts()
	assert.Equal(t, 2, total, "post-vote state comes from the definitive re-fetch")
	assert.Equal(t, 1, counts["opt-cats"])
	assert.Equal(t, 1, api.listCalls)

	remembered, ok := mem.Get("poll-1")
	assert.True(t, ok)
	assert.Equal(t, "opt-cats", remembered)
}

func TestTallySubmitDuplicate(t *testing.T) {
	mem := testMemory(t)
	api := &fakeAPI{voteErr: ErrDuplicateVote}
	tally := NewTally(api, mem, testPoll(), []string{"opt-dogs"})

	err := tally.Submit(context.Background(), "opt-cats")
	assert.ErrorIs(t, err, ErrDuplicateVote)

	// Duplicate is success-adjacent: Voted, with the local selection
	// remembered as the best-effort guess.
	assert.Equal(t, StateVoted, tally.State())
	selected, _ := tally.Selected()
	assert.Equal(t, "opt-cats", selected)
	assert.Zero(t, api.listCalls, "no re-fetch on duplicate")

	remembered, ok := mem.Get("poll-1")
	assert.True(t, ok)
	assert.Equal(t, "opt-cats", remembered)
}

func TestTallySubmitFailureAllowsRetry(t *testing.T) {
	mem := testMemory(t)
	api := &fakeAPI{voteErr: &StoreError{Msg: "vote submission failed"}}
	tally := NewTally(api, mem, testPoll(), nil)

	err := tally.Submit(context.Background(), "opt-cats")
	var storeErr *StoreError
	require.ErrorAs(t, err, &storeErr)

	assert.Equal(t, StateError, tally.State())
	assert.Equal(t, "vote submission failed", tally.LastError())
	_, ok := mem.Get("poll-1")
	assert.False(t, ok, "failed submission must not be remembered")

	// Retry after clearing the fault.
	api.voteErr = nil
	require.NoError(t, tally.Submit(context.Background(), "opt-dogs"))
	assert.Equal(t, StateVoted, tally.State())
	assert.Empty(t, tally.LastError())
}

func TestTallyRefusesConcurrentSubmit(t *testing.T) {
	api := &fakeAPI{block: make(chan struct{})}
	tally := NewTally(api, testMemory(t), testPoll(), nil)

	done := make(chan error, 1)
	go func() {
		done <- tally.Submit(context.Background(), "opt-cats")
	}()

	// Wait for the first submission to enter Submitting.
	for tally.State() != StateSubmitting {
		time.Sleep(time.Millisecond)
	}

	err := tally.Submit(context.Background(), "opt-dogs")
	require.Error(t, err)

	close(api.block)
	require.NoError(t, <-done)
	assert.Equal(t, 1, api.voteCalls, "the refused submission must not hit the network")
}

func TestTallyRefusesResubmitWhenVoted(t *testing.T) {
	tally := NewTally(&fakeAPI{}, testMemory(t), testPoll(), nil)
	require.NoError(t, tally.Submit(context.Background(), "opt-cats"))

	err := tally.Submit(context.Background(), "opt-dogs")
	assert.Error(t, err)
}

func TestTallyApplyAndClose(t *testing.T) {
	tally := NewTally(&fakeAPI{}, testMemory(t), testPoll(), []string{"opt-cats"})

	tally.Apply(VoteEvent{OptionID: "opt-dogs"})
	counts, total := tally.Counts()
	assert.Equal(t, 2, total)
	assert.Equal(t, 1, counts["opt-dogs"])

	tally.Close()
	tally.Apply(VoteEvent{OptionID: "opt-dogs"})
	_, total = tally.Counts()
	assert.Equal(t, 2, total, "no mutation after teardown")
}

func TestTallyIgnoresUnknownOptionInCounts(t *testing.T) {
	tally := NewTally(&fakeAPI{}, testMemory(t), testPoll(), []string{"opt-cats", "opt-gone"})

	counts, total := tally.Counts()
	assert.Equal(t, 2, total)
	assert.Equal(t, 1, counts["opt-cats"])
	_, attributed := counts["opt-gone"]
	assert.False(t, attributed)
}

func TestPercent(t *testing.T) {
	assert.Zero(t, Percent(0, 0), "zero total yields zero, not NaN")
	assert.InDelta(t, 70.0, Percent(7, 10), 1e-9)
	assert.InDelta(t, 30.0, Percent(3, 10), 1e-9)
}
