package pollclient

import (
	"context"
	"errors"
	"sync"
)

// State of the tally's vote-submission machine.
type State int

const (
	// StateVoting: no vote recorded yet, submission possible.
	StateVoting State = iota
	// StateSubmitting: a submission is in flight; further submissions
	// are refused until it settles.
	StateSubmitting
	// StateVoted: this voter's choice is recorded (or was already
	// recorded server-side).
	StateVoted
	// StateError: the last submission failed; re-enterable, the user
	// may select again and resubmit.
	StateError
)

type voteAPI interface {
	Vote(ctx context.Context, pollID, optionID string) error
	ListVotes(ctx context.Context, pollID string) ([]string, error)
}

// Tally maintains the live, eventually-consistent vote counts for one
// displayed poll. Incoming feed events append to the working set; the
// definitive snapshot re-fetched after this voter's own submission is
// what guarantees it is reflected even if its event was dropped.
type Tally struct {
	api    voteAPI
	memory *Memory
	pollID string

	mu       sync.Mutex
	options  []Option
	votes    []string
	state    State
	selected string
	lastErr  string
	closed   bool
}

// NewTally seeds the tally with the mount-time snapshot. If the local
// vote memory already holds a choice for this poll the machine starts in
// StateVoted with that option selected, no network call needed.
func NewTally(api voteAPI, memory *Memory, poll *Poll, snapshot []string) *Tally {
	t := &Tally{
		api:     api,
		memory:  memory,
		pollID:  poll.ID,
		options: poll.Options,
		votes:   append([]string(nil), snapshot...),
		state:   StateVoting,
	}
	if memory != nil {
		if optionID, ok := memory.Get(poll.ID); ok {
			t.state = StateVoted
			t.selected = optionID
		}
	}
	return t
}

func (t *Tally) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Selected returns the option this voter chose, if any.
func (t *Tally) Selected() (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.selected, t.selected != ""
}

// LastError returns the surfaced message of the last failed submission.
func (t *Tally) LastError() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastErr
}

// Submit drives Voting → Submitting → Voted|Error. A duplicate-vote
// rejection still lands in Voted: some vote exists server-side, and the
// locally selected option is remembered as a best-effort guess at it.
func (t *Tally) Submit(ctx context.Context, optionID string) error {
	t.mu.Lock()
	switch t.state {
	case StateSubmitting:
		t.mu.Unlock()
		return errors.New("submission already in progress")
	case StateVoted:
		t.mu.Unlock()
		return errors.New("already voted")
	}
	t.state = StateSubmitting
	t.lastErr = ""
	t.mu.Unlock()

	err := t.api.Vote(ctx, t.pollID, optionID)

	if err != nil && !errors.Is(err, ErrDuplicateVote) {
		t.mu.Lock()
		t.state = StateError
		t.lastErr = err.Error()
		t.mu.Unlock()
		return err
	}

	if err == nil {
		// Definitive snapshot: corrects for events missed while the
		// submission was in flight.
		if fresh, lerr := t.api.ListVotes(ctx, t.pollID); lerr == nil {
			t.mu.Lock()
			t.votes = fresh
			t.mu.Unlock()
		}
	}

	t.mu.Lock()
	t.state = StateVoted
	t.selected = optionID
	t.mu.Unlock()

	// Best-effort write-through; a failed memory write never undoes an
	// accepted vote.
	if t.memory != nil {
		_ = t.memory.Set(t.pollID, optionID)
	}
	if errors.Is(err, ErrDuplicateVote) {
		return ErrDuplicateVote
	}
	return nil
}

// Apply appends one vote-insert notification to the working set. After
// Close it is a no-op.
func (t *Tally) Apply(ev VoteEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.votes = append(t.votes, ev.OptionID)
}

// Close stops all further mutation; call when the poll view unmounts.
func (t *Tally) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
}

// Counts returns votes per option id. Votes referencing unknown options
// are counted in the total but not attributed.
func (t *Tally) Counts() (map[string]int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	counts := make(map[string]int, len(t.options))
	for _, o := range t.options {
		counts[o.ID] = 0
	}
	for _, optionID := range t.votes {
		if _, ok := counts[optionID]; ok {
			counts[optionID]++
		}
	}
	return counts, len(t.votes)
}

// Percent is votes/total×100, 0 when the poll has no votes.
func Percent(votes, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(votes) / float64(total) * 100
}
