// Package feed carries newly inserted votes to live poll viewers. The
// feed is best-effort: a dropped event is corrected by the client's
// authoritative snapshot re-fetch, never the other way around.
package feed

import "context"

// VoteEvent is the payload pushed per accepted vote.
type VoteEvent struct {
	OptionID string `json:"optionId"`
}

// Feed fans vote events out to subscribers of a poll. Cancelling the
// subscribe context tears the subscription down and closes the channel;
// no events are delivered after that.
type Feed interface {
	Publish(ctx context.Context, pollID string, ev VoteEvent) error
	Subscribe(ctx context.Context, pollID string) (<-chan VoteEvent, error)
}
