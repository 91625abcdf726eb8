package types

import "time"

// Polls
type Poll struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Question  string    `gorm:"size:200;not null" json:"question"`
	CreatedAt time.Time `json:"createdAt"`
	Options   []Option  `gorm:"foreignKey:PollID" json:"options,omitempty"`
}

// Poll options
type Option struct {
	ID     string `gorm:"primaryKey;size:36" json:"id"`
	PollID string `gorm:"index;size:36;not null" json:"pollId"`
	Text   string `gorm:"size:100;not null" json:"text"`
}

// Votes are append-only. The composite unique index on
// (poll_id, voter_fingerprint) is the sole duplicate-vote guard; it is
// evaluated atomically by the store on insert, never by a prior lookup.
type Vote struct {
	ID               string    `gorm:"primaryKey;size:36" json:"id"`
	PollID           string    `gorm:"size:36;not null;uniqueIndex:idx_vote_poll_voter" json:"pollId"`
	OptionID         string    `gorm:"index;size:36;not null" json:"optionId"`
	VoterFingerprint string    `gorm:"size:64;not null;uniqueIndex:idx_vote_poll_voter" json:"-"`
	CreatedAt        time.Time `json:"createdAt"`
}
