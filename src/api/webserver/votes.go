package webserver

import (
	"encoding/hex"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/blake2b"
	"gorm.io/gorm"

	"github.com/pollwire/pollwire/src/api/feed"
	"github.com/pollwire/pollwire/src/api/types"
)

type Votes struct {
	db   *gorm.DB
	feed feed.Feed
}

func NewVotes(db *gorm.DB, f feed.Feed) Votes {
	return Votes{db: db, feed: f}
}

// voterFingerprint hashes the voter's network origin so the store can
// enforce one-vote-per-voter without retaining raw addresses.
func voterFingerprint(origin string) string {
	sum := blake2b.Sum256([]byte(origin))
	return hex.EncodeToString(sum[:])
}

func (v Votes) Cast(c *gin.Context) {
	pollID := c.Param("id")

	var req struct {
		OptionID string `json:"optionId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	if pollID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"err": "poll id required"})
		return
	}

	// Single lookup keyed by option id, scoped to the poll. Covers both
	// unknown ids and options belonging to a different poll.
	var option types.Option
	if err := v.db.First(&option, "id = ? AND poll_id = ?", req.OptionID, pollID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"err": "invalid poll or option"})
			return
		}
		logrus.WithError(err).Error("option lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"err": "vote submission failed"})
		return
	}

	vote := types.Vote{
		ID:               uuid.NewString(),
		PollID:           pollID,
		OptionID:         option.ID,
		VoterFingerprint: voterFingerprint(c.ClientIP()),
	}
	// The unique index on (poll_id, voter_fingerprint) arbitrates racing
	// submissions; the translated duplicate-key error is the only
	// duplicate signal.
	if err := v.db.Create(&vote).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"err": "already voted"})
			return
		}
		logrus.WithError(err).WithField("poll_id", pollID).Error("vote insert failed")
		c.JSON(http.StatusInternalServerError, gin.H{"err": "vote submission failed"})
		return
	}

	// Best-effort: viewers reconcile against the snapshot endpoints if a
	// publish is lost.
	if err := v.feed.Publish(c.Request.Context(), pollID, feed.VoteEvent{OptionID: option.ID}); err != nil {
		logrus.WithError(err).WithField("poll_id", pollID).Warn("vote publish failed")
	}

	c.Status(http.StatusCreated)
}

func (v Votes) List(c *gin.Context) {
	pollID := c.Param("id")

	var poll types.Poll
	if err := v.db.First(&poll, "id = ?", pollID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"err": "poll not found"})
		return
	}

	var optionIDs []string
	if err := v.db.Model(&types.Vote{}).
		Where("poll_id = ?", pollID).
		Order("created_at").
		Pluck("option_id", &optionIDs).Error; err != nil {
		logrus.WithError(err).Error("vote list failed")
		c.JSON(http.StatusInternalServerError, gin.H{"err": "failed to load votes"})
		return
	}
	if optionIDs == nil {
		optionIDs = []string{}
	}

	c.JSON(http.StatusOK, gin.H{"votes": optionIDs})
}
