package webserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/pollwire/pollwire/src/api/types"
)

const (
	maxQuestionLen = 200
	maxOptionLen   = 100
	maxOptions     = 10
)

type Polls struct {
	db        *gorm.DB
	siteURL   string
	sanitizer *bluemonday.Policy
}

func NewPolls(db *gorm.DB, siteURL string) Polls {
	return Polls{db: db, siteURL: siteURL, sanitizer: bluemonday.StrictPolicy()}
}

// normalizeOptions trims every option, drops empties and reports whether
// the survivors are unique under case-insensitive trimmed comparison.
// Order of the survivors is preserved.
func normalizeOptions(raw []string) (opts []string, unique bool) {
	seen := make(map[string]struct{}, len(raw))
	unique = true
	for _, o := range raw {
		o = strings.TrimSpace(o)
		if o == "" {
			continue
		}
		key := strings.ToLower(o)
		if _, dup := seen[key]; dup {
			unique = false
		}
		seen[key] = struct{}{}
		opts = append(opts, o)
	}
	return opts, unique
}

func (p Polls) Create(c *gin.Context) {
	var req struct {
		Question string   `json:"question"`
		Options  []string `json:"options"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	question := strings.TrimSpace(p.sanitizer.Sanitize(req.Question))
	if question == "" {
		c.JSON(http.StatusBadRequest, gin.H{"err": "question required"})
		return
	}
	if len(question) > maxQuestionLen {
		c.JSON(http.StatusBadRequest, gin.H{"err": "question too long"})
		return
	}

	for i, o := range req.Options {
		req.Options[i] = p.sanitizer.Sanitize(o)
	}
	options, unique := normalizeOptions(req.Options)
	if len(options) < 2 {
		c.JSON(http.StatusBadRequest, gin.H{"err": "insufficient options"})
		return
	}
	if !unique {
		c.JSON(http.StatusBadRequest, gin.H{"err": "duplicate options"})
		return
	}
	if len(options) > maxOptions {
		c.JSON(http.StatusBadRequest, gin.H{"err": "too many options"})
		return
	}
	for _, o := range options {
		if len(o) > maxOptionLen {
			c.JSON(http.StatusBadRequest, gin.H{"err": "option too long"})
			return
		}
	}

	poll := types.Poll{ID: uuid.NewString(), Question: question}
	if err := p.db.Create(&poll).Error; err != nil {
		logrus.WithError(err).Error("poll insert failed")
		c.JSON(http.StatusInternalServerError, gin.H{"err": "poll creation failed"})
		return
	}

	rows := make([]types.Option, len(options))
	for i, text := range options {
		rows[i] = types.Option{ID: uuid.NewString(), PollID: poll.ID, Text: text}
	}
	// A failure here leaves the poll row without options. Accepted: the
	// caller gets an error and the orphan poll is unreachable by sharing.
	if err := p.db.Create(&rows).Error; err != nil {
		logrus.WithError(err).WithField("poll_id", poll.ID).Error("options insert failed")
		c.JSON(http.StatusInternalServerError, gin.H{"err": "options creation failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":       poll.ID,
		"shareUrl": p.siteURL + "/poll/" + poll.ID,
	})
}

func (p Polls) Get(c *gin.Context) {
	id := c.Param("id")

	var poll types.Poll
	if err := p.db.Preload("Options").First(&poll, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"err": "poll not found"})
		return
	}

	// Initial snapshot for the tally: option id per vote, oldest first.
	var optionIDs []string
	if err := p.db.Model(&types.Vote{}).
		Where("poll_id = ?", id).
		Order("created_at").
		Pluck("option_id", &optionIDs).Error; err != nil {
		logrus.WithError(err).Error("vote snapshot failed")
		c.JSON(http.StatusInternalServerError, gin.H{"err": "failed to load votes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"poll":  poll,
		"votes": optionIDs,
	})
}
