package webserver

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pollwire/pollwire/src/api/feed"
)

type Events struct {
	feed feed.Feed
}

func NewEvents(f feed.Feed) Events {
	return Events{feed: f}
}

// Stream pushes each accepted vote for the poll as a server-sent event
// until the client disconnects. The stream is supplementary; clients
// re-fetch the vote snapshot for authoritative state.
func (e Events) Stream(c *gin.Context) {
	pollID := c.Param("id")

	ctx := c.Request.Context()
	events, err := e.feed.Subscribe(ctx, pollID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": "subscription failed"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	// Flush headers now so subscribers are attached before the first
	// event rather than blocked waiting for one.
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case ev, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent("vote", ev)
			return true
		}
	})
}
