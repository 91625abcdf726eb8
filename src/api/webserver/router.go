package webserver

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pollwire/pollwire/src/api/config"
	"github.com/pollwire/pollwire/src/api/feed"
)

func attachRoutes(r *gin.Engine, cfg config.Config, db *gorm.DB, f feed.Feed) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	pollH := NewPolls(db, cfg.SiteURL)
	voteH := NewVotes(db, f)
	eventH := NewEvents(f)

	createLimiter := NewRateLimiter(10, time.Minute)

	v1 := r.Group("/v1")
	{
		v1.POST("/polls", RateLimitMiddleware(createLimiter), pollH.Create)
		v1.GET("/polls/:id", pollH.Get)
		v1.POST("/polls/:id/votes", voteH.Cast)
		v1.GET("/polls/:id/votes", voteH.List)
		v1.GET("/polls/:id/events", eventH.Stream)
	}
}
