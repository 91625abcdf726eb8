package webserver

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pollwire/pollwire/src/api/config"
	"github.com/pollwire/pollwire/src/api/feed"
)

func New(cfg config.Config, db *gorm.DB, f feed.Feed) *gin.Engine {
	g := gin.New()
	g.Use(gin.Logger(), gin.Recovery())
	attachRoutes(g, cfg, db, f)
	return g
}
