package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/pollwire/pollwire/src/api/config"
	"github.com/pollwire/pollwire/src/api/data"
	"github.com/pollwire/pollwire/src/api/feed"
	"github.com/pollwire/pollwire/src/api/webserver"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db := data.MustDatabase(cfg.MySQLDSN, cfg.SQLitePath)

	// Redis fans vote events out across instances; without it the feed
	// stays in-process, which is fine for a single node.
	var voteFeed feed.Feed
	if cfg.RedisURL != "" {
		voteFeed = feed.NewRedisFeed(data.MustRedis(cfg.RedisURL))
	} else {
		logrus.Info("REDIS_URL not set, using in-process vote feed")
		voteFeed = feed.NewMemoryFeed()
	}

	router := webserver.New(cfg, db, voteFeed)

	// No WriteTimeout: the events endpoint streams for as long as the
	// viewer stays on the poll.
	httpSrv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     router,
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		var err error
		if cfg.EnableSSL && cfg.SSLCert != "" && cfg.SSLKey != "" {
			tlsReloader, rerr := webserver.NewTLSReloader(cfg.SSLCert, cfg.SSLKey)
			if rerr != nil {
				logrus.WithError(rerr).Warn("TLS setup failed, falling back to HTTP")
				err = httpSrv.ListenAndServe()
			} else {
				httpSrv.TLSConfig = tlsReloader.GetConfig()
				err = httpSrv.ListenAndServeTLS("", "")
			}
		} else {
			err = httpSrv.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("http: %v", err)
		}
	}()

	logrus.WithField("port", cfg.Port).Info("pollwire API listening")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(shutCtx)
}
