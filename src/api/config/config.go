package config

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

type Config struct {
	MySQLDSN    string
	SQLitePath  string
	RedisURL    string
	Port        string
	SiteURL     string
	CORSOrigins []string
	EnableSSL   bool
	SSLCert     string
	SSLKey      string
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		if def == "" {
			logrus.Fatalf("missing env %s", key)
		}
		return def
	}
	return v
}

func Load() Config {
	return Config{
		MySQLDSN:    os.Getenv("MYSQL_DSN"),
		SQLitePath:  os.Getenv("SQLITE_PATH"),
		RedisURL:    os.Getenv("REDIS_URL"),
		Port:        getenv("PORT", "8080"),
		SiteURL:     getenv("SITE_URL", "http://localhost:8080"),
		CORSOrigins: strings.Split(getenv("CORS_ORIGINS", "http://localhost:3000"), ","),
		EnableSSL:   os.Getenv("ENABLE_SSL") == "true",
		SSLCert:     os.Getenv("SSL_CERT"),
		SSLKey:      os.Getenv("SSL_KEY"),
	}
}
