package data

import (
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func MustRedis(url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		logrus.Fatalf("redis: %v", err)
	}
	return redis.NewClient(opt)
}
