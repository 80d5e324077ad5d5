package database

import (
	"net"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/rickgao/arb-ingest/internal/config"
)

// BuildAddr builds the host:port address for the store.
func BuildAddr(cfg config.StoreConfig) string {
	host := cfg.Host
	if host == "" {
		host = config.DefaultStoreHost
	}
	port := cfg.Port
	if port == 0 {
		port = config.DefaultStorePort
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// BuildOptions converts the store config into client options.
func BuildOptions(cfg config.StoreConfig) *redis.Options {
	return &redis.Options{
		Addr:         BuildAddr(cfg),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
}
