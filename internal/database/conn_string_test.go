package database

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/rickgao/arb-ingest/internal/config"
)

func TestBuildAddr(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.StoreConfig
		want string
	}{
		{
			name: "basic",
			cfg:  config.StoreConfig{Host: "redis-cache", Port: 6379},
			want: "redis-cache:6379",
		},
		{
			name: "custom port",
			cfg:  config.StoreConfig{Host: "10.1.2.3", Port: 6380},
			want: "10.1.2.3:6380",
		},
		{
			name: "ipv6 host",
			cfg:  config.StoreConfig{Host: "::1", Port: 6379},
			want: "[::1]:6379",
		},
		{
			name: "defaults",
			cfg:  config.StoreConfig{},
			want: "localhost:6379",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildAddr(tt.cfg)
			if got != tt.want {
				t.Errorf("BuildAddr() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildOptions(t *testing.T) {
	cfg := config.StoreConfig{
		Host:         "localhost",
		Port:         6379,
		Password:     "secret",
		DB:           2,
		DialTimeout:  3 * time.Second,
		WriteTimeout: time.Second,
	}

	opts := BuildOptions(cfg)
	if opts.Addr != "localhost:6379" {
		t.Errorf("Addr = %q", opts.Addr)
	}
	if opts.Password != "secret" || opts.DB != 2 {
		t.Errorf("Password/DB = %q/%d", opts.Password, opts.DB)
	}
	if opts.DialTimeout != 3*time.Second || opts.WriteTimeout != time.Second {
		t.Errorf("timeouts = %v/%v", opts.DialTimeout, opts.WriteTimeout)
	}
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := config.StoreConfig{Host: mr.Host(), Port: atoi(t, mr.Port())}
	client, err := Connect(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer client.Close()

	if err := Ping(context.Background(), client); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

func TestConnect_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := config.StoreConfig{Host: mr.Host(), Port: atoi(t, mr.Port()), DialTimeout: 200 * time.Millisecond}
	mr.Close()

	_, err := Connect(context.Background(), cfg)
	if err == nil {
		t.Fatal("expected error for unreachable store")
	}
}

func atoi(t *testing.T, s string) int {
	t.Helper()
	n, err := strconv.Atoi(s)
	if err != nil {
		t.Fatalf("bad port %q: %v", s, err)
	}
	return n
}
