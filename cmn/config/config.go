// Package config is a small YAML-backed configuration loader, a trimmed
// analogue of Ap3pp3rs94-Chartly2.0's pkg/config.Loader: same "base layer,
// then environment-variable overrides" idea, collapsed to one file because
// this service has no multi-tenant/multi-env deployment model to layer
// against.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config holds every operational tunable: listen addresses, MTU class,
// stream framing, timeouts, TTL budgets, queue bounds, and crypto mode.
type Config struct {
	UDPListenAddr string `yaml:"udp_listen_addr"`
	TCPListenAddr string `yaml:"tcp_listen_addr"`
	AdminAddr     string `yaml:"admin_addr"`

	// MTU selection for the datagram transport; one of "ipv4", "ipv6", "loopback".
	UDPMTUClass string `yaml:"udp_mtu_class"`

	StreamSentinel   string `yaml:"stream_sentinel"`    // default "</>"
	StreamBufferSize int    `yaml:"stream_buffer_size"` // default 64 KiB

	GroupTTL        time.Duration `yaml:"group_ttl"`         // Decoder packet-group TTL
	AskTimeout      time.Duration `yaml:"ask_timeout"`       // default 5s
	CleanupInterval time.Duration `yaml:"cleanup_interval"`  // default 60s
	FileAliveTTL    time.Duration `yaml:"file_alive_ttl"`
	ProcAliveTTL    time.Duration `yaml:"proc_alive_ttl"`
	ProcDeadTTL     time.Duration `yaml:"proc_dead_ttl"`

	OutboundQueueSize int `yaml:"outbound_queue_size"` // default 1000
	MaxCompositeDepth int `yaml:"max_composite_depth"` // default 5

	EncryptionMode string `yaml:"encryption_mode"` // "none" | "nonce96" | "nonce128"
}

// Default returns the stock configuration: 5s ask timeout, 60s cleanup
// sweep, 1000-entry bounded channels, composite depth 5.
func Default() *Config {
	return &Config{
		UDPListenAddr:     ":0",
		TCPListenAddr:     ":0",
		AdminAddr:         ":9095",
		UDPMTUClass:       "ipv4",
		StreamSentinel:    "</>",
		StreamBufferSize:  64 * 1024,
		GroupTTL:          30 * time.Second,
		AskTimeout:        5 * time.Second,
		CleanupInterval:   60 * time.Second,
		FileAliveTTL:      10 * time.Minute,
		ProcAliveTTL:      30 * time.Minute,
		ProcDeadTTL:       30 * time.Second,
		OutboundQueueSize: 1000,
		MaxCompositeDepth: 5,
		EncryptionMode:    "nonce96",
	}
}

// Load reads a YAML file over the defaults, then applies OVERTHERE_-prefixed
// environment variable overrides for the handful of fields worth tuning
// without editing the file (listen addresses, ask timeout, max composite
// depth).
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, errors.Wrapf(err, "parse config %s", path)
		}
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("OVERTHERE_UDP_LISTEN_ADDR"); v != "" {
		cfg.UDPListenAddr = v
	}
	if v := os.Getenv("OVERTHERE_TCP_LISTEN_ADDR"); v != "" {
		cfg.TCPListenAddr = v
	}
	if v := os.Getenv("OVERTHERE_ADMIN_ADDR"); v != "" {
		cfg.AdminAddr = v
	}
	if v := os.Getenv("OVERTHERE_ASK_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.AskTimeout = d
		}
	}
	if v := os.Getenv("OVERTHERE_MAX_COMPOSITE_DEPTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxCompositeDepth = n
		}
	}
}
