package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultMatchesSpecTunables(t *testing.T) {
	cfg := Default()
	if cfg.AskTimeout != 5*time.Second {
		t.Fatalf("ask_timeout default = %v, want 5s", cfg.AskTimeout)
	}
	if cfg.CleanupInterval != 60*time.Second {
		t.Fatalf("cleanup_interval default = %v, want 60s", cfg.CleanupInterval)
	}
	if cfg.OutboundQueueSize != 1000 {
		t.Fatalf("outbound_queue_size default = %d, want 1000", cfg.OutboundQueueSize)
	}
	if cfg.MaxCompositeDepth != 5 {
		t.Fatalf("max_composite_depth default = %d, want 5", cfg.MaxCompositeDepth)
	}
	if cfg.StreamSentinel != "</>" {
		t.Fatalf("stream_sentinel default = %q, want %q", cfg.StreamSentinel, "</>")
	}
}

func TestLoadOverlaysFileOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")
	body := "udp_listen_addr: \"10.0.0.1:7000\"\nask_timeout: 250ms\nmax_composite_depth: 3\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.UDPListenAddr != "10.0.0.1:7000" {
		t.Fatalf("udp_listen_addr = %q", cfg.UDPListenAddr)
	}
	if cfg.AskTimeout != 250*time.Millisecond {
		t.Fatalf("ask_timeout = %v", cfg.AskTimeout)
	}
	if cfg.MaxCompositeDepth != 3 {
		t.Fatalf("max_composite_depth = %d", cfg.MaxCompositeDepth)
	}
	// Untouched fields keep their defaults.
	if cfg.CleanupInterval != 60*time.Second {
		t.Fatalf("cleanup_interval = %v, want untouched default", cfg.CleanupInterval)
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}

func TestEnvOverridesWinOverFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")
	if err := os.WriteFile(path, []byte("ask_timeout: 1s\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("OVERTHERE_ASK_TIMEOUT", "75ms")
	t.Setenv("OVERTHERE_UDP_LISTEN_ADDR", "127.0.0.1:7777")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AskTimeout != 75*time.Millisecond {
		t.Fatalf("ask_timeout = %v, env should win", cfg.AskTimeout)
	}
	if cfg.UDPListenAddr != "127.0.0.1:7777" {
		t.Fatalf("udp_listen_addr = %q, env should win", cfg.UDPListenAddr)
	}
}
