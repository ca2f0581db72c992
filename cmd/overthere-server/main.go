// Command overthere-server runs a node: it parses flags, loads a
// signing/encryption key, wires up a server.Node, and serves until
// interrupted. Everything here -- flag parsing, key loading, logging
// setup -- sits outside the wire protocol engine proper.
package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/chipsenkbeil/over-there-sub000/cmn/config"
	"github.com/chipsenkbeil/over-there-sub000/cmn/nlog"
	"github.com/chipsenkbeil/over-there-sub000/crypto"
	"github.com/chipsenkbeil/over-there-sub000/server"
)

var (
	configPath string
	keyHex     string
	udpAddr    string
	tcpAddr    string
	adminAddr  string
	noTCP      bool
	noUDP      bool
)

func init() {
	flag.StringVar(&configPath, "config", "", "path to a YAML config file (overrides defaults)")
	flag.StringVar(&keyHex, "key", "", "hex-encoded pre-shared key (required; signing key, and AEAD key when encryption is enabled)")
	flag.StringVar(&udpAddr, "udp", "", "override the UDP listen address")
	flag.StringVar(&tcpAddr, "tcp", "", "override the TCP listen address")
	flag.StringVar(&adminAddr, "admin", "", "override the admin HTTP listen address")
	flag.BoolVar(&noUDP, "no-udp", false, "do not bind the UDP transport")
	flag.BoolVar(&noTCP, "no-tcp", false, "do not bind the TCP transport")
}

func main() {
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		nlog.Errorf("overthere-server: %v", err)
		os.Exit(1)
	}
	if udpAddr != "" {
		cfg.UDPListenAddr = udpAddr
	}
	if tcpAddr != "" {
		cfg.TCPListenAddr = tcpAddr
	}
	if adminAddr != "" {
		cfg.AdminAddr = adminAddr
	}

	if keyHex == "" {
		nlog.Errorf("overthere-server: -key is required")
		os.Exit(1)
	}
	key, err := hex.DecodeString(keyHex)
	if err != nil {
		nlog.Errorf("overthere-server: -key: %v", err)
		os.Exit(1)
	}

	signer := crypto.NewHMACSigner(key)
	bicrypter, err := buildBicrypter(cfg, key)
	if err != nil {
		nlog.Errorf("overthere-server: %v", err)
		os.Exit(1)
	}

	node := server.New(cfg, signer, signer, bicrypter)
	if !noUDP {
		if err := node.ListenUDP(); err != nil {
			nlog.Errorf("overthere-server: %v", err)
			os.Exit(1)
		}
		nlog.Infof("overthere-server: udp listening on %v", node.UDPAddr())
	}
	if !noTCP {
		if err := node.ListenTCP(); err != nil {
			nlog.Errorf("overthere-server: %v", err)
			os.Exit(1)
		}
		nlog.Infof("overthere-server: tcp listening on %v", node.TCPAddr())
	}

	admin := server.NewAdminServer(node)
	go func() {
		if err := admin.ListenAndServe(); err != nil {
			nlog.Warningf("overthere-server: admin http stopped: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := node.Run(ctx); err != nil && err != context.Canceled {
		nlog.Warningf("overthere-server: stopped: %v", err)
	}
	_ = admin.Close()
}

func buildBicrypter(cfg *config.Config, key []byte) (crypto.Bicrypter, error) {
	switch cfg.EncryptionMode {
	case "none":
		return crypto.NoneBicrypter{}, nil
	case "nonce128":
		return crypto.NewChaChaBicrypter(key, crypto.EncryptionNonce128)
	case "nonce96", "":
		return crypto.NewChaChaBicrypter(key, crypto.EncryptionNonce96)
	default:
		return nil, fmt.Errorf("unknown encryption_mode %q", cfg.EncryptionMode)
	}
}
