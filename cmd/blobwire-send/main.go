// Copyright 2026 The Blobwire Authors
// SPDX-License-Identifier: Apache-2.0

// blobwire-send delivers one file to a waiting blobwire-recv.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	flag "github.com/spf13/pflag"

	"github.com/blobwire/blobwire/lib/config"
	"github.com/blobwire/blobwire/lib/version"
	"github.com/blobwire/blobwire/lib/xfer"
	"github.com/blobwire/blobwire/transport"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		showVersion bool
		configPath  string
		to          string
		kind        string
		name        string
		contentType string
		compression string
	)
	flag.BoolVar(&showVersion, "version", false, "print version information and exit")
	flag.StringVar(&configPath, "config", "", "config file path (default: $BLOBWIRE_CONFIG)")
	flag.StringVar(&to, "to", "", "receiver address (overrides transport.dial)")
	flag.StringVar(&kind, "transport", "", "transport kind: udp or tcp (overrides transport.kind)")
	flag.StringVar(&name, "name", "", "blob name in the manifest (default: file base name)")
	flag.StringVar(&contentType, "content-type", "", "blob content type, steers compression")
	flag.StringVar(&compression, "compression", "", "force compression: none, lz4 or zstd")
	flag.Parse()

	if showVersion {
		fmt.Printf("blobwire-send %s\n", version.Full())
		return nil
	}
	if flag.NArg() != 1 {
		return fmt.Errorf("usage: blobwire-send [flags] <file>")
	}
	path := flag.Arg(0)

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if to != "" {
		cfg.Transport.Dial = to
	}
	if kind != "" {
		cfg.Transport.Kind = kind
	}
	if compression != "" {
		cfg.Transfer.Compression = compression
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	payload, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if name == "" {
		name = filepath.Base(path)
	}

	key, err := cfg.Key()
	if err != nil {
		return err
	}
	resendInterval, err := cfg.ResendInterval()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conn, err := dial(ctx, cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	_, err = xfer.Send(ctx, conn, payload, xfer.SendOptions{
		Name:           name,
		ContentType:    contentType,
		Compression:    cfg.Transfer.Compression,
		PresharedKey:   key,
		ChunkSize:      cfg.Transfer.ChunkSize,
		Window:         cfg.Transfer.Window,
		ResendInterval: resendInterval,
		Logger:         logger,
	})
	return err
}

func dial(ctx context.Context, cfg *config.Config) (transport.Datagram, error) {
	switch cfg.Transport.Kind {
	case "tcp":
		return transport.DialTCP(ctx, cfg.Transport.Dial)
	default:
		return transport.DialUDP(cfg.Transport.Dial)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

func newLogger(cfg *config.Config) (*slog.Logger, error) {
	level, err := cfg.LogLevel()
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})), nil
}
