// Copyright 2026 The Blobwire Authors
// SPDX-License-Identifier: Apache-2.0

// blobwire-recv waits for one transfer from blobwire-send and writes
// the verified payload to a file or stdout.
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
		listen      string
		kind        string
		output      string
	)
	flag.BoolVar(&showVersion, "version", false, "print version information and exit")
	flag.StringVar(&configPath, "config", "", "config file path (default: $BLOBWIRE_CONFIG)")
	flag.StringVar(&listen, "listen", "", "bind address (overrides transport.listen)")
	flag.StringVar(&kind, "transport", "", "transport kind: udp or tcp (overrides transport.kind)")
	flag.StringVar(&output, "output", "", "output file; empty uses the manifest name, \"-\" writes to stdout")
	flag.Parse()

	if showVersion {
		fmt.Printf("blobwire-recv %s\n", version.Full())
		return nil
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if listen != "" {
		cfg.Transport.Listen = listen
	}
	if kind != "" {
		cfg.Transport.Kind = kind
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	key, err := cfg.Key()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conn, err := listenConn(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer conn.Close()

	result, err := xfer.Receive(ctx, conn, xfer.ReceiveOptions{
		PresharedKey: key,
		Logger:       logger,
	})
	if err != nil {
		return err
	}

	return writeOutput(output, result)
}

func listenConn(ctx context.Context, cfg *config.Config, logger *slog.Logger) (transport.Datagram, error) {
	logger.Info("waiting for transfer",
		"transport", cfg.Transport.Kind,
		"listen", cfg.Transport.Listen,
	)
	switch cfg.Transport.Kind {
	case "tcp":
		return transport.ListenTCP(ctx, cfg.Transport.Listen)
	default:
		return transport.ListenUDP(cfg.Transport.Listen)
	}
}

// writeOutput writes the payload to the requested destination: "-"
// means stdout, empty means the manifest's blob name in the current
// directory.
func writeOutput(output string, result *xfer.Result) error {
	if output == "-" {
		_, err := os.Stdout.Write(result.Payload)
		return err
	}
	if output == "" {
		name, err := outputName(result.Manifest.Name)
		if err != nil {
			return err
		}
		output = name
	}
	if err := os.WriteFile(output, result.Payload, 0o644); err != nil {
		return err
	}
	return nil
}

// outputName reduces a sender-supplied blob name to a bare file name
// in the current directory. The name crosses a trust boundary: the
// sender chooses it, so anything that could escape the working
// directory is rejected rather than silently rewritten to a path the
// operator never asked for.
func outputName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("transfer carries no name; use --output")
	}
	base := filepath.Base(filepath.Clean(name))
	if base != name {
		return "", fmt.Errorf("transfer name %q is not a plain file name; use --output", name)
	}
	if base == "." || base == ".." || base == string(filepath.Separator) {
		return "", fmt.Errorf("transfer name %q is not a plain file name; use --output", name)
	}
	return base, nil
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
