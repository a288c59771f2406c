// Copyright 2026 The Blobwire Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	interval, err := cfg.ResendInterval()
	if err != nil {
		t.Fatal(err)
	}
	if interval != 250*time.Millisecond {
		t.Errorf("default resend interval = %s, want 250ms", interval)
	}
	key, err := cfg.Key()
	if err != nil || key != nil {
		t.Errorf("default key = %x, %v; want nil, nil", key, err)
	}
}

func TestLoadFileMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blobwire.yaml")
	content := `
transport:
  kind: tcp
  dial: 10.0.0.7:9000
transfer:
  chunk_size: 4096
  resend_interval: 100ms
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}

	if cfg.Transport.Kind != "tcp" {
		t.Errorf("kind = %q, want tcp", cfg.Transport.Kind)
	}
	if cfg.Transport.Dial != "10.0.0.7:9000" {
		t.Errorf("dial = %q", cfg.Transport.Dial)
	}
	// Unset fields keep their defaults.
	if cfg.Transport.Listen != ":7401" {
		t.Errorf("listen = %q, want default :7401", cfg.Transport.Listen)
	}
	if cfg.Transfer.Window != 16 {
		t.Errorf("window = %d, want default 16", cfg.Transfer.Window)
	}
	if cfg.Transfer.ChunkSize != 4096 {
		t.Errorf("chunk size = %d, want 4096", cfg.Transfer.ChunkSize)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := Default()
	cfg.Transport.Kind = "carrier-pigeon"
	cfg.Transfer.ChunkSize = -1
	cfg.Transfer.ResendInterval = "soon"
	cfg.Log.Level = "loud"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate accepted a broken config")
	}
	for _, want := range []string{"transport.kind", "transfer.chunk_size", "transfer.resend_interval", "log.level"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error does not mention %s: %v", want, err)
		}
	}
}

func TestKeyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transfer.key")
	if err := os.WriteFile(path, []byte(strings.Repeat("ab", 32)+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := Default()
	cfg.Seal.KeyFile = path
	key, err := cfg.Key()
	if err != nil {
		t.Fatal(err)
	}
	if len(key) != 32 || key[0] != 0xab {
		t.Errorf("key = %x", key)
	}
}

func TestKeyFileRejectsWrongLength(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transfer.key")
	if err := os.WriteFile(path, []byte("abcd"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := Default()
	cfg.Seal.KeyFile = path
	if _, err := cfg.Key(); err == nil {
		t.Error("Key accepted a 2-byte key")
	}
}
