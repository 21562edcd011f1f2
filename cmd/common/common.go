// Package common provides shared utilities for mamgo CLI commands.
//
// This package contains helper functions used across the binaries to reduce
// code duplication:
//
//   - Seed loading and generation
//   - Logger construction
//   - YAML configuration loading
package common

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/iotaledger/iota.go/consts"
	"github.com/iotaledger/iota.go/trinary"
	"gopkg.in/yaml.v3"

	"github.com/tanglekit/mamgo/mam"
)

// LoadOrGenerateSeed validates a channel seed, or generates a new one if
// seed is empty.
func LoadOrGenerateSeed(seed string) (trinary.Trytes, error) {
	if seed == "" {
		return mam.GenerateSeed()
	}
	if len(seed) != consts.HashTrytesSize {
		return "", fmt.Errorf("seed is %d trytes, want %d", len(seed), consts.HashTrytesSize)
	}
	if err := trinary.ValidTrytes(trinary.Trytes(seed)); err != nil {
		return "", fmt.Errorf("seed is not a tryte string: %w", err)
	}
	return trinary.Trytes(seed), nil
}

// NewLogger builds the standard structured logger for mamgo binaries.
func NewLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// LoadYAML reads a YAML configuration file into cfg. A missing path leaves
// cfg untouched.
func LoadYAML(path string, cfg any) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}
