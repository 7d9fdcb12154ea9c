// Package artifactstest provides a small fitted pipeline for tests.
//
// The classifier predicts from scaled SPPB alone, except for Ski:
//
//	SPPB <= 6  -> "111" (needs verbal and physical support)
//	SPPB > 6   -> "001" (able to play without support)
//	Game "Ski" -> "110" (not able to play the game)
package artifactstest

import (
	"context"
	"embed"
	"io/fs"

	"github.com/okian/gameaccess/internal/adapters/artifacts"
)

//go:embed model/*.json
var modelFS embed.FS

// Labels in decoder order.
var Labels = []string{"001", "011", "101", "110", "111"}

// FS returns the fixture artifacts at the root of the file system.
func FS() fs.FS {
	sub, err := fs.Sub(modelFS, "model")
	if err != nil {
		panic(err)
	}
	return sub
}

// File returns the raw bytes of one fixture artifact.
func File(name string) []byte {
	b, err := fs.ReadFile(FS(), name)
	if err != nil {
		panic(err)
	}
	return b
}

// NewStore returns a store over the fixture artifacts.
func NewStore(opts ...artifacts.Option) *artifacts.Store {
	return artifacts.NewStore("artifactstest", append([]artifacts.Option{artifacts.WithFS(FS())}, opts...)...)
}

// MustLoad loads the fixture pipeline or panics. The global logger must be
// initialised.
func MustLoad() *artifacts.Set {
	set, err := NewStore().Load(context.Background())
	if err != nil {
		panic(err)
	}
	return set
}
