// Package adapter provides the execution strategies that turn a test file
// into an output image: the primary renderer, the pbrt reference renderer,
// and arbitrary test scripts.
//
// All three adapters memoize by filesystem presence: an output file that
// already exists and is readable counts as success without re-running.
// This is content-oblivious; stale outputs must be deleted to force a
// re-render.
package adapter

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/snogglethorpe/snogray-test/internal/session"
)

// Kind classifies a test file by its extension. The classification is
// decided once per file and carries the matching execution adapter.
type Kind int

const (
	Unsupported Kind = iota
	RendererScene
	ReferenceScene
	Script
)

// KindOf returns the kind for a test file path.
func KindOf(path string) Kind {
	switch filepath.Ext(path) {
	case ".lua":
		return RendererScene
	case ".pbrt":
		return ReferenceScene
	case ".sh":
		return Script
	default:
		return Unsupported
	}
}

// Tag returns a short name used in synthesized output filenames.
func (k Kind) Tag() string {
	switch k {
	case RendererScene:
		return "lua"
	case ReferenceScene:
		return "pbrt"
	case Script:
		return "script"
	default:
		return "unknown"
	}
}

// Adapter returns the execution adapter for this kind, or nil for
// unsupported files. Renderer and reference scenes both render through
// the primary renderer; only the companion comparison differs.
func (k Kind) Adapter(s *session.Session) Adapter {
	switch k {
	case RendererScene, ReferenceScene:
		return Renderer{S: s}
	case Script:
		return ScriptRunner{S: s}
	default:
		return nil
	}
}

// Options configure a single adapter invocation.
type Options struct {
	// Clamp routes the render through an unclamped sibling path and a
	// clamping conversion step before the real output path.
	Clamp bool
}

// Adapter produces an output image from a test file. The returned log is
// the captured process output, attached to failure reports.
type Adapter interface {
	Run(ctx context.Context, testFile, outputPath string, opts Options) (bool, string)
}

// UnclampedPath returns the sibling path a clamped render first writes
// to: the suffix is inserted before the final extension.
func UnclampedPath(outputPath string) string {
	ext := filepath.Ext(outputPath)
	return strings.TrimSuffix(outputPath, ext) + "-unclamped" + ext
}
