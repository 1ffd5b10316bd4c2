// Package refimage manages reference images: the reduced-resolution
// image derived from a test's output, and the stored reference it is
// compared against or copied over.
package refimage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/snogglethorpe/snogray-test/internal/fsutil"
	"github.com/snogglethorpe/snogray-test/internal/imaging"
	"github.com/snogglethorpe/snogray-test/internal/session"
)

// Manager derives and caches reference images for one run.
type Manager struct {
	s    *session.Session
	made map[string]string // output path -> derived reference path
}

// NewManager creates a Manager bound to the run session.
func NewManager(s *session.Session) *Manager {
	return &Manager{s: s, made: make(map[string]string)}
}

// MakeReferenceImage returns the derived reference image for an output
// image, downsampling it on first use. The derived path is deterministic
// (<outputPath>-ref.<refExt>) and the computation happens at most once
// per run.
func (m *Manager) MakeReferenceImage(outputPath string) (string, error) {
	if ref, ok := m.made[outputPath]; ok {
		return ref, nil
	}

	ref := fmt.Sprintf("%s-ref.%s", outputPath, m.s.Config.RefExt)
	if !fsutil.Readable(ref) {
		opts := imaging.ConvertOptions{DownsampleWidth: m.s.Config.DownsampleWidth}
		if err := m.s.Converter().Convert(outputPath, ref, opts); err != nil {
			return "", fmt.Errorf("deriving reference for %s: %w", outputPath, err)
		}
	}
	m.made[outputPath] = ref
	return ref, nil
}

// ReferenceDiffers derives the reference image for outputPath and
// compares it against the stored reference.
func (m *Manager) ReferenceDiffers(outputPath, storedRef string, threshold float64) (bool, error) {
	ref, err := m.MakeReferenceImage(outputPath)
	if err != nil {
		return false, err
	}
	return m.s.Comparator().Differ(ref, storedRef, threshold)
}

// UpdateReference copies the derived reference over the stored path,
// creating parent directories as needed. Failure to create them is fatal
// for the test, not silently skipped.
func (m *Manager) UpdateReference(outputPath, storedRef string) error {
	ref, err := m.MakeReferenceImage(outputPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(storedRef), 0755); err != nil {
		return fmt.Errorf("creating reference directory: %w", err)
	}
	return fsutil.CopyFile(ref, storedRef)
}
