package runner

import (
	"path/filepath"
	"strings"

	"github.com/snogglethorpe/snogray-test/internal/adapter"
	"github.com/snogglethorpe/snogray-test/internal/session"
)

// OutputPath synthesizes the output image path for a test file. The name
// combines the kind tag, the encoded test directory and the test basename
// so that tests sharing a basename in different directories never collide.
func OutputPath(s *session.Session, kind adapter.Kind, testFile string) string {
	return taggedOutputPath(s, kind.Tag(), testFile)
}

// companionOutputPath is the output path for the ground-truth companion
// render of a test. A distinct tag keeps it apart from the primary output
// even when the companion scene is the test file itself.
func companionOutputPath(s *session.Session, sceneFile string) string {
	return taggedOutputPath(s, "pbrtref", sceneFile)
}

func taggedOutputPath(s *session.Session, tag, testFile string) string {
	dir := filepath.Dir(testFile)
	base := strings.TrimSuffix(filepath.Base(testFile), filepath.Ext(testFile))
	name := tag + "-" + encodeComponent(dir) + "-" + encodeComponent(base) + "." + s.Config.OutputExt
	return filepath.Join(s.OutDir, name)
}

// encodeComponent flattens a path fragment into a single filename
// component. Percent signs, separators and hyphens are escaped so the
// tag/directory/basename fields cannot bleed into each other.
func encodeComponent(p string) string {
	var b strings.Builder
	for _, r := range p {
		switch r {
		case '%':
			b.WriteString("%25")
		case '/', '\\':
			b.WriteString("%2F")
		case '-':
			b.WriteString("%2D")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
