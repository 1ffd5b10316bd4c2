// Package params extracts per-test parameters from scene and script files.
//
// Parameters live either in a sidecar file named <sourceFile>.params, where
// every non-blank line is a candidate "NAME = VALUE" or "NAME: VALUE" line,
// or in a contiguous comment header at the top of the source file itself,
// where a line must carry the "[test param]" marker inside a comment to be
// recognized. Scanning the source file stops at the first line that is
// neither blank nor a comment, so parameters cannot hide below real content.
package params

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Rules describe how parameter lines are recognized in a file.
type Rules struct {
	// CommentPrefix is the comment marker that must lead every valid
	// non-blank line. Empty means lines need no comment prefix and
	// scanning never terminates early.
	CommentPrefix string

	// RequireMarker requires the "[test param]" marker before the
	// assignment. Sidecar .params files do not use the marker.
	RequireMarker bool
}

// RulesFor returns the in-file scanning rules for a source file, keyed by
// its extension: Lua scenes use "--" comments, pbrt scenes and shell
// scripts use "#", anything else has no comment convention.
func RulesFor(sourceFile string) Rules {
	r := Rules{RequireMarker: true}
	switch filepath.Ext(sourceFile) {
	case ".lua":
		r.CommentPrefix = "--"
	case ".pbrt", ".sh":
		r.CommentPrefix = "#"
	}
	return r
}

// SidecarRules are the rules for dedicated .params files.
var SidecarRules = Rules{}

// Params maps a parameter name to its values in file order.
// Duplicates are preserved.
type Params map[string][]string

var (
	markerPattern = regexp.MustCompile(`^\[\s*test\s+param\s*\]\s*`)
	assignPattern = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_-]*)\s*[=:]\s*(.*?)\s*$`)
)

// Parse scans lines from r according to rules and returns the collected
// parameters.
func Parse(r io.Reader, rules Rules) (Params, error) {
	p := make(Params)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if rules.CommentPrefix != "" {
			if !strings.HasPrefix(line, rules.CommentPrefix) {
				// First real content line ends the parameter header.
				break
			}
			line = strings.TrimSpace(strings.TrimPrefix(line, rules.CommentPrefix))
		}
		if rules.RequireMarker {
			loc := markerPattern.FindStringIndex(line)
			if loc == nil {
				continue
			}
			line = line[loc[1]:]
		}
		m := assignPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		p[m[1]] = append(p[m[1]], m[2])
	}
	return p, scanner.Err()
}

// Load reads the parameters for sourceFile. If a sidecar file named
// <sourceFile>.params exists it takes precedence; otherwise the source
// file's own comment header is scanned. A missing source file is an error,
// never an empty result.
func Load(sourceFile string) (Params, error) {
	sidecar := sourceFile + ".params"
	if f, err := os.Open(sidecar); err == nil {
		defer f.Close()
		return Parse(f, SidecarRules)
	}

	f, err := os.Open(sourceFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f, RulesFor(sourceFile))
}

// Get returns the first value of name in p, or def if absent.
func (p Params) Get(name, def string) string {
	if vs, ok := p[name]; ok && len(vs) > 0 {
		return vs[0]
	}
	return def
}

// GetAll returns every value of name in file order, or def if absent.
func (p Params) GetAll(name string, def []string) []string {
	if vs, ok := p[name]; ok && len(vs) > 0 {
		return vs
	}
	return def
}

// Bool interprets the parameter as a yes/no flag: only the literal value
// "yes" is true.
func (p Params) Bool(name string) bool {
	return p.Get(name, "") == "yes"
}

// Get is the one-shot lookup contract: load sourceFile's parameters and
// return the first value of name, or def if absent.
func Get(name, sourceFile, def string) (string, error) {
	p, err := Load(sourceFile)
	if err != nil {
		return "", err
	}
	return p.Get(name, def), nil
}

// GetAll is the one-shot multi-value lookup contract.
func GetAll(name, sourceFile string, def []string) ([]string, error) {
	p, err := Load(sourceFile)
	if err != nil {
		return nil, err
	}
	return p.GetAll(name, def), nil
}
