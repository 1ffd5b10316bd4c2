package adapter

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/snogglethorpe/snogray-test/internal/config"
	"github.com/snogglethorpe/snogray-test/internal/output"
	"github.com/snogglethorpe/snogray-test/internal/session"
)

func writeExecutable(t *testing.T, path, body string) string {
	t.Helper()
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// fakeRenderer writes its arguments to argsFile and its last argument as
// the output file.
func fakeRenderer(t *testing.T, dir, argsFile string) string {
	return writeExecutable(t, filepath.Join(dir, "snogray"), `
echo "$@" > `+argsFile+`
for a in "$@"; do last=$a; done
echo fake-image > "$last"`)
}

func newSession(t *testing.T, mutate func(*config.Config)) *session.Session {
	t.Helper()
	cfg := config.Default()
	cfg.Snogray = "true"
	if mutate != nil {
		mutate(cfg)
	}
	s, err := session.New(cfg, output.NewWithWriters(os.Stdout, os.Stderr, false))
	if err != nil {
		t.Fatalf("session.New: %v", err)
	}
	t.Cleanup(s.Release)
	return s
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		path string
		kind Kind
		tag  string
	}{
		{"scenes/cube.lua", RendererScene, "lua"},
		{"scenes/cube.pbrt", ReferenceScene, "pbrt"},
		{"scenes/run.sh", Script, "script"},
		{"scenes/readme.txt", Unsupported, "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			k := KindOf(tt.path)
			if k != tt.kind {
				t.Errorf("KindOf = %v, want %v", k, tt.kind)
			}
			if k.Tag() != tt.tag {
				t.Errorf("Tag = %q, want %q", k.Tag(), tt.tag)
			}
		})
	}
}

func TestKind_Adapter(t *testing.T) {
	s := newSession(t, nil)

	if _, ok := RendererScene.Adapter(s).(Renderer); !ok {
		t.Error("RendererScene should use the Renderer adapter")
	}
	if _, ok := ReferenceScene.Adapter(s).(Renderer); !ok {
		t.Error("ReferenceScene should render through the primary renderer")
	}
	if _, ok := Script.Adapter(s).(ScriptRunner); !ok {
		t.Error("Script should use the ScriptRunner adapter")
	}
	if Unsupported.Adapter(s) != nil {
		t.Error("Unsupported should have no adapter")
	}
}

func TestUnclampedPath(t *testing.T) {
	got := UnclampedPath("/out/lua-scenes-cube.exr")
	if got != "/out/lua-scenes-cube-unclamped.exr" {
		t.Errorf("UnclampedPath = %q", got)
	}
}

func TestRenderer_Run(t *testing.T) {
	dir := t.TempDir()
	argsFile := filepath.Join(dir, "args.txt")
	stub := fakeRenderer(t, dir, argsFile)
	s := newSession(t, func(c *config.Config) { c.Snogray = stub })

	scene := filepath.Join(dir, "cube.lua")
	writeFile(t, scene, "-- scene\n")
	out := filepath.Join(s.OutDir, "cube.exr")

	ok, _ := Renderer{S: s}.Run(context.Background(), scene, out, Options{})
	if !ok {
		t.Fatal("Run failed")
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("output not created: %v", err)
	}

	args, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(string(args)); got != scene+" "+out {
		t.Errorf("renderer args = %q, want %q", got, scene+" "+out)
	}
}

func TestRenderer_MemoizesByPresence(t *testing.T) {
	dir := t.TempDir()
	failing := writeExecutable(t, filepath.Join(dir, "snogray"), "exit 1")
	s := newSession(t, func(c *config.Config) { c.Snogray = failing })

	out := filepath.Join(s.OutDir, "cube.exr")
	writeFile(t, out, "already rendered")

	ok, log := Renderer{S: s}.Run(context.Background(), filepath.Join(dir, "cube.lua"), out, Options{})
	if !ok {
		t.Errorf("existing output must count as success, got failure with log %q", log)
	}
}

func TestRenderer_Failure(t *testing.T) {
	dir := t.TempDir()
	failing := writeExecutable(t, filepath.Join(dir, "snogray"), "echo 'render error' >&2; exit 1")
	s := newSession(t, func(c *config.Config) { c.Snogray = failing })

	scene := filepath.Join(dir, "cube.lua")
	writeFile(t, scene, "-- scene\n")

	ok, log := Renderer{S: s}.Run(context.Background(), scene, filepath.Join(s.OutDir, "cube.exr"), Options{})
	if ok {
		t.Fatal("want failure")
	}
	if !strings.Contains(log, "render error") {
		t.Errorf("log = %q, want captured stderr", log)
	}
}

func TestRenderer_PreloadsAndPostloads(t *testing.T) {
	dir := t.TempDir()
	argsFile := filepath.Join(dir, "args.txt")
	stub := fakeRenderer(t, dir, argsFile)
	s := newSession(t, func(c *config.Config) { c.Snogray = stub })

	scene := filepath.Join(dir, "cube.lua")
	writeFile(t, scene, "-- scene\n")
	writeFile(t, filepath.Join(dir, PreloadsManifest), "common.lua\nlights.lua\n")
	writeFile(t, filepath.Join(dir, PostloadsManifest), "checks.lua\n")
	out := filepath.Join(s.OutDir, "cube.exr")

	ok, _ := Renderer{S: s}.Run(context.Background(), scene, out, Options{})
	if !ok {
		t.Fatal("Run failed")
	}

	args, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatal(err)
	}
	want := strings.Join([]string{
		"-l", filepath.Join(dir, "common.lua"),
		"-l", filepath.Join(dir, "lights.lua"),
		scene,
		"-p", filepath.Join(dir, "checks.lua"),
		out,
	}, " ")
	if got := strings.TrimSpace(string(args)); got != want {
		t.Errorf("renderer args = %q, want %q", got, want)
	}
}

func TestRenderer_Clamp(t *testing.T) {
	dir := t.TempDir()
	argsFile := filepath.Join(dir, "args.txt")
	stub := fakeRenderer(t, dir, argsFile)
	// A convert stub that ignores flags and copies src to dst.
	convert := writeExecutable(t, filepath.Join(dir, "convert"), `
while [ "$#" -gt 2 ]; do shift; done
cp "$1" "$2"`)
	s := newSession(t, func(c *config.Config) {
		c.Snogray = stub
		c.ImageConvert = convert
	})

	scene := filepath.Join(dir, "cube.lua")
	writeFile(t, scene, "-- scene\n")
	out := filepath.Join(s.OutDir, "cube.exr")

	ok, log := Renderer{S: s}.Run(context.Background(), scene, out, Options{Clamp: true})
	if !ok {
		t.Fatalf("Run failed: %s", log)
	}

	// The renderer must have been pointed at the unclamped sibling.
	args, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(args), UnclampedPath(out)) {
		t.Errorf("renderer args = %q, want unclamped path %q", args, UnclampedPath(out))
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("clamped output not created: %v", err)
	}
}

func TestPbrt_Run(t *testing.T) {
	dir := t.TempDir()
	// The fake pbrt writes its output into the current directory, as the
	// real one does.
	stub := writeExecutable(t, filepath.Join(dir, "pbrt"), "echo ground-truth > result.exr")
	s := newSession(t, func(c *config.Config) { c.Pbrt = stub })

	scene := filepath.Join(dir, "cube.pbrt")
	writeFile(t, scene, "# scene\n")
	out := filepath.Join(s.OutDir, "cube-pbrt.exr")

	ok, log := Pbrt{S: s}.Run(context.Background(), scene, out, Options{})
	if !ok {
		t.Fatalf("Run failed: %s", log)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("output not copied out: %v", err)
	}
	if strings.TrimSpace(string(data)) != "ground-truth" {
		t.Errorf("copied output = %q", data)
	}
}

func TestPbrt_NoOutputFile(t *testing.T) {
	dir := t.TempDir()
	stub := writeExecutable(t, filepath.Join(dir, "pbrt"), "echo done")
	s := newSession(t, func(c *config.Config) { c.Pbrt = stub })

	scene := filepath.Join(dir, "cube.pbrt")
	writeFile(t, scene, "# scene\n")

	ok, log := Pbrt{S: s}.Run(context.Background(), scene, filepath.Join(s.OutDir, "out.exr"), Options{})
	if ok {
		t.Fatal("want failure when no output file is produced")
	}
	if !strings.Contains(log, "no output file found") {
		t.Errorf("log = %q", log)
	}
}

func TestPbrt_ClearsRunDir(t *testing.T) {
	dir := t.TempDir()
	stub := writeExecutable(t, filepath.Join(dir, "pbrt"), "echo img > fresh.exr")
	s := newSession(t, func(c *config.Config) { c.Pbrt = stub })

	// A stale image from a previous invocation must not be picked up.
	writeFile(t, filepath.Join(s.RunDir, "stale.exr"), "stale")

	scene := filepath.Join(dir, "cube.pbrt")
	writeFile(t, scene, "# scene\n")
	out := filepath.Join(s.OutDir, "out.exr")

	ok, log := Pbrt{S: s}.Run(context.Background(), scene, out, Options{})
	if !ok {
		t.Fatalf("Run failed: %s", log)
	}
	data, _ := os.ReadFile(out)
	if strings.TrimSpace(string(data)) != "img" {
		t.Errorf("picked up stale output: %q", data)
	}
}

func TestScriptRunner_EnvironmentContract(t *testing.T) {
	dir := t.TempDir()
	s := newSession(t, func(c *config.Config) {
		c.Snogray = "true"
		c.SnograyDir = "/opt/snogray/bin"
	})

	envFile := filepath.Join(dir, "env.txt")
	script := writeExecutable(t, filepath.Join(dir, "probe.sh"), `
{
  echo "SNOGRAY=$SNOGRAY"
  echo "SNOGRAY_DIR=$SNOGRAY_DIR"
  echo "TEST_SCRIPT=$TEST_SCRIPT"
  echo "TEST_DIR=$TEST_DIR"
  echo "RUN_DIR=$RUN_DIR"
  echo "OUT_DIR=$OUT_DIR"
  echo "QUIET=$QUIET"
  echo "CWD=$(pwd)"
} > `+envFile)

	ok, log := ScriptRunner{S: s}.Run(context.Background(), script, filepath.Join(s.OutDir, "none.exr"), Options{})
	if !ok {
		t.Fatalf("Run failed: %s", log)
	}

	data, err := os.ReadFile(envFile)
	if err != nil {
		t.Fatal(err)
	}
	env := string(data)
	for _, want := range []string{
		"SNOGRAY=true",
		"SNOGRAY_DIR=/opt/snogray/bin",
		"TEST_SCRIPT=" + script,
		"TEST_DIR=" + dir,
		"RUN_DIR=" + s.RunDir,
		"OUT_DIR=" + s.OutDir,
		"QUIET=0",
	} {
		if !strings.Contains(env, want+"\n") {
			t.Errorf("environment missing %q:\n%s", want, env)
		}
	}
	if !strings.Contains(env, "CWD="+s.RunDir+"\n") {
		t.Errorf("script did not run in the scratch dir:\n%s", env)
	}
}

func TestScriptRunner_Failure(t *testing.T) {
	dir := t.TempDir()
	s := newSession(t, nil)
	script := writeExecutable(t, filepath.Join(dir, "bad.sh"), "echo oops >&2; exit 3")

	ok, log := ScriptRunner{S: s}.Run(context.Background(), script, filepath.Join(s.OutDir, "none.exr"), Options{})
	if ok {
		t.Fatal("want failure")
	}
	if !strings.Contains(log, "oops") {
		t.Errorf("log = %q, want captured stderr", log)
	}
}
