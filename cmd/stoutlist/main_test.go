package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tidwall/gjson"

	"github.com/dshills/stoutlist/internal/config"
	"github.com/dshills/stoutlist/internal/logging"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runCLI(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestVersion(t *testing.T) {
	code, out, _ := runCLI("version")
	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
	if !strings.HasPrefix(out, "stoutlist dev\n") {
		t.Errorf("output = %q", out)
	}
}

func TestUsage(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code int
	}{
		{"no command", nil, 2},
		{"unknown command", []string{"frobnicate"}, 2},
		{"run without plan", []string{"run"}, 2},
		{"lua without script", []string{"lua"}, 2},
		{"watch unknown extension", []string{"watch", "notes.txt"}, 2},
		{"help", []string{"-h"}, 0},
		{"odd capacity", []string{"-capacity", "3", "version"}, 1},
		{"bad log level", []string{"-log-level", "loud", "version"}, 1},
		{"missing config", []string{"-c", "/nonexistent/stout.toml", "version"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, _ := runCLI(tt.args...)
			if code != tt.code {
				t.Errorf("exit code = %d, want %d", code, tt.code)
			}
		})
	}
}

const plan = `
capacity: 4
values: [A, B, C, D, E]
ops:
  - {op: remove, pos: 0}
  - {op: remove, pos: 9}
`

func TestRunPlan(t *testing.T) {
	path := writeFile(t, "plan.yaml", plan)

	code, out, stderr := runCLI("-log-level", "error", "run", path)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr = %s", code, stderr)
	}
	for _, want := range []string{
		"plan plan.yaml (capacity 4)",
		"-> A  [(B, C, D, -), (E, -, -, -)]",
		"error: remove: index 9 out of bounds for size 4",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	if code, _, _ := runCLI("-log-level", "error", "run", "-strict", path); code != 1 {
		t.Errorf("strict exit code = %d, want 1", code)
	}
}

func TestRunPlanJSON(t *testing.T) {
	path := writeFile(t, "plan.yaml", plan)

	code, out, _ := runCLI("-log-level", "error", "run", "-json", path)
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	if !gjson.Valid(out) {
		t.Fatalf("invalid JSON:\n%s", out)
	}
	if got := gjson.Get(out, "steps.0.result").String(); got != "A" {
		t.Errorf("steps.0.result = %q, want A", got)
	}
	if got := gjson.Get(out, "final.#").Int(); got != 4 {
		t.Errorf("final length = %d, want 4", got)
	}
}

func TestRunLua(t *testing.T) {
	path := writeFile(t, "demo.lua", `
local l = stout.new()
for i = 1, 5 do l:add(i) end
l:remove(0)
print(l:render())
`)
	cfgPath := writeFile(t, "stout.toml", "[list]\ncapacity = 2\n[log]\nlevel = \"error\"\n")

	code, out, stderr := runCLI("-c", cfgPath, "lua", path)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr = %s", code, stderr)
	}
	if want := "[(2, -), (3, 4), (5, -)]\n"; out != want {
		t.Errorf("output = %q, want %q", out, want)
	}

	bad := writeFile(t, "bad.lua", `error("boom")`)
	if code, _, stderr := runCLI("-log-level", "error", "lua", bad); code != 1 || !strings.Contains(stderr, "boom") {
		t.Errorf("exit code = %d, stderr = %q", code, stderr)
	}
}

func TestWatch(t *testing.T) {
	path := writeFile(t, "plan.toml", "values = [\"x\"]\n")

	var stdout, stderr bytes.Buffer
	cfg := config.Default()
	e := &env{cfg: cfg, log: logging.Nop(), stdout: &stdout, stderr: &stderr}

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	if code := cmdWatch(ctx, e, []string{path}); code != 0 {
		t.Fatalf("exit code = %d, stderr = %s", code, stderr.String())
	}
	out := stdout.String()
	if !strings.Contains(out, "== run 1 at ") || !strings.Contains(out, "start  [(x, -, -, -)]") {
		t.Errorf("output = %q", out)
	}

	if code := cmdWatch(ctx, e, []string{filepath.Join(t.TempDir(), "gone.lua")}); code != 1 {
		t.Errorf("missing file exit code = %d, want 1", code)
	}
}
