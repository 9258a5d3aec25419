package composecli

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"pipedeck/pipeline"
)

func shForm(label, script string) pipeline.Form {
	return pipeline.Form{Label: label, Argv: []string{"sh", "-c", script}}
}

func missingForm(label string) pipeline.Form {
	return pipeline.Form{Label: label, Argv: []string{"pipedeck-test-no-such-binary"}}
}

func TestRun_FirstFormWins(t *testing.T) {
	r := New()
	forms := []pipeline.Form{
		shForm("docker compose", "echo front; echo back 1>&2"),
		shForm("docker-compose", "echo never"),
	}

	res := r.Run(context.Background(), forms, t.TempDir())
	if !res.Succeeded {
		t.Fatalf("result = %+v, want success", res)
	}
	if res.Stdout != "front" {
		t.Fatalf("stdout = %q, want %q", res.Stdout, "front")
	}
	if res.Stderr != "back" {
		t.Fatalf("stderr = %q, want %q", res.Stderr, "back")
	}
	if !slices.Equal(res.Form, forms[0].Argv) {
		t.Fatalf("winning form = %v, want %v", res.Form, forms[0].Argv)
	}
	if len(res.Diagnostics) != 0 {
		t.Fatalf("diagnostics = %v, want none", res.Diagnostics)
	}
}

func TestRun_FallsBackWhenCommandMissing(t *testing.T) {
	r := New()
	forms := []pipeline.Form{
		missingForm("docker compose"),
		shForm("docker-compose", "echo recovered"),
	}

	res := r.Run(context.Background(), forms, t.TempDir())
	if !res.Succeeded {
		t.Fatalf("result = %+v, want success via the fallback form", res)
	}
	if res.Stdout != "recovered" {
		t.Fatalf("stdout = %q, want %q", res.Stdout, "recovered")
	}
	if !slices.Equal(res.Form, forms[1].Argv) {
		t.Fatalf("winning form = %v, want the fallback argv", res.Form)
	}
	want := []string{"Command not found: docker compose"}
	if !slices.Equal(res.Diagnostics, want) {
		t.Fatalf("diagnostics = %v, want %v", res.Diagnostics, want)
	}
}

func TestRun_AllFormsFailKeepsWholeTrail(t *testing.T) {
	r := New()
	forms := []pipeline.Form{
		missingForm("docker compose"),
		shForm("docker-compose", "echo broken 1>&2; exit 3"),
	}

	res := r.Run(context.Background(), forms, t.TempDir())
	if res.Succeeded {
		t.Fatalf("result = %+v, want failure", res)
	}
	if len(res.Diagnostics) != 2 {
		t.Fatalf("diagnostics = %v, want one entry per attempt", res.Diagnostics)
	}
	if res.Diagnostics[0] != "Command not found: docker compose" {
		t.Fatalf("first diagnostic = %q", res.Diagnostics[0])
	}
	if res.Diagnostics[1] != "broken" {
		t.Fatalf("second diagnostic = %q, want the trimmed stderr", res.Diagnostics[1])
	}
}

func TestRun_SilentFailureNamesTheForm(t *testing.T) {
	r := New()
	forms := []pipeline.Form{shForm("docker compose", "exit 7")}

	res := r.Run(context.Background(), forms, t.TempDir())
	if res.Succeeded {
		t.Fatalf("result = %+v, want failure", res)
	}
	diag := res.Diagnostics[0]
	if !strings.Contains(diag, "docker compose") || !strings.Contains(diag, "status 7") {
		t.Fatalf("diagnostic = %q, want the form name and exit status", diag)
	}
	if !strings.Contains(diag, "produced no diagnostics") {
		t.Fatalf("diagnostic = %q, want the silent-exit wording", diag)
	}
}

func TestRun_ExecutesInWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "marker.txt"), []byte("hello from marker"), 0o644); err != nil {
		t.Fatalf("write marker: %v", err)
	}

	r := New()
	res := r.Run(context.Background(), []pipeline.Form{shForm("cat", "cat marker.txt")}, dir)
	if !res.Succeeded {
		t.Fatalf("result = %+v, want success", res)
	}
	if res.Stdout != "hello from marker" {
		t.Fatalf("stdout = %q, want the marker contents", res.Stdout)
	}
}

func TestRun_UnusableDirectoryFailsBeforeSpawning(t *testing.T) {
	r := New()
	dir := filepath.Join(t.TempDir(), "gone")

	res := r.Run(context.Background(), []pipeline.Form{shForm("sh", "echo should not run")}, dir)
	if res.Succeeded {
		t.Fatalf("result = %+v, want failure", res)
	}
	if len(res.Diagnostics) != 1 || !strings.Contains(res.Diagnostics[0], "not usable") {
		t.Fatalf("diagnostics = %v, want a single working-directory entry", res.Diagnostics)
	}
}

func TestRun_NoFormsFails(t *testing.T) {
	r := New()

	res := r.Run(context.Background(), nil, t.TempDir())
	if res.Succeeded {
		t.Fatalf("result = %+v, want failure", res)
	}
	if len(res.Diagnostics) != 1 {
		t.Fatalf("diagnostics = %v, want a single entry", res.Diagnostics)
	}
}

func TestRun_EmptyFormStaysInTrail(t *testing.T) {
	r := New()
	forms := []pipeline.Form{
		{Label: "broken"},
		shForm("docker-compose", "echo recovered"),
	}

	res := r.Run(context.Background(), forms, t.TempDir())
	if !res.Succeeded {
		t.Fatalf("result = %+v, want success via the second form", res)
	}
	if len(res.Diagnostics) != 1 || !strings.Contains(res.Diagnostics[0], "broken") {
		t.Fatalf("diagnostics = %v, want the empty-form entry", res.Diagnostics)
	}
}

func TestRun_CancelledContextShowsInTrail(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	r := New()
	res := r.Run(ctx, []pipeline.Form{shForm("docker compose", "sleep 5")}, t.TempDir())
	if res.Succeeded {
		t.Fatalf("result = %+v, want failure", res)
	}
	if len(res.Diagnostics) != 1 || !strings.Contains(res.Diagnostics[0], "interrupted") {
		t.Fatalf("diagnostics = %v, want an interruption entry", res.Diagnostics)
	}
}
