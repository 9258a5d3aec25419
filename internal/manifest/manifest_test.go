package manifest

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"pipedeck/pipeline"
)

func writeManifest(t *testing.T, dir, content string) string {
	t.Helper()

	path := filepath.Join(dir, pipeline.ManifestName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

func TestLocate_MissingManifest(t *testing.T) {
	dir := t.TempDir()

	path, err := Locate(dir)
	if err == nil {
		t.Fatal("Locate should fail without a manifest")
	}
	if !strings.Contains(err.Error(), pipeline.ManifestName) {
		t.Fatalf("error = %v, want it to name the manifest", err)
	}
	if !filepath.IsAbs(path) {
		t.Fatalf("path = %q, want absolute even on error", path)
	}
}

func TestLocate_FindsManifest(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "services:\n  web:\n    image: example/web:1\n")

	path, err := Locate(dir)
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if filepath.Base(path) != pipeline.ManifestName {
		t.Fatalf("path = %q, want it to end in %s", path, pipeline.ManifestName)
	}
}

func TestLoad_ParsesServices(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, strings.Join([]string{
		"services:",
		"  dataingestion-service:",
		"    image: example/ingestion:1",
		"  datadeduplication-service:",
		"    image: example/dedupe:1",
	}, "\n")+"\n")

	project, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(project.Services) != 2 {
		t.Fatalf("services = %d, want 2", len(project.Services))
	}
	if _, ok := project.Services["dataingestion-service"]; !ok {
		t.Fatal("project should declare dataingestion-service")
	}
}

func TestLoad_RejectsManifestWithoutServices(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "services: {}\n")

	if _, err := Load(context.Background(), path); err == nil {
		t.Fatal("Load should reject a manifest with no services")
	}
}

func TestLoad_RejectsInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "services: [broken\n")

	if _, err := Load(context.Background(), path); err == nil {
		t.Fatal("Load should reject invalid YAML")
	}
}

func TestMissingServices(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, strings.Join([]string{
		"services:",
		"  dataingestion-service:",
		"    image: example/ingestion:1",
		"  dataquality-service:",
		"    image: example/quality:1",
	}, "\n")+"\n")

	project, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	missing := MissingServices(project, pipeline.Default().Stages())
	want := []string{"datadeduplication-service", "datalineage-service"}
	if !slices.Equal(missing, want) {
		t.Fatalf("missing = %v, want %v", missing, want)
	}
}

func TestProjectName(t *testing.T) {
	tests := []struct {
		dir  string
		want string
	}{
		{"/srv/Data-Platform", "data-platform"},
		{"/srv/_hidden", "hidden"},
		{"/srv/@@@", "pipeline"},
	}
	for _, tt := range tests {
		if got := projectName(tt.dir); got != tt.want {
			t.Fatalf("projectName(%q) = %q, want %q", tt.dir, got, tt.want)
		}
	}
}
