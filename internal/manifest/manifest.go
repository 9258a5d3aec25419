// Package manifest locates and parses the orchestration manifest the console
// drives. The controller only needs the file to exist before shelling out;
// doctor goes further, parsing the manifest and cross-checking its declared
// services against the pipeline topology.
package manifest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/compose-spec/compose-go/v2/loader"
	compose "github.com/compose-spec/compose-go/v2/types"

	"pipedeck"
	"pipedeck/pipeline"
)

// Locate resolves the manifest path under projectDir and verifies the file
// exists. The returned path is absolute even on error, so callers can name
// it in messages.
func Locate(projectDir string) (string, error) {
	path := filepath.Join(projectDir, pipeline.ManifestName)
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	if _, err := os.Stat(abs); err != nil {
		return abs, fmt.Errorf("unable to locate %s at %s", pipeline.ManifestName, abs)
	}
	return abs, nil
}

// Load parses the manifest at path into a compose project. The project name
// is derived from the manifest's directory, matching what the compose CLI
// would pick for the same file.
func Load(ctx context.Context, path string) (*compose.Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	dir := filepath.Dir(path)
	configDetails := compose.ConfigDetails{
		WorkingDir: dir,
		ConfigFiles: []compose.ConfigFile{
			{Filename: filepath.Base(path), Content: data},
		},
		Environment: compose.NewMapping(os.Environ()),
	}

	project, err := loader.LoadWithContext(ctx, configDetails, func(o *loader.Options) {
		o.SetProjectName(projectName(dir), true)
	})
	if err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if len(project.Services) == 0 {
		return nil, fmt.Errorf("manifest declares no services")
	}
	return project, nil
}

// MissingServices returns the stages with no matching service in the
// project, in topology order. Empty means every stage is covered.
func MissingServices(project *compose.Project, stages []pipedeck.Stage) []string {
	var missing []string
	for _, s := range stages {
		if _, ok := project.Services[s.ID]; !ok {
			missing = append(missing, s.ID)
		}
	}
	return missing
}

// projectName turns a directory name into a valid compose project name:
// lowercase, restricted charset, never starting with a separator.
func projectName(dir string) string {
	base := strings.ToLower(filepath.Base(dir))
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	name := strings.TrimLeft(b.String(), "-_")
	if name == "" {
		return "pipeline"
	}
	return name
}
