// Package docker probes the container engine for diagnostics. The console
// drives services through the compose CLI, never through this SDK; the probe
// only answers "is an engine reachable at all", which the CLI's own errors
// are bad at separating from a broken manifest.
package docker

import (
	"context"
	"fmt"

	"github.com/docker/docker/client"
)

// PingEngine reports whether a container engine answers on the environment's
// default client configuration (DOCKER_HOST and friends respected). The
// returned string describes what answered.
func PingEngine(ctx context.Context) (string, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return "", fmt.Errorf("create engine client: %w", err)
	}
	defer cli.Close()

	ping, err := cli.Ping(ctx)
	if err != nil {
		return "", fmt.Errorf("ping engine: %w", err)
	}
	if ping.APIVersion == "" {
		return "engine reachable", nil
	}
	return "engine API " + ping.APIVersion, nil
}
