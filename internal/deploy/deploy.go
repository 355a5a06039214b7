// Package deploy builds the GÉRARD container image and runs it through
// the Docker SDK, replacing the shell deploy script the demo banner
// points operators at.
package deploy

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
)

// EntryPoint selects which of the three documented container commands a
// container instance runs. Exactly one is active per instance.
type EntryPoint string

const (
	EntryDemo         EntryPoint = "demo"
	EntryAPI          EntryPoint = "api"
	EntryOrchestrator EntryPoint = "orchestrator"
)

type entrySpec struct {
	command []string
	port    string
}

var entrySpecs = map[EntryPoint]entrySpec{
	EntryDemo:         {command: []string{"python", "quick_gerard.py"}, port: "8080"},
	EntryAPI:          {command: []string{"uvicorn", "src.api.main:app", "--host", "0.0.0.0", "--port", "8000"}, port: "8000"},
	EntryOrchestrator: {command: []string{"python", "-m", "src.core.orchestrator"}, port: "9090"},
}

// ParseEntryPoint validates an operator-supplied entry point name.
func ParseEntryPoint(s string) (EntryPoint, error) {
	ep := EntryPoint(s)
	if _, ok := entrySpecs[ep]; !ok {
		return "", fmt.Errorf("unknown entry point %q (want demo, api, or orchestrator)", s)
	}
	return ep, nil
}

// Deployer drives image build and container lifecycle via the Docker SDK.
type Deployer struct {
	client *client.Client
	logger *slog.Logger
}

// New creates a deployer from the standard Docker environment variables
// (DOCKER_HOST, etc.).
func New(logger *slog.Logger) (*Deployer, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("creating Docker client: %w", err)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Deployer{client: cli, logger: logger}, nil
}

// BuildImage builds the image from contextDir's Dockerfile and tags it.
func (d *Deployer) BuildImage(ctx context.Context, contextDir, tag string) error {
	buildContext, err := tarDirectory(contextDir)
	if err != nil {
		return fmt.Errorf("packing build context: %w", err)
	}
	defer buildContext.Close()

	resp, err := d.client.ImageBuild(ctx, buildContext, types.ImageBuildOptions{
		Tags:       []string{tag},
		Dockerfile: "Dockerfile",
		Remove:     true,
	})
	if err != nil {
		return fmt.Errorf("building image %s: %w", tag, err)
	}
	defer resp.Body.Close()

	// Drain the build output; the daemon reports errors in-stream.
	if err := drainBuildOutput(resp.Body, d.logger); err != nil {
		return fmt.Errorf("image build %s: %w", tag, err)
	}
	return nil
}

// StartContainer creates and starts a container from the image with the
// given entry point, publishing its port to the same host port.
func (d *Deployer) StartContainer(ctx context.Context, image, name string, entry EntryPoint) (string, error) {
	spec := entrySpecs[entry]
	port := nat.Port(spec.port + "/tcp")

	created, err := d.client.ContainerCreate(ctx,
		&container.Config{
			Image:        image,
			Cmd:          spec.command,
			ExposedPorts: nat.PortSet{port: struct{}{}},
		},
		&container.HostConfig{
			PortBindings: nat.PortMap{
				port: []nat.PortBinding{{HostIP: "0.0.0.0", HostPort: spec.port}},
			},
		},
		nil, nil, name)
	if err != nil {
		return "", fmt.Errorf("creating container: %w", err)
	}

	if err := d.client.ContainerStart(ctx, created.ID, container.StartOptions{}); err != nil {
		return "", fmt.Errorf("starting container %s: %w", created.ID, err)
	}

	d.logger.Info("container started",
		"id", created.ID, "entry", string(entry), "port", spec.port)
	return created.ID, nil
}

// WaitHealthy polls the container's health state until it reports
// healthy, reports unhealthy, or the deadline passes. The schedule is
// driven by the image HEALTHCHECK; this only observes its verdict.
func (d *Deployer) WaitHealthy(ctx context.Context, containerID string, deadline time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		info, err := d.client.ContainerInspect(ctx, containerID)
		if err != nil {
			return fmt.Errorf("inspecting container %s: %w", containerID, err)
		}
		if info.State != nil && info.State.Health != nil {
			switch info.State.Health.Status {
			case "healthy":
				return nil
			case "unhealthy":
				return fmt.Errorf("container %s reported unhealthy", containerID)
			}
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("container %s did not become healthy: %w", containerID, ctx.Err())
		case <-ticker.C:
		}
	}
}

// Stop stops the container with a short grace period.
func (d *Deployer) Stop(ctx context.Context, containerID string) error {
	timeout := 5
	return d.client.ContainerStop(ctx, containerID, container.StopOptions{Timeout: &timeout})
}

// Close releases the Docker client.
func (d *Deployer) Close() error {
	return d.client.Close()
}

func drainBuildOutput(r io.Reader, logger *slog.Logger) error {
	return decodeBuildStream(r, func(line string) {
		logger.Debug("docker build", "output", line)
	})
}
