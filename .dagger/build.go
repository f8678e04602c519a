package main

import (
	"fmt"
	"strings"
	"time"

	"context"

	"dagger/mnemo/internal/dagger"
)

// Build and return directory of go binaries.
//
// The sqlite-vec engine needs CGO, so binaries are built in the shared CGO
// container. Darwin artifacts come from macOS runners, not from here.
func (m *Mnemo) Build(
	ctx context.Context,

	// Linker flags for go build
	// +optional
	// +default="-s -w"
	ldflags string,
) *dagger.Directory {
	goarches := []string{"amd64", "arm64"}

	// create empty directory to put build artifacts
	outputs := dag.Directory()

	golang := m.goContainer()

	for _, goarch := range goarches {
		path := fmt.Sprintf("linux/%s/", goarch)

		build := golang.
			WithEnvVariable("GOOS", "linux").
			WithEnvVariable("GOARCH", goarch).
			WithExec([]string{"go", "build", "-ldflags", ldflags, "-o", path, "./cli/mnemo"})

		outputs = outputs.WithDirectory(path, build.Directory(path))
	}

	return outputs
}

// BuildRelease compiles versioned release binaries with embedded version info
func (m *Mnemo) BuildRelease(
	ctx context.Context,

	// Version string of build
	version string,

	// Git commit SHA of build
	commit string,
) *dagger.Directory {
	buildtime := time.Now()

	ldflags := []string{
		"-s",
		"-w",
		fmt.Sprintf("-X 'github.com/mnemoware/mnemo/pkg/utils.Version=%s'", version),
		fmt.Sprintf("-X 'github.com/mnemoware/mnemo/pkg/utils.Sha=%s'", commit),
		fmt.Sprintf("-X 'github.com/mnemoware/mnemo/pkg/utils.Buildtime=%s'", buildtime),
	}

	return m.Build(ctx, strings.Join(ldflags, " "))
}
