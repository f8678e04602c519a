// Package git provides utilities for detecting git repository information.
package git

import (
	"context"
	"os/exec"
	"strings"
	"time"
)

// TopLevel returns the absolute path of the enclosing git repository's root.
// It runs "git rev-parse --show-toplevel" and returns "" when the working
// directory is not inside a repository or git is unavailable.
func TopLevel() string {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	out, err := exec.CommandContext(ctx, "git", "rev-parse", "--show-toplevel").Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}
