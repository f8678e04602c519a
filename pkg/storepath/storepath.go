// Package storepath resolves where a memory store lives on disk.
package storepath

import (
	"os"
	"path/filepath"

	"github.com/mnemoware/mnemo/pkg/git"
)

// Dir is the store directory name, nested under the project root or the
// user's home directory.
var Dir = filepath.Join(".agent", "memory")

// Resolve returns the store directory for the current invocation.
// An explicit override wins. Otherwise the store is anchored at the
// enclosing git repository's top level, so every working directory inside
// a project shares one store; outside a repository it falls back to the
// user's home directory.
func Resolve(override string) (string, error) {
	if override != "" {
		return override, nil
	}

	if top := git.TopLevel(); top != "" {
		return filepath.Join(top, Dir), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, Dir), nil
}
