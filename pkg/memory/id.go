package memory

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateID returns a new memory id: "mem_" plus 12 hex characters.
func GenerateID() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "mem_" + hex[:12]
}
