package memory

// Categories a memory can be filed under. Stats reports a per-category
// breakdown over exactly this list.
var Categories = []string{
	"fact",
	"preference",
	"conversation",
	"decision",
	"error",
	"pattern",
	"context",
	"instruction",
}

// DefaultCategory is used when the caller does not name one.
const DefaultCategory = "fact"

// DefaultImportance is used when the caller does not set one.
const DefaultImportance = 0.5

// DefaultTopK bounds query results when the caller does not set a limit.
const DefaultTopK = 5

// DefaultListLimit bounds list results when the caller does not set a limit.
const DefaultListLimit = 20

// maxScan caps how many records a unit-vector scan requests from the engine.
const maxScan = 1000

// Memory is one record as presented to callers.
type Memory struct {
	ID          string   `json:"id"`
	Content     string   `json:"content"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	Source      string   `json:"source,omitempty"`
	CreatedAt   int64    `json:"created_at"`
	UpdatedAt   int64    `json:"updated_at"`
	Importance  float64  `json:"importance"`
	AccessCount int32    `json:"access_count"`
}

// ScoredMemory is a Memory with its similarity score, rounded to 4 decimals.
type ScoredMemory struct {
	Memory
	Score float64 `json:"score"`
}

// StoreInput are the caller-supplied attributes of a new memory.
type StoreInput struct {
	Content    string
	Category   string
	Tags       []string
	Importance *float64
	Source     string
	ID         string
}

// StoreResult confirms a stored memory.
type StoreResult struct {
	ID         string   `json:"id"`
	Content    string   `json:"content"`
	Category   string   `json:"category"`
	Tags       []string `json:"tags"`
	Importance float64  `json:"importance"`
	CreatedAt  int64    `json:"created_at"`
}

// QueryInput describes a semantic search.
type QueryInput struct {
	Text          string
	TopK          int
	Category      string
	Tags          []string
	MinImportance *float64
}

// QueryResult carries semantic search matches.
type QueryResult struct {
	Query    string         `json:"query"`
	Count    int            `json:"count"`
	Memories []ScoredMemory `json:"memories"`
}

// ListInput describes a listing with optional filters.
type ListInput struct {
	Category string
	Tags     []string
	Limit    int
	SortBy   string
}

// ListResult carries listed memories, sorted, without scores.
type ListResult struct {
	Count    int      `json:"count"`
	Memories []Memory `json:"memories"`
}

// UpdateInput names a memory and the fields to change. Nil fields are left
// untouched.
type UpdateInput struct {
	ID         string
	Content    *string
	Category   *string
	Tags       *[]string
	Importance *float64
}

// UpdateResult confirms an update and names the fields that changed.
type UpdateResult struct {
	ID            string   `json:"id"`
	Message       string   `json:"message"`
	UpdatedFields []string `json:"updated_fields"`
}

// DeleteResult confirms a deletion.
type DeleteResult struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// StatsResult summarizes a store.
type StatsResult struct {
	TotalMemories int64          `json:"total_memories"`
	SizeBytes     int64          `json:"size_bytes"`
	SizeHuman     string         `json:"size_human"`
	Categories    map[string]int `json:"categories"`
	Provider      string         `json:"provider"`
	Model         string         `json:"model"`
	Dimension     int            `json:"dimension"`
	Path          string         `json:"path"`
}
