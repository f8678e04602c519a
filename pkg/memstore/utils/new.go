// Package storeutils constructs memstore collections from configuration.
package storeutils

import (
	"fmt"
	"log/slog"

	"github.com/mnemoware/mnemo/pkg/memstore"
	"github.com/mnemoware/mnemo/pkg/memstore/chromem"
	"github.com/mnemoware/mnemo/pkg/memstore/sqlitevec"
)

// Engine names accepted in store configuration.
const (
	EngineSqlite  = "sqlite"
	EngineChromem = "chromem"
)

// NewCollectionOpts selects and configures a storage engine.
type NewCollectionOpts struct {
	// Engine is the storage engine name. Defaults to sqlite.
	Engine string

	// DBPath is the database location: a file for sqlite, a directory
	// for chromem.
	DBPath string

	// Dimension is the embedding vector dimension (sqlite only).
	Dimension int

	Logger *slog.Logger
}

// NewCollection opens the collection for the configured engine.
func NewCollection(o *NewCollectionOpts) (memstore.Collection, error) {
	engine := o.Engine
	if engine == "" {
		engine = EngineSqlite
	}

	switch engine {
	case EngineSqlite:
		return sqlitevec.New(sqlitevec.Config{
			DBPath:    o.DBPath,
			Dimension: o.Dimension,
		}, o.Logger)
	case EngineChromem:
		return chromem.New(chromem.Config{
			Path: o.DBPath,
		}, o.Logger)
	default:
		return nil, fmt.Errorf("unsupported storage engine: %s", engine)
	}
}
