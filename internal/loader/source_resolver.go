package loader

import (
	"github.com/foundryhq/foundry/internal/config"
	"github.com/foundryhq/foundry/internal/ferrors"
)

// TemplateSourceResolver implements template.SourceResolver over the loaded
// source configs and connections, linear over schemas then tables, first
// match wins (spec.md §4.5).
type TemplateSourceResolver struct {
	Sources     []config.Source
	Connections config.Connections
	Profile     string
}

func (r *TemplateSourceResolver) Resolve(sourceName, table string) (string, error) {
	for _, s := range r.Sources {
		var db *config.DBSourceConfig
		switch s.Kind {
		case config.KindSourceDB:
			db = s.SourceDB
		case config.KindWarehouse:
			db = s.Warehouse
		}
		if db == nil || db.Name != sourceName {
			continue
		}
		for _, schema := range db.Schemas {
			for _, t := range schema.Tables {
				if t.Table == table {
					return r.databaseName(db) + "." + schema.Schema + "." + table, nil
				}
			}
		}
		return "", ferrors.NewNotFound("table", table)
	}
	return "", ferrors.NewNotFound("source", sourceName)
}

func (r *TemplateSourceResolver) databaseName(db *config.DBSourceConfig) string {
	if profile, ok := r.Connections[r.Profile]; ok {
		if conn, ok := profile[db.Connection]; ok {
			return conn.Database
		}
	}
	return db.Name
}
