package loader

import (
	"github.com/foundryhq/foundry/internal/catalog"
	"github.com/foundryhq/foundry/internal/config"
	"github.com/foundryhq/foundry/internal/ferrors"
	"github.com/foundryhq/foundry/internal/kafka/connector"
)

// ConfigResolver implements connector.Resolver over the loaded project
// config (connections.yml + source configs), the concrete collaborator
// spec.md §6 describes only the interface of.
type ConfigResolver struct {
	Connections config.Connections
	Profile     string
	Sources     []config.Source
	Catalog     *catalog.Catalog
}

func (r *ConfigResolver) ResolveCluster(name string) (connector.ClusterInfo, error) {
	for _, s := range r.Sources {
		if s.Kind == config.KindKafka && s.Kafka != nil && s.Kafka.Name == name {
			return connector.ClusterInfo{
				Name:             name,
				BootstrapServers: s.Kafka.Bootstrap,
				ConnectRESTURL:   s.Kafka.Connect,
			}, nil
		}
	}
	return connector.ClusterInfo{}, ferrors.NewNotFound("cluster", name)
}

func (r *ConfigResolver) ResolveConnection(name string) (connector.ConnectionInfo, error) {
	profile, ok := r.Connections[r.Profile]
	if !ok {
		return connector.ConnectionInfo{}, ferrors.NewNotFound("connection profile", r.Profile)
	}
	conn, ok := profile[name]
	if !ok {
		return connector.ConnectionInfo{}, ferrors.NewNotFound("connection", name)
	}
	return connector.ConnectionInfo{
		Name:        name,
		Host:        conn.Host,
		Port:        conn.Port,
		User:        conn.User,
		Password:    conn.Password,
		Database:    conn.Database,
		AdapterType: conn.AdapterType,
	}, nil
}

func (r *ConfigResolver) ResolveSourceSchemas(connectorName string) ([]connector.SchemaConfig, error) {
	decl, err := r.Catalog.GetConnector(connectorName)
	if err != nil {
		return nil, err
	}
	db, err := r.findDBSource(decl.TargetDatabase)
	if err != nil {
		return nil, err
	}
	return toSchemaConfigs(db.Schemas), nil
}

func (r *ConfigResolver) ResolveSinkSchema(connectorName string) (connector.SchemaConfig, error) {
	decl, err := r.Catalog.GetConnector(connectorName)
	if err != nil {
		return connector.SchemaConfig{}, err
	}
	db, err := r.findDBSource(decl.TargetDatabase)
	if err != nil {
		return connector.SchemaConfig{}, err
	}
	for _, s := range db.Schemas {
		if s.Schema == decl.TargetSchema {
			return toSchemaConfig(s), nil
		}
	}
	return connector.SchemaConfig{}, ferrors.NewNotFound("schema", decl.TargetSchema)
}

func (r *ConfigResolver) findDBSource(name string) (*config.DBSourceConfig, error) {
	for _, s := range r.Sources {
		switch s.Kind {
		case config.KindSourceDB:
			if s.SourceDB != nil && s.SourceDB.Name == name {
				return s.SourceDB, nil
			}
		case config.KindWarehouse:
			if s.Warehouse != nil && s.Warehouse.Name == name {
				return s.Warehouse, nil
			}
		}
	}
	return nil, ferrors.NewNotFound("source database", name)
}

func toSchemaConfigs(in []config.SchemaConfig) []connector.SchemaConfig {
	out := make([]connector.SchemaConfig, 0, len(in))
	for _, s := range in {
		out = append(out, toSchemaConfig(s))
	}
	return out
}

func toSchemaConfig(s config.SchemaConfig) connector.SchemaConfig {
	tables := make([]connector.TableConfig, 0, len(s.Tables))
	for _, t := range s.Tables {
		tables = append(tables, connector.TableConfig{Table: t.Table, Columns: t.Columns})
	}
	return connector.SchemaConfig{Schema: s.Schema, Tables: tables}
}
