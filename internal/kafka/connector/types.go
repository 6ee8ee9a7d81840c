package connector

// ClusterInfo is the resolved shape of a named Kafka cluster (spec.md §4.3
// stage 2: "Resolve the cluster by name: fetch bootstrap servers + connect
// REST host").
type ClusterInfo struct {
	Name             string
	BootstrapServers string
	ConnectRESTURL   string
}

// ConnectionInfo is the resolved shape of a named database connection
// profile entry, mirroring original_source's AdapterConnectionDetails.
type ConnectionInfo struct {
	Name        string
	Host        string
	Port        int
	User        string
	Password    string
	Database    string
	AdapterType string
}

// TableConfig describes one table's declared column order within a schema.
type TableConfig struct {
	Table   string
	Columns []string
}

// SchemaConfig describes one schema's declared table order within a source/warehouse config.
type SchemaConfig struct {
	Schema string
	Tables []TableConfig
}

// Resolver supplies everything the connector compiler needs from outside the
// catalog: cluster/connection lookups and the declared schema trees used to
// compute include-lists (spec.md §4.3 stage 2). A thin interface keeps the
// compiler decoupled from how clusters/connections/configs are loaded
// (spec.md §9 "Global state: None" generalized to this collaborator).
type Resolver interface {
	ResolveCluster(name string) (ClusterInfo, error)
	ResolveConnection(name string) (ConnectionInfo, error)
	// ResolveSourceSchemas returns the declared schema/table/column tree a
	// source connector's table/column include-lists are computed from.
	ResolveSourceSchemas(connectorName string) ([]SchemaConfig, error)
	// ResolveSinkSchema returns the single schema a sink connector writes into.
	ResolveSinkSchema(connectorName string) (SchemaConfig, error)
}
