package config

import (
	"gopkg.in/yaml.v3"
)

// TableConfig describes one table's declared column order, used to compute
// a connector's column.include.list / field.include.list.
type TableConfig struct {
	Table   string   `yaml:"table" validate:"required"`
	Columns []string `yaml:"columns"`
}

// SchemaConfig describes one schema's declared table order.
type SchemaConfig struct {
	Schema string        `yaml:"schema" validate:"required"`
	Tables []TableConfig `yaml:"tables"`
}

// DBSourceConfig is the payload shared by `warehouse` and `source_db` source kinds.
type DBSourceConfig struct {
	Name       string         `yaml:"name" validate:"required"`
	Connection string         `yaml:"connection" validate:"required"`
	Schemas    []SchemaConfig `yaml:"schemas"`
}

// KafkaSourceConfig is the `kafka` source kind's payload (spec.md §6 "bootstrap+connect for Kafka").
type KafkaSourceConfig struct {
	Name      string `yaml:"name" validate:"required"`
	Bootstrap string `yaml:"bootstrap" validate:"required"`
	Connect   string `yaml:"connect" validate:"required"`
}

// APIEndpointConfig is one endpoint in an `api` source's tree.
type APIEndpointConfig struct {
	Path   string `yaml:"path" validate:"required"`
	Method string `yaml:"method"`
}

// APISourceConfig is the `api` source kind's payload.
type APISourceConfig struct {
	Name      string              `yaml:"name" validate:"required"`
	BaseURL   string              `yaml:"base_url" validate:"required"`
	Endpoints []APIEndpointConfig `yaml:"endpoints"`
}

// SourceKind discriminates one source-config YAML document from another.
type SourceKind string

const (
	KindWarehouse SourceKind = "warehouse"
	KindSourceDB  SourceKind = "source_db"
	KindKafka     SourceKind = "kafka"
	KindAPI       SourceKind = "api"
)

// Source is one polymorphic source-config document (spec.md §6 "warehouse /
// source_db / kafka / api, each carrying a name and kind-specific payload"),
// decoded the way the teacher's Step decodes its inline type-specific block.
type Source struct {
	Kind SourceKind `yaml:"kind"`

	Warehouse *DBSourceConfig    `yaml:",inline,omitempty"`
	SourceDB  *DBSourceConfig    `yaml:",inline,omitempty"`
	Kafka     *KafkaSourceConfig `yaml:",inline,omitempty"`
	API       *APISourceConfig   `yaml:",inline,omitempty"`
}

// Name returns the declared name regardless of kind, used for duplicate
// detection within a kind (spec.md SPEC_FULL §4.7).
func (s Source) Name() string {
	switch s.Kind {
	case KindWarehouse:
		if s.Warehouse != nil {
			return s.Warehouse.Name
		}
	case KindSourceDB:
		if s.SourceDB != nil {
			return s.SourceDB.Name
		}
	case KindKafka:
		if s.Kafka != nil {
			return s.Kafka.Name
		}
	case KindAPI:
		if s.API != nil {
			return s.API.Name
		}
	}
	return ""
}

// UnmarshalYAML decodes the `kind` discriminator first, then the matching payload.
func (s *Source) UnmarshalYAML(value *yaml.Node) error {
	type baseSource struct {
		Kind SourceKind `yaml:"kind"`
	}
	var base baseSource
	if err := value.Decode(&base); err != nil {
		return err
	}
	s.Kind = base.Kind
	s.Warehouse = nil
	s.SourceDB = nil
	s.Kafka = nil
	s.API = nil

	switch base.Kind {
	case KindWarehouse:
		var cfg DBSourceConfig
		if err := value.Decode(&cfg); err != nil {
			return err
		}
		s.Warehouse = &cfg
	case KindSourceDB:
		var cfg DBSourceConfig
		if err := value.Decode(&cfg); err != nil {
			return err
		}
		s.SourceDB = &cfg
	case KindKafka:
		var cfg KafkaSourceConfig
		if err := value.Decode(&cfg); err != nil {
			return err
		}
		s.Kafka = &cfg
	case KindAPI:
		var cfg APISourceConfig
		if err := value.Decode(&cfg); err != nil {
			return err
		}
		s.API = &cfg
	}
	return nil
}
