// Package config loads the project manifest, connections file, and source
// configs (spec.md §6 Inputs) using gopkg.in/yaml.v3 + go-playground's
// validator, following the same discipline as the teacher's own
// internal/config package: custom UnmarshalYAML for polymorphic inline
// blocks, a package-level cached *validator.Validate with registered custom
// tags, and a typed validation error wrapping the first validator.FieldError.
package config

// ConnectionProfile points at the connections.yml file for a named profile.
type ConnectionProfile struct {
	Profile string `yaml:"profile" validate:"required"`
	Path    string `yaml:"path" validate:"required"`
}

// ModelsConfig locates model SQL files.
type ModelsConfig struct {
	Dir                 string   `yaml:"dir" validate:"required"`
	AnalyticsProjects   []string `yaml:"analytics_projects"`
}

// PythonConfig locates the project's Python batch job directory, if any.
type PythonConfig struct {
	Dir string `yaml:"dir"`
}

// Project is the root `foundry.yml` document.
type Project struct {
	Name                   string             `yaml:"name" validate:"required"`
	Version                string             `yaml:"version" validate:"required,semver"`
	CompilePath            string             `yaml:"compile_path" validate:"required"`
	ModellingArchitecture  string             `yaml:"modelling_architecture"`
	ConnectionProfile      ConnectionProfile  `yaml:"connection_profile" validate:"required"`
	Models                 ModelsConfig       `yaml:"models" validate:"required"`
	SourcesPath            string             `yaml:"sources" validate:"required"`
	Python                 *PythonConfig      `yaml:"python"`
}

// Connection is one named entry under a connection profile.
type Connection struct {
	Host        string `yaml:"host" validate:"required"`
	Port        int    `yaml:"port" validate:"required"`
	User        string `yaml:"user" validate:"required"`
	Password    string `yaml:"password" validate:"required"`
	Database    string `yaml:"database" validate:"required"`
	AdapterType string `yaml:"adapter_type" validate:"required,oneof=postgres"`
}

// Connections is the full `connections.yml` document: profile -> name -> Connection.
type Connections map[string]map[string]Connection
