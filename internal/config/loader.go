package config

import (
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/foundryhq/foundry/internal/ferrors"
)

// LoadProject reads and validates the project manifest at path.
func LoadProject(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ferrors.NewIO(path, err)
	}
	var p Project
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, ferrors.NewAstSyntax("parsing "+path, err)
	}
	if err := Validate(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// LoadConnections reads and validates the connections file at path.
func LoadConnections(path string) (Connections, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ferrors.NewIO(path, err)
	}
	var conns Connections
	if err := yaml.Unmarshal(data, &conns); err != nil {
		return nil, ferrors.NewAstSyntax("parsing "+path, err)
	}
	for _, profile := range conns {
		for name, conn := range profile {
			if err := Validate(&conn); err != nil {
				return nil, ferrors.NewValidation("connection " + name + ": " + err.Error())
			}
		}
	}
	return conns, nil
}

// LoadSources reads every `*.yml` file directly under dir as one Source
// document, failing Duplicate on a repeated name within a kind
// (spec.md SPEC_FULL §4.7).
func LoadSources(dir string) ([]Source, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, ferrors.NewIO(dir, err)
	}

	var filenames []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".yml" {
			continue
		}
		filenames = append(filenames, e.Name())
	}
	sort.Strings(filenames)

	seen := make(map[SourceKind]map[string]bool)
	var sources []Source
	for _, filename := range filenames {
		full := filepath.Join(dir, filename)
		data, err := os.ReadFile(full)
		if err != nil {
			return nil, ferrors.NewIO(full, err)
		}
		var s Source
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, ferrors.NewAstSyntax("parsing "+full, err)
		}
		var payload interface{}
		switch s.Kind {
		case KindWarehouse:
			payload = s.Warehouse
		case KindSourceDB:
			payload = s.SourceDB
		case KindKafka:
			payload = s.Kafka
		case KindAPI:
			payload = s.API
		}
		if payload != nil {
			if err := Validate(payload); err != nil {
				return nil, err
			}
		}
		name := s.Name()
		if seen[s.Kind] == nil {
			seen[s.Kind] = make(map[string]bool)
		}
		if seen[s.Kind][name] {
			return nil, ferrors.NewDuplicate(string(s.Kind)+" source", name)
		}
		seen[s.Kind][name] = true
		sources = append(sources, s)
	}
	return sources, nil
}
