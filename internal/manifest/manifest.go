// Package manifest serializes a compiled DAG's metadata into manifest.json
// and dag.dot, writing both atomically so a failed compile never perturbs
// an existing compile_path (spec.md §4.6, §7 Recovery).
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/foundryhq/foundry/internal/dag"
	"github.com/foundryhq/foundry/internal/ferrors"
)

// NodeType is the manifest's coarse classification of a DAG node, collapsing
// the finer-grained dag.Kind values (spec.md §4.6).
type NodeType string

const (
	Kafka NodeType = "Kafka"
	DPF   NodeType = "DPF"
	DB    NodeType = "DB"
)

func nodeType(k dag.Kind) NodeType {
	switch k {
	case dag.KafkaSourceConnector, dag.KafkaSinkConnector, dag.KafkaSmt, dag.KafkaPipeline, dag.KafkaPredicate, dag.KafkaTopic:
		return Kafka
	case dag.SourceDb, dag.WarehouseDb:
		return DB
	default:
		return DPF
	}
}

// ManifestNode is one entry of manifest.json's "nodes" array.
type ManifestNode struct {
	Name               string   `json:"name"`
	DependsOn          []string `json:"depends_on"`
	Executable         bool     `json:"executable"`
	CompiledExecutable *string  `json:"compiled_executable"`
	NodeType           NodeType `json:"node_type"`
	Target             *string  `json:"target"`
}

// Manifest is the top-level manifest.json document.
type Manifest struct {
	Nodes []ManifestNode `json:"nodes"`
}

// Build produces the manifest document from g, node order topological, ties
// broken by name ascending (spec.md §4.6).
func Build(g *dag.Graph) *Manifest {
	order := g.TopologicalOrder()
	nodes := make([]ManifestNode, 0, len(order))
	for _, n := range order {
		var dependsOn []string
		if deps := g.DependsOn(n.Name); len(deps) > 0 {
			dependsOn = deps
		}
		var target *string
		if n.Target != "" {
			t := n.Target
			target = &t
		}
		var compiled *string
		if n.CompiledArtifact != "" {
			c := n.CompiledArtifact
			compiled = &c
		}
		nodes = append(nodes, ManifestNode{
			Name:               n.Name,
			DependsOn:          dependsOn,
			Executable:         n.IsExecutable,
			CompiledExecutable: compiled,
			NodeType:           nodeType(n.Kind),
			Target:             target,
		})
	}
	return &Manifest{Nodes: nodes}
}

// RenderDot renders dag.dot: one line per node, one line per edge, node
// label = name, edge label empty.
func RenderDot(g *dag.Graph) string {
	var b strings.Builder
	b.WriteString("digraph foundry {\n")
	for _, name := range g.NodeNames() {
		fmt.Fprintf(&b, "  %q;\n", name)
	}
	for _, e := range g.Edges() {
		fmt.Fprintf(&b, "  %q -> %q;\n", e[0], e[1])
	}
	b.WriteString("}\n")
	return b.String()
}

// Staging is an in-progress compile output directory. Callers write
// manifest.json, dag.dot, and every rendered model file into Dir, then call
// Commit to atomically publish it as compilePath, or Abort to discard it on
// error — so a partial compile never perturbs an existing compile_path
// (spec.md §7 Recovery).
type Staging struct {
	Dir         string
	compilePath string
	committed   bool
}

// Begin creates a fresh staging directory next to compilePath.
func Begin(compilePath string) (*Staging, error) {
	parent := filepath.Dir(compilePath)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return nil, ferrors.NewIO(compilePath, err)
	}
	dir, err := os.MkdirTemp(parent, ".foundry-compile-*")
	if err != nil {
		return nil, ferrors.NewIO(compilePath, err)
	}
	return &Staging{Dir: dir, compilePath: compilePath}, nil
}

// WriteManifest renders manifest.json and dag.dot for g into the staging directory.
func (s *Staging) WriteManifest(g *dag.Graph) error {
	manifestBytes, err := json.MarshalIndent(Build(g), "", "  ")
	if err != nil {
		return ferrors.NewIO(filepath.Join(s.Dir, "manifest.json"), err)
	}
	if err := os.WriteFile(filepath.Join(s.Dir, "manifest.json"), manifestBytes, 0o644); err != nil {
		return ferrors.NewIO(filepath.Join(s.Dir, "manifest.json"), err)
	}
	if err := os.WriteFile(filepath.Join(s.Dir, "dag.dot"), []byte(RenderDot(g)), 0o644); err != nil {
		return ferrors.NewIO(filepath.Join(s.Dir, "dag.dot"), err)
	}
	return nil
}

// WriteFile writes one rendered artifact (e.g. a model's SQL) at a path
// relative to the staging directory, creating parent directories as needed.
func (s *Staging) WriteFile(relativePath string, content []byte) error {
	full := filepath.Join(s.Dir, relativePath)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return ferrors.NewIO(full, err)
	}
	if err := os.WriteFile(full, content, 0o644); err != nil {
		return ferrors.NewIO(full, err)
	}
	return nil
}

// Commit publishes the staging directory as compilePath, replacing whatever
// was there. The previous compilePath is moved aside first and restored if
// the staging directory cannot be renamed into place.
func (s *Staging) Commit() error {
	backup := s.Dir + ".old"
	hadOld := false
	if _, err := os.Stat(s.compilePath); err == nil {
		if err := os.Rename(s.compilePath, backup); err != nil {
			return ferrors.NewIO(s.compilePath, err)
		}
		hadOld = true
	}
	if err := os.Rename(s.Dir, s.compilePath); err != nil {
		if hadOld {
			os.Rename(backup, s.compilePath)
		}
		return ferrors.NewIO(s.compilePath, err)
	}
	s.committed = true
	if hadOld {
		os.RemoveAll(backup)
	}
	return nil
}

// Abort discards the staging directory. Safe to call unconditionally via
// defer after Begin; it is a no-op once Commit has succeeded.
func (s *Staging) Abort() {
	if s.committed {
		return
	}
	os.RemoveAll(s.Dir)
}
