// Package catalog is the in-memory, name- and id-keyed store of parsed
// declarations populated during the synchronous parse phase of a compile.
// It is the single source of truth for name -> declaration lookups; the DAG
// builder consults it but never duplicates its data.
package catalog

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/foundryhq/foundry/internal/ast"
	"github.com/foundryhq/foundry/internal/ferrors"
)

// TransformDecl is a registered `CREATE KAFKA SIMPLE MESSAGE TRANSFORM`.
type TransformDecl struct {
	ID        uuid.UUID
	Name      string
	ConfigKV  []ast.KV
	AST       ast.SmtAST
	CreatedAt time.Time
}

// PipelineDecl is a registered transform pipeline, transforms stored as resolved UUIDs
// in declaration order (spec.md §3 invariant 2).
type PipelineDecl struct {
	Name          string
	TransformIDs  []uuid.UUID
	PredicateName string
	AST           ast.PipelineAST
}

// PredicateDecl is a registered predicate.
type PredicateDecl struct {
	Name  string
	Kind  string
	Props []ast.KV
}

// ConnectorKind mirrors ast.ConnectorKind at the catalog layer.
type ConnectorKind = ast.ConnectorKind

// ConnectorDecl is a registered Kafka connector declaration.
type ConnectorDecl struct {
	Name             string
	Kind             ConnectorKind
	SchemaKey        string
	ClusterName      string
	RawProps         []ast.KV
	PipelineNames    []string
	Version          string
	TargetDatabase   string
	TargetSchema     string
}

// ModelDecl is a registered SQL model declaration.
type ModelDecl struct {
	Schema      string
	Name        string
	Refs        []string
	Sources     []ast.SourceRef
	Materialize ast.Materialization
	SQLPath     string
}

// QualifiedName is "<schema>.<name>", the model's DAG node identifier.
func (m ModelDecl) QualifiedName() string {
	return m.Schema + "." + m.Name
}

// PythonJobDecl is a registered Python batch job, supplemented from
// original_source's directory-scan handling of non-SQL, non-connector
// declarations (spec.md has no dedicated data-model entry for this producer
// kind; see SPEC_FULL.md §4.11).
type PythonJobDecl struct {
	Name       string
	ScriptPath string
	DependsOn  []string
	Target     string
	Env        map[string]string
}

// ResourceRef is a tagged variant describing a connector's physical read/write target
// before it is lowered to a DAG edge (grounded on original_source's catalog models).
type ResourceRef struct {
	kind  resourceRefKind
	value string
}

type resourceRefKind int

const (
	SourceTableRef resourceRefKind = iota
	WarehouseTableRef
	KafkaTopicRef
)

func NewSourceTableRef(schemaTable string) ResourceRef {
	return ResourceRef{kind: SourceTableRef, value: schemaTable}
}

func NewWarehouseTableRef(schemaTable string) ResourceRef {
	return ResourceRef{kind: WarehouseTableRef, value: schemaTable}
}

func NewKafkaTopicRef(name string) ResourceRef {
	return ResourceRef{kind: KafkaTopicRef, value: name}
}

func (r ResourceRef) Kind() string {
	switch r.kind {
	case SourceTableRef:
		return "SourceTable"
	case WarehouseTableRef:
		return "WarehouseTable"
	case KafkaTopicRef:
		return "KafkaTopic"
	default:
		return "Unknown"
	}
}

func (r ResourceRef) Value() string { return r.value }

// ExecutionTarget derives the connection-profile name a model should run against,
// mirroring original_source's ExecutionTarget capability on ModelDecl.
func (m ModelDecl) ExecutionTarget() (string, error) {
	if len(m.Sources) == 0 {
		return "", ferrors.NewNotFound("execution target", m.QualifiedName())
	}
	first := m.Sources[0].SourceName
	for _, s := range m.Sources[1:] {
		if s.SourceName != first {
			return "", ferrors.NewUnsupported("model " + m.QualifiedName() + " reads from multiple source profiles")
		}
	}
	return first, nil
}

// kind tags which declaration kind a registered name belongs to.
type kind int

const (
	kindTransform kind = iota
	kindPipeline
	kindPredicate
	kindConnector
	kindModel
	kindPythonJob
)

// Catalog is the single-writer-then-read-only store. All mutation happens during
// the synchronous parse phase; after that phase, callers share it by reference
// without further locking concerns (the mutex remains only as a safety net for
// a writer that outlives the documented phase boundary).
type Catalog struct {
	mu sync.RWMutex

	transformsByName map[string]*TransformDecl
	transformsByID   map[uuid.UUID]*TransformDecl

	pipelines  map[string]*PipelineDecl
	predicates map[string]*PredicateDecl
	connectors map[string]*ConnectorDecl
	models     map[string]*ModelDecl
	pythonJobs map[string]*PythonJobDecl

	names map[string]kind // global name -> kind, for cross-kind collision detection
}

func New() *Catalog {
	return &Catalog{
		transformsByName: make(map[string]*TransformDecl),
		transformsByID:   make(map[uuid.UUID]*TransformDecl),
		pipelines:        make(map[string]*PipelineDecl),
		predicates:       make(map[string]*PredicateDecl),
		connectors:       make(map[string]*ConnectorDecl),
		models:           make(map[string]*ModelDecl),
		pythonJobs:       make(map[string]*PythonJobDecl),
		names:            make(map[string]kind),
	}
}

func (c *Catalog) checkNameFree(name string) error {
	if _, exists := c.names[name]; exists {
		return ferrors.NewDuplicate("declaration", name)
	}
	return nil
}

// RegisterPredicate inserts a predicate. Predicates have no forward dependencies.
func (c *Catalog) RegisterPredicate(p PredicateDecl) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkNameFree(p.Name); err != nil {
		return err
	}
	decl := p
	c.predicates[p.Name] = &decl
	c.names[p.Name] = kindPredicate
	return nil
}

// RegisterTransform inserts a transform. The name-index and UUID-index inserts are
// transactional: both succeed or both fail (spec.md §9 "Catalog identity").
func (c *Catalog) RegisterTransform(name string, configKV []ast.KV, body ast.SmtAST) (uuid.UUID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkNameFree(name); err != nil {
		return uuid.Nil, err
	}
	if body.PredicateName != "" {
		if _, ok := c.predicates[body.PredicateName]; !ok {
			return uuid.Nil, ferrors.NewNotFound("predicate", body.PredicateName)
		}
	}
	id := uuid.New()
	decl := &TransformDecl{ID: id, Name: name, ConfigKV: configKV, AST: body, CreatedAt: time.Now()}
	c.transformsByName[name] = decl
	c.transformsByID[id] = decl
	c.names[name] = kindTransform
	return id, nil
}

// RegisterPipeline inserts a pipeline. Referenced transforms must already be
// registered (spec.md §4.2: "NotFound if it references a not-yet-registered
// dependency"); predicate, if named, must already be registered too.
func (c *Catalog) RegisterPipeline(name string, transformNames []string, predicateName string, body ast.PipelineAST) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkNameFree(name); err != nil {
		return err
	}
	ids := make([]uuid.UUID, 0, len(transformNames))
	for _, tn := range transformNames {
		decl, ok := c.transformsByName[tn]
		if !ok {
			return ferrors.NewNotFound("transform", tn)
		}
		ids = append(ids, decl.ID)
	}
	if predicateName != "" {
		if _, ok := c.predicates[predicateName]; !ok {
			return ferrors.NewNotFound("predicate", predicateName)
		}
	}
	c.pipelines[name] = &PipelineDecl{Name: name, TransformIDs: ids, PredicateName: predicateName, AST: body}
	c.names[name] = kindPipeline
	return nil
}

// RegisterConnector inserts a connector. Referenced pipelines must already be registered.
func (c *Catalog) RegisterConnector(decl ConnectorDecl) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkNameFree(decl.Name); err != nil {
		return err
	}
	for _, pn := range decl.PipelineNames {
		if _, ok := c.pipelines[pn]; !ok {
			return ferrors.NewNotFound("pipeline", pn)
		}
	}
	d := decl
	c.connectors[decl.Name] = &d
	c.names[decl.Name] = kindConnector
	return nil
}

// RegisterModel inserts a model, keyed by its qualified "<schema>.<name>".
func (c *Catalog) RegisterModel(decl ModelDecl) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	qn := decl.QualifiedName()
	if err := c.checkNameFree(qn); err != nil {
		return err
	}
	d := decl
	c.models[qn] = &d
	c.names[qn] = kindModel
	return nil
}

// RegisterPythonJob inserts a Python batch job declaration.
func (c *Catalog) RegisterPythonJob(decl PythonJobDecl) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkNameFree(decl.Name); err != nil {
		return err
	}
	d := decl
	c.pythonJobs[decl.Name] = &d
	c.names[decl.Name] = kindPythonJob
	return nil
}

func (c *Catalog) GetPythonJob(name string) (*PythonJobDecl, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if decl, ok := c.pythonJobs[name]; ok {
		return decl, nil
	}
	return nil, ferrors.NewNotFound("python job", name)
}

func (c *Catalog) AllPythonJobs() []*PythonJobDecl {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*PythonJobDecl, 0, len(c.pythonJobs))
	for _, j := range c.pythonJobs {
		out = append(out, j)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// GetTransform resolves by name or by UUID string form.
func (c *Catalog) GetTransform(key string) (*TransformDecl, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if decl, ok := c.transformsByName[key]; ok {
		return decl, nil
	}
	if id, err := uuid.Parse(key); err == nil {
		if decl, ok := c.transformsByID[id]; ok {
			return decl, nil
		}
	}
	return nil, ferrors.NewNotFound("transform", key)
}

func (c *Catalog) GetTransformByID(id uuid.UUID) (*TransformDecl, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if decl, ok := c.transformsByID[id]; ok {
		return decl, nil
	}
	return nil, ferrors.NewNotFound("transform", id.String())
}

func (c *Catalog) GetPipeline(name string) (*PipelineDecl, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if decl, ok := c.pipelines[name]; ok {
		return decl, nil
	}
	return nil, ferrors.NewNotFound("pipeline", name)
}

func (c *Catalog) GetPredicate(name string) (*PredicateDecl, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if decl, ok := c.predicates[name]; ok {
		return decl, nil
	}
	return nil, ferrors.NewNotFound("predicate", name)
}

func (c *Catalog) GetConnector(name string) (*ConnectorDecl, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if decl, ok := c.connectors[name]; ok {
		return decl, nil
	}
	return nil, ferrors.NewNotFound("connector", name)
}

func (c *Catalog) GetModel(qualifiedName string) (*ModelDecl, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if decl, ok := c.models[qualifiedName]; ok {
		return decl, nil
	}
	return nil, ferrors.NewNotFound("model", qualifiedName)
}

// TransformIDs resolves a list of transform names to UUIDs, preserving order,
// failing NotFound on the first miss (spec.md §4.2).
func (c *Catalog) TransformIDs(names []string) ([]uuid.UUID, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]uuid.UUID, 0, len(names))
	for _, n := range names {
		decl, ok := c.transformsByName[n]
		if !ok {
			return nil, ferrors.NewNotFound("transform", n)
		}
		ids = append(ids, decl.ID)
	}
	return ids, nil
}

// AllModels returns every registered model, sorted by qualified name for deterministic iteration.
func (c *Catalog) AllModels() []*ModelDecl {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*ModelDecl, 0, len(c.models))
	for _, m := range c.models {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QualifiedName() < out[j].QualifiedName() })
	return out
}

// AllConnectors returns every registered connector, sorted by name.
func (c *Catalog) AllConnectors() []*ConnectorDecl {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*ConnectorDecl, 0, len(c.connectors))
	for _, cn := range c.connectors {
		out = append(out, cn)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
