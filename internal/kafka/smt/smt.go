// Package smt implements the Kafka Connect Simple Message Transform kinds a
// pipeline may compose, their per-field version matrices, and their
// structural validation rules (spec.md §4.3).
//
// ByLogicalTableRouter, HeaderToValue, TimezoneConverter, and
// PartitionRouting carry the structural rules the spec names explicitly.
// ExtractNewRecordState and Custom are carried over from original_source's
// `SmtKind` enum (crates/common/src/types/kafka/smt.rs).
package smt

import (
	"sort"
	"strings"

	"github.com/foundryhq/foundry/internal/ferrors"
	"github.com/foundryhq/foundry/internal/version"
)

type Kind string

const (
	ByLogicalTableRouter  Kind = "ByLogicalTableRouter"
	HeaderToValue         Kind = "HeaderToValue"
	TimezoneConverter     Kind = "TimezoneConverter"
	PartitionRouting      Kind = "PartitionRouting"
	ExtractNewRecordState Kind = "ExtractNewRecordState"
	Custom                Kind = "Custom"
)

var className = map[Kind]string{
	ByLogicalTableRouter:  "io.debezium.transforms.ByLogicalTableRouter",
	HeaderToValue:         "org.apache.kafka.connect.transforms.HeaderToValue",
	TimezoneConverter:     "io.debezium.transforms.TimezoneConverter",
	PartitionRouting:      "io.confluent.connect.transforms.PartitionRouting",
	ExtractNewRecordState: "io.debezium.transforms.ExtractNewRecordState",
}

// Transform is a fully-resolved SMT, already carrying its alias (assigned by
// the connector compiler as "<pipeline>_<transform>") and optional predicate
// reference.
type Transform struct {
	Alias         string
	Kind          Kind
	Class         string // Custom only
	Props         map[string]string
	PredicateName string
	Negate        bool
}

func (t Transform) ClassName() (string, error) {
	if t.Kind == Custom {
		if t.Class == "" {
			return "", ferrors.NewMissingConfig("transform " + t.Alias + " class")
		}
		return t.Class, nil
	}
	cn, ok := className[t.Kind]
	if !ok {
		return "", ferrors.NewUnsupported("smt kind " + string(t.Kind))
	}
	return cn, nil
}

func prop(props map[string]string, key string) (string, bool) {
	v, ok := props[key]
	return v, ok
}

func containsSpace(s string) bool { return strings.ContainsAny(s, " \t\n") }

// Validate checks the per-kind structural rules in spec.md §4.3. Errors are
// accumulated in bag rather than returned immediately, so a single compile
// reports every violation at once.
func (t Transform) Validate(bag *ferrors.ErrorBag) {
	switch t.Kind {
	case ByLogicalTableRouter:
		topicRegex, hasTopicRegex := prop(t.Props, "topic.regex")
		topicReplacement, hasTopicReplacement := prop(t.Props, "topic.replacement")
		_ = topicRegex
		if hasTopicReplacement && !hasTopicRegex {
			bag.Add("%s: topic.replacement requires topic.regex", t.Alias)
		}
		_ = topicReplacement
		keyFieldRegex, hasKeyFieldRegex := prop(t.Props, "key.field.regex")
		keyFieldReplacement, hasKeyFieldReplacement := prop(t.Props, "key.field.replacement")
		_ = keyFieldReplacement
		if hasKeyFieldReplacement && !hasKeyFieldRegex {
			bag.Add("%s: key.field.replacement requires key.field.regex", t.Alias)
		}
		if hasKeyFieldRegex || hasKeyFieldReplacement {
			if enforce, ok := prop(t.Props, "key.enforce.uniqueness"); ok && enforce == "false" {
				bag.Add("%s: key-field options require key.enforce.uniqueness != false", t.Alias)
			}
		}
		if sizeStr, ok := prop(t.Props, "logical.table.cache.size"); ok {
			if sizeStr == "0" || strings.HasPrefix(sizeStr, "-") {
				bag.Add("%s: logical.table.cache.size must be greater than zero", t.Alias)
			}
		}
	case HeaderToValue:
		headers, hasHeaders := prop(t.Props, "headers")
		fields, hasFields := prop(t.Props, "fields")
		_, hasOp := prop(t.Props, "operation")
		if !hasHeaders {
			bag.Add("%s: headers is required", t.Alias)
		} else if containsSpace(headers) {
			bag.Add("%s: headers must not contain spaces", t.Alias)
		}
		if !hasFields {
			bag.Add("%s: fields is required", t.Alias)
		} else if containsSpace(fields) {
			bag.Add("%s: fields must not contain spaces", t.Alias)
		}
		if !hasOp {
			bag.Add("%s: operation is required", t.Alias)
		}
	case TimezoneConverter:
		_, hasInclude := prop(t.Props, "include.list")
		_, hasExclude := prop(t.Props, "exclude.list")
		bag.CheckOneOf(t.Alias+" TimezoneConverter include/exclude list", map[string]bool{
			"include.list": hasInclude,
			"exclude.list": hasExclude,
		})
		list, _ := prop(t.Props, "include.list")
		if !hasInclude {
			list, _ = prop(t.Props, "exclude.list")
		}
		for _, rule := range strings.Split(list, ",") {
			rule = strings.TrimSpace(rule)
			if rule == "" {
				continue
			}
			if !strings.Contains(rule, ":") {
				bag.Add("%s: rule %q must contain a ':' separator", t.Alias, rule)
			}
		}
	case PartitionRouting:
		fields, hasFields := prop(t.Props, "partition.payload.fields")
		_, hasNum := prop(t.Props, "partition.topic.num")
		if !hasFields {
			bag.Add("%s: partition.payload.fields is required", t.Alias)
		} else if containsSpace(fields) {
			bag.Add("%s: partition.payload.fields must not contain spaces", t.Alias)
		}
		if !hasNum {
			bag.Add("%s: partition.topic.num is required", t.Alias)
		}
	case ExtractNewRecordState, Custom:
		// always-compatible, no structural rules beyond class presence (checked in ClassName)
	}
}

// ValidateVersion gates every set property against the kind's version matrix.
func (t Transform) ValidateVersion(target version.Version, bag *ferrors.ErrorBag) {
	m, ok := matrices[t.Kind]
	if !ok {
		return
	}
	keys := make([]string, 0, len(t.Props))
	for k := range t.Props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, field := range keys {
		if err := m.ValidateFieldSupported(field, target); err != nil {
			bag.Add("%s: %v", t.Alias, err)
		}
	}
}

// matrices declares per-field version compatibility next to each kind
// (spec.md §9 "Versioned schemas"). All structural fields here are declared
// `always`-compatible; kinds with narrower support windows would gain
// `version.SupportedRange` entries as those become known.
var matrices = map[Kind]*version.Matrix{
	ByLogicalTableRouter: version.NewMatrix().
		Field("topic.regex", version.AlwaysSupported()).
		Field("topic.replacement", version.AlwaysSupported()).
		Field("key.field.regex", version.AlwaysSupported()).
		Field("key.field.replacement", version.AlwaysSupported()).
		Field("key.enforce.uniqueness", version.AlwaysSupported()).
		Field("logical.table.cache.size", version.AlwaysSupported()),
	HeaderToValue: version.NewMatrix().
		Field("headers", version.AlwaysSupported()).
		Field("fields", version.AlwaysSupported()).
		Field("operation", version.AlwaysSupported()),
	TimezoneConverter: version.NewMatrix().
		Field("include.list", version.AlwaysSupported()).
		Field("exclude.list", version.AlwaysSupported()),
	PartitionRouting: version.NewMatrix().
		Field("partition.payload.fields", version.AlwaysSupported()).
		Field("partition.topic.num", version.AlwaysSupported()),
	ExtractNewRecordState: version.NewMatrix().
		Field("drop.tombstones", version.AlwaysSupported()).
		Field("delete.handling.mode", version.AlwaysSupported()).
		Field("add.headers", version.AlwaysSupported()).
		Field("route.by.field", version.AlwaysSupported()),
}

type OrderedEntry struct {
	Key   string
	Value string
}

// Flatten serializes one transform's `transforms.<alias>.*` keys, props in
// sorted key order (only the overall property-map order is spec-fixed; the
// per-transform prop order is not externally observable beyond that).
func (t Transform) Flatten() ([]OrderedEntry, error) {
	class, err := t.ClassName()
	if err != nil {
		return nil, err
	}
	prefix := "transforms." + t.Alias + "."
	entries := []OrderedEntry{{Key: prefix + "type", Value: class}}
	keys := make([]string, 0, len(t.Props))
	for k := range t.Props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		entries = append(entries, OrderedEntry{Key: prefix + k, Value: t.Props[k]})
	}
	if t.PredicateName != "" {
		entries = append(entries, OrderedEntry{Key: prefix + "predicate", Value: t.PredicateName})
		if t.Negate {
			entries = append(entries, OrderedEntry{Key: prefix + "negate", Value: "true"})
		}
	}
	return entries, nil
}
