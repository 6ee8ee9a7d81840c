// Package predicate implements the Kafka Connect predicate kinds a transform
// may reference to condition its application, and their flat-key serialization.
//
// TopicNameMatches is named in the original spec; RecordIsTombstone and
// HasHeaderKey are supplemental kinds; Custom is carried over from original_source's
// `PredicateKind` enum (crates/components/src/kafka/predicates.rs) as a
// pass-through escape hatch.
package predicate

import (
	"sort"

	"github.com/foundryhq/foundry/internal/ferrors"
)

// Kind identifies which predicate implementation a declaration selects.
type Kind string

const (
	TopicNameMatches  Kind = "TopicNameMatches"
	RecordIsTombstone Kind = "RecordIsTombstone"
	HasHeaderKey      Kind = "HasHeaderKey"
	Custom            Kind = "Custom"
)

// className is the fully-qualified Kafka Connect predicate class per kind.
var className = map[Kind]string{
	TopicNameMatches:  "org.apache.kafka.connect.transforms.predicates.TopicNameMatches",
	RecordIsTombstone: "org.apache.kafka.connect.transforms.predicates.RecordIsTombstone",
	HasHeaderKey:      "org.apache.kafka.connect.transforms.predicates.HasHeaderKey",
}

// Predicate is a fully-resolved predicate declaration ready for serialization.
type Predicate struct {
	Name    string
	Kind    Kind
	Pattern string // TopicNameMatches
	Header  string // HasHeaderKey "name" prop
	Class   string // Custom
	Props   map[string]string // Custom, passed through verbatim
}

// ClassName resolves the fully-qualified class name, using Class directly for Custom.
func (p Predicate) ClassName() (string, error) {
	if p.Kind == Custom {
		if p.Class == "" {
			return "", ferrors.NewMissingConfig("predicate " + p.Name + " class")
		}
		return p.Class, nil
	}
	cn, ok := className[p.Kind]
	if !ok {
		return "", ferrors.NewUnsupported("predicate kind " + string(p.Kind))
	}
	return cn, nil
}

// Validate checks the kind-specific structural rules.
func (p Predicate) Validate() error {
	switch p.Kind {
	case TopicNameMatches:
		if p.Pattern == "" {
			return ferrors.NewMissingConfig("predicate " + p.Name + " pattern")
		}
	case HasHeaderKey:
		if p.Header == "" {
			return ferrors.NewMissingConfig("predicate " + p.Name + " name")
		}
	case RecordIsTombstone:
		// no extra props
	case Custom:
		if p.Class == "" {
			return ferrors.NewMissingConfig("predicate " + p.Name + " class")
		}
	default:
		return ferrors.NewUnsupported("predicate kind " + string(p.Kind))
	}
	return nil
}

// OrderedEntry is one flat key=value pair, used to preserve insertion order
// across the whole connector property map (spec.md §9 "Flat property emission").
type OrderedEntry struct {
	Key   string
	Value string
}

// Flatten serializes one predicate's `predicates.<name>.*` keys: `type` first,
// then the kind's own keys (a Custom predicate's props in sorted key order).
func (p Predicate) Flatten() ([]OrderedEntry, error) {
	class, err := p.ClassName()
	if err != nil {
		return nil, err
	}
	prefix := "predicates." + p.Name + "."
	entries := []OrderedEntry{{Key: prefix + "type", Value: class}}
	switch p.Kind {
	case TopicNameMatches:
		entries = append(entries, OrderedEntry{Key: prefix + "pattern", Value: p.Pattern})
	case HasHeaderKey:
		entries = append(entries, OrderedEntry{Key: prefix + "name", Value: p.Header})
	case RecordIsTombstone:
		// no extra keys
	case Custom:
		keys := make([]string, 0, len(p.Props))
		for k := range p.Props {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			entries = append(entries, OrderedEntry{Key: prefix + k, Value: p.Props[k]})
		}
	}
	return entries, nil
}
