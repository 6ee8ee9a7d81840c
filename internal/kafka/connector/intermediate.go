package connector

import "github.com/foundryhq/foundry/internal/ast"

// Intermediate is stage 1's output: the connector's raw declared properties
// split into the fields its schema recognizes and everything else
// (spec.md §4.3 stage 1).
type Intermediate struct {
	Schema      Schema
	Known       *OrderedProps // only keys present in schema.Fields, declaration order
	KnownOrder  []string      // raw declaration order of known keys, for stage 2/3 replay
	CustomProps *OrderedProps // keys schema.Fields does not recognize
}

// buildIntermediate splits raw declared "k"="v" pairs (declaration order
// preserved) into known schema fields and custom_props. A non-strict
// ("custom") schema accepts anything in CustomProps; a strict schema must
// have it empty (validated in stage 3).
func buildIntermediate(schema Schema, raw []ast.KV) *Intermediate {
	known := schema.fieldNames()
	out := &Intermediate{
		Schema:      schema,
		Known:       NewOrderedProps(),
		CustomProps: NewOrderedProps(),
	}
	for _, kv := range raw {
		if known[kv.Key] {
			out.Known.Set(kv.Key, kv.Value)
			out.KnownOrder = append(out.KnownOrder, kv.Key)
		} else {
			out.CustomProps.Set(kv.Key, kv.Value)
		}
	}
	return out
}
