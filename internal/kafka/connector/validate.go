package connector

import (
	"github.com/foundryhq/foundry/internal/ast"
	"github.com/foundryhq/foundry/internal/catalog"
	"github.com/foundryhq/foundry/internal/ferrors"
	"github.com/foundryhq/foundry/internal/version"
)

// validate is stage 3 (spec.md §4.3 stage 3): gate every known field against
// the schema's version matrix, gate every SMT field against its kind's
// matrix, check each predicate's kind-specific required fields, and check
// the structural rules. Every violation is collected
// into one ErrorBag and reported together (deterministic, order-independent).
func validate(decl *catalog.ConnectorDecl, inter *Intermediate, composed *Composed, targetVersion version.Version) error {
	bag := &ferrors.ErrorBag{}

	if inter.Schema.Strict && inter.CustomProps.Len() > 0 {
		for _, k := range inter.CustomProps.Keys() {
			bag.Add("unrecognized property %q for strict connector schema", k)
		}
	}

	matrix := inter.Schema.matrix()
	for _, key := range inter.KnownOrder {
		if err := matrix.ValidateFieldSupported(key, targetVersion); err != nil {
			bag.Add("%v", err)
		}
	}

	if decl.Kind == ast.Sink {
		_, hasTopics := inter.Known.Get("topics")
		_, hasTopicsRegex := inter.Known.Get("topics.regex")
		bag.CheckOneOf("sink topics/topics.regex", map[string]bool{
			"topics":       hasTopics,
			"topics.regex": hasTopicsRegex,
		})
	}

	for _, t := range composed.Transforms {
		t.Validate(bag)
		t.ValidateVersion(targetVersion, bag)
	}
	for _, p := range composed.Predicates {
		if err := p.Validate(); err != nil {
			bag.Add("%v", err)
		}
	}

	return bag.Finish()
}
