package smt

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/foundryhq/foundry/internal/ferrors"
	"github.com/foundryhq/foundry/internal/version"
)

func TestClassNameKnownAndCustom(t *testing.T) {
	t.Parallel()

	tr := Transform{Alias: "a", Kind: ByLogicalTableRouter}
	class, err := tr.ClassName()
	require.NoError(t, err)
	require.Equal(t, "io.debezium.transforms.ByLogicalTableRouter", class)

	custom := Transform{Alias: "c", Kind: Custom, Class: "com.example.CustomSmt"}
	class, err = custom.ClassName()
	require.NoError(t, err)
	require.Equal(t, "com.example.CustomSmt", class)

	missingClass := Transform{Alias: "c", Kind: Custom}
	_, err = missingClass.ClassName()
	require.Error(t, err)
}

func TestByLogicalTableRouterStructuralRules(t *testing.T) {
	t.Parallel()

	bag := &ferrors.ErrorBag{}
	tr := Transform{
		Alias: "router",
		Kind:  ByLogicalTableRouter,
		Props: map[string]string{"topic.replacement": "orders_combined"},
	}
	tr.Validate(bag)
	require.False(t, bag.Empty())
}

func TestHeaderToValueRequiresFieldsAndRejectsSpaces(t *testing.T) {
	t.Parallel()

	bag := &ferrors.ErrorBag{}
	tr := Transform{
		Alias: "h2v",
		Kind:  HeaderToValue,
		Props: map[string]string{"headers": "a, b", "fields": "x,y", "operation": "copy"},
	}
	tr.Validate(bag)
	require.False(t, bag.Empty())

	bag = &ferrors.ErrorBag{}
	tr.Props = map[string]string{"headers": "a,b", "fields": "x,y", "operation": "copy"}
	tr.Validate(bag)
	require.True(t, bag.Empty())
}

func TestTimezoneConverterRequiresIncludeXorExcludeAndColonRule(t *testing.T) {
	t.Parallel()

	bag := &ferrors.ErrorBag{}
	tr := Transform{Alias: "tz", Kind: TimezoneConverter}
	tr.Validate(bag)
	require.False(t, bag.Empty())

	bag = &ferrors.ErrorBag{}
	tr.Props = map[string]string{"include.list": "table1"}
	tr.Validate(bag)
	require.False(t, bag.Empty()) // missing ':' separator

	bag = &ferrors.ErrorBag{}
	tr.Props = map[string]string{"include.list": "table1:UTC"}
	tr.Validate(bag)
	require.True(t, bag.Empty())
}

func TestPartitionRoutingRequiredFields(t *testing.T) {
	t.Parallel()

	bag := &ferrors.ErrorBag{}
	tr := Transform{Alias: "pr", Kind: PartitionRouting}
	tr.Validate(bag)
	require.False(t, bag.Empty())

	bag = &ferrors.ErrorBag{}
	tr.Props = map[string]string{"partition.payload.fields": "id", "partition.topic.num": "4"}
	tr.Validate(bag)
	require.True(t, bag.Empty())
}

func TestValidateVersionRejectsUnknownField(t *testing.T) {
	t.Parallel()

	bag := &ferrors.ErrorBag{}
	tr := Transform{
		Alias: "h2v",
		Kind:  HeaderToValue,
		Props: map[string]string{"headers": "a", "unknown.field": "x"},
	}
	tr.ValidateVersion(version.Version{Major: 1, Minor: 0}, bag)
	require.False(t, bag.Empty())
}

func TestFlattenProducesSortedPrefixedKeys(t *testing.T) {
	t.Parallel()

	tr := Transform{
		Alias:         "mask",
		Kind:          HeaderToValue,
		Props:         map[string]string{"operation": "copy", "fields": "email", "headers": "pii"},
		PredicateName: "is_pii",
		Negate:        true,
	}
	entries, err := tr.Flatten()
	require.NoError(t, err)

	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = e.Key
	}
	require.Equal(t, []string{
		"transforms.mask.type",
		"transforms.mask.fields",
		"transforms.mask.headers",
		"transforms.mask.operation",
		"transforms.mask.predicate",
		"transforms.mask.negate",
	}, keys)
}
