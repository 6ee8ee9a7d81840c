package version

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	v, err := Parse("2.6")
	require.NoError(t, err)
	require.Equal(t, Version{Major: 2, Minor: 6}, v)

	_, err = Parse("not-a-version")
	require.Error(t, err)
}

func TestVersionCompare(t *testing.T) {
	t.Parallel()

	require.True(t, (Version{Major: 1, Minor: 0}).LessThan(Version{Major: 1, Minor: 1}))
	require.True(t, (Version{Major: 2, Minor: 0}).GreaterThan(Version{Major: 1, Minor: 9}))
	require.True(t, (Version{Major: 1, Minor: 5}).Equal(Version{Major: 1, Minor: 5}))
}

func TestMatrixValidateFieldSupported(t *testing.T) {
	t.Parallel()

	m := NewMatrix().
		Field("always.field", AlwaysSupported()).
		Field("ranged.field", SupportedRange(Version{Major: 2, Minor: 0}, Version{Major: 2, Minor: 9}))

	require.NoError(t, m.ValidateFieldSupported("always.field", Version{Major: 1, Minor: 0}))
	require.NoError(t, m.ValidateFieldSupported("ranged.field", Version{Major: 2, Minor: 5}))
	require.Error(t, m.ValidateFieldSupported("ranged.field", Version{Major: 1, Minor: 9}))
	require.Error(t, m.ValidateFieldSupported("ranged.field", Version{Major: 3, Minor: 0}))
	require.Error(t, m.ValidateFieldSupported("unknown.field", Version{Major: 1, Minor: 0}))
}

func TestMatrixUnboundedMax(t *testing.T) {
	t.Parallel()

	m := NewMatrix().Field("f", SupportedRange(Version{Major: 1, Minor: 0}, Version{}))
	require.NoError(t, m.ValidateFieldSupported("f", Version{Major: 99, Minor: 0}))
}

func TestValuesMatrixValidateValueSupported(t *testing.T) {
	t.Parallel()

	vm := NewValuesMatrix("mode").
		Value("strict", AlwaysSupported()).
		Value("lenient", SupportedRange(Version{Major: 2, Minor: 0}, Version{}))

	require.NoError(t, vm.ValidateValueSupported("strict", Version{Major: 1, Minor: 0}))
	require.Error(t, vm.ValidateValueSupported("lenient", Version{Major: 1, Minor: 0}))
	require.Error(t, vm.ValidateValueSupported("unknown", Version{Major: 1, Minor: 0}))
}
