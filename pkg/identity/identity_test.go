package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	a, err := Parse("  GABC  ")
	require.NoError(t, err)
	assert.Equal(t, Address("GABC"), a)

	_, err = Parse("   ")
	assert.ErrorIs(t, err, ErrEmptyAddress)
}

func TestEqual(t *testing.T) {
	assert.True(t, Address("alice").Equal("alice"))
	assert.False(t, Address("alice").Equal("Alice"), "comparison is exact")
}

func TestNewIsUnique(t *testing.T) {
	a, b := New(), New()
	assert.NotEqual(t, a, b)
	assert.NotEmpty(t, a.String())
}
