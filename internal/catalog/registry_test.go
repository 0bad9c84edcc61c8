package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistryResolvesBuiltins(t *testing.T) {
	r := Default()

	for _, typeID := range []string{
		"constant_bool", "constant_int", "constant_float", "constant_string",
		"add", "subtract", "multiply", "divide",
		"branch", "entry", "log",
	} {
		logic, err := r.Resolve(typeID)
		require.NoError(t, err, typeID)
		assert.Equal(t, typeID, logic.Describe().ID)
	}
}

func TestResolveUnknownType(t *testing.T) {
	_, err := Default().Resolve("does-not-exist")
	assert.Error(t, err)
}

func TestTypesListsEveryRegistration(t *testing.T) {
	r := Default()
	assert.Len(t, r.Types(), 11)
}
