package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOperationsSetAndClear(t *testing.T) {
	var op Operations

	assert.Equal(t, op, Operations(0))
	assert.False(t, op.IsSupported(Create))

	op.Set(Create | Delete)
	assert.True(t, op.IsSupported(Create))
	assert.True(t, op.IsSupported(Delete))

	op.Clear(Create)
	assert.False(t, op.IsSupported(Create))
	assert.True(t, op.IsSupported(Delete))
}

func TestOperationsAdd(t *testing.T) {
	op, err := Ops(OperationNames...)
	assert.NoError(t, err)
	assert.Equal(t, AllOperations, op)
	assert.True(t, op.IsSupported(Create))
	assert.True(t, op.IsSupported(Read))
	assert.True(t, op.IsSupported(List))
	assert.True(t, op.IsSupported(Update))
	assert.True(t, op.IsSupported(Delete))
}

func TestOperationsAddInvalid(t *testing.T) {
	op, err := Ops("List", "Drop")
	assert.EqualError(t, err, "invalid operation: Drop")
	assert.True(t, op.IsSupported(List))
	assert.False(t, op.IsSupported(Delete))
}

func TestOperationsOnlyAndWithout(t *testing.T) {
	nested := AllOperations.Only(List | Create)
	assert.True(t, nested.IsSupported(List))
	assert.True(t, nested.IsSupported(Create))
	assert.False(t, nested.IsSupported(Read))

	users := AllOperations.Without(Create)
	assert.False(t, users.IsSupported(Create))
	assert.True(t, users.IsSupported(Delete))

	var none Operations
	assert.Equal(t, none, Operations(List).Only(Delete))
}
