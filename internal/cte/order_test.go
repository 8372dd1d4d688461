package cte

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrder_DependenciesFirst(t *testing.T) {
	d := defs(
		"c", "SELECT * FROM b",
		"b", "SELECT * FROM a",
		"a", "SELECT 1",
	)

	ordering := Order(d, Dependencies(d))

	assert.Equal(t, []string{"a", "b", "c"}, ordering.Keys)
	assert.Empty(t, ordering.Excluded)
}

func TestOrder_IndependentKeepDeclarationOrder(t *testing.T) {
	d := defs(
		"z", "SELECT 1",
		"m", "SELECT 2",
		"a", "SELECT 3",
	)

	ordering := Order(d, Dependencies(d))

	assert.Equal(t, []string{"z", "m", "a"}, ordering.Keys)
}

func TestOrder_Diamond(t *testing.T) {
	d := defs(
		"top", "SELECT * FROM left_side JOIN right_side ON 1 = 1",
		"left_side", "SELECT * FROM base",
		"right_side", "SELECT * FROM base",
		"base", "SELECT 1",
	)

	ordering := Order(d, Dependencies(d))

	assert.Equal(t, []string{"base", "left_side", "right_side", "top"}, ordering.Keys)
}

func TestOrder_CyclesExcluded(t *testing.T) {
	d := defs(
		"a", "SELECT * FROM b",
		"b", "SELECT * FROM a",
		"c", "SELECT * FROM a",
		"d", "SELECT 1",
	)

	ordering := Order(d, Dependencies(d))

	assert.Equal(t, []string{"d"}, ordering.Keys)
	assert.Equal(t, []string{"a", "b", "c"}, ordering.Excluded)
}

func TestOrder_Empty(t *testing.T) {
	ordering := Order(nil, DependencyMap{})

	assert.Empty(t, ordering.Keys)
	assert.Empty(t, ordering.Excluded)
}
