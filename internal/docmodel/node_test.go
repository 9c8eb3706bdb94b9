package docmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCategory(t *testing.T) {
	assert.Equal(t, CategoryModule, NormalizeCategory(""))
	assert.Equal(t, CategoryModule, NormalizeCategory("modules"))
	assert.Equal(t, CategoryException, NormalizeCategory("Exception"))
	assert.Equal(t, CategoryException, NormalizeCategory("exceptions"))
	assert.Equal(t, CategoryProtocol, NormalizeCategory("protocols"))
	assert.Equal(t, CategoryModule, NormalizeCategory("garbage"))
}

func TestByCategoryPreservesOrder(t *testing.T) {
	nodes := []Node{
		{ID: "A", Category: CategoryModule},
		{ID: "B", Category: CategoryException},
		{ID: "C", Category: CategoryModule},
		{ID: "D", Category: CategoryProtocol},
	}
	mods := ByCategory(nodes, CategoryModule)
	assert.Equal(t, []string{"A", "C"}, []string{mods[0].ID, mods[1].ID})
	assert.Len(t, ByCategory(nodes, CategoryProtocol), 1)
	assert.Empty(t, ByCategory(nil, CategoryModule))
}

func TestDisplayTitle(t *testing.T) {
	assert.Equal(t, "MyApp", Node{ID: "MyApp"}.DisplayTitle())
	assert.Equal(t, "My App", Node{ID: "MyApp", Title: "My App"}.DisplayTitle())
}

func TestValidateNodes(t *testing.T) {
	assert.NoError(t, ValidateNodes([]Node{{ID: "A"}, {ID: "B"}}))
	assert.Error(t, ValidateNodes([]Node{{ID: ""}}))
	assert.Error(t, ValidateNodes([]Node{{ID: "A"}, {ID: "A"}}))
}
