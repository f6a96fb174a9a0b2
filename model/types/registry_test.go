package types

import (
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistry_Kinds(t *testing.T) {
	registry := DefaultRegistry()
	codes := registry.Codes()
	sort.Strings(codes)
	assert.Equal(t, []string{"CONDITION", "END", "LLM", "PARALLEL", "START", "TASK"}, codes)

	assert.True(t, registry.IsStart(TypeStart))
	assert.True(t, registry.IsEnd(TypeEnd))
	assert.True(t, registry.IsControl(TypeCondition))
	assert.True(t, registry.IsControl(TypeParallel))
	assert.True(t, registry.IsParallel(TypeParallel))
	assert.False(t, registry.IsParallel(TypeCondition))
	assert.True(t, registry.IsLLM(TypeLLM))
	assert.True(t, registry.RequiresConfig(TypeLLM))
	assert.False(t, registry.RequiresConfig(TypeTask))
	assert.False(t, registry.IsValidNodeType("HTTP"))
}

func TestRegistry_ValidateNodeConfig(t *testing.T) {
	registry := DefaultRegistry()
	testCases := []struct {
		name      string
		code      string
		config    string
		expectErr bool
	}{
		{name: "task empty", code: TypeTask, config: ""},
		{name: "task object", code: TypeTask, config: `{"a":1}`},
		{name: "task array", code: TypeTask, config: `[1]`, expectErr: true},
		{name: "task malformed", code: TypeTask, config: `{`, expectErr: true},
		{name: "condition ok", code: TypeCondition, config: `{"expression":"a > 1"}`},
		{name: "condition missing expression", code: TypeCondition, config: `{"x":1}`, expectErr: true},
		{name: "llm missing prompt", code: TypeLLM, config: `{"model":"m"}`, expectErr: true},
		{name: "llm ok", code: TypeLLM, config: `{"prompt":"hi"}`},
		{name: "unknown type", code: "HTTP", config: ``, expectErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := registry.ValidateNodeConfig(tc.code, tc.config)
			if !tc.expectErr {
				assert.NoError(t, err)
				return
			}
			var configErr *ConfigValidationError
			assert.True(t, errors.As(err, &configErr))
		})
	}
}

func TestRegistry_ValidateEdgeConfig(t *testing.T) {
	registry := NewRegistry(&NodeType{
		Code: "SWITCH",
		Kind: KindControl,
		Edge: RequireFields("SWITCH", "when"),
	})
	assert.NoError(t, registry.ValidateEdgeConfig("SWITCH", ""))
	assert.NoError(t, registry.ValidateEdgeConfig("SWITCH", `{"when":"x"}`))
	assert.Error(t, registry.ValidateEdgeConfig("SWITCH", `{"other":"x"}`))
	assert.Error(t, registry.ValidateEdgeConfig("SWITCH", `"x"`))
	assert.NoError(t, registry.ValidateEdgeConfig("UNKNOWN", `{}`))
}
