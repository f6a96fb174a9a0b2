package criteria

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/flowcore/service/dao"
)

type record struct {
	state   string
	version int
}

func (r *record) Attributes() map[string]interface{} {
	return map[string]interface{}{"state": r.state, "version": r.version}
}

func TestMatch(t *testing.T) {
	testCases := []struct {
		name       string
		entity     interface{}
		parameters []*dao.Parameter
		expected   bool
	}{
		{name: "no parameters", entity: &record{state: "DRAFT"}, expected: true},
		{name: "single value", entity: &record{state: "DRAFT"}, parameters: []*dao.Parameter{dao.NewParameter("state", "DRAFT")}, expected: true},
		{name: "mismatch", entity: &record{state: "DRAFT"}, parameters: []*dao.Parameter{dao.NewParameter("state", "PUBLISHED")}, expected: false},
		{name: "any of", entity: &record{state: "DRAFT"}, parameters: []*dao.Parameter{dao.NewParameter("state", "PUBLISHED", "DRAFT")}, expected: true},
		{name: "numeric", entity: &record{version: 2}, parameters: []*dao.Parameter{{Name: "version", Value: 2}}, expected: true},
		{name: "unknown attribute", entity: &record{}, parameters: []*dao.Parameter{dao.NewParameter("owner", "x")}, expected: false},
		{name: "not attributed", entity: struct{}{}, parameters: []*dao.Parameter{dao.NewParameter("owner", "x")}, expected: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Match(tc.entity, tc.parameters))
		})
	}
}
