// Package criteria matches entities against dao list parameters.
package criteria

import (
	"fmt"

	"github.com/viant/flowcore/service/dao"
)

// Match reports whether entity satisfies every parameter. Entities that do
// not expose attributes match any parameters.
func Match(entity interface{}, parameters []*dao.Parameter) bool {
	if len(parameters) == 0 {
		return true
	}
	attributed, ok := entity.(dao.Attributed)
	if !ok {
		return true
	}
	attributes := attributed.Attributes()
	for _, parameter := range parameters {
		if parameter == nil {
			continue
		}
		actual, ok := attributes[parameter.Name]
		if !ok {
			return false
		}
		if !matchValue(actual, parameter.Value) {
			return false
		}
	}
	return true
}

func matchValue(actual, expected interface{}) bool {
	switch values := expected.(type) {
	case []string:
		text := fmt.Sprint(actual)
		for _, candidate := range values {
			if candidate == text {
				return true
			}
		}
		return false
	default:
		return fmt.Sprint(actual) == fmt.Sprint(expected)
	}
}
