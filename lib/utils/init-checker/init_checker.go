package initchecker

import (
	"reflect"
	"strings"

	"github.com/pkg/errors"
)

// Dependency is a package-level instance that has to be set before the service starts.
type Dependency struct {
	Name  string
	Value interface{}
}

func Require(name string, value interface{}) Dependency {
	return Dependency{Name: name, Value: value}
}

// Check names every dependency that is still unset, typed nil pointers included.
func Check(deps ...Dependency) error {
	missing := []string{}
	for _, dep := range deps {
		if isNil(dep.Value) {
			missing = append(missing, dep.Name)
		}
	}
	if len(missing) > 0 {
		return errors.Errorf("dependencies not initialized: %s", strings.Join(missing, ", "))
	}
	return nil
}

func isNil(value interface{}) bool {
	if value == nil {
		return true
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return v.IsNil()
	}
	return false
}
