package util

import (
	"fmt"
	"reflect"
)

// Assert panics with a formatted message if the condition is false.
// It is reserved for programming errors: broken invariants that no
// caller input should be able to produce.
// Usage: util.Assert(length >= 0, "length must be non-negative, got %d", length)
func Assert(condition bool, format string, args ...interface{}) {
	if !condition {
		panic(fmt.Sprintf("Assertion failed: "+format, args...))
	}
}

// AssertNotNil panics if the value is nil (including typed nils like (*int)(nil))
func AssertNotNil(value interface{}, name string) {
	if value == nil {
		panic(fmt.Sprintf("Assertion failed: %s must not be nil", name))
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Ptr, reflect.Slice, reflect.Map:
		if v.IsNil() {
			panic(fmt.Sprintf("Assertion failed: %s must not be nil", name))
		}
	}
}
