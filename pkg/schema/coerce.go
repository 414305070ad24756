package schema

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Coerce converts a value to the Go representation of t.
// It exists for values that crossed a serialization boundary: a msgpack or JSON
// decoder hands back int64, float64 or []any where a node declared int or [int].
// Wildcard, parameter and custom types pass the value through untouched.
func Coerce(t Type, value any) (any, error) {
	switch typ := t.(type) {
	case nil, *AnyType, *ParamType, *CustomType:
		return value, nil
	case *StringType:
		return weakDecode[string](value)
	case *IntType:
		if err := typ.Validate(value); err != nil {
			return nil, err
		}
		return weakDecode[int](value)
	case *FloatType:
		if err := typ.Validate(value); err != nil {
			return nil, err
		}
		return weakDecode[float64](value)
	case *BoolType:
		return weakDecode[bool](value)
	case *SliceType:
		var items []any
		if err := mapstructure.Decode(value, &items); err != nil {
			return nil, fmt.Errorf("expected slice, got %T", value)
		}
		for i, item := range items {
			v, err := Coerce(typ.elem, item)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			items[i] = v
		}
		return items, nil
	default:
		return value, t.Validate(value)
	}
}

func weakDecode[T any](value any) (T, error) {
	var out T
	if err := mapstructure.WeakDecode(value, &out); err != nil {
		return out, fmt.Errorf("cannot coerce %T to %T: %w", value, out, err)
	}
	return out, nil
}
