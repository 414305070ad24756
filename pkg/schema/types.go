package schema

import (
	"fmt"
	"reflect"
	"unicode"
)

// Type is the declared type of a port or a literal parameter.
type Type interface {
	// Name returns the human-readable name of the type (e.g., "string", "[int]").
	Name() string
	// Validate checks if a value conforms to this type.
	Validate(value any) error
}

// AnyType is the universal wildcard: it accepts every value and connects to every port.
type AnyType struct{}

func (t *AnyType) Name() string { return "any" }

func (t *AnyType) Validate(any) error { return nil }

// ParamType is an unresolved type parameter (e.g. "T").
// Like AnyType it accepts every value, but it keeps its own name for diagnostics.
type ParamType struct {
	name string
}

func (t *ParamType) Name() string { return t.name }

func (t *ParamType) Validate(any) error { return nil }

// StringType validates string values.
type StringType struct{}

func (t *StringType) Name() string { return "string" }

func (t *StringType) Validate(value any) error {
	if _, ok := value.(string); !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	return nil
}

// IntType validates integer values.
type IntType struct{}

func (t *IntType) Name() string { return "int" }

func (t *IntType) Validate(value any) error {
	switch v := value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return nil
	case float64:
		// decoded numbers (JSON, msgpack) may arrive as whole floats
		if v == float64(int64(v)) {
			return nil
		}
		return fmt.Errorf("expected int, got float (not a whole number)")
	default:
		return fmt.Errorf("expected int, got %T", value)
	}
}

// FloatType validates floating-point values.
type FloatType struct{}

func (t *FloatType) Name() string { return "float" }

func (t *FloatType) Validate(value any) error {
	switch value.(type) {
	case float32, float64, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return nil
	default:
		return fmt.Errorf("expected float, got %T", value)
	}
}

// BoolType validates boolean values.
type BoolType struct{}

func (t *BoolType) Name() string { return "bool" }

func (t *BoolType) Validate(value any) error {
	if _, ok := value.(bool); !ok {
		return fmt.Errorf("expected bool, got %T", value)
	}
	return nil
}

// SliceType validates slices of a specific element type.
type SliceType struct {
	elem Type
}

func (t *SliceType) Name() string { return "[" + t.elem.Name() + "]" }

// Elem returns the element type.
func (t *SliceType) Elem() Type { return t.elem }

func (t *SliceType) Validate(value any) error {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return fmt.Errorf("expected slice, got %T", value)
	}
	for i := 0; i < rv.Len(); i++ {
		if err := t.elem.Validate(rv.Index(i).Interface()); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

// CustomType applies a user-defined validation function.
type CustomType struct {
	name     string
	validate func(any) error
}

func (t *CustomType) Name() string { return t.name }

func (t *CustomType) Validate(value any) error { return t.validate(value) }

// Any returns the wildcard type.
func Any() Type { return &AnyType{} }

// Param returns an unresolved type parameter.
func Param(name string) Type { return &ParamType{name: name} }

// String creates a string type validator.
func String() Type { return &StringType{} }

// Int creates an integer type validator.
func Int() Type { return &IntType{} }

// Float creates a float type validator.
func Float() Type { return &FloatType{} }

// Bool creates a boolean type validator.
func Bool() Type { return &BoolType{} }

// Slice creates a slice type validator for elements of the given type.
func Slice(elem Type) Type { return &SliceType{elem: elem} }

// Custom creates a named type with a user-defined validation function.
func Custom(name string, validate func(any) error) Type {
	return &CustomType{name: name, validate: validate}
}

// IsWildcard reports whether t accepts any connection: the wildcard, a type
// parameter, or a nil (undeclared) type.
func IsWildcard(t Type) bool {
	switch t.(type) {
	case nil, *AnyType, *ParamType:
		return true
	}
	return false
}

// Compatible reports whether an Out port of type out may feed an In port of type in.
// Either side being a wildcard or a type parameter is enough; otherwise the
// names must be identical.
func Compatible(out, in Type) bool {
	if IsWildcard(out) || IsWildcard(in) {
		return true
	}
	return out.Name() == in.Name()
}

// ParseType converts a type name to a Type.
// Supports "any", "string", "int", "float", "bool", slices such as "[int]",
// and type parameters written as an upper-case letter optionally followed by
// digits ("T", "K2").
func ParseType(typeStr string) (Type, error) {
	if len(typeStr) > 2 && typeStr[0] == '[' && typeStr[len(typeStr)-1] == ']' {
		elem, err := ParseType(typeStr[1 : len(typeStr)-1])
		if err != nil {
			return nil, err
		}
		return Slice(elem), nil
	}

	switch typeStr {
	case "any", "":
		return Any(), nil
	case "string":
		return String(), nil
	case "int":
		return Int(), nil
	case "float":
		return Float(), nil
	case "bool":
		return Bool(), nil
	}

	if isParamName(typeStr) {
		return Param(typeStr), nil
	}
	return nil, fmt.Errorf("unsupported type: %s", typeStr)
}

func isParamName(s string) bool {
	for i, r := range s {
		if i == 0 && !unicode.IsUpper(r) {
			return false
		}
		if i > 0 && !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}

// ParseTypeMap converts a map of field names to type strings into a Schema.
func ParseTypeMap(typeMap map[string]string) (Schema, error) {
	result := make(Schema, len(typeMap))
	for key, typeStr := range typeMap {
		t, err := ParseType(typeStr)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", key, err)
		}
		result[key] = t
	}
	return result, nil
}
