package schema

// Schema maps parameter names to their declared types.
type Schema map[string]Type

// Validate checks if data conforms to the schema.
// Every field of the schema must be present.
func Validate(schema Schema, data map[string]any) error {
	if len(schema) == 0 {
		return nil
	}

	var errs []error
	for name, typ := range schema {
		value, exists := data[name]
		if !exists {
			errs = append(errs, &ValidationError{Key: name, Reason: "required"})
			continue
		}
		if err := typ.Validate(value); err != nil {
			errs = append(errs, &ValidationError{Key: name, Reason: err.Error(), Value: value})
		}
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

// ValidateField validates a single value against the schema entry for name.
// Names the schema does not declare are accepted as-is.
func ValidateField(schema Schema, name string, value any) error {
	typ, ok := schema[name]
	if !ok {
		return nil
	}
	if err := typ.Validate(value); err != nil {
		return &ValidationError{Key: name, Reason: err.Error(), Value: value}
	}
	return nil
}
