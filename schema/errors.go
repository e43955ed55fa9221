package schema

import "fmt"

// ValidationError reports a value rejected by a property. The failed
// assignment leaves the document unchanged.
type ValidationError struct {
	// Property is the name of the property that rejected the value.
	Property string

	// Reason describes why the value was rejected.
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("vellum: invalid value for property %q: %s", e.Property, e.Reason)
}

// UnknownPropertyError reports access to a property name a strict schema
// does not declare.
type UnknownPropertyError struct {
	// Property is the undeclared name.
	Property string

	// Schema is the name of the schema that was consulted.
	Schema string
}

func (e *UnknownPropertyError) Error() string {
	return fmt.Sprintf("vellum: schema %q does not declare property %q", e.Schema, e.Property)
}

// invalid is a shorthand for building a ValidationError.
func invalid(property, format string, args ...any) error {
	return &ValidationError{Property: property, Reason: fmt.Sprintf(format, args...)}
}
