package record

import "fmt"

// ValidationError reports why a candidate was rejected by the gate.
type ValidationError struct {
	Kind    string
	Field   Field
	Value   float64
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid %s record: field %s=%g: %s", e.Kind, e.Field, e.Value, e.Message)
	}
	return fmt.Sprintf("invalid %s record: %s", e.Kind, e.Message)
}

// Validate is the single gate between all extraction tiers and the persister.
// A candidate passes only when it has at least Kind.MinFields populated fields
// and every populated value lies in the kind's half-open range (Min, Max].
func Validate(c *Candidate) error {
	if c == nil {
		return &ValidationError{Message: "nil candidate"}
	}
	if c.Len() < c.Kind.MinFields {
		return &ValidationError{
			Kind:    c.Kind.Name,
			Message: fmt.Sprintf("%d populated fields, need at least %d", c.Len(), c.Kind.MinFields),
		}
	}
	for f, v := range c.values {
		if v <= c.Kind.Min || v > c.Kind.Max {
			return &ValidationError{
				Kind:    c.Kind.Name,
				Field:   f,
				Value:   v,
				Message: fmt.Sprintf("outside (%g, %g]", c.Kind.Min, c.Kind.Max),
			}
		}
	}
	return nil
}

// Valid reports whether the candidate passes Validate.
func Valid(c *Candidate) bool {
	return Validate(c) == nil
}
