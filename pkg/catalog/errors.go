package catalog

import "fmt"

// IntegrityError reports a broken reference inside the catalog.
type IntegrityError struct {
	Where  string // e.g. "links[3]" or "flows[revocation].steps[1]"
	Reason string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("%s: %s", e.Where, e.Reason)
}

// AggregateError represents multiple catalog validation failures.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := fmt.Sprintf("%d catalog errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		msg += fmt.Sprintf("  %d. %s\n", i+1, err.Error())
	}
	return msg
}

// Unwrap exposes the individual failures to errors.Is / errors.As.
func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

// ValidationErrors returns all validation errors if err is an AggregateError.
// Otherwise returns nil.
func ValidationErrors(err error) []error {
	if aggr, ok := err.(*AggregateError); ok {
		return aggr.Errors
	}
	return nil
}
