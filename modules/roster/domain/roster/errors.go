package roster

import "fmt"

// ParseError aborts an entire import: no partial batch is ever applied.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("roster parse error on line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("roster parse error: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
