package browser

import "fmt"

// ElementTimeoutError reports that an expected element never became
// visible within the page's wait window. It may be transient (slow
// render) or permanent (site layout changed); callers cannot tell the
// two apart and should capture diagnostics and propagate.
type ElementTimeoutError struct {
	Selector Selector
	Cause    error
}

func (e *ElementTimeoutError) Error() string {
	return fmt.Sprintf("element %q did not appear in time: %v", e.Selector.Query, e.Cause)
}

func (e *ElementTimeoutError) Unwrap() error { return e.Cause }
