package events

import "fmt"

// PageSizeTooBigError is returned when a request asks for more events than
// the caller allows. GetEvents itself never raises it.
type PageSizeTooBigError struct {
	Limit int
}

func (e *PageSizeTooBigError) Error() string {
	return fmt.Sprintf("requested page size is too big, supported maximum is %d", e.Limit)
}

// CheckPageSize returns a PageSizeTooBigError when n exceeds a positive limit.
func CheckPageSize(n, limit int) error {
	if limit > 0 && n > limit {
		return &PageSizeTooBigError{Limit: limit}
	}
	return nil
}
