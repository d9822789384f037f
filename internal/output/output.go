package output

import "context"

// Output defines the interface for record destinations. Records are
// alerts, term sets or taxonomy labels; any value with json and yaml tags
// can be written.
type Output interface {
	Write(ctx context.Context, v any) error
	Close() error
}
