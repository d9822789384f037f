package multi

import (
	"context"

	"github.com/hashicorp/go-multierror"

	"github.com/crimson-sun/spfeed/internal/output"
)

// Multi fans out records to multiple output.Output implementations.
// Each Write call delivers the record to every wrapped output sequentially.
// If one output fails, the remaining outputs still receive the record.
type Multi struct {
	outputs []output.Output
}

var _ output.Output = (*Multi)(nil)

// New creates a Multi that fans out to the given outputs.
func New(outputs ...output.Output) *Multi {
	return &Multi{outputs: outputs}
}

// Write delivers v to every wrapped output. Errors are collected
// but do not prevent delivery to subsequent outputs.
func (m *Multi) Write(ctx context.Context, v any) error {
	var result *multierror.Error
	for _, o := range m.outputs {
		if err := o.Write(ctx, v); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// Close calls Close on every wrapped output, collecting errors.
func (m *Multi) Close() error {
	var result *multierror.Error
	for _, o := range m.outputs {
		if err := o.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}
