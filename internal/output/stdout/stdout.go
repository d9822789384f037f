package stdout

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/crimson-sun/spfeed/internal/output"
)

// Output writes encoded records to stdout.
type Output struct {
	mu  sync.Mutex
	enc *output.Encoder
}

// New creates a stdout Output in the given format.
func New(format output.Format) *Output {
	return NewWriter(os.Stdout, format)
}

// NewWriter creates an Output that writes to w instead of stdout.
func NewWriter(w io.Writer, format output.Format) *Output {
	return &Output{enc: output.NewEncoder(w, format)}
}

func (o *Output) Write(_ context.Context, v any) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.enc.Encode(v); err != nil {
		return fmt.Errorf("stdout output: %w", err)
	}
	return nil
}

func (o *Output) Close() error {
	return nil
}
