package stdin

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/crimson-sun/spfeed/internal/source"
)

func init() {
	source.Register("stdin", func() source.Source {
		return &Source{in: os.Stdin}
	})
}

// Source reads a single payload from standard input.
type Source struct {
	in io.Reader
}

// New returns a Source reading from r.
func New(r io.Reader) *Source {
	return &Source{in: r}
}

func (s *Source) Read(ctx context.Context, _ source.Config) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(s.in)
	if err != nil {
		return nil, fmt.Errorf("stdin source: %w", err)
	}
	return data, nil
}

// Watch emits the payload once and closes the channel. Standard input has
// no later versions.
func (s *Source) Watch(ctx context.Context, cfg source.Config) (<-chan []byte, error) {
	data, err := s.Read(ctx, cfg)
	if err != nil {
		return nil, err
	}
	ch := make(chan []byte, 1)
	ch <- data
	close(ch)
	return ch, nil
}
