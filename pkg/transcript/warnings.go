package transcript

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// Warning is a non-fatal problem collected while loading. The affected
// document or conversation was skipped; the build still succeeds.
type Warning struct {
	Document string
	Err      error
}

func (w Warning) String() string {
	return w.Err.Error()
}

func (w Warning) IsDocument() bool {
	return errors.Is(w.Err, ErrMalformedDocument)
}

func (w Warning) IsConversation() bool {
	return errors.Is(w.Err, ErrMalformedConversation)
}

// PrintWarnings writes a warning summary. It writes nothing when there are no
// warnings.
func PrintWarnings(w io.Writer, warnings []Warning) error {
	if len(warnings) == 0 {
		return nil
	}
	if _, err := fmt.Fprintf(w, "%d warning(s):\n", len(warnings)); err != nil {
		return err
	}
	for _, warning := range warnings {
		if _, err := fmt.Fprintf(w, "  - %s\n", warning); err != nil {
			return err
		}
	}
	return nil
}
