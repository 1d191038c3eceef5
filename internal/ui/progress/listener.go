package progress

import (
	"fmt"
	"io"
	"sync"

	"github.com/raphi011/gitfleet/internal/result"
	"github.com/raphi011/gitfleet/internal/ui/styles"
)

// LineListener writes one line per repository, for output that is not a
// terminal or when verbose logging would tear a progress bar.
type LineListener struct {
	mu sync.Mutex
	w  io.Writer
}

var _ result.Listener = (*LineListener)(nil)

// NewLineListener creates a listener writing to w.
func NewLineListener(w io.Writer) *LineListener {
	return &LineListener{w: w}
}

func (l *LineListener) write(e result.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.w, "[%3d%%] %s %s\n", e.Percent, styles.StatusSymbol(e.Status), e.Message)
}

func (l *LineListener) OnSuccess(e result.Event) { l.write(e) }
func (l *LineListener) OnError(e result.Event)   { l.write(e) }

// OnFinish prints nothing; the caller renders the summary.
func (l *LineListener) OnFinish(result.Event) {}
