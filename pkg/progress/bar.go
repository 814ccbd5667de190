package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/ajxudir/appupdate/pkg/utils"
)

// Bar is a single-line progress indicator for terminals.
//
// Fields:
//   - writer: Destination for the bar (typically os.Stderr)
//   - width: Number of cells in the bar itself
//   - maxMessage: Display width the message is truncated to
//   - lastWidth: Width of the last rendered line, for clearing
//   - enabled: Whether anything is written
type Bar struct {
	mu         sync.Mutex
	writer     io.Writer
	width      int
	maxMessage int
	lastWidth  int
	enabled    bool
}

// NewBar creates an enabled bar writing to w.
//
// Parameters:
//   - w: Destination for progress output
//
// Returns:
//   - *Bar: A new bar, 20 cells wide with messages cut at 48 columns
func NewBar(w io.Writer) *Bar {
	return &Bar{writer: w, width: 20, maxMessage: 48, enabled: true}
}

// SetEnabled enables or disables output, e.g. when the writer is not a terminal.
func (b *Bar) SetEnabled(enabled bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.enabled = enabled
}

// Set redraws the bar at percent with message. Negative percentages render
// an empty bar marked as an error.
//
// Parameters:
//   - percent: Value in [0, 100], or SystemErrorPercent
//   - message: Status line shown after the bar
func (b *Bar) Set(percent int, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.enabled {
		return
	}

	var line string
	if percent < 0 {
		line = fmt.Sprintf("\r[%s]  ERR %s", strings.Repeat("-", b.width), utils.Truncate(message, b.maxMessage))
	} else {
		if percent > 100 {
			percent = 100
		}
		filled := percent * b.width / 100
		line = fmt.Sprintf("\r[%s%s] %3d%% %s",
			strings.Repeat("#", filled),
			strings.Repeat(".", b.width-filled),
			percent,
			utils.Truncate(message, b.maxMessage))
	}

	width := utils.DisplayWidth(line)
	if width < b.lastWidth {
		line += strings.Repeat(" ", b.lastWidth-width)
	}
	b.lastWidth = utils.Max(width, b.lastWidth)

	_, _ = fmt.Fprint(b.writer, line)
	if f, ok := b.writer.(*os.File); ok {
		_ = f.Sync()
	}
}

// Clear blanks the current line so other output can be printed.
func (b *Bar) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.enabled && b.lastWidth > 0 {
		_, _ = fmt.Fprintf(b.writer, "\r%s\r", strings.Repeat(" ", b.lastWidth))
		b.lastWidth = 0
	}
}

// Done ends the bar line with a newline.
func (b *Bar) Done() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.enabled && b.lastWidth > 0 {
		_, _ = fmt.Fprintln(b.writer)
		b.lastWidth = 0
	}
}
