package verbose

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

// textFormatter renders "[LEVEL] message key=value" lines.
// Level tags are coloured only when writing to a terminal.
type textFormatter struct {
	color bool
}

func newTextFormatter(w io.Writer) *textFormatter {
	return &textFormatter{color: isTerminal(w)}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Format implements logrus.Formatter.
func (f *textFormatter) Format(e *logrus.Entry) ([]byte, error) {
	var b strings.Builder

	level := strings.ToUpper(e.Level.String())
	if level == "WARNING" {
		level = "WARN"
	}
	tag := "[" + level + "]"
	if f.color {
		tag = colorize(e.Level, tag)
	}
	b.WriteString(tag)
	b.WriteString(" ")
	b.WriteString(e.Message)

	keys := make([]string, 0, len(e.Data))
	for k := range e.Data {
		if k == "component" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, e.Data[k])
	}

	b.WriteString("\n")
	return []byte(b.String()), nil
}

func colorize(level logrus.Level, s string) string {
	var code int
	switch level {
	case logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel:
		code = 31
	case logrus.WarnLevel:
		code = 33
	case logrus.InfoLevel:
		code = 36
	default:
		code = 90
	}
	return fmt.Sprintf("\x1b[%dm%s\x1b[0m", code, s)
}
