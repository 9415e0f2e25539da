package logging

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"lab/internal/ui/styles"
)

// Severity of a user-facing message.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

// String returns the label printed in front of a message.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "Info"
	case SeverityWarning:
		return "Warning"
	case SeverityError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Logger is the user-facing message sink handed to every component.
type Logger interface {
	Log(severity Severity, message string)
}

// Reporter prints "<Severity>: <message>" lines to a writer, with the
// severity styled when the writer is a terminal.
type Reporter struct {
	mu     sync.Mutex
	out    io.Writer
	styles styles.Set
}

// NewReporter creates a Reporter writing to out.
func NewReporter(out io.Writer) *Reporter {
	return &Reporter{
		out:    out,
		styles: styles.For(out),
	}
}

// Log writes one message. Multi-line messages keep their continuation lines
// unprefixed, matching how remediation hints are printed.
func (r *Reporter) Log(severity Severity, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintf(r.out, "%s: %s\n", r.prefix(severity), strings.TrimRight(message, "\n"))
}

func (r *Reporter) prefix(severity Severity) string {
	switch severity {
	case SeverityWarning:
		return r.styles.Warning.Render(severity.String())
	case SeverityError:
		return r.styles.Error.Render(severity.String())
	default:
		return r.styles.Info.Render(severity.String())
	}
}

// Entry is one message captured by a Recorder.
type Entry struct {
	Severity Severity
	Message  string
}

// Recorder is a Logger that keeps messages in memory.
type Recorder struct {
	mu      sync.Mutex
	Entries []Entry
}

// Log records the message.
func (r *Recorder) Log(severity Severity, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Entries = append(r.Entries, Entry{Severity: severity, Message: message})
}

// Messages returns the recorded messages of the given severity.
func (r *Recorder) Messages(severity Severity) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []string
	for _, e := range r.Entries {
		if e.Severity == severity {
			out = append(out, e.Message)
		}
	}
	return out
}

// Discard drops every message.
var Discard Logger = discard{}

type discard struct{}

func (discard) Log(Severity, string) {}
