// Package bridge is the host-call boundary: a host sends a command string
// with optional arguments and receives a bracketed response string.
package bridge

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/itsmeow/SpongeCommon/internal/dispatcher"
)

// TimestampCommand is answered by the bridge itself.
const TimestampCommand = ":TIMESTAMP:"

// Bridge routes host calls to a dispatcher.
type Bridge struct {
	mu         sync.RWMutex
	version    string
	dispatcher *dispatcher.Dispatcher
	now        func() time.Time
}

// New creates a bridge. d may be nil until SetDispatcher is called.
func New(version string, d *dispatcher.Dispatcher) *Bridge {
	if version == "" {
		version = "No version set"
	}
	return &Bridge{version: version, dispatcher: d, now: time.Now}
}

// Version returns the version string reported to the host on first contact.
func (b *Bridge) Version() string {
	return b.version
}

// SetDispatcher sets the event dispatcher for handling commands
func (b *Bridge) SetDispatcher(d *dispatcher.Dispatcher) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dispatcher = d
}

// Call handles "command" or "command|arg|arg" input. Explicit args are
// appended after the inline ones.
func (b *Bridge) Call(input string, args ...string) string {
	command, inline := splitInput(input)

	if command == TimestampCommand {
		return fmt.Sprintf("%d", b.now().UTC().UnixNano())
	}

	b.mu.RLock()
	d := b.dispatcher
	b.mu.RUnlock()

	if d == nil || !d.HasHandler(command) {
		return formatResponse(command, nil, fmt.Errorf("no handler registered"))
	}

	event := dispatcher.Event{
		Command:   command,
		Args:      append(inline, args...),
		Timestamp: b.now(),
	}
	result, err := d.Dispatch(event)
	return formatResponse(command, result, err)
}

// splitInput cuts input at '|' separators. A '|' inside a quoted string or a
// JSON object or array belongs to the argument.
func splitInput(input string) (string, []string) {
	input = strings.TrimSpace(input)
	var parts []string
	depth, start := 0, 0
	inString, escaped := false, false
	for i := 0; i < len(input); i++ {
		c := input[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\' && depth > 0:
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			if depth > 0 {
				depth--
			}
		case '|':
			if depth == 0 {
				parts = append(parts, input[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, input[start:])
	return parts[0], parts[1:]
}

// escape doubles embedded quotes so the response stays one string literal.
func escape(s string) string {
	return strings.ReplaceAll(s, `"`, `""`)
}

// formatResponse renders ["ok", cmd], ["ok", cmd, "result"] or
// ["error", cmd, "message"].
func formatResponse(command string, result any, err error) string {
	if err != nil {
		return fmt.Sprintf(`["error", "%s", "%s"]`, escape(command), escape(err.Error()))
	}
	if result == nil {
		return fmt.Sprintf(`["ok", "%s"]`, escape(command))
	}
	return fmt.Sprintf(`["ok", "%s", "%s"]`, escape(command), escape(fmt.Sprint(result)))
}
