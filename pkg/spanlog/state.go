package spanlog

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
)

// EventID identifies a kind of log event. It is carried through Log but
// never used for filtering or emitted.
type EventID struct {
	ID   int
	Name string
}

// State is the payload of a log record. It is either an opaque value or an
// ordered list of fields; only the latter is expanded into "log."-prefixed
// event fields.
type State struct {
	value      any
	fields     []Field
	structured bool
}

// Opaque returns State wrapping an arbitrary value.
func Opaque(value any) State {
	return State{value: value}
}

// Pairs returns structured State made of the given fields.
func Pairs(fields ...Field) State {
	return State{fields: fields, structured: true}
}

// Fields returns the entries of structured state. ok is false for opaque
// state.
func (s State) Fields() (fields []Field, ok bool) {
	return s.fields, s.structured
}

// Value returns the wrapped value of opaque state, or nil.
func (s State) Value() any {
	return s.value
}

// Formatter renders the message of a record.
type Formatter func(state State, err error) string

// Message returns a Formatter that always renders msg.
func Message(msg string) Formatter {
	return func(State, error) string { return msg }
}

// Template returns structured state for a message template such as
// "order {OrderID} charged {Amount}". Each placeholder is paired with the
// argument at the same position; the template itself is stored last under
// OriginalFormatKey. Braces are escaped by doubling them.
func Template(format string, args ...any) State {
	tpl := parseTemplate(format)
	fields := make([]Field, 0, len(tpl.names)+1)
	for i, name := range tpl.names {
		if i >= len(args) {
			break
		}
		fields = append(fields, Field{Key: name, Value: args[i]})
	}
	fields = append(fields, Field{Key: OriginalFormatKey, Value: format})
	return Pairs(fields...)
}

// FormatState is the default Formatter. Template state is rendered by
// substituting its values, other structured state as space separated
// key=value pairs, and opaque state with fmt.
func FormatState(state State, _ error) string {
	fields, ok := state.Fields()
	if !ok {
		switch v := state.Value().(type) {
		case nil:
			return ""
		case string:
			return v
		default:
			return fmt.Sprint(v)
		}
	}

	if n := len(fields); n > 0 && fields[n-1].Key == OriginalFormatKey {
		if format, isString := fields[n-1].Value.(string); isString {
			return parseTemplate(format).render(fields[:n-1])
		}
	}

	var sb strings.Builder
	for i, f := range fields {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(f.Key)
		sb.WriteByte('=')
		fmt.Fprint(&sb, f.Value)
	}
	return sb.String()
}

// template is a parsed message template: literal text interleaved with
// placeholders, len(literals) == len(names)+1.
type template struct {
	literals []string
	names    []string
	holes    []string
}

func (t *template) render(values []Field) string {
	var sb strings.Builder
	for i, lit := range t.literals {
		sb.WriteString(lit)
		if i >= len(t.names) {
			break
		}
		if i < len(values) {
			fmt.Fprint(&sb, values[i].Value)
		} else {
			sb.WriteString(t.holes[i])
		}
	}
	return sb.String()
}

const maxCachedTemplates = 1024

var (
	templateCache     sync.Map // string -> *template
	templateCacheSize atomic.Int64
)

func parseTemplate(format string) *template {
	if t, ok := templateCache.Load(format); ok {
		return t.(*template)
	}
	t := compileTemplate(format)
	if templateCacheSize.Load() < maxCachedTemplates {
		if _, loaded := templateCache.LoadOrStore(format, t); !loaded {
			templateCacheSize.Add(1)
		}
	}
	return t
}

func compileTemplate(format string) *template {
	t := &template{}
	var lit strings.Builder
	for i := 0; i < len(format); i++ {
		c := format[i]
		switch {
		case c == '{' && i+1 < len(format) && format[i+1] == '{':
			lit.WriteByte('{')
			i++
		case c == '}' && i+1 < len(format) && format[i+1] == '}':
			lit.WriteByte('}')
			i++
		case c == '{':
			end := strings.IndexByte(format[i+1:], '}')
			if end < 0 {
				lit.WriteString(format[i:])
				i = len(format)
				continue
			}
			hole := format[i : i+end+2]
			name := hole[1 : len(hole)-1]
			if cut := strings.IndexAny(name, ",:"); cut >= 0 {
				name = name[:cut]
			}
			t.literals = append(t.literals, lit.String())
			t.names = append(t.names, name)
			t.holes = append(t.holes, hole)
			lit.Reset()
			i += end + 1
		default:
			lit.WriteByte(c)
		}
	}
	t.literals = append(t.literals, lit.String())
	return t
}
