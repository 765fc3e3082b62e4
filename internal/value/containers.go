package value

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Array is an ordered sequence.
type Array struct {
	elems []Value
}

// NewArray returns an array holding elems. The slice is copied.
func NewArray(elems ...Value) *Array {
	a := &Array{elems: make([]Value, len(elems))}
	copy(a.elems, elems)
	return a
}

func (*Array) Kind() Kind { return KindArray }
func (*Array) value()     {}

func (a *Array) Len() int { return len(a.elems) }

// At returns the element at i, or Undefined when i is out of range.
func (a *Array) At(i int) Value {
	if i < 0 || i >= len(a.elems) {
		return Undefined{}
	}
	return a.elems[i]
}

// SetAt stores v at i, growing the array with Undefined holes as needed.
func (a *Array) SetAt(i int, v Value) {
	if i < 0 {
		return
	}
	for len(a.elems) <= i {
		a.elems = append(a.elems, Undefined{})
	}
	a.elems[i] = v
}

func (a *Array) Append(vs ...Value) {
	a.elems = append(a.elems, vs...)
}

// Elements returns a copy of the element slice.
func (a *Array) Elements() []Value {
	out := make([]Value, len(a.elems))
	copy(out, a.elems)
	return out
}

// RegExp is a pattern matcher with flags and a match cursor.
//
// Supported flags: g (global), i (case-insensitive), m (multiline) and
// s (dot matches newline). LastIndex is a byte offset into the input.
type RegExp struct {
	source    string
	flags     string
	re        *regexp.Regexp
	LastIndex int
}

const flagOrder = "gims"

// NewRegExp compiles source with the given flags.
func NewRegExp(source, flags string) (*RegExp, error) {
	canon, err := canonicalFlags(flags)
	if err != nil {
		return nil, err
	}
	var inline strings.Builder
	for _, f := range canon {
		if f != 'g' {
			inline.WriteRune(f)
		}
	}
	pattern := source
	if inline.Len() > 0 {
		pattern = "(?" + inline.String() + ")" + source
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile /%s/%s: %w", source, canon, err)
	}
	return &RegExp{source: source, flags: canon, re: re}, nil
}

// MustRegExp is like NewRegExp but panics on error.
func MustRegExp(source, flags string) *RegExp {
	r, err := NewRegExp(source, flags)
	if err != nil {
		panic(err)
	}
	return r
}

func canonicalFlags(flags string) (string, error) {
	var set [4]bool
	for _, f := range flags {
		i := strings.IndexRune(flagOrder, f)
		if i < 0 || set[i] {
			return "", fmt.Errorf("%q: %w", flags, ErrInvalidFlags)
		}
		set[i] = true
	}
	var b strings.Builder
	for i, on := range set {
		if on {
			b.WriteByte(flagOrder[i])
		}
	}
	return b.String(), nil
}

func (*RegExp) Kind() Kind { return KindRegExp }
func (*RegExp) value()     {}

func (r *RegExp) Source() string { return r.source }

// Flags returns the flags in canonical order.
func (r *RegExp) Flags() string { return r.flags }

func (r *RegExp) Global() bool     { return strings.IndexByte(r.flags, 'g') >= 0 }
func (r *RegExp) IgnoreCase() bool { return strings.IndexByte(r.flags, 'i') >= 0 }
func (r *RegExp) Multiline() bool  { return strings.IndexByte(r.flags, 'm') >= 0 }
func (r *RegExp) DotAll() bool     { return strings.IndexByte(r.flags, 's') >= 0 }

// String renders the literal form /source/flags.
func (r *RegExp) String() string {
	return "/" + r.source + "/" + r.flags
}

// Exec runs one match. A global matcher starts at LastIndex (a negative
// cursor counts as zero) and advances it past the match; a failed global
// match resets LastIndex to zero.
func (r *RegExp) Exec(input string) ([]string, bool) {
	start := 0
	if r.Global() {
		start = max(r.LastIndex, 0)
		if start > len(input) {
			r.LastIndex = 0
			return nil, false
		}
	}
	loc := r.re.FindStringSubmatchIndex(input[start:])
	if loc == nil {
		if r.Global() {
			r.LastIndex = 0
		}
		return nil, false
	}
	groups := make([]string, len(loc)/2)
	for i := range groups {
		if loc[2*i] >= 0 {
			groups[i] = input[start+loc[2*i] : start+loc[2*i+1]]
		}
	}
	if r.Global() {
		r.LastIndex = start + loc[1]
	}
	return groups, true
}

// Test reports whether Exec finds a match.
func (r *RegExp) Test(input string) bool {
	_, ok := r.Exec(input)
	return ok
}

// ParseRegExpLiteral parses the /source/flags form produced by String.
func ParseRegExpLiteral(lit string) (*RegExp, error) {
	end := strings.LastIndexByte(lit, '/')
	if !strings.HasPrefix(lit, "/") || end < 1 {
		return nil, fmt.Errorf("regexp literal %q: missing delimiters", lit)
	}
	return NewRegExp(lit[1:end], lit[end+1:])
}

// Date is a mutable instant.
type Date struct {
	t time.Time
}

func NewDate(t time.Time) *Date { return &Date{t: t} }

func (*Date) Kind() Kind { return KindDate }
func (*Date) value()     {}

func (d *Date) Time() time.Time     { return d.t }
func (d *Date) SetTime(t time.Time) { d.t = t }

// UnixMilli returns the instant in milliseconds since the epoch.
func (d *Date) UnixMilli() int64 { return d.t.UnixMilli() }
