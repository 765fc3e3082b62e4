// Package value models dynamically typed value graphs and deep-copies them.
//
// A Value is either a primitive (Undefined, Null, Bool, Number, String) or a
// composite (*Array, *Object, *RegExp, *Date). Primitives are immutable and
// compare by value; composites have identity and may be shared or cyclic.
package value

import (
	"errors"
	"fmt"
)

// Kind is the closed set of value kinds.
type Kind uint8

const (
	KindUndefined Kind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
	KindFunction
	KindRegExp
	KindDate
)

var kindNames = [...]string{
	KindUndefined: "undefined",
	KindNull:      "null",
	KindBool:      "bool",
	KindNumber:    "number",
	KindString:    "string",
	KindArray:     "array",
	KindObject:    "object",
	KindFunction:  "function",
	KindRegExp:    "regexp",
	KindDate:      "date",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// Composite reports whether values of this kind have identity.
func (k Kind) Composite() bool {
	return k >= KindArray
}

var (
	// ErrCycle is returned by operations that cannot represent cyclic graphs.
	ErrCycle = errors.New("value: cyclic reference")
	// ErrUnsupportedKind is returned when a Go value has no Value equivalent.
	ErrUnsupportedKind = errors.New("value: unsupported kind")
	// ErrCyclicProto is returned when a prototype assignment would form a loop.
	ErrCyclicProto = errors.New("value: cyclic prototype chain")
	// ErrNotCallable is returned when calling an object without a call slot.
	ErrNotCallable = errors.New("value: not callable")
	// ErrInvalidFlags is returned for unknown or repeated regexp flags.
	ErrInvalidFlags = errors.New("value: invalid regexp flags")
)

// Value is any datum of the model. The interface is sealed.
type Value interface {
	Kind() Kind
	value()
}

// Undefined is the absence of a value.
type Undefined struct{}

// Null is the explicit empty value.
type Null struct{}

type Bool bool

type Number float64

type String string

func (Undefined) Kind() Kind { return KindUndefined }
func (Null) Kind() Kind      { return KindNull }
func (Bool) Kind() Kind      { return KindBool }
func (Number) Kind() Kind    { return KindNumber }
func (String) Kind() Kind    { return KindString }

func (Undefined) value() {}
func (Null) value()      {}
func (Bool) value()      {}
func (Number) value()    {}
func (String) value()    {}

// KindOf returns the kind of v, treating a nil interface as undefined.
func KindOf(v Value) Kind {
	if v == nil {
		return KindUndefined
	}
	return v.Kind()
}

// IsPrimitive reports whether v is immutable and safe to share.
func IsPrimitive(v Value) bool {
	return !KindOf(v).Composite()
}
