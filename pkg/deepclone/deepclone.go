// Package deepclone copies ordinary Go values through reflection.
//
// Clone follows pointers, maps, slices, arrays, interfaces and exported
// struct fields. Each distinct pointer, map or slice header in the input is
// copied once, so values that share memory in the input share the copy, and
// cyclic structures come back cyclic.
//
// Limits:
//   - unexported struct fields are copied shallowly (reflection cannot write
//     through them), so pointers behind them stay shared with the source;
//   - funcs, channels and unsafe pointers are shared as-is;
//   - a pointer into the interior of another value (&s.Field, &arr[i]) is
//     copied as an independent allocation, not re-linked into the copy;
//   - *regexp.Regexp is recompiled from String(), which drops Longest().
package deepclone

import (
	"reflect"
	"regexp"
	"time"
)

// Cloner lets a type take over its own deep copy. DeepClone must return a
// value assignable to the receiver's type; otherwise it is ignored.
type Cloner interface {
	DeepClone() any
}

var (
	clonerType = reflect.TypeOf((*Cloner)(nil)).Elem()
	timeType   = reflect.TypeOf(time.Time{})
	regexpType = reflect.TypeOf((*regexp.Regexp)(nil))
)

type visit struct {
	typ reflect.Type
	ptr uintptr
	len int
}

type state struct {
	seen map[visit]reflect.Value
}

// Clone returns a deep copy of v.
func Clone[T any](v T) T {
	src := reflect.ValueOf(&v).Elem()
	s := &state{seen: make(map[visit]reflect.Value)}
	var out T
	reflect.ValueOf(&out).Elem().Set(s.clone(src))
	return out
}

func (s *state) clone(src reflect.Value) reflect.Value {
	t := src.Type()

	if out, ok := s.hook(src); ok {
		return out
	}

	switch t {
	case timeType:
		return src
	case regexpType:
		if src.IsNil() {
			return src
		}
		key := visit{typ: t, ptr: src.Pointer()}
		if dst, ok := s.seen[key]; ok {
			return dst
		}
		re := src.Interface().(*regexp.Regexp)
		dst := reflect.ValueOf(regexp.MustCompile(re.String()))
		s.seen[key] = dst
		return dst
	}

	switch src.Kind() {
	case reflect.Pointer:
		if src.IsNil() {
			return src
		}
		key := visit{typ: t, ptr: src.Pointer()}
		if dst, ok := s.seen[key]; ok {
			return dst
		}
		dst := reflect.New(t.Elem())
		s.seen[key] = dst
		dst.Elem().Set(s.clone(src.Elem()))
		return dst

	case reflect.Map:
		if src.IsNil() {
			return src
		}
		key := visit{typ: t, ptr: src.Pointer()}
		if dst, ok := s.seen[key]; ok {
			return dst
		}
		dst := reflect.MakeMapWithSize(t, src.Len())
		s.seen[key] = dst
		iter := src.MapRange()
		for iter.Next() {
			dst.SetMapIndex(s.clone(iter.Key()), s.clone(iter.Value()))
		}
		return dst

	case reflect.Slice:
		if src.IsNil() {
			return src
		}
		key := visit{typ: t, ptr: src.Pointer(), len: src.Len()}
		if dst, ok := s.seen[key]; ok {
			return dst
		}
		dst := reflect.MakeSlice(t, src.Len(), src.Cap())
		s.seen[key] = dst
		for i := 0; i < src.Len(); i++ {
			dst.Index(i).Set(s.clone(src.Index(i)))
		}
		return dst

	case reflect.Array:
		dst := reflect.New(t).Elem()
		for i := 0; i < src.Len(); i++ {
			dst.Index(i).Set(s.clone(src.Index(i)))
		}
		return dst

	case reflect.Struct:
		dst := reflect.New(t).Elem()
		dst.Set(src)
		for i := 0; i < t.NumField(); i++ {
			if !t.Field(i).IsExported() {
				continue
			}
			dst.Field(i).Set(s.clone(src.Field(i)))
		}
		return dst

	case reflect.Interface:
		if src.IsNil() {
			return src
		}
		dst := reflect.New(t).Elem()
		dst.Set(s.clone(src.Elem()))
		return dst
	}

	// Scalars, strings, funcs, channels, unsafe pointers.
	return src
}

// hook runs a Cloner implementation, if any.
func (s *state) hook(src reflect.Value) (reflect.Value, bool) {
	t := src.Type()
	if t.Kind() == reflect.Interface || !t.Implements(clonerType) || !src.CanInterface() {
		return reflect.Value{}, false
	}
	if t.Kind() == reflect.Pointer && src.IsNil() {
		return reflect.Value{}, false
	}

	var key visit
	if t.Kind() == reflect.Pointer || t.Kind() == reflect.Map {
		key = visit{typ: t, ptr: src.Pointer()}
		if dst, ok := s.seen[key]; ok {
			return dst, true
		}
	}

	out := reflect.ValueOf(src.Interface().(Cloner).DeepClone())
	if !out.IsValid() || !out.Type().AssignableTo(t) {
		return reflect.Value{}, false
	}
	if out.Type() != t {
		typed := reflect.New(t).Elem()
		typed.Set(out)
		out = typed
	}
	if key.typ != nil {
		s.seen[key] = out
	}
	return out, true
}
