package value

import (
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"time"
)

// Export converts v into plain Go data: nil, bool, float64, string, []any,
// map[string]any, time.Time, or the /source/flags literal for a regexp.
// Shared subgraphs are duplicated; a cycle fails with ErrCycle.
func Export(v Value) (any, error) {
	return export(v, make(map[Value]struct{}))
}

func export(v Value, onPath map[Value]struct{}) (any, error) {
	switch x := v.(type) {
	case nil, Undefined, Null:
		return nil, nil
	case Bool:
		return bool(x), nil
	case Number:
		return float64(x), nil
	case String:
		return string(x), nil
	case *RegExp:
		return x.String(), nil
	case *Date:
		return x.t, nil
	}

	if _, ok := onPath[v]; ok {
		return nil, fmt.Errorf("export %s: %w", Tag(v), ErrCycle)
	}
	onPath[v] = struct{}{}
	defer delete(onPath, v)

	switch x := v.(type) {
	case *Array:
		out := make([]any, len(x.elems))
		for i, e := range x.elems {
			ev, err := export(e, onPath)
			if err != nil {
				return nil, err
			}
			out[i] = ev
		}
		return out, nil
	case *Object:
		keys := x.EnumerableKeys()
		out := make(map[string]any, len(keys))
		for _, k := range keys {
			child, _ := x.Get(k)
			ev, err := export(child, onPath)
			if err != nil {
				return nil, err
			}
			out[k] = ev
		}
		return out, nil
	}
	return nil, fmt.Errorf("export %T: %w", v, ErrUnsupportedKind)
}

var timeType = reflect.TypeOf(time.Time{})

// FromGo converts plain Go data into a Value. Maps must have string keys and
// are read in sorted key order. A Value passes through unchanged.
func FromGo(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return t, nil
	case time.Time:
		return NewDate(t), nil
	case *regexp.Regexp:
		return NewRegExp(t.String(), "")
	}
	return fromReflect(reflect.ValueOf(x))
}

func fromReflect(rv reflect.Value) (Value, error) {
	switch rv.Kind() {
	case reflect.Invalid:
		return Null{}, nil
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Number(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return Number(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return Number(rv.Float()), nil
	case reflect.String:
		return String(rv.String()), nil
	case reflect.Interface, reflect.Pointer:
		if rv.IsNil() {
			return Null{}, nil
		}
		switch t := rv.Interface().(type) {
		case Value:
			return t, nil
		case *regexp.Regexp:
			return NewRegExp(t.String(), "")
		}
		return fromReflect(rv.Elem())
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return Null{}, nil
		}
		arr := &Array{elems: make([]Value, 0, rv.Len())}
		for i := 0; i < rv.Len(); i++ {
			ev, err := fromReflect(rv.Index(i))
			if err != nil {
				return nil, err
			}
			arr.elems = append(arr.elems, ev)
		}
		return arr, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("map key %s: %w", rv.Type().Key(), ErrUnsupportedKind)
		}
		if rv.IsNil() {
			return Null{}, nil
		}
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		obj := NewObject(nil)
		for _, k := range keys {
			ev, err := fromReflect(rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key())))
			if err != nil {
				return nil, err
			}
			obj.Set(k, ev)
		}
		return obj, nil
	case reflect.Struct:
		if rv.Type() == timeType {
			return NewDate(rv.Interface().(time.Time)), nil
		}
	}
	return nil, fmt.Errorf("%s: %w", rv.Type(), ErrUnsupportedKind)
}
