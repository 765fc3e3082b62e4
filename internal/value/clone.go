package value

// cloner holds the visited-set for one DeepClone call. Keys are composite
// values, so map lookup compares pointers: two distinct objects with equal
// contents are different keys.
type cloner struct {
	seen map[Value]Value
}

// DeepClone returns an independent copy of v.
//
// Primitives are returned unchanged. Every distinct composite reachable from
// v is copied exactly once, so shared references and cycles in v reappear
// with the same topology in the result. Objects are copied by for-in
// enumeration onto a shell with the same prototype and class: inherited
// enumerable properties become own properties of the copy, non-enumerable
// properties are dropped, and a function becomes a plain, non-callable
// object. Prototypes are shared with the source, not copied.
//
// Recursion follows the depth of the input graph; very deep graphs can
// exhaust the goroutine stack.
func DeepClone(v Value) Value {
	c := &cloner{seen: make(map[Value]Value)}
	return c.clone(v)
}

func (c *cloner) clone(v Value) Value {
	if IsPrimitive(v) {
		return v
	}
	if dst, ok := c.seen[v]; ok {
		return dst
	}

	switch src := v.(type) {
	case *Array:
		dst := &Array{elems: make([]Value, 0, len(src.elems))}
		c.seen[src] = dst
		for i, e := range src.elems {
			dst.SetAt(i, c.clone(e))
		}
		return dst

	case *RegExp:
		dst := &RegExp{source: src.source, flags: src.flags, re: src.re, LastIndex: src.LastIndex}
		c.seen[src] = dst
		return dst

	case *Date:
		dst := &Date{t: src.t}
		c.seen[src] = dst
		return dst

	case *Object:
		dst := NewObject(src.proto)
		dst.class = src.class
		c.seen[src] = dst
		for _, k := range src.EnumerableKeys() {
			child, _ := src.Get(k)
			dst.Set(k, c.clone(child))
		}
		return dst
	}

	// Unreachable for the sealed union; kept so a new kind fails loudly.
	panic("value: DeepClone of unknown kind " + KindOf(v).String())
}
