package value

type pair struct{ a, b Value }

// Equal reports whether a and b are structurally equal. Objects compare by
// kind, class, prototype identity and for-in enumeration (keys in order and
// their values); arrays element-wise; regexps by source, flags and
// LastIndex; dates by instant. Cyclic graphs terminate: a pair already under
// comparison is assumed equal.
func Equal(a, b Value) bool {
	return equal(a, b, make(map[pair]struct{}))
}

func equal(a, b Value, inProgress map[pair]struct{}) bool {
	if a == nil {
		a = Undefined{}
	}
	if b == nil {
		b = Undefined{}
	}
	if a.Kind() != b.Kind() {
		return false
	}
	if IsPrimitive(a) {
		if x, ok := a.(Number); ok && x != x {
			y := b.(Number)
			return y != y // NaN equals NaN here
		}
		return a == b
	}
	if a == b {
		return true
	}
	p := pair{a, b}
	if _, ok := inProgress[p]; ok {
		return true
	}
	inProgress[p] = struct{}{}

	switch x := a.(type) {
	case *Array:
		y := b.(*Array)
		if len(x.elems) != len(y.elems) {
			return false
		}
		for i := range x.elems {
			if !equal(x.elems[i], y.elems[i], inProgress) {
				return false
			}
		}
		return true

	case *RegExp:
		y := b.(*RegExp)
		return x.source == y.source && x.flags == y.flags && x.LastIndex == y.LastIndex

	case *Date:
		return x.t.Equal(b.(*Date).t)

	case *Object:
		y := b.(*Object)
		if x.proto != y.proto || x.class != y.class {
			return false
		}
		xk, yk := x.EnumerableKeys(), y.EnumerableKeys()
		if len(xk) != len(yk) {
			return false
		}
		for i, k := range xk {
			if yk[i] != k {
				return false
			}
			xv, _ := x.Get(k)
			yv, _ := y.Get(k)
			if !equal(xv, yv, inProgress) {
				return false
			}
		}
		return true
	}
	return false
}

// Census summarizes the composites reachable from a value.
type Census struct {
	// Composites is the number of distinct composite values.
	Composites int
	// Shared is how many of them are reached through more than one reference.
	Shared int
}

// Count walks v and tallies its composites. Prototypes are not walked.
func Count(v Value) Census {
	refs := make(map[Value]int)
	var walk func(Value)
	walk = func(v Value) {
		if IsPrimitive(v) {
			return
		}
		refs[v]++
		if refs[v] > 1 {
			return
		}
		forEachChild(v, walk)
	}
	walk(v)

	var c Census
	for _, n := range refs {
		c.Composites++
		if n > 1 {
			c.Shared++
		}
	}
	return c
}

// forEachChild calls fn for every child of a composite in enumeration order.
func forEachChild(v Value, fn func(Value)) {
	switch x := v.(type) {
	case *Array:
		for _, e := range x.elems {
			fn(e)
		}
	case *Object:
		for _, k := range x.EnumerableKeys() {
			child, _ := x.Get(k)
			fn(child)
		}
	}
}
