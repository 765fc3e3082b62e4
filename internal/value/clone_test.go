package value

import (
	"math"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeepClone_Primitives(t *testing.T) {
	tests := []struct {
		name string
		in   Value
	}{
		{"undefined", Undefined{}},
		{"null", Null{}},
		{"true", Bool(true)},
		{"number", Number(42.5)},
		{"negative zero", Number(math.Copysign(0, -1))},
		{"string", String("hello")},
		{"empty string", String("")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeepClone(tt.in)
			assert.True(t, got == tt.in, "primitive must come back unchanged")
		})
	}

	t.Run("nil interface", func(t *testing.T) {
		assert.Nil(t, DeepClone(nil))
	})
}

// assertDisjoint fails if any composite in got is also reachable in src.
func assertDisjoint(t *testing.T, src, got Value) {
	t.Helper()
	owned := make(map[Value]struct{})
	var collect func(Value)
	collect = func(v Value) {
		if IsPrimitive(v) {
			return
		}
		if _, ok := owned[v]; ok {
			return
		}
		owned[v] = struct{}{}
		forEachChild(v, collect)
	}
	collect(src)

	visited := make(map[Value]struct{})
	var check func(Value)
	check = func(v Value) {
		if IsPrimitive(v) {
			return
		}
		if _, ok := visited[v]; ok {
			return
		}
		visited[v] = struct{}{}
		_, leaked := owned[v]
		assert.False(t, leaked, "clone shares %s with source", Tag(v))
		forEachChild(v, check)
	}
	check(got)
}

func TestDeepClone_NestedArray(t *testing.T) {
	inner := NewObject(nil)
	inner.Set("a", Number(4))
	src := NewArray(Number(1), NewArray(Number(2), Number(3)), inner)

	got := DeepClone(src)
	require.IsType(t, &Array{}, got)
	assert.NotSame(t, src, got)
	assert.True(t, Equal(src, got))
	assertDisjoint(t, src, got)

	want, err := Export(src)
	require.NoError(t, err)
	have, err := Export(got)
	require.NoError(t, err)
	if diff := cmp.Diff(want, have); diff != "" {
		t.Errorf("clone mismatch (-want +got):\n%s", diff)
	}

	// Mutating the clone leaves the source alone.
	got.(*Array).At(1).(*Array).SetAt(0, String("changed"))
	assert.Equal(t, Number(2), src.At(1).(*Array).At(0))
}

func TestDeepClone_SelfCycle(t *testing.T) {
	a := NewObject(nil)
	a.Set("self", a)

	got, ok := DeepClone(a).(*Object)
	require.True(t, ok)
	assert.NotSame(t, a, got)

	self, ok := got.Get("self")
	require.True(t, ok)
	assert.Same(t, got, self, "clone.self must point at the clone")
	assert.True(t, Equal(a, got))
}

func TestDeepClone_IndirectCycle(t *testing.T) {
	parent := NewObject(nil)
	children := NewArray()
	parent.Set("children", children)
	for i := 0; i < 3; i++ {
		child := NewObject(nil)
		child.Set("id", Number(i))
		child.Set("parent", parent)
		children.Append(child)
	}

	got := DeepClone(parent).(*Object)
	kids, _ := got.Get("children")
	for i := 0; i < 3; i++ {
		child := kids.(*Array).At(i).(*Object)
		back, _ := child.Get("parent")
		assert.Same(t, got, back)
	}
	assertDisjoint(t, parent, got)
}

func TestDeepClone_SharedReference(t *testing.T) {
	shared := NewObject(nil)
	shared.Set("x", Number(1))
	obj := NewObject(nil)
	obj.Set("p", shared)
	obj.Set("q", shared)

	got := DeepClone(obj).(*Object)
	p, _ := got.Get("p")
	q, _ := got.Get("q")
	assert.Same(t, p, q, "shared subgraph must stay shared")
	assert.NotSame(t, shared, p)
	assert.Equal(t, Census{Composites: 2, Shared: 1}, Count(got))
}

func TestDeepClone_RegExp(t *testing.T) {
	src := MustRegExp("ab+c", "gi")
	src.LastIndex = 4

	got, ok := DeepClone(src).(*RegExp)
	require.True(t, ok)
	assert.NotSame(t, src, got)
	assert.Equal(t, "ab+c", got.Source())
	assert.Equal(t, "gi", got.Flags())
	assert.True(t, got.Global())
	assert.True(t, got.IgnoreCase())
	assert.False(t, got.Multiline())
	assert.Equal(t, 4, got.LastIndex)

	// The cursor belongs to each matcher separately.
	assert.True(t, got.Test("xxxxABBC"))
	assert.Equal(t, 8, got.LastIndex)
	assert.Equal(t, 4, src.LastIndex)
}

func TestRegExp_NegativeLastIndex(t *testing.T) {
	re := MustRegExp("a", "g")
	re.LastIndex = -1

	groups, ok := re.Exec("abc")
	require.True(t, ok)
	assert.Equal(t, []string{"a"}, groups)
	assert.Equal(t, 1, re.LastIndex)

	re.LastIndex = -5
	assert.False(t, re.Test("xyz"))
	assert.Equal(t, 0, re.LastIndex)
}

func TestDeepClone_Date(t *testing.T) {
	instant := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	src := NewDate(instant)

	got, ok := DeepClone(src).(*Date)
	require.True(t, ok)
	assert.NotSame(t, src, got)
	assert.True(t, got.Time().Equal(instant))

	got.SetTime(instant.Add(time.Hour))
	assert.True(t, src.Time().Equal(instant))
}

func TestDeepClone_PrototypeAndEnumeration(t *testing.T) {
	proto := NewObject(nil)
	proto.Set("greet", String("hi"))
	proto.Define("hidden", String("secret"), false)

	src := NewObject(proto)
	src.Set("own", Number(1))
	src.Define("internal", Number(2), false)

	got := DeepClone(src).(*Object)

	assert.Same(t, proto, got.Proto(), "clone keeps the source prototype")
	assert.Equal(t, []string{"own", "greet"}, got.Keys(), "inherited enumerable keys become own")

	_, ok := got.Own("internal")
	assert.False(t, ok, "non-enumerable own properties are not copied")

	hidden, ok := got.Get("hidden")
	assert.True(t, ok, "prototype lookups still work on the clone")
	assert.Equal(t, String("secret"), hidden)
}

func TestDeepClone_ShadowedNonEnumerable(t *testing.T) {
	proto := NewObject(nil)
	proto.Set("k", String("inherited"))
	src := NewObject(proto)
	src.Define("k", String("own"), false)

	got := DeepClone(src).(*Object)
	assert.Empty(t, got.Keys(), "a non-enumerable own key shadows the inherited one")
}

func TestDeepClone_FunctionBecomesShell(t *testing.T) {
	fn := NewFunction(nil, "double", func(_ Value, args []Value) (Value, error) {
		return args[0].(Number) * 2, nil
	})
	fn.Set("extra", Number(7))

	out, err := fn.Call(Undefined{}, Number(21))
	require.NoError(t, err)
	assert.Equal(t, Number(42), out)

	got := DeepClone(fn).(*Object)
	assert.Equal(t, KindObject, got.Kind())
	assert.False(t, got.Callable())
	assert.Equal(t, []string{"extra"}, got.Keys())

	_, err = got.Call(Undefined{})
	assert.ErrorIs(t, err, ErrNotCallable)
}

func TestDeepClone_ErrorClass(t *testing.T) {
	src := NewError(nil, "boom")
	src.Set("code", Number(500))

	got := DeepClone(src).(*Object)
	assert.Equal(t, "[object Error]", Tag(got))
	assert.True(t, IsType(got, "Error"))
	_, ok := got.Own("message")
	assert.False(t, ok)
	code, _ := got.Get("code")
	assert.Equal(t, Number(500), code)
}

func TestDeepClone_ConcurrentCalls(t *testing.T) {
	shared := NewObject(nil)
	shared.Set("n", Number(1))
	root := NewArray(shared, shared, MustRegExp("x", "g"))

	var wg sync.WaitGroup
	results := make([]Value, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = DeepClone(root)
		}(i)
	}
	wg.Wait()

	for i, r := range results {
		arr := r.(*Array)
		assert.Same(t, arr.At(0), arr.At(1), "result %d", i)
		assert.True(t, Equal(root, r), "result %d", i)
		for j := i + 1; j < len(results); j++ {
			assert.NotSame(t, r, results[j])
		}
	}
}

func TestEqual(t *testing.T) {
	a := NewObject(nil)
	a.Set("self", a)
	b := NewObject(nil)
	b.Set("self", b)
	assert.True(t, Equal(a, b))

	c := NewObject(nil)
	c.Set("self", Null{})
	assert.False(t, Equal(a, c))

	assert.False(t, Equal(NewArray(Number(1)), NewArray(Number(1), Number(2))))
	assert.False(t, Equal(MustRegExp("a", "g"), MustRegExp("a", "i")))
	assert.True(t, Equal(nil, Undefined{}))
	assert.False(t, Equal(Number(1), String("1")))
	assert.True(t, Equal(Number(math.NaN()), Number(math.NaN())))
	assert.False(t, Equal(Number(math.NaN()), Number(0)))
}
