package value

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const serviceDoc = `
defaults: &defaults
  retries: 3
  pattern: !regexp /ab+c/gi
service:
  <<: *defaults
  name: api
backup: *defaults
created: 2024-01-02T03:04:05Z
missing: !undefined ""
failure: !error
  code: 500
`

func TestDecode_AliasesAndMerge(t *testing.T) {
	v, err := Decode([]byte(serviceDoc))
	require.NoError(t, err)
	root, ok := v.(*Object)
	require.True(t, ok)

	defaults, _ := root.Get("defaults")
	backup, _ := root.Get("backup")
	assert.Same(t, defaults, backup, "alias decodes to the anchored object")

	service, _ := root.Get("service")
	svc := service.(*Object)
	assert.Same(t, defaults, svc.Proto(), "merge key becomes the prototype")
	assert.Equal(t, []string{"name"}, svc.Keys())
	assert.Equal(t, []string{"name", "retries", "pattern"}, svc.EnumerableKeys())

	pattern, _ := svc.Get("pattern")
	re := pattern.(*RegExp)
	assert.Equal(t, "ab+c", re.Source())
	assert.Equal(t, "gi", re.Flags())

	created, _ := root.Get("created")
	require.IsType(t, &Date{}, created)
	assert.True(t, created.(*Date).Time().Equal(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)))

	missing, _ := root.Get("missing")
	assert.Equal(t, Undefined{}, missing)

	failure, _ := root.Get("failure")
	assert.True(t, IsType(failure, "Error"))
}

func TestDecodeCloneEncode(t *testing.T) {
	v, err := Decode([]byte(serviceDoc))
	require.NoError(t, err)

	clone := DeepClone(v).(*Object)
	assertDisjoint(t, v, clone)

	defaults, _ := clone.Get("defaults")
	backup, _ := clone.Get("backup")
	assert.Same(t, defaults, backup)

	// Merged keys were inherited in the source and are own on the clone.
	service, _ := clone.Get("service")
	assert.Equal(t, []string{"name", "retries", "pattern"}, service.(*Object).Keys())

	out, err := Encode(clone)
	require.NoError(t, err)
	text := string(out)
	assert.Contains(t, text, "&ref1")
	assert.Contains(t, text, "*ref1")
	assert.Contains(t, text, "*ref2")
	assert.Contains(t, text, "!regexp /ab+c/gi")

	back, err := Decode(out)
	require.NoError(t, err)
	want, err := Export(clone)
	require.NoError(t, err)
	got, err := Export(back)
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestEncode_Cycle(t *testing.T) {
	a := NewObject(nil)
	a.Set("name", String("loop"))
	a.Set("self", a)

	out, err := Encode(a)
	require.NoError(t, err)
	assert.Contains(t, string(out), "&ref1")
	assert.Contains(t, string(out), "*ref1")

	back, err := Decode(out)
	require.NoError(t, err)
	obj := back.(*Object)
	self, _ := obj.Get("self")
	assert.Same(t, obj, self)
	assert.True(t, Equal(a, back))
}

func TestEncode_Scalars(t *testing.T) {
	arr := NewArray(
		Null{},
		Bool(true),
		Number(3),
		Number(2.5),
		String("true"),
		Undefined{},
	)
	out, err := Encode(arr)
	require.NoError(t, err)

	back, err := Decode(out)
	require.NoError(t, err)
	assert.True(t, Equal(arr, back), "got:\n%s", out)
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"bad regexp", "x: !regexp /a(/g"},
		{"bad flags", "x: !regexp /a/q"},
		{"unknown tag", "x: !custom 1"},
		{"complex key", "? [a, b]\n: 1"},
		{"merge sequence", "a: &a {x: 1}\nb:\n  <<: [*a]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestDecode_Empty(t *testing.T) {
	v, err := Decode(nil)
	require.NoError(t, err)
	assert.Equal(t, Null{}, v)

	v, err = Decode([]byte(strings.Repeat(" ", 3)))
	require.NoError(t, err)
	assert.Equal(t, Null{}, v)
}
