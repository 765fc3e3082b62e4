package value

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTypeOfAndTag(t *testing.T) {
	fn := NewFunction(nil, "f", func(Value, []Value) (Value, error) { return Undefined{}, nil })

	tests := []struct {
		in     Value
		typeOf string
		tag    string
	}{
		{Undefined{}, "undefined", "[object Undefined]"},
		{nil, "undefined", "[object Undefined]"},
		{Null{}, "object", "[object Null]"},
		{Bool(false), "boolean", "[object Boolean]"},
		{Number(1), "number", "[object Number]"},
		{String("s"), "string", "[object String]"},
		{NewArray(), "object", "[object Array]"},
		{NewObject(nil), "object", "[object Object]"},
		{NewError(nil, "x"), "object", "[object Error]"},
		{fn, "function", "[object Function]"},
		{MustRegExp("a", ""), "object", "[object RegExp]"},
		{NewDate(time.Unix(0, 0)), "object", "[object Date]"},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			assert.Equal(t, tt.typeOf, TypeOf(tt.in))
			assert.Equal(t, tt.tag, Tag(tt.in))
		})
	}
}

func TestIsType(t *testing.T) {
	fn := NewFunction(nil, "f", func(Value, []Value) (Value, error) { return Undefined{}, nil })

	assert.True(t, IsType(NewArray(), "Array"))
	assert.True(t, IsType(Null{}, "Null"))
	assert.True(t, IsType(MustRegExp("a", "g"), "RegExp"))
	assert.True(t, IsType(NewDate(time.Now()), "Date"))
	assert.True(t, IsType(NewError(nil, "x"), "Error"))

	// Only object-typed values can match.
	assert.False(t, IsType(String("s"), "String"))
	assert.False(t, IsType(Number(1), "Number"))
	assert.False(t, IsType(Undefined{}, "Undefined"))
	assert.False(t, IsType(fn, "Function"))

	assert.False(t, IsType(NewObject(nil), "Object"), "Object is not a recognized type name")
	assert.False(t, IsType(NewArray(), "Date"))
}
