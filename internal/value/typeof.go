package value

// TypeOf returns the primitive type name of v: "undefined", "object",
// "boolean", "number", "string" or "function". Null is an "object".
func TypeOf(v Value) string {
	switch KindOf(v) {
	case KindUndefined:
		return "undefined"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindFunction:
		return "function"
	default:
		return "object"
	}
}

// Tag returns the "[object Name]" tag of v.
func Tag(v Value) string {
	return "[object " + className(v) + "]"
}

func className(v Value) string {
	switch x := v.(type) {
	case nil, Undefined:
		return "Undefined"
	case Null:
		return "Null"
	case Bool:
		return "Boolean"
	case Number:
		return "Number"
	case String:
		return "String"
	case *Array:
		return "Array"
	case *RegExp:
		return "RegExp"
	case *Date:
		return "Date"
	case *Object:
		if x.call != nil {
			return "Function"
		}
		if x.class != "" {
			return x.class
		}
	}
	return "Object"
}

var typeNames = map[string]bool{
	"String":    true,
	"Number":    true,
	"Boolean":   true,
	"Undefined": true,
	"Null":      true,
	"Array":     true,
	"Function":  true,
	"RegExp":    true,
	"Date":      true,
	"Error":     true,
}

// IsType reports whether v is an object-typed value whose tag names the
// given type. Only values for which TypeOf reports "object" can match, so
// IsType(String("x"), "String") is false and IsType(Null{}, "Null") is true.
// Unknown type names never match.
func IsType(v Value, name string) bool {
	if TypeOf(v) != "object" || !typeNames[name] {
		return false
	}
	return className(v) == name
}
