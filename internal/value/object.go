package value

import "fmt"

// Callable is the behavior behind a function object.
type Callable func(this Value, args []Value) (Value, error)

type property struct {
	value      Value
	enumerable bool
}

// Object is a keyed record with a prototype link. Properties keep insertion
// order. An Object with a call slot is a function.
//
// The prototype and class label together form the object's capability set:
// lookups fall through to the prototype, and the class decides the tag
// reported by Tag.
type Object struct {
	proto *Object
	class string
	keys  []string
	props map[string]*property
	call  Callable
}

// NewObject returns an empty object inheriting from proto (which may be nil).
func NewObject(proto *Object) *Object {
	return &Object{proto: proto, props: make(map[string]*property)}
}

// NewError returns an error-class object with an own "message" property.
// The message is not enumerable, matching host error objects.
func NewError(proto *Object, message string) *Object {
	o := NewObject(proto)
	o.class = "Error"
	o.Define("message", String(message), false)
	return o
}

// NewFunction returns a callable object with a non-enumerable "name".
func NewFunction(proto *Object, name string, fn Callable) *Object {
	o := NewObject(proto)
	o.call = fn
	o.Define("name", String(name), false)
	return o
}

func (o *Object) Kind() Kind {
	if o.call != nil {
		return KindFunction
	}
	return KindObject
}

func (*Object) value() {}

// Proto returns the prototype, or nil.
func (o *Object) Proto() *Object { return o.proto }

// SetProto replaces the prototype. It refuses to create a cycle.
func (o *Object) SetProto(p *Object) error {
	for cur := p; cur != nil; cur = cur.proto {
		if cur == o {
			return ErrCyclicProto
		}
	}
	o.proto = p
	return nil
}

// Class returns the class label ("" for plain objects).
func (o *Object) Class() string { return o.class }

// Callable reports whether the object has a call slot.
func (o *Object) Callable() bool { return o.call != nil }

// Call invokes the function with the given receiver.
func (o *Object) Call(this Value, args ...Value) (Value, error) {
	if o.call == nil {
		return nil, fmt.Errorf("%s: %w", Tag(o), ErrNotCallable)
	}
	return o.call(this, args)
}

// Set assigns an own property. A new property is enumerable; an existing own
// property keeps its enumerability.
func (o *Object) Set(key string, v Value) {
	if p, ok := o.props[key]; ok {
		p.value = v
		return
	}
	o.Define(key, v, true)
}

// Define creates or replaces an own property with explicit enumerability.
func (o *Object) Define(key string, v Value, enumerable bool) {
	if p, ok := o.props[key]; ok {
		p.value = v
		p.enumerable = enumerable
		return
	}
	o.keys = append(o.keys, key)
	o.props[key] = &property{value: v, enumerable: enumerable}
}

// Get looks key up on the object and then along its prototype chain.
func (o *Object) Get(key string) (Value, bool) {
	for cur := o; cur != nil; cur = cur.proto {
		if p, ok := cur.props[key]; ok {
			return p.value, true
		}
	}
	return nil, false
}

// Own returns an own property only.
func (o *Object) Own(key string) (Value, bool) {
	if p, ok := o.props[key]; ok {
		return p.value, true
	}
	return nil, false
}

// Delete removes an own property.
func (o *Object) Delete(key string) bool {
	if _, ok := o.props[key]; !ok {
		return false
	}
	delete(o.props, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
	return true
}

// Keys returns the own enumerable keys in insertion order.
func (o *Object) Keys() []string {
	out := make([]string, 0, len(o.keys))
	for _, k := range o.keys {
		if o.props[k].enumerable {
			out = append(out, k)
		}
	}
	return out
}

// OwnKeys returns every own key, enumerable or not.
func (o *Object) OwnKeys() []string {
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// EnumerableKeys returns the keys a for-in loop visits: own enumerable keys
// first, then enumerable keys of each prototype in chain order. A key seen
// earlier in the chain, enumerable or not, shadows later ones.
func (o *Object) EnumerableKeys() []string {
	seen := make(map[string]struct{})
	var out []string
	for cur := o; cur != nil; cur = cur.proto {
		for _, k := range cur.keys {
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			if cur.props[k].enumerable {
				out = append(out, k)
			}
		}
	}
	return out
}

// Len returns the number of own properties.
func (o *Object) Len() int { return len(o.keys) }
