package value

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Local YAML tags understood by Decode and produced by Encode.
const (
	TagRegExp    = "!regexp"
	TagUndefined = "!undefined"
	TagError     = "!error"
)

// Decode parses a YAML document into a Value.
//
// Anchored nodes decode once: every alias to them yields the same composite,
// so shared references and cycles survive. A merge key (<<) holding a single
// mapping becomes the prototype of the enclosing object, which makes the
// merged keys inherited rather than own.
func Decode(data []byte) (Value, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}
	d := &decoder{seen: make(map[*yaml.Node]Value)}
	return d.node(&doc)
}

type decoder struct {
	seen map[*yaml.Node]Value
}

func (d *decoder) node(n *yaml.Node) (Value, error) {
	if v, ok := d.seen[n]; ok {
		return v, nil
	}
	switch n.Kind {
	case 0:
		return Null{}, nil
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Null{}, nil
		}
		return d.node(n.Content[0])
	case yaml.AliasNode:
		return d.node(n.Alias)
	case yaml.ScalarNode:
		v, err := d.scalar(n)
		if err == nil && !IsPrimitive(v) {
			d.seen[n] = v
		}
		return v, err
	case yaml.SequenceNode:
		arr := &Array{elems: make([]Value, 0, len(n.Content))}
		d.seen[n] = arr
		for _, c := range n.Content {
			v, err := d.node(c)
			if err != nil {
				return nil, err
			}
			arr.elems = append(arr.elems, v)
		}
		return arr, nil
	case yaml.MappingNode:
		return d.mapping(n)
	}
	return nil, fmt.Errorf("line %d: yaml node kind %d: %w", n.Line, n.Kind, ErrUnsupportedKind)
}

func (d *decoder) mapping(n *yaml.Node) (Value, error) {
	obj := NewObject(nil)
	if n.Tag == TagError {
		obj.class = "Error"
	}
	d.seen[n] = obj

	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		if key.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: non-scalar mapping key: %w", key.Line, ErrUnsupportedKind)
		}
		v, err := d.node(val)
		if err != nil {
			return nil, err
		}
		if key.ShortTag() == "!!merge" {
			proto, ok := v.(*Object)
			if !ok || obj.proto != nil {
				return nil, fmt.Errorf("line %d: merge key must hold a single mapping: %w", key.Line, ErrUnsupportedKind)
			}
			if err := obj.SetProto(proto); err != nil {
				return nil, fmt.Errorf("line %d: %w", key.Line, err)
			}
			continue
		}
		obj.Set(key.Value, v)
	}
	return obj, nil
}

func (d *decoder) scalar(n *yaml.Node) (Value, error) {
	switch tag := n.ShortTag(); tag {
	case "!!null":
		return Null{}, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, err
		}
		return Bool(b), nil
	case "!!int", "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, err
		}
		return Number(f), nil
	case "!!str":
		return String(n.Value), nil
	case "!!timestamp":
		var t time.Time
		if err := n.Decode(&t); err != nil {
			return nil, err
		}
		return NewDate(t), nil
	case TagRegExp:
		re, err := ParseRegExpLiteral(n.Value)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return re, nil
	case TagUndefined:
		return Undefined{}, nil
	default:
		return nil, fmt.Errorf("line %d: scalar tag %s: %w", n.Line, tag, ErrUnsupportedKind)
	}
}

// Encode renders v as a YAML document. A composite reached more than once is
// anchored (ref1, ref2, ... in order of its first repeated reference) and
// every later reference is emitted as an alias. Objects are written with
// for-in enumeration, so inherited keys are flattened into the mapping.
func Encode(v Value) ([]byte, error) {
	e := &encoder{nodes: make(map[Value]*yaml.Node)}
	root := e.node(v)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return nil, fmt.Errorf("failed to encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode yaml: %w", err)
	}
	return buf.Bytes(), nil
}

type encoder struct {
	nodes   map[Value]*yaml.Node
	anchors int
}

func scalarNode(tag, val string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: val}
}

func (e *encoder) node(v Value) *yaml.Node {
	switch x := v.(type) {
	case nil, Undefined:
		return scalarNode(TagUndefined, "")
	case Null:
		return scalarNode("!!null", "null")
	case Bool:
		return scalarNode("!!bool", strconv.FormatBool(bool(x)))
	case Number:
		return numberNode(float64(x))
	case String:
		return scalarNode("!!str", string(x))
	}

	if target, ok := e.nodes[v]; ok {
		if target.Anchor == "" {
			e.anchors++
			target.Anchor = "ref" + strconv.Itoa(e.anchors)
		}
		return &yaml.Node{Kind: yaml.AliasNode, Value: target.Anchor, Alias: target}
	}

	switch x := v.(type) {
	case *RegExp:
		n := scalarNode(TagRegExp, x.String())
		e.nodes[v] = n
		return n
	case *Date:
		n := scalarNode("!!timestamp", x.t.Format(time.RFC3339Nano))
		e.nodes[v] = n
		return n
	case *Array:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		e.nodes[v] = n
		for _, el := range x.elems {
			n.Content = append(n.Content, e.node(el))
		}
		return n
	case *Object:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		if x.class == "Error" {
			n.Tag = TagError
		}
		e.nodes[v] = n
		for _, k := range x.EnumerableKeys() {
			child, _ := x.Get(k)
			n.Content = append(n.Content, scalarNode("!!str", k), e.node(child))
		}
		return n
	}
	panic("value: Encode of unknown kind " + KindOf(v).String())
}

func numberNode(f float64) *yaml.Node {
	switch {
	case math.IsNaN(f):
		return scalarNode("!!float", ".nan")
	case math.IsInf(f, 1):
		return scalarNode("!!float", ".inf")
	case math.IsInf(f, -1):
		return scalarNode("!!float", "-.inf")
	case f == math.Trunc(f) && math.Abs(f) < 1e15:
		return scalarNode("!!int", strconv.FormatInt(int64(f), 10))
	}
	return scalarNode("!!float", strconv.FormatFloat(f, 'g', -1, 64))
}
