package document

import (
	"fmt"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"

	ncconf "github.com/reoring/ncconf"
)

// MarshalYAML emits an ordered mapping node so yaml.Marshal keeps key order.
func (v Value) MarshalYAML() (any, error) {
	return v.YAMLNode(nil), nil
}

// YAMLNode converts v into a yaml.Node tree. When comment is non-nil it is
// called for every map key path and a non-empty result becomes the key's head
// comment.
func (v Value) YAMLNode(comment func(ncconf.Path) string) *yaml.Node {
	return v.yamlNode(nil, comment)
}

func (v Value) yamlNode(at ncconf.Path, comment func(ncconf.Path) string) *yaml.Node {
	switch v.kind {
	case KindAbsent, KindNull:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	case KindBool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(v.b)}
	case KindNumber:
		return numberNode(v.n)
	case KindString:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.s}
	case KindArray:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for i, it := range v.arr {
			n.Content = append(n.Content, it.yamlNode(at.Index(i), comment))
		}
		if len(v.arr) == 0 {
			n.Style = yaml.FlowStyle
		}
		return n
	}
	n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for k, it := range v.m.All() {
		p := at.Field(k)
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}
		if comment != nil {
			key.HeadComment = comment(p)
		}
		n.Content = append(n.Content, key, it.yamlNode(p, comment))
	}
	if v.m.Len() == 0 {
		n.Style = yaml.FlowStyle
	}
	return n
}

func numberNode(f float64) *yaml.Node {
	n := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float"}
	switch {
	case math.IsNaN(f):
		n.Value = ".nan"
	case math.IsInf(f, 1):
		n.Value = ".inf"
	case math.IsInf(f, -1):
		n.Value = "-.inf"
	case f == math.Trunc(f) && math.Abs(f) < 1e18:
		n.Tag = "!!int"
		n.Value = strconv.FormatInt(int64(f), 10)
	default:
		n.Value = FormatNumber(f)
	}
	return n
}

// UnmarshalYAML decodes a node tree preserving mapping order.
func (v *Value) UnmarshalYAML(n *yaml.Node) error {
	got, err := FromYAMLNode(n)
	if err != nil {
		return err
	}
	*v = got
	return nil
}

// FromYAMLNode converts a parsed yaml.Node. Duplicate mapping keys are reported
// as duplicate_key issues.
func FromYAMLNode(n *yaml.Node) (Value, error) {
	return fromYAML(n, nil, 0)
}

const maxAliasDepth = 64

func fromYAML(n *yaml.Node, at ncconf.Path, depth int) (Value, error) {
	if n == nil {
		return Null(), nil
	}
	if depth > maxAliasDepth {
		return Value{}, fmt.Errorf("document: yaml nesting too deep at %s", at.Pointer())
	}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Null(), nil
		}
		return fromYAML(n.Content[0], at, depth)
	case yaml.AliasNode:
		return fromYAML(n.Alias, at, depth+1)
	case yaml.SequenceNode:
		items := make([]Value, 0, len(n.Content))
		for i, c := range n.Content {
			it, err := fromYAML(c, at.Index(i), depth+1)
			if err != nil {
				return Value{}, err
			}
			items = append(items, it)
		}
		return Array(items...), nil
	case yaml.MappingNode:
		b := NewBuilder()
		for i := 0; i+1 < len(n.Content); i += 2 {
			kn, vn := n.Content[i], n.Content[i+1]
			if kn.Kind == yaml.AliasNode {
				kn = kn.Alias
			}
			if kn.ShortTag() == "!!merge" {
				merged, err := fromYAML(vn, at, depth+1)
				if err != nil {
					return Value{}, err
				}
				for k, mv := range merged.Map().All() {
					if !b.Has(k) {
						b.Set(k, mv)
					}
				}
				continue
			}
			key := kn.Value
			if b.Has(key) {
				p := at.Field(key)
				return Value{}, ncconf.Issues{p.IssueAt(ncconf.CodeDuplicateKey, "duplicate key "+key, "line", kn.Line)}
			}
			val, err := fromYAML(vn, at.Field(key), depth+1)
			if err != nil {
				return Value{}, err
			}
			b.Set(key, val)
		}
		return b.Value(), nil
	case yaml.ScalarNode:
		return yamlScalar(n)
	}
	return Value{}, fmt.Errorf("document: unsupported yaml node kind %d", n.Kind)
}

func yamlScalar(n *yaml.Node) (Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return Null(), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return Value{}, err
		}
		return Bool(b), nil
	case "!!int", "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return Value{}, err
		}
		return Number(f), nil
	}
	return String(n.Value), nil
}
