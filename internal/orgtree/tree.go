// Package orgtree builds the nested, name keyed organization view and keeps a
// serialized snapshot of it in the cache.
package orgtree

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Node is a value in the organization tree, either a GroupNode or a LeafNode.
type Node interface {
	isNode()
}

// GroupNode holds the child groups and direct members of a group.
type GroupNode struct {
	Children *Tree
}

// LeafNode is a person, rendered as their job title.
type LeafNode struct {
	Title string
}

func (GroupNode) isNode() {}
func (LeafNode) isNode()  {}

// Tree is an insertion ordered mapping from display key to node.
// Setting an existing key replaces the node but keeps the key's original position.
type Tree struct {
	keys  []string
	nodes map[string]Node
}

// NewTree returns an empty tree.
func NewTree() *Tree {
	return &Tree{nodes: map[string]Node{}}
}

// Set stores node under key.
func (t *Tree) Set(key string, node Node) {
	if t.nodes == nil {
		t.nodes = map[string]Node{}
	}
	if _, exists := t.nodes[key]; !exists {
		t.keys = append(t.keys, key)
	}
	t.nodes[key] = node
}

// Get returns the node stored under key.
func (t *Tree) Get(key string) (Node, bool) {
	node, ok := t.nodes[key]
	return node, ok
}

// Keys returns the keys in insertion order.
func (t *Tree) Keys() []string {
	return append([]string(nil), t.keys...)
}

// Len returns the number of keys.
func (t *Tree) Len() int {
	return len(t.keys)
}

// Group returns the subtree stored under key, or nil if key is absent or a leaf.
func (t *Tree) Group(key string) *Tree {
	if g, ok := t.nodes[key].(GroupNode); ok {
		return g.Children
	}
	return nil
}

// MarshalJSON encodes groups as objects and people as job title strings, keeping key order.
func (t *Tree) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := t.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (t *Tree) encode(buf *bytes.Buffer) error {
	buf.WriteByte('{')
	for i, key := range t.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return err
		}
		buf.Write(k)
		buf.WriteByte(':')

		switch node := t.nodes[key].(type) {
		case LeafNode:
			v, err := json.Marshal(node.Title)
			if err != nil {
				return err
			}
			buf.Write(v)
		case GroupNode:
			children := node.Children
			if children == nil {
				children = NewTree()
			}
			if err := children.encode(buf); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unsupported node type %T for key %q", node, key)
		}
	}
	buf.WriteByte('}')
	return nil
}

// UnmarshalJSON decodes a tree previously produced by MarshalJSON, preserving key order.
func (t *Tree) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("organization tree must be a JSON object")
	}

	tree, err := decodeObject(dec)
	if err != nil {
		return err
	}

	*t = *tree
	return nil
}

// decodeObject reads object members after the opening brace has been consumed.
func decodeObject(dec *json.Decoder) (*Tree, error) {
	tree := NewTree()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected object key %v", tok)
		}

		tok, err = dec.Token()
		if err != nil {
			return nil, err
		}
		switch v := tok.(type) {
		case string:
			tree.Set(key, LeafNode{Title: v})
		case json.Delim:
			if v != '{' {
				return nil, fmt.Errorf("unexpected %v under %q", v, key)
			}
			children, err := decodeObject(dec)
			if err != nil {
				return nil, err
			}
			tree.Set(key, GroupNode{Children: children})
		default:
			return nil, fmt.Errorf("unexpected value %v under %q", v, key)
		}
	}

	// closing brace
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return tree, nil
}
