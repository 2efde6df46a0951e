package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"iter"

	"github.com/quantmind-br/assets-manifest-go/internal/domain"
)

// ErrInvalidManifest indicates JSON that does not have the manifest chain shape
var ErrInvalidManifest = errors.New("invalid manifest chain")

// Node is one chunk of the manifest chain
type Node struct {
	ID     domain.ChunkID
	Assets []Assets
	Next   *Node
}

// Assets are the files of one extension group
type Assets struct {
	Extension string
	Files     []string
}

// Files returns the files grouped under ext
func (n *Node) Files(ext string) ([]string, bool) {
	if n == nil {
		return nil, false
	}
	for _, a := range n.Assets {
		if a.Extension == ext {
			return a.Files, true
		}
	}
	return nil, false
}

// All iterates the chain from n to the tail
func (n *Node) All() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		for cur := n; cur != nil; cur = cur.Next {
			if !yield(cur) {
				return
			}
		}
	}
}

// Len returns the number of nodes from n to the tail
func (n *Node) Len() int {
	count := 0
	for range n.All() {
		count++
	}
	return count
}

// IDs returns the chunk ids in chain order
func (n *Node) IDs() []string {
	var ids []string
	for node := range n.All() {
		ids = append(ids, node.ID.String())
	}
	return ids
}

// MarshalJSON encodes the chain compactly. Keys are written as id, the
// extension groups in configured order, then next.
//
// encoding/json re-validates Marshaler output and rejects nesting deeper than
// 10000 levels; callers serializing very long chains should use Encode.
func (n *Node) MarshalJSON() ([]byte, error) {
	return n.Encode("", "")
}

// Encode serializes the chain without recursion. A non-empty indent produces
// the same layout as json.MarshalIndent with the given prefix and indent.
func (n *Node) Encode(prefix, indent string) ([]byte, error) {
	if n == nil {
		return []byte("null"), nil
	}

	e := &chainEncoder{prefix: prefix, indent: indent}
	depth := 0
	for cur := n; cur != nil; cur = cur.Next {
		e.buf.WriteByte('{')
		depth++
		e.newline(depth)
		if err := e.field("id", cur.ID); err != nil {
			return nil, err
		}
		for _, a := range cur.Assets {
			e.buf.WriteByte(',')
			e.newline(depth)
			if err := e.key(a.Extension); err != nil {
				return nil, err
			}
			if err := e.stringArray(a.Files, depth); err != nil {
				return nil, err
			}
		}
		e.buf.WriteByte(',')
		e.newline(depth)
		if err := e.key("next"); err != nil {
			return nil, err
		}
	}

	e.buf.WriteString("null")
	for depth > 0 {
		depth--
		e.newline(depth)
		e.buf.WriteByte('}')
	}
	return e.buf.Bytes(), nil
}

type chainEncoder struct {
	buf    bytes.Buffer
	prefix string
	indent string
}

func (e *chainEncoder) newline(depth int) {
	if e.indent == "" && e.prefix == "" {
		return
	}
	e.buf.WriteByte('\n')
	e.buf.WriteString(e.prefix)
	for i := 0; i < depth; i++ {
		e.buf.WriteString(e.indent)
	}
}

func (e *chainEncoder) key(name string) error {
	if err := appendJSON(&e.buf, name); err != nil {
		return err
	}
	e.buf.WriteByte(':')
	if e.indent != "" || e.prefix != "" {
		e.buf.WriteByte(' ')
	}
	return nil
}

func (e *chainEncoder) field(name string, v any) error {
	if err := e.key(name); err != nil {
		return err
	}
	return appendJSON(&e.buf, v)
}

func (e *chainEncoder) stringArray(values []string, depth int) error {
	if len(values) == 0 {
		e.buf.WriteString("[]")
		return nil
	}
	e.buf.WriteByte('[')
	for i, v := range values {
		if i > 0 {
			e.buf.WriteByte(',')
		}
		e.newline(depth + 1)
		if err := appendJSON(&e.buf, v); err != nil {
			return err
		}
	}
	e.newline(depth)
	e.buf.WriteByte(']')
	return nil
}

// appendJSON writes v without HTML escaping, so paths keep "&" and "<" as is
func appendJSON(buf *bytes.Buffer, v any) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	buf.Truncate(buf.Len() - 1)
	return nil
}

// UnmarshalJSON decodes a chain written by MarshalJSON. Every key other than
// id and next must hold an array of strings and becomes an extension group,
// in document order.
func (n *Node) UnmarshalJSON(data []byte) error {
	head, err := Parse(data)
	if err != nil {
		return err
	}
	if head == nil {
		return nil
	}
	*n = *head
	return nil
}

// Parse decodes a manifest chain. JSON null yields a nil head.
func Parse(data []byte) (*Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}
	if tok == nil {
		return nil, nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("%w: expected object, got %v", ErrInvalidManifest, tok)
	}

	head := &Node{}
	stack := []*Node{head}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]

		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
		}
		if d, ok := tok.(json.Delim); ok && d == '}' {
			stack = stack[:len(stack)-1]
			continue
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("%w: unexpected token %v", ErrInvalidManifest, tok)
		}

		switch key {
		case "id":
			if err := dec.Decode(&cur.ID); err != nil {
				return nil, fmt.Errorf("%w: id: %v", ErrInvalidManifest, err)
			}
		case "next":
			tok, err := dec.Token()
			if err != nil {
				return nil, fmt.Errorf("%w: next: %v", ErrInvalidManifest, err)
			}
			if tok == nil {
				continue
			}
			if d, ok := tok.(json.Delim); !ok || d != '{' {
				return nil, fmt.Errorf("%w: next must be an object or null, got %v", ErrInvalidManifest, tok)
			}
			cur.Next = &Node{}
			stack = append(stack, cur.Next)
		default:
			var files []string
			if err := dec.Decode(&files); err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrInvalidManifest, key, err)
			}
			if files == nil {
				files = []string{}
			}
			cur.Assets = append(cur.Assets, Assets{Extension: key, Files: files})
		}
	}

	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data", ErrInvalidManifest)
	}
	return head, nil
}
