package modem

import (
	"fmt"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

type Entry struct {
	Key   string
	Value string
}

// CodeTable is an ordered string to string mapping used both to encode
// message characters into codewords and to decode codewords back.
type CodeTable struct {
	entries []Entry
	index   map[string]string

	// keys in descending lexicographic order, the decoder search order
	sorted []string
}

// NewCodeTable validates entries and builds a table preserving their order.
func NewCodeTable(entries ...Entry) (*CodeTable, error) {
	t := &CodeTable{
		entries: make([]Entry, 0, len(entries)),
		index:   make(map[string]string, len(entries)),
	}
	for _, e := range entries {
		if e.Key == "" {
			return nil, ErrEmptyKey
		}
		if e.Value == "" {
			return nil, fmt.Errorf("%w: key %q", ErrEmptyValue, e.Key)
		}
		if _, ok := t.index[e.Key]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateKey, e.Key)
		}
		t.entries = append(t.entries, e)
		t.index[e.Key] = e.Value
		t.sorted = append(t.sorted, e.Key)
	}
	slices.SortFunc(t.sorted, func(a, b string) int {
		return strings.Compare(b, a)
	})
	return t, nil
}

// NewDecodeTable is NewCodeTable restricted to keys over {'0', '1'}.
func NewDecodeTable(entries ...Entry) (*CodeTable, error) {
	for _, e := range entries {
		if !isBitString(e.Key) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidCodeword, e.Key)
		}
	}
	return NewCodeTable(entries...)
}

func (t *CodeTable) Lookup(key string) (string, bool) {
	v, ok := t.index[key]
	return v, ok
}

func (t *CodeTable) Len() int {
	return len(t.entries)
}

// Entries returns the entries in insertion order.
func (t *CodeTable) Entries() []Entry {
	return slices.Clone(t.entries)
}

// Inverse swaps keys and values. It fails when two keys share a value.
func (t *CodeTable) Inverse() (*CodeTable, error) {
	inverse := make([]Entry, len(t.entries))
	for i, e := range t.entries {
		inverse[i] = Entry{Key: e.Value, Value: e.Key}
	}
	return NewCodeTable(inverse...)
}

// match returns the first key, in descending lexicographic order, that
// prefixes s. Two keys prefixing s are prefixes of each other and the longer
// one sorts first, so this is also the longest match.
func (t *CodeTable) match(s string) (string, bool) {
	for _, key := range t.sorted {
		if strings.HasPrefix(s, key) {
			return key, true
		}
	}
	return "", false
}

func (t *CodeTable) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: code table must be a mapping", node.Line)
	}
	entries := make([]Entry, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		if k.Kind != yaml.ScalarNode || v.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: code table entries must be scalars", k.Line)
		}
		entries = append(entries, Entry{Key: k.Value, Value: v.Value})
	}
	table, err := NewCodeTable(entries...)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*t = *table
	return nil
}

func (t *CodeTable) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, e := range t.entries {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Key},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Value},
		)
	}
	return node, nil
}

func isBitString(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] != '0' && s[i] != '1' {
			return false
		}
	}
	return true
}
