// Package taxonomy holds the canonical risk categories that free-text
// disclosures are classified into. The table is immutable after load.
package taxonomy

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Category is one canonical risk with its trigger keywords and an optional
// short description used by the semantic matching tier.
type Category struct {
	Name        string   `yaml:"name"`
	Keywords    []string `yaml:"keywords"`
	Description string   `yaml:"description,omitempty"`
}

// Taxonomy is a fixed, ordered set of categories plus a reverse keyword
// index. Safe for concurrent readers; never mutated after construction.
type Taxonomy struct {
	categories []Category
	byKeyword  map[string]string // keyword -> category name
}

// New builds a taxonomy from a category list. Keywords are lowercased;
// a keyword claimed by two categories keeps its first owner.
func New(categories []Category) (*Taxonomy, error) {
	if len(categories) == 0 {
		return nil, fmt.Errorf("taxonomy has no categories")
	}
	seen := make(map[string]bool, len(categories))
	index := make(map[string]string)
	out := make([]Category, 0, len(categories))
	for _, c := range categories {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return nil, fmt.Errorf("taxonomy category with empty name")
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate taxonomy category %q", name)
		}
		seen[name] = true
		kws := make([]string, 0, len(c.Keywords))
		for _, kw := range c.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" {
				continue
			}
			kws = append(kws, kw)
			if _, taken := index[kw]; !taken {
				index[kw] = name
			}
		}
		if len(kws) == 0 {
			return nil, fmt.Errorf("taxonomy category %q has no keywords", name)
		}
		out = append(out, Category{Name: name, Keywords: kws, Description: c.Description})
	}
	return &Taxonomy{categories: out, byKeyword: index}, nil
}

// LoadFile reads a category table from a YAML file, replacing the built-in
// defaults entirely.
func LoadFile(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read taxonomy: %w", err)
	}
	var wrapper struct {
		Categories []Category `yaml:"categories"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("decode taxonomy: %w", err)
	}
	return New(wrapper.Categories)
}

// Categories returns the categories in their authored order.
func (t *Taxonomy) Categories() []Category {
	return t.categories
}

// Len returns the number of categories.
func (t *Taxonomy) Len() int { return len(t.categories) }

// Lookup returns the category owning a keyword, if any.
func (t *Taxonomy) Lookup(keyword string) (string, bool) {
	name, ok := t.byKeyword[strings.ToLower(keyword)]
	return name, ok
}

// Keywords returns every indexed keyword in sorted order, so that matching
// passes iterate deterministically.
func (t *Taxonomy) Keywords() []string {
	out := make([]string, 0, len(t.byKeyword))
	for kw := range t.byKeyword {
		out = append(out, kw)
	}
	sort.Strings(out)
	return out
}

// Description returns the semantic-tier description for a category,
// falling back to the lowercased name.
func (t *Taxonomy) Description(name string) string {
	for _, c := range t.categories {
		if c.Name == name {
			if c.Description != "" {
				return c.Description
			}
			break
		}
	}
	return strings.ToLower(name)
}
