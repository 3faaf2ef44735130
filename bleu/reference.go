package bleu

import "strings"

// Reference holds the n-gram tables and lengths of the references of one sentence
type Reference struct {
	Tokens  [][]string
	Ngrams  []Ngrams
	Lengths []int
}

// NewReference tokenizes refs on whitespace and builds their n-gram tables up to order n
func NewReference(refs []string, n int) *Reference {
	var r = &Reference{
		Tokens:  make([][]string, 0, len(refs)),
		Ngrams:  make([]Ngrams, 0, len(refs)),
		Lengths: make([]int, 0, len(refs)),
	}
	for _, ref := range refs {
		tok := strings.Fields(ref)
		r.Tokens = append(r.Tokens, tok)
		r.Ngrams = append(r.Ngrams, MakeNgrams(tok, n))
		r.Lengths = append(r.Lengths, len(tok))
	}
	return r
}

// Cache stores one Reference per sentence index. Entries are built once, when
// a sentence is first seen, and returned verbatim afterwards.
type Cache struct {
	n       int
	entries []*Reference
}

// NewCache creates a reference cache for n-gram order n
func NewCache(n int) *Cache {
	return &Cache{n: n}
}

// Add builds the entry of the next sentence and returns it
func (c *Cache) Add(refs []string) *Reference {
	r := NewReference(refs, c.n)
	c.entries = append(c.entries, r)
	return r
}

// Get returns the entry of sentence i, nil when i was never added
func (c *Cache) Get(i int) *Reference {
	if i < 0 || i >= len(c.entries) {
		return nil
	}
	return c.entries[i]
}

// Len is the number of cached sentences
func (c *Cache) Len() int {
	return len(c.entries)
}
