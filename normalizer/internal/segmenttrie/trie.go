/*
   Copyright 2025 The DIRPX Authors

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package segmenttrie

import (
	"errors"
	"strings"
)

// Trie is a segment-aware prefix index for slash-separated request paths.
// Each node represents one path segment; the wildcard "*" matches exactly one
// segment. Lookups are longest-prefix-match on segment boundaries, so
// "/trips/*/legs" beats "/trips" for "/trips/42/legs/1".
type Trie[T any] struct {
	children map[string]*Trie[T]
	hasVal   bool
	val      T
	// pattern is the prefix as registered, kept for Explain.
	pattern string
}

var (
	// ErrInvalidPrefix is returned when inserting a prefix that is empty,
	// has empty segments, contains whitespace, or consists only of wildcards.
	ErrInvalidPrefix = errors.New("segmenttrie: invalid prefix")
)

// New creates an empty trie ready for inserts.
func New[T any]() *Trie[T] {
	return &Trie[T]{children: make(map[string]*Trie[T])}
}

// Insert adds a path prefix to the trie and associates it with val.
//
// Examples:
//
//	"/trips"
//	"/trips/*/legs"
//	"/v1/bookings"
//
// The leading slash is optional. A prefix made only of "*" segments is
// rejected. Inserting the same prefix twice replaces the value.
func (t *Trie[T]) Insert(prefix string, val T) error {
	if t == nil {
		return ErrInvalidPrefix
	}
	segs, ok := splitPrefix(prefix)
	if !ok {
		return ErrInvalidPrefix
	}

	allWild := true
	for _, s := range segs {
		if s != "*" {
			allWild = false
			break
		}
	}
	if allWild {
		return ErrInvalidPrefix
	}

	cur := t
	for _, s := range segs {
		child, exists := cur.children[s]
		if !exists {
			child = New[T]()
			cur.children[s] = child
		}
		cur = child
	}
	cur.hasVal = true
	cur.val = val
	cur.pattern = "/" + strings.Join(segs, "/")
	return nil
}

// Match finds the value of the deepest prefix matching path.
func (t *Trie[T]) Match(path string) (T, bool) {
	v, ok, _ := t.MatchWithPattern(path)
	return v, ok
}

// MatchWithPattern is Match plus the canonical pattern of the winning
// prefix, used by Explain.
func (t *Trie[T]) MatchWithPattern(path string) (T, bool, string) {
	var zero T
	if t == nil {
		return zero, false, ""
	}
	best := -1
	var bestNode *Trie[T]

	var dfs func(n *Trie[T], rest string, depth int)
	dfs = func(n *Trie[T], rest string, depth int) {
		if n.hasVal && depth > best {
			best = depth
			bestNode = n
		}
		rest = strings.TrimLeft(rest, "/")
		if rest == "" {
			return
		}
		seg, tail, _ := strings.Cut(rest, "/")
		if next, ok := n.children[seg]; ok {
			dfs(next, tail, depth+1)
		}
		if next, ok := n.children["*"]; ok {
			dfs(next, tail, depth+1)
		}
	}

	dfs(t, path, 0)
	if bestNode == nil {
		return zero, false, ""
	}
	return bestNode.val, true, bestNode.pattern
}

// splitPrefix trims one leading and one trailing slash and splits the rest
// into segments. Every segment must be non-empty and free of whitespace.
func splitPrefix(s string) ([]string, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "/")
	s = strings.TrimSuffix(s, "/")
	if s == "" {
		return nil, false
	}
	segs := strings.Split(s, "/")
	for _, seg := range segs {
		if !validSegment(seg) {
			return nil, false
		}
	}
	return segs, true
}

func validSegment(seg string) bool {
	if seg == "" {
		return false
	}
	for i := 0; i < len(seg); i++ {
		switch c := seg[i]; {
		case c <= ' ', c == 0x7f, c == '?', c == '#':
			return false
		}
	}
	return true
}
