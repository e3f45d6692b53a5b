// Package pairing matches the operations of two review specs by operationId
// and orders the pairs for display.
package pairing

import (
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/reoring/apireview"
)

// Build pairs every v3 route with the v4 route sharing its operationId.
// Routes present on only one side are dropped from the result but stay in
// their specs. Pairs are ordered by (pathPrefix, v3 path) using a
// locale-aware comparison; ties keep v3 document order.
func Build(v3, v4 *apireview.ReviewSpec) []apireview.RouteCardPair {
	if v3 == nil || v4 == nil {
		return nil
	}
	byOpID := make(map[string]*apireview.Route, len(v4.Routes))
	for _, r := range v4.Routes {
		// the first route wins when an operationId repeats
		if _, dup := byOpID[r.OperationID]; !dup {
			byOpID[r.OperationID] = r
		}
	}

	var pairs []apireview.RouteCardPair
	for _, r := range v3.Routes {
		other, ok := byOpID[r.OperationID]
		if !ok {
			continue
		}
		pairs = append(pairs, apireview.RouteCardPair{PathPrefix: r.PathPrefix, V3: r, V4: other})
	}
	SortPairs(pairs)
	return pairs
}

// SortPairs orders pairs in place by (pathPrefix, v3 path).
func SortPairs(pairs []apireview.RouteCardPair) {
	cmp := NewComparer()
	slices.SortStableFunc(pairs, func(a, b apireview.RouteCardPair) int {
		if c := cmp.Compare(a.PathPrefix, b.PathPrefix); c != 0 {
			return c
		}
		return cmp.Compare(a.V3.Path, b.V3.Path)
	})
}

// Comparer is a locale-aware string ordering. It is not safe for concurrent
// use; create one per goroutine.
type Comparer struct {
	c *collate.Collator
}

// NewComparer returns a Comparer using the root collation order.
func NewComparer() *Comparer {
	return &Comparer{c: collate.New(language.Und)}
}

// Compare returns -1, 0 or 1.
func (c *Comparer) Compare(a, b string) int {
	return c.c.CompareString(a, b)
}

// Prefixes returns the distinct path prefixes of pairs in sorted order.
func Prefixes(pairs []apireview.RouteCardPair) []string {
	seen := map[string]bool{}
	var out []string
	for _, p := range pairs {
		if !seen[p.PathPrefix] {
			seen[p.PathPrefix] = true
			out = append(out, p.PathPrefix)
		}
	}
	cmp := NewComparer()
	slices.SortFunc(out, cmp.Compare)
	return out
}
