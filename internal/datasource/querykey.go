package datasource

import (
	"fmt"
	"strings"
)

// Filter is one named toggle in a view's filter set. Order is significant:
// the filter set is an ordered list, and the query key preserves that order.
type Filter struct {
	Name  string
	Value string
}

// queryKey derives a canonical identity for a (page, term, filters) tuple.
// Fields are length-prefixed so distinct tuples can never collide, no matter
// what characters terms or filter values contain. The key is only ever held
// long enough to compare against the previous successful fetch.
func queryKey(page int, term string, filters []Filter) string {
	var b strings.Builder
	fmt.Fprintf(&b, "p=%d;s=%d:%s", page, len(term), term)
	for _, f := range filters {
		fmt.Fprintf(&b, ";f=%d:%s=%d:%s", len(f.Name), f.Name, len(f.Value), f.Value)
	}
	return b.String()
}
