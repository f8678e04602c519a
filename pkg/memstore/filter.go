package memstore

import (
	"fmt"
	"strconv"
	"strings"
)

// Field names usable in filters. Engines only need to support these.
const (
	FieldCategory   = "category"
	FieldTags       = "tags"
	FieldImportance = "importance"
)

// Op is a filter condition operator.
type Op int

const (
	// OpEq is exact string equality.
	OpEq Op = iota

	// OpContainsAll requires an array field to contain every given value.
	OpContainsAll

	// OpGte is a numeric >= comparison.
	OpGte
)

// Condition is one clause of a conjunctive filter.
type Condition struct {
	Op     Op
	Field  string
	Value  string
	Values []string
	Number float64
}

// Filter is a conjunction of conditions. The zero value (and nil) matches
// every record; callers must pass nil rather than an empty filter to engines
// that distinguish the two, which Empty makes cheap to check.
type Filter struct {
	conds []Condition
}

// NewFilter returns an empty filter ready for chained construction:
//
//	f := memstore.NewFilter().Eq(memstore.FieldCategory, "fact").Gte(memstore.FieldImportance, 0.5)
func NewFilter() *Filter {
	return &Filter{}
}

// Eq appends an exact string equality condition.
func (f *Filter) Eq(field, value string) *Filter {
	f.conds = append(f.conds, Condition{Op: OpEq, Field: field, Value: value})
	return f
}

// ContainsAll appends a condition requiring the array field to contain every
// value. Appending an empty value list is a no-op.
func (f *Filter) ContainsAll(field string, values []string) *Filter {
	if len(values) == 0 {
		return f
	}
	f.conds = append(f.conds, Condition{Op: OpContainsAll, Field: field, Values: values})
	return f
}

// Gte appends a numeric >= condition.
func (f *Filter) Gte(field string, number float64) *Filter {
	f.conds = append(f.conds, Condition{Op: OpGte, Field: field, Number: number})
	return f
}

// Empty reports whether the filter has no conditions.
func (f *Filter) Empty() bool {
	return f == nil || len(f.conds) == 0
}

// OrNil returns nil when the filter is empty, otherwise the filter itself.
// An empty conjunction must never reach an engine as a filter value.
func (f *Filter) OrNil() *Filter {
	if f.Empty() {
		return nil
	}
	return f
}

// Conditions returns the filter's clauses for engines to compile.
func (f *Filter) Conditions() []Condition {
	if f == nil {
		return nil
	}
	return f.conds
}

// String renders the canonical expression form, e.g.
//
//	category = 'fact' AND tags contains_all ('go', 'cli') AND importance >= 0.5
//
// String literals are single-quoted with embedded quotes doubled. An empty
// filter renders as the empty string, never as a degenerate always-true
// expression.
func (f *Filter) String() string {
	if f.Empty() {
		return ""
	}

	parts := make([]string, 0, len(f.conds))
	for _, c := range f.conds {
		switch c.Op {
		case OpEq:
			parts = append(parts, fmt.Sprintf("%s = %s", c.Field, quote(c.Value)))
		case OpContainsAll:
			quoted := make([]string, len(c.Values))
			for i, v := range c.Values {
				quoted[i] = quote(v)
			}
			parts = append(parts, fmt.Sprintf("%s contains_all (%s)", c.Field, strings.Join(quoted, ", ")))
		case OpGte:
			parts = append(parts, fmt.Sprintf("%s >= %s", c.Field, strconv.FormatFloat(c.Number, 'g', -1, 64)))
		}
	}
	return strings.Join(parts, " AND ")
}

// quote single-quotes a string literal, doubling embedded single quotes.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
