package filter

import (
	"strings"
)

// Operator selects how a group's values are matched.
type Operator int

const (
	// Exact matches the field value exactly: field:=v
	Exact Operator = iota
	// Contains matches v anywhere in the field: field:*v*
	Contains
)

// Group is a facet category whose values are alternatives.
type Group struct {
	Field  string
	Op     Operator
	Values []string
}

// Term renders a single value of the group.
func (g Group) Term(v string) string {
	if g.Op == Contains {
		return g.Field + ":*" + v + "*"
	}
	return g.Field + ":=" + v
}

// Expr renders the group as an OR of its terms. Blank values are skipped.
// A single term is returned bare; an empty group renders as "".
func (g Group) Expr() string {
	terms := make([]string, 0, len(g.Values))
	for _, v := range g.Values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		terms = append(terms, g.Term(v))
	}

	switch len(terms) {
	case 0:
		return ""
	case 1:
		return terms[0]
	default:
		return "(" + strings.Join(terms, " || ") + ")"
	}
}

// Facets is a structured search selection.
type Facets struct {
	Institutions []string
	ObjectTypes  []string
	Creators     []string
	Subjects     []string
	Media        []string
	DCTypes      []string
	Dates        DateRange
}

// Groups returns the facet groups in emission order. Institutions, object
// types and DC types are restricted to their known vocabularies.
func (f Facets) Groups() []Group {
	return []Group{
		{Field: FieldInstitution, Op: Exact, Values: Intersect(f.Institutions, KnownInstitutions)},
		{Field: FieldObjectType, Op: Exact, Values: Intersect(f.ObjectTypes, KnownObjectTypes)},
		{Field: FieldCreator, Op: Contains, Values: f.Creators},
		{Field: FieldSubject, Op: Exact, Values: f.Subjects},
		{Field: FieldMedium, Op: Exact, Values: f.Media},
		{Field: FieldDCType, Op: Exact, Values: Intersect(f.DCTypes, KnownDCTypes)},
	}
}

// Clauses returns every non-empty clause of the selection in order: one per
// facet group, followed by the date clauses.
func (f Facets) Clauses() []string {
	var clauses []string
	for _, g := range f.Groups() {
		if expr := g.Expr(); expr != "" {
			clauses = append(clauses, expr)
		}
	}
	return append(clauses, f.Dates.Clauses()...)
}

// Empty reports whether the selection produces no filter.
func (f Facets) Empty() bool {
	return len(f.Clauses()) == 0
}

// Build renders the selection as a filter_by expression. Clauses are joined
// with " && ". An empty selection returns "".
func Build(f Facets) string {
	return strings.Join(f.Clauses(), " && ")
}

// ByID returns the filter selecting a single object by id.
func ByID(id string) string {
	return Group{Field: FieldID, Op: Exact, Values: []string{id}}.Expr()
}
