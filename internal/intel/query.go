package intel

import (
	"fmt"
	"slices"

	"github.com/alecthomas/participle/v2"
)

/*
This is a parser for the alert filter language with the following grammar:

Query       := Expr
Expr        := OrExpr ( "OR" OrExpr )*
OrExpr      := AndExpr ( "AND" AndExpr )*
AndExpr     := Condition | "NOT" Condition
Condition   := Filter | "(" Expr ")"
Filter      := Field Op Value
Op          := "CONTAINS" | "<" | ">" | "="
Value       := <string>

e.g. severity = "high" AND tags CONTAINS "phishing"
*/

var parser = participle.MustBuild[QueryExpr](
	participle.Unquote("String"),
)

var filterFields = []string{"id", "title", "summary", "date", "severity", "source", "link", "tags"}

func ParseQuery(query string) (Filter, error) {
	q, err := parser.ParseString("", query)
	if err != nil {
		return nil, fmt.Errorf("error parsing filter '%s': %w", query, err)
	}

	filter, err := q.ToFilter()
	if err != nil {
		return nil, fmt.Errorf("error converting filter '%s': %w", query, err)
	}

	return filter, nil
}

type QueryExpr struct {
	Expr *Expr `parser:"@@"`
}

func (q *QueryExpr) ToFilter() (Filter, error) {
	return q.Expr.ToFilter()
}

type Expr struct {
	Ors []*OrExpr `parser:"@@ ( \"OR\" @@ )*"`
}

func (q *Expr) ToFilter() (Filter, error) {
	if len(q.Ors) == 0 {
		return nil, fmt.Errorf("empty OR expression")
	}

	if len(q.Ors) == 1 {
		return q.Ors[0].ToFilter()
	}

	var filters []Filter
	for _, cond := range q.Ors {
		f, err := cond.ToFilter()
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}

	return &OrFilter{filters: filters}, nil
}

type OrExpr struct {
	Ands []*Condition `parser:"@@ ( \"AND\" @@ )*"`
}

func (o *OrExpr) ToFilter() (Filter, error) {
	if len(o.Ands) == 0 {
		return nil, fmt.Errorf("empty AND expression")
	}

	if len(o.Ands) == 1 {
		return o.Ands[0].ToFilter()
	}

	var filters []Filter
	for _, cond := range o.Ands {
		f, err := cond.ToFilter()
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}

	return &AndFilter{filters: filters}, nil
}

type Condition struct {
	Not     bool        `parser:"@\"NOT\"?"`
	Filter  *FilterExpr `parser:" @@"`
	SubExpr *Expr       `parser:"| \"(\" @@ \")\" "`
}

func (c *Condition) ToFilter() (Filter, error) {
	var filter Filter = nil
	var err error
	if c.Filter != nil {
		filter, err = c.Filter.ToFilter()
	} else if c.SubExpr != nil {
		filter, err = c.SubExpr.ToFilter()
	}

	if err != nil {
		return nil, err
	}

	if c.Not {
		filter = &NotFilter{filter: filter}
	}

	return filter, nil
}

type FilterExpr struct {
	Field string `parser:"@Ident"`
	Op    string `parser:"@(\"CONTAINS\" | \"<\" | \">\" | \"=\" )"`
	Value string `parser:"@String"`
}

func (f *FilterExpr) ToFilter() (Filter, error) {
	if !slices.Contains(filterFields, f.Field) {
		return nil, fmt.Errorf("unknown filter field %q", f.Field)
	}

	switch f.Op {
	case "CONTAINS":
		return &SubstringFilter{field: f.Field, substr: f.Value}, nil
	case "<":
		return &StringLtFilter{field: f.Field, value: f.Value}, nil
	case ">":
		return &StringGtFilter{field: f.Field, value: f.Value}, nil
	case "=":
		return &StringEqFilter{field: f.Field, value: f.Value}, nil
	default:
		return nil, fmt.Errorf("invalid operator %s", f.Op)
	}
}
