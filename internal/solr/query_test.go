package solr

import (
	"testing"
)

func TestQueryValues(t *testing.T) {
	q := Query{
		Query:       "ipod",
		FilterQuery: "inStock:true",
		FacetField:  "cat",
		QueryType:   "dismax",
		ExtraParameters: map[string]string{
			"rows": "20",
			"q":    "should-not-win", // extra params never override core fields
		},
	}
	values := q.Values()

	if got := values.Get("q"); got != "ipod" {
		t.Fatalf("q = %q", got)
	}
	if got := values.Get("fq"); got != "inStock:true" {
		t.Fatalf("fq = %q", got)
	}
	if got := values.Get("qt"); got != "dismax" {
		t.Fatalf("qt = %q", got)
	}
	if got := values.Get("facet"); got != "true" {
		t.Fatalf("facet = %q", got)
	}
	if got := values.Get("facet.field"); got != "cat" {
		t.Fatalf("facet.field = %q", got)
	}
	if got := values.Get("rows"); got != "20" {
		t.Fatalf("rows = %q", got)
	}
}

func TestQueryValuesOmitsEmptyFields(t *testing.T) {
	values := Query{Query: "ipod"}.Values()
	if values.Has("fq") || values.Has("qt") || values.Has("facet") || values.Has("facet.field") {
		t.Fatalf("unexpected optional params: %v", values)
	}
}
