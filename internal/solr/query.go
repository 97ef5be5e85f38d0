package solr

import (
	"net/url"
	"sort"
	"strings"
)

// Query describes one search operation against the select handler.
type Query struct {
	// Query is the main query string (the q parameter).
	Query string

	// FilterQuery is an optional fq parameter; empty means no filter.
	FilterQuery string

	// FacetField is an optional field to facet on; empty disables faceting.
	FacetField string

	// QueryType selects the request handler (the qt parameter).
	QueryType string

	// ExtraParameters are appended verbatim to the request.
	ExtraParameters map[string]string
}

// Values encodes the query as URL parameters for the select handler.
// Extra parameters never override the core fields.
func (q Query) Values() url.Values {
	values := url.Values{}
	values.Set("q", q.Query)
	values.Set("wt", "json")
	if q.FilterQuery != "" {
		values.Set("fq", q.FilterQuery)
	}
	if q.QueryType != "" {
		values.Set("qt", q.QueryType)
	}
	if q.FacetField != "" {
		values.Set("facet", "true")
		values.Set("facet.field", q.FacetField)
	}

	keys := make([]string, 0, len(q.ExtraParameters))
	for key := range q.ExtraParameters {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if values.Has(key) {
			continue
		}
		values.Set(key, q.ExtraParameters[key])
	}
	return values
}

// String renders the query in a log-friendly form.
func (q Query) String() string {
	var b strings.Builder
	b.WriteString(q.Query)
	if q.FilterQuery != "" {
		b.WriteString(" fq=")
		b.WriteString(q.FilterQuery)
	}
	if q.FacetField != "" {
		b.WriteString(" facet.field=")
		b.WriteString(q.FacetField)
	}
	return b.String()
}
