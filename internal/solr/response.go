package solr

import (
	"github.com/tidwall/gjson"
)

// QueryResponse holds the fields statistics care about, plus the raw body
// for observers that want to dig further.
type QueryResponse struct {
	Status      int
	QTimeMillis int64
	NumFound    int64
	ReturnedRows int
	FacetCounts map[string]int64
	Body        []byte
}

// ParseResponse extracts the standard response header and result fields from
// a JSON response body. Missing fields are left at their zero value; a body
// that is not JSON at all still yields a usable response with Body set.
func ParseResponse(body []byte) *QueryResponse {
	resp := &QueryResponse{Body: body}

	header := gjson.GetBytes(body, "responseHeader")
	if header.Exists() {
		resp.Status = int(header.Get("status").Int())
		resp.QTimeMillis = header.Get("QTime").Int()
	}

	result := gjson.GetBytes(body, "response")
	if result.Exists() {
		resp.NumFound = result.Get("numFound").Int()
		resp.ReturnedRows = int(result.Get("docs.#").Int())
	}

	fields := gjson.GetBytes(body, "facet_counts.facet_fields")
	if fields.Exists() {
		resp.FacetCounts = make(map[string]int64)
		fields.ForEach(func(field, counts gjson.Result) bool {
			// Facet fields arrive as ["value", count, "value", count, ...].
			var total int64
			arr := counts.Array()
			for i := 1; i < len(arr); i += 2 {
				total += arr[i].Int()
			}
			resp.FacetCounts[field.String()] = total
			return true
		})
	}

	return resp
}
