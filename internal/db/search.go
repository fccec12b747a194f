package db

import "github.com/kailas-cloud/classdex/internal/domain/search/query"

// SearchQuery is the input for a paginated structured search.
type SearchQuery struct {
	Index  string
	Query  query.Node
	Offset int
	Limit  int
	// SortBy must name a SORTABLE field; empty keeps relevance order.
	SortBy       string
	SortDesc     bool
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Fields map[string]string
}

// TermsQuery enumerates distinct values of a tag field with document counts.
type TermsQuery struct {
	Index string
	Field string
	// Query narrows the counted documents; the zero node counts all.
	Query query.Node
	Size  int
}

// Bucket is one distinct value and the number of documents carrying it.
type Bucket struct {
	Value string
	Count int
}
