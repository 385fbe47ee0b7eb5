package cache

import (
	"fmt"
	"strings"
)

// Key identifies one cached facet page response.
type Key struct {
	// Query is the canonical JSON encoding of the search query, as
	// sent in the "q" parameter. encoding/json sorts map keys, so the
	// same query always serializes identically.
	Query string

	// Phases is the comma-joined phase-id filter ("" for none).
	Phases string

	// Page is the 0-based page index.
	Page int

	// PageSize is the requested page size.
	PageSize int
}

// String generates the deterministic Redis key.
//
// Example:
//
//	mpds:facet:q={"elements":"O"}:phases=1,2:page=0:pagesize=1000
func (k Key) String() string {
	parts := []string{
		"mpds", "facet",
		"q=" + k.Query,
		"phases=" + k.Phases,
		fmt.Sprintf("page=%d", k.Page),
		fmt.Sprintf("pagesize=%d", k.PageSize),
	}
	return strings.Join(parts, ":")
}
