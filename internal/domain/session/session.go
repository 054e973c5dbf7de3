// Package session holds the persisted record of the last executed search.
package session

import (
	"fmt"

	"github.com/kailas-cloud/searchstate/internal/domain"
	"github.com/kailas-cloud/searchstate/internal/domain/params"
)

// Record is the search session: which search produced the current result
// list and where in it the user is. It is read-only once stored.
type Record struct {
	// ID is the opaque search identifier.
	ID string `json:"id"`
	// Counter is the 1-based position of the viewed document; 0 means unset.
	Counter int `json:"counter,omitempty"`
	// PerPage is the page size the results were listed with; 0 means unset.
	PerPage     int         `json:"per_page,omitempty"`
	QueryParams *params.Set `json:"query_params,omitempty"`
}

// Validate checks the record shape.
func (r *Record) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("%w: id is required", domain.ErrInvalidSession)
	}
	if r.Counter < 0 {
		return fmt.Errorf("%w: counter must be >= 0, got %d", domain.ErrInvalidSession, r.Counter)
	}
	if r.PerPage < 0 {
		return fmt.Errorf("%w: per_page must be >= 0, got %d", domain.ErrInvalidSession, r.PerPage)
	}
	return nil
}

// ResultsPage returns the page holding the current document and the page
// size used to compute it (PerPage, or defaultPerPage when unset).
// Without a counter the first page is returned.
func (r *Record) ResultsPage(defaultPerPage int) (page, perPage int) {
	perPage = r.PerPage
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	if perPage <= 0 || r.Counter <= 0 {
		return 1, perPage
	}
	return (r.Counter-1)/perPage + 1, perPage
}
