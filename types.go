package searchstate

import (
	"github.com/kailas-cloud/searchstate/internal/domain/confnode"
	"github.com/kailas-cloud/searchstate/internal/domain/facet"
	"github.com/kailas-cloud/searchstate/internal/domain/params"
	"github.com/kailas-cloud/searchstate/internal/domain/session"
	"github.com/kailas-cloud/searchstate/internal/usecase/tracking"
)

// Params is an ordered, nested request parameter set.
type Params = params.Set

// Scalar is a single parameter value.
type Scalar = params.Scalar

// List is a multi-valued parameter.
type List = params.List

// FacetKey is the parameter holding active facet constraints.
const FacetKey = params.FacetKey

// NewParams returns an empty parameter set.
func NewParams() *Params { return params.New() }

// ParseQuery decodes a bracket-notation query string.
func ParseQuery(raw string) (*Params, error) { return params.ParseQuery(raw) }

// Session is the persisted record of the last executed search.
type Session = session.Record

// FacetItem is a facet entry: Bare or Structured.
type FacetItem = facet.Item

// Bare is a facet item carrying only its value.
type Bare = facet.Bare

// Structured is a facet item with its own field and dependent constraints.
type Structured = facet.Structured

// Constraint is a dependent (field, value) pair.
type Constraint = facet.Constraint

// ConfigNode is a nested configuration tree with lazily created defaults.
type ConfigNode = confnode.Node

// NewFacetFields returns an empty facet_fields tree whose entries default
// to multi-valued fields.
func NewFacetFields() *ConfigNode { return facet.NewFieldsNode() }

// Document identifies a search result for click tracking.
type Document = tracking.Document

// DocumentID is a Document backed by its id.
type DocumentID = tracking.DocumentID

// TrackingAttrs are the attributes to put on a result link.
type TrackingAttrs = tracking.Attrs

// Position selects which document TrackingAttrs describes.
type Position int

const (
	// Current is the document at the session counter.
	Current Position = iota
	// Previous is the document before the session counter.
	Previous
	// Next is the document after the session counter.
	Next
)
