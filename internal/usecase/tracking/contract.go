package tracking

// Document is a result-list entry that can be linked to.
type Document interface {
	DocumentID() string
}

// DocumentID is a Document known only by its identifier.
type DocumentID string

// DocumentID implements Document.
func (d DocumentID) DocumentID() string { return string(d) }

// Attrs are the link attributes emitted for click tracking.
type Attrs map[string]string

// ContextHrefAttr is the attribute carrying the tracking URL.
const ContextHrefAttr = "data-context-href"

// DefaultTrackPath is the tracking route template; {id} is replaced by the
// escaped document identifier.
const DefaultTrackPath = "/catalog/{id}/track"
