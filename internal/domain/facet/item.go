// Package facet defines facet items and per-field facet configuration.
package facet

// Item is an entry a user can activate in a facet list: either Bare or
// Structured.
type Item interface {
	isItem()
}

// Bare is an item carrying only its value.
type Bare string

func (Bare) isItem() {}

// Constraint is a (field, value) pair applied alongside a Structured item.
type Constraint struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// Structured is an item that knows its own field and, for cascading
// facets, the constraints that must be activated with it.
type Structured struct {
	Value      string
	Field      string
	Dependents []Constraint
}

func (Structured) isItem() {}

// Resolve returns the field, value and dependent constraints for item.
// A field carried by the item takes precedence over field.
func Resolve(field string, item Item) (string, string, []Constraint) {
	switch it := item.(type) {
	case Structured:
		if it.Field != "" {
			field = it.Field
		}
		return field, it.Value, it.Dependents
	case *Structured:
		if it == nil {
			return field, "", nil
		}
		return Resolve(field, *it)
	case Bare:
		return field, string(it), nil
	}
	return field, "", nil
}
