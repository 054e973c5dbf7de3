package facet

import (
	"context"
	"errors"

	"github.com/kailas-cloud/searchstate/internal/domain/confnode"
)

// FieldConfig describes how one facet field behaves.
type FieldConfig struct {
	Field  string
	Single bool
	Label  string
	Limit  int
	// Extra holds every other configured key, exported as plain data.
	Extra map[string]any
}

// ConfigLookup resolves the configuration of a facet field. Unknown fields
// yield a default (multi-valued) config.
type ConfigLookup interface {
	FieldConfig(field string) FieldConfig
}

// NewFieldNode builds the default config node for a facet field.
func NewFieldNode() *confnode.Node {
	return confnode.New(nil).Put("single", false)
}

// NewFieldsNode builds an empty facet_fields node whose unset keys
// materialize as default field nodes.
func NewFieldsNode() *confnode.Node {
	return confnode.New(NewFieldNode)
}

// NodeConfig reads facet field configuration from a facet_fields node.
// It never materializes keys, so the node can be shared between requests.
type NodeConfig struct {
	fields *confnode.Node
}

// NewNodeConfig wraps a facet_fields node. fields may be nil.
func NewNodeConfig(fields *confnode.Node) *NodeConfig {
	return &NodeConfig{fields: fields}
}

// ErrNoFields is reported by HealthCheck when no facet field is configured.
var ErrNoFields = errors.New("no facet fields configured")

// Fields returns the wrapped facet_fields node.
func (c *NodeConfig) Fields() *confnode.Node {
	if c == nil {
		return nil
	}
	return c.fields
}

// HealthCheck reports ErrNoFields when the configuration is empty.
func (c *NodeConfig) HealthCheck(_ context.Context) error {
	if c.Fields().Len() == 0 {
		return ErrNoFields
	}
	return nil
}

// FieldConfig implements ConfigLookup.
func (c *NodeConfig) FieldConfig(field string) FieldConfig {
	cfg := FieldConfig{Field: field}
	if c == nil || c.fields == nil {
		return cfg
	}
	v, ok := c.fields.Lookup(field)
	if !ok {
		return cfg
	}
	node, ok := v.(*confnode.Node)
	if !ok {
		return cfg
	}

	for _, k := range node.Keys() {
		raw, _ := node.Lookup(k)
		switch k {
		case "single":
			cfg.Single = asBool(raw)
		case "label":
			cfg.Label, _ = raw.(string)
		case "limit":
			cfg.Limit = asInt(raw)
		default:
			if cfg.Extra == nil {
				cfg.Extra = make(map[string]any)
			}
			if child, ok := raw.(*confnode.Node); ok {
				raw = child.Export()
			}
			cfg.Extra[k] = raw
		}
	}
	return cfg
}

func asBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t == "true"
	}
	return false
}

func asInt(v any) int {
	switch t := v.(type) {
	case int:
		return t
	case int64:
		return int(t)
	case float64:
		return int(t)
	}
	return 0
}
