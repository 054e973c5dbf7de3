package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kailas-cloud/searchstate/internal/domain/confnode"
	"github.com/kailas-cloud/searchstate/internal/domain/facet"
)

// FacetFieldsKey is the top-level key of the facets file.
const FacetFieldsKey = "facet_fields"

// LoadFacets reads the facet configuration file and returns its
// facet_fields node. An empty path yields an empty node.
func LoadFacets(path string) (*confnode.Node, error) {
	if path == "" {
		return facet.NewFieldsNode(), nil
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read facets %s: %w", path, err)
	}
	data = expandEnvVars(data)

	root, err := confnode.FromYAML(data, facet.NewFieldsNode)
	if err != nil {
		return nil, fmt.Errorf("failed to parse facets %s: %w", path, err)
	}
	v, ok := root.Lookup(FacetFieldsKey)
	if !ok {
		return facet.NewFieldsNode(), nil
	}
	fields, ok := v.(*confnode.Node)
	if !ok {
		return nil, fmt.Errorf("%s in %s must be a mapping", FacetFieldsKey, path)
	}
	return fields, nil
}
