package facet

import (
	"context"
	"slices"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	domfacet "github.com/kailas-cloud/searchstate/internal/domain/facet"
	"github.com/kailas-cloud/searchstate/internal/domain/params"
)

// --- Mock ---

type mockConfigs struct {
	single map[string]bool
}

func (m *mockConfigs) FieldConfig(field string) domfacet.FieldConfig {
	return domfacet.FieldConfig{Field: field, Single: m.single[field]}
}

func newTestService() *Service {
	return New(&mockConfigs{single: map[string]bool{"format": true}})
}

func withFacets(fields ...any) *params.Set {
	f := params.New()
	for i := 0; i+1 < len(fields); i += 2 {
		f.Put(fields[i].(string), params.List(fields[i+1].([]string)))
	}
	return params.New().Put("q", params.Scalar("maps")).Put(params.FacetKey, f)
}

func facetValues(p *params.Set, field string) []string {
	return p.Nested(params.FacetKey).List(field)
}

// --- Add ---

func TestAdd_SingleValuedReplaces(t *testing.T) {
	svc := newTestService()
	src := withFacets("format", []string{"a"})

	got := svc.Add(context.Background(), "format", domfacet.Bare("b"), src)

	if v := facetValues(got, "format"); !slices.Equal(v, []string{"b"}) {
		t.Errorf("format = %v, want [b]", v)
	}
}

func TestAdd_MultiValuedAppends(t *testing.T) {
	svc := newTestService()
	src := withFacets("language", []string{"a"})

	got := svc.Add(context.Background(), "language", domfacet.Bare("b"), src)

	if v := facetValues(got, "language"); !slices.Equal(v, []string{"a", "b"}) {
		t.Errorf("language = %v, want [a b]", v)
	}
}

func TestAdd_DuplicateAccumulates(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	got := svc.Add(ctx, "language", domfacet.Bare("en"), params.New())
	got = svc.Add(ctx, "language", domfacet.Bare("en"), got)

	if v := facetValues(got, "language"); !slices.Equal(v, []string{"en", "en"}) {
		t.Errorf("language = %v", v)
	}
}

func TestAdd_DoesNotMutateSource(t *testing.T) {
	svc := newTestService()
	src := withFacets("language", []string{"a"}, "format", []string{"Book"})
	src.Put("page", params.Scalar("4"))

	_ = svc.Add(context.Background(), "language", domfacet.Bare("b"), src)
	_ = svc.Add(context.Background(), "format", domfacet.Bare("Map"), src)

	if v := facetValues(src, "language"); !slices.Equal(v, []string{"a"}) {
		t.Errorf("source language mutated: %v", v)
	}
	if v := facetValues(src, "format"); !slices.Equal(v, []string{"Book"}) {
		t.Errorf("source format mutated: %v", v)
	}
	if src.Scalar("page") != "4" {
		t.Error("source page mutated")
	}
}

func TestAdd_ResetsPagination(t *testing.T) {
	svc := newTestService()
	src := withFacets()
	src.Put("page", params.Scalar("3")).Put("counter", params.Scalar("12")).Put("action", params.Scalar("facet"))

	got := svc.Add(context.Background(), "language", domfacet.Bare("en"), src)

	for _, k := range []string{"page", "counter", "action"} {
		if got.Has(k) {
			t.Errorf("%s should be dropped: %s", k, got.Encode())
		}
	}
	if got.Scalar("q") != "maps" {
		t.Error("query lost")
	}
}

func TestAdd_ItemFieldTakesPrecedence(t *testing.T) {
	svc := newTestService()
	item := domfacet.Structured{Value: "Book", Field: "format"}

	got := svc.Add(context.Background(), "guessed", item, params.New())

	if facetValues(got, "guessed") != nil {
		t.Error("caller field should be overridden")
	}
	if v := facetValues(got, "format"); !slices.Equal(v, []string{"Book"}) {
		t.Errorf("format = %v", v)
	}
}

func TestAdd_Cascades(t *testing.T) {
	svc := newTestService()
	item := domfacet.Structured{
		Value: "Paris",
		Field: "city",
		Dependents: []domfacet.Constraint{
			{Field: "country", Value: "France"},
			{Field: "format", Value: "Map"},
		},
	}
	src := withFacets("format", []string{"Book"})

	got := svc.Add(context.Background(), "city", item, src)

	if v := facetValues(got, "city"); !slices.Equal(v, []string{"Paris"}) {
		t.Errorf("city = %v", v)
	}
	if v := facetValues(got, "country"); !slices.Equal(v, []string{"France"}) {
		t.Errorf("country = %v", v)
	}
	if v := facetValues(got, "format"); !slices.Equal(v, []string{"Map"}) {
		t.Errorf("single-valued dependent should replace, format = %v", v)
	}
}

// --- Remove ---

func TestRemove_RoundTripDeletesField(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	src := withFacets("language", []string{"en"})

	added := svc.Add(ctx, "format", domfacet.Bare("Book"), src)
	got := svc.Remove(ctx, "format", domfacet.Bare("Book"), added)

	if got.Nested(params.FacetKey).Has("format") {
		t.Errorf("format should be gone: %s", got.Encode())
	}
	if v := facetValues(got, "language"); !slices.Equal(v, []string{"en"}) {
		t.Errorf("language = %v", v)
	}
}

func TestRemove_LastFacetDropsMap(t *testing.T) {
	svc := newTestService()
	src := withFacets("format", []string{"Book"})

	got := svc.Remove(context.Background(), "format", domfacet.Bare("Book"), src)

	if got.Has(params.FacetKey) {
		t.Errorf("empty facet map should be dropped: %s", got.Encode())
	}
	if got.Encode() != "q=maps" {
		t.Errorf("Encode() = %q", got.Encode())
	}
}

func TestRemove_OneOccurrence(t *testing.T) {
	svc := newTestService()
	src := withFacets("language", []string{"en", "fr", "en"})

	got := svc.Remove(context.Background(), "language", domfacet.Bare("en"), src)

	if v := facetValues(got, "language"); !slices.Equal(v, []string{"fr", "en"}) {
		t.Errorf("language = %v", v)
	}
	if v := facetValues(src, "language"); len(v) != 3 {
		t.Errorf("source mutated: %v", v)
	}
}

func TestRemove_MissingValueIsNoop(t *testing.T) {
	svc := newTestService()
	src := withFacets("language", []string{"en"})

	got := svc.Remove(context.Background(), "language", domfacet.Bare("de"), src)
	if v := facetValues(got, "language"); !slices.Equal(v, []string{"en"}) {
		t.Errorf("language = %v", v)
	}

	got = svc.Remove(context.Background(), "format", domfacet.Bare("Book"), params.New())
	if got.Has(params.FacetKey) {
		t.Errorf("no facet map expected: %s", got.Encode())
	}
}

func TestRemove_DoesNotCascade(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	item := domfacet.Structured{
		Value:      "Paris",
		Field:      "city",
		Dependents: []domfacet.Constraint{{Field: "country", Value: "France"}},
	}

	added := svc.Add(ctx, "city", item, params.New())
	got := svc.Remove(ctx, "city", item, added)

	if got.Nested(params.FacetKey).Has("city") {
		t.Error("city should be removed")
	}
	if v := facetValues(got, "country"); !slices.Equal(v, []string{"France"}) {
		t.Errorf("country = %v, dependents are not removed", v)
	}
}

// --- AddAndFinalize ---

func TestAddAndFinalize_StripsFacetKeys(t *testing.T) {
	svc := newTestService()
	src := withFacets()
	src.Put("facet.page", params.Scalar("2")).
		Put("facet.sort", params.Scalar("index")).
		Put("facet.prefix", params.Scalar("A")).
		Put("sort", params.Scalar("year"))

	got := svc.AddAndFinalize(context.Background(), "language", domfacet.Bare("en"), src)

	if want := "f[language][]=en&q=maps&sort=year"; got.Encode() != want {
		t.Errorf("Encode() = %q, want %q", got.Encode(), want)
	}
}

func TestAddAndFinalize_CustomKeys(t *testing.T) {
	svc := newTestService().WithFinalizeKeys([]string{"facet.limit"})
	src := withFacets()
	src.Put("facet.limit", params.Scalar("50")).Put("facet.page", params.Scalar("2"))

	got := svc.AddAndFinalize(context.Background(), "language", domfacet.Bare("en"), src)

	if got.Has("facet.limit") || !got.Has("facet.page") {
		t.Errorf("Encode() = %q", got.Encode())
	}
}

// --- Config / metrics ---

func TestNew_NilConfigIsMultiValued(t *testing.T) {
	svc := New(nil)
	got := svc.Add(context.Background(), "format", domfacet.Bare("b"), withFacets("format", []string{"a"}))
	if v := facetValues(got, "format"); !slices.Equal(v, []string{"a", "b"}) {
		t.Errorf("format = %v", v)
	}
}

func TestAdd_UsesNodeConfig(t *testing.T) {
	fields := domfacet.NewFieldsNode()
	fields.AddKey("format").Put("single", true)
	svc := New(domfacet.NewNodeConfig(fields))

	got := svc.Add(context.Background(), "format", domfacet.Bare("b"), withFacets("format", []string{"a"}))

	if v := facetValues(got, "format"); !slices.Equal(v, []string{"b"}) {
		t.Errorf("format = %v", v)
	}
	if fields.Has("language") {
		t.Error("editing must not materialize shared config")
	}
}

func TestMetrics(t *testing.T) {
	edits := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_facet_edits_total"}, []string{"op"})
	svc := newTestService().WithMetrics(edits)
	ctx := context.Background()

	p := svc.Add(ctx, "language", domfacet.Bare("en"), params.New())
	_ = svc.Remove(ctx, "language", domfacet.Bare("en"), p)

	if v := testutil.ToFloat64(edits.WithLabelValues("add")); v != 1 {
		t.Errorf("add = %v", v)
	}
	if v := testutil.ToFloat64(edits.WithLabelValues("remove")); v != 1 {
		t.Errorf("remove = %v", v)
	}
}
