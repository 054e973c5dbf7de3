package searchstate

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/searchstate/internal/domain"
	"github.com/kailas-cloud/searchstate/internal/domain/params"
	"github.com/kailas-cloud/searchstate/internal/domain/session"
)

func set(kv ...string) *params.Set {
	p := params.New()
	for i := 0; i+1 < len(kv); i += 2 {
		p.Put(kv[i], params.Scalar(kv[i+1]))
	}
	return p
}

// --- Derive ---

func TestDerive_PerPageChangeResetsPage(t *testing.T) {
	svc := New("list")
	base := set("page", "3", "per_page", "20")

	got, err := svc.Derive(context.Background(), nil, nil, base, set("per_page", "50"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Scalar("page") != "1" {
		t.Errorf("page = %q, want 1", got.Scalar("page"))
	}
	if got.Scalar("per_page") != "50" {
		t.Errorf("per_page = %q", got.Scalar("per_page"))
	}
}

func TestDerive_SortChangeResetsPage(t *testing.T) {
	svc := New("list")
	base := set("page", "3", "sort", "score")

	got, err := svc.Derive(context.Background(), base, nil, set("sort", "year"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Scalar("page") != "1" {
		t.Errorf("page = %q, want 1", got.Scalar("page"))
	}
}

func TestDerive_PageOnlyPreserved(t *testing.T) {
	svc := New("list")
	base := set("page", "3", "per_page", "20")

	got, err := svc.Derive(context.Background(), nil, nil, base, set("page", "4"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Scalar("page") != "4" {
		t.Errorf("page = %q, want 4", got.Scalar("page"))
	}
}

func TestDerive_NoPageNoReset(t *testing.T) {
	svc := New("list")
	got, err := svc.Derive(context.Background(), set("q", "x", "per_page", "20"), nil, set("per_page", "50"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Has("page") {
		t.Errorf("page should not be introduced: %s", got.Encode())
	}
}

func TestDerive_Arity(t *testing.T) {
	svc := New("list")
	ctx := context.Background()
	current := set("q", "maps", "controller", "catalog")

	got, err := svc.Derive(ctx, current, nil)
	if err != nil {
		t.Fatalf("0 args: %v", err)
	}
	if !got.Equal(set("q", "maps")) {
		t.Errorf("0 args = %s", got.Encode())
	}

	got, err = svc.Derive(ctx, current, nil, set("sort", "year"))
	if err != nil {
		t.Fatalf("1 arg: %v", err)
	}
	if got.Scalar("q") != "maps" || got.Scalar("sort") != "year" {
		t.Errorf("1 arg = %s", got.Encode())
	}

	got, err = svc.Derive(ctx, current, nil, set("q", "atlas"), set("sort", "year"))
	if err != nil {
		t.Fatalf("2 args: %v", err)
	}
	if got.Scalar("q") != "atlas" {
		t.Errorf("2 args should ignore current, got %s", got.Encode())
	}

	_, err = svc.Derive(ctx, current, nil, set(), set(), set())
	if !errors.Is(err, domain.ErrUsage) {
		t.Errorf("3 args: expected ErrUsage, got %v", err)
	}
}

func TestDerive_TransformSeesMergedSet(t *testing.T) {
	svc := New("list")
	var seen string
	transform := func(p *params.Set) {
		seen = p.Scalar("action")
		p.Put("page", params.Scalar("9"))
		p.Put("sort", params.Scalar("year"))
	}
	base := set("page", "2", "action", "index")

	got, err := svc.Derive(context.Background(), base, transform)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen != "index" {
		t.Errorf("transform saw action %q, want unsanitized set", seen)
	}
	if got.Scalar("page") != "1" {
		t.Errorf("sort change from transform should reset page, got %q", got.Scalar("page"))
	}
	if base.Scalar("page") != "2" || base.Has("sort") {
		t.Error("transform mutated the source set")
	}
}

func TestDerive_Sanitizes(t *testing.T) {
	svc := New("list")
	got, err := svc.Derive(context.Background(), set("q", "", "commit", "Search", "utf8", "✓"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Len() != 0 {
		t.Errorf("expected empty set, got %s", got.Encode())
	}
}

// --- StartOver ---

func TestStartOver(t *testing.T) {
	svc := New("list", "list", "gallery")
	ctx := context.Background()

	tests := []struct {
		name string
		in   *params.Set
		want string
	}{
		{"default view dropped", set("view", "list", "q", "x"), ""},
		{"other view kept", set("view", "gallery", "q", "x", "page", "3"), "view=gallery"},
		{"unknown view falls back", set("view", "masonry"), ""},
		{"no view", set("q", "x"), ""},
		{"nil params", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := svc.StartOver(ctx, tt.in).Encode(); got != tt.want {
				t.Errorf("StartOver = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestViewType_AnyWhenUnconfigured(t *testing.T) {
	svc := New("")
	if got := svc.ViewType(set("view", "masonry")); got != "masonry" {
		t.Errorf("ViewType = %q", got)
	}
	if got := svc.ViewType(nil); got != DefaultView {
		t.Errorf("ViewType(nil) = %q", got)
	}
}

// --- QueryLink ---

func TestQueryLink(t *testing.T) {
	svc := New("list")
	current := set("q", "mpas", "page", "2", "action", "index", "sort", "year")

	got := svc.QueryLink(context.Background(), current, "maps")

	if want := "q=maps&sort=year"; got.Encode() != want {
		t.Errorf("QueryLink = %q, want %q", got.Encode(), want)
	}
	if current.Scalar("q") != "mpas" {
		t.Error("QueryLink mutated current")
	}
}

// --- BackToResults ---

func TestBackToResults(t *testing.T) {
	svc := New("list")
	ctx := context.Background()
	query := set("q", "maps")

	tests := []struct {
		name string
		rec  *session.Record
		want string
	}{
		{"nil record", nil, ""},
		{"no counter", &session.Record{ID: "1", QueryParams: query}, "q=maps"},
		{"default per page", &session.Record{ID: "1", Counter: 25, PerPage: 10, QueryParams: query}, "page=3&q=maps"},
		{"custom per page", &session.Record{ID: "1", Counter: 25, PerPage: 50, QueryParams: query}, "page=1&per_page=50&q=maps"},
		{"unset per page", &session.Record{ID: "1", Counter: 11, QueryParams: query}, "page=2&per_page=10&q=maps"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := svc.BackToResults(ctx, tt.rec, 10).Encode(); got != tt.want {
				t.Errorf("BackToResults = %q, want %q", got, tt.want)
			}
		})
	}
	if query.Has("page") {
		t.Error("BackToResults mutated the stored query params")
	}
}
