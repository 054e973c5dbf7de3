package chi

import (
	"fmt"

	"github.com/kailas-cloud/searchstate/internal/domain"
	domfacet "github.com/kailas-cloud/searchstate/internal/domain/facet"
	"github.com/kailas-cloud/searchstate/internal/domain/params"
	"github.com/kailas-cloud/searchstate/internal/usecase/tracking"
)

type errorCode string

const (
	errorCodeBadRequest      errorCode = "bad_request"
	errorCodeUnauthorized    errorCode = "unauthorized"
	errorCodeUsage           errorCode = "usage_error"
	errorCodeInvalidParams   errorCode = "invalid_params"
	errorCodeInvalidSession  errorCode = "invalid_session"
	errorCodeSessionNotFound errorCode = "session_not_found"
	errorCodeInternal        errorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

// ParamsResponse carries a parameter set and its canonical query string.
type ParamsResponse struct {
	Params *params.Set `json:"params"`
	Query  string      `json:"query"`
}

func paramsResponse(p *params.Set) ParamsResponse {
	if p == nil {
		p = params.New()
	}
	return ParamsResponse{Params: p, Query: p.Encode()}
}

// ParamsInput accepts a parameter set either as a JSON object or as a raw
// query string. The query string wins when both are present.
type ParamsInput struct {
	Params *params.Set `json:"params,omitempty"`
	Query  string      `json:"query,omitempty"`
}

func (in ParamsInput) resolve() (*params.Set, error) {
	if in.Query != "" {
		return params.ParseQuery(in.Query)
	}
	if in.Params == nil {
		return params.New(), nil
	}
	return in.Params, nil
}

// DeriveRequest is the body of POST /v1/params/derive.
type DeriveRequest struct {
	Current      ParamsInput   `json:"current"`
	Args         []ParamsInput `json:"args,omitempty"`
	SanitizeOnly bool          `json:"sanitize_only,omitempty"`
}

// QueryLinkRequest is the body of POST /v1/params/query-link.
type QueryLinkRequest struct {
	ParamsInput
	Q string `json:"q"`
}

// ItemDTO is a facet item. Field and Dependents are optional; without them
// the item is bare.
type ItemDTO struct {
	Value      string                `json:"value"`
	Field      string                `json:"field,omitempty"`
	Dependents []domfacet.Constraint `json:"dependents,omitempty"`
}

func (d *ItemDTO) toDomain() (domfacet.Item, error) {
	if d == nil {
		return nil, fmt.Errorf("%w: item is required", domain.ErrInvalidParams)
	}
	if d.Field == "" && len(d.Dependents) == 0 {
		return domfacet.Bare(d.Value), nil
	}
	return domfacet.Structured{Value: d.Value, Field: d.Field, Dependents: d.Dependents}, nil
}

// FacetRequest is the body of POST /v1/facets/add and /v1/facets/remove.
type FacetRequest struct {
	ParamsInput
	Field    string   `json:"field"`
	Item     *ItemDTO `json:"item"`
	Finalize bool     `json:"finalize,omitempty"`
}

// TrackingResponse is returned by GET /v1/sessions/{id}/tracking.
type TrackingResponse struct {
	Document string         `json:"document"`
	Position string         `json:"position"`
	Attrs    tracking.Attrs `json:"attrs"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
