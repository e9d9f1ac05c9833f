package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"github.com/upb/campaign-hub/middleware"
	"github.com/upb/campaign-hub/rbac"
	"github.com/upb/campaign-hub/services/access"
	"github.com/upb/campaign-hub/utils"
)

func int64Ptr(v int64) *int64 { return &v }

// newRequest builds a request with chi path parameters set.
func newRequest(method, target, body string, params map[string]string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// asCaller attaches what a gate would have resolved for the caller.
func asCaller(r *http.Request, userID *int64, scope rbac.Scope, campaignID int64, roles ...rbac.Role) *http.Request {
	ident := access.Identity{ExternalID: "ext-1", Email: "ana@example.com", Name: "Ana", UserID: userID}
	res := access.Resolution{
		Identity:   ident,
		Scope:      scope,
		CampaignID: campaignID,
		Roles:      rbac.RolesOf(roles...),
		Unresolved: userID == nil,
	}
	ctx := middleware.WithResolution(middleware.WithIdentity(r.Context(), ident), res)
	return r.WithContext(ctx)
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) utils.ErrorResponse {
	t.Helper()
	var resp utils.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func decodeInto(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	envelope := struct {
		Data json.RawMessage `json:"data"`
	}{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, v))
}
