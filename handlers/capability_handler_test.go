package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/upb/campaign-hub/rbac"
	"go.uber.org/zap"
)

func TestCapabilityHandler(t *testing.T) {
	handler := NewCapabilityHandler(zap.NewNop())

	t.Run("campaign scope", func(t *testing.T) {
		req := asCaller(newRequest(http.MethodGet, "/api/v1/campaigns/7/capabilities", "", nil),
			int64Ptr(1), rbac.ScopeCampaign, 7, rbac.RoleCreator)
		w := httptest.NewRecorder()

		handler.HandleCampaign(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var caps map[string]bool
		decodeInto(t, w, &caps)
		assert.Len(t, caps, len(rbac.Actions(rbac.ScopeCampaign)))
		assert.True(t, caps["canCreateContent"])
		assert.True(t, caps["canSubmitReview"])
		assert.False(t, caps["canApproveContent"])
		assert.False(t, caps["canDeleteCampaign"])
	})

	t.Run("system scope", func(t *testing.T) {
		req := asCaller(newRequest(http.MethodGet, "/api/v1/capabilities", "", nil),
			int64Ptr(1), rbac.ScopeSystem, 0, rbac.RoleOrgAdmin)
		w := httptest.NewRecorder()

		handler.HandleSystem(w, req)

		var caps map[string]bool
		decodeInto(t, w, &caps)
		assert.Len(t, caps, len(rbac.Actions(rbac.ScopeSystem)))
		assert.True(t, caps["canViewAuditLog"])
		assert.False(t, caps["canManageSystemRoles"])
	})

	t.Run("unresolved caller gets an all-false map", func(t *testing.T) {
		req := asCaller(newRequest(http.MethodGet, "/api/v1/capabilities", "", nil), nil, rbac.ScopeSystem, 0)
		w := httptest.NewRecorder()

		handler.HandleSystem(w, req)

		var caps map[string]bool
		decodeInto(t, w, &caps)
		for name, allowed := range caps {
			assert.False(t, allowed, name)
		}
	})

	t.Run("without resolution", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.HandleCampaign(w, newRequest(http.MethodGet, "/", "", nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestMeHandler(t *testing.T) {
	handler := NewMeHandler(zap.NewNop())

	t.Run("provisioned", func(t *testing.T) {
		req := asCaller(newRequest(http.MethodGet, "/api/v1/me", "", nil),
			int64Ptr(3), rbac.ScopeSystem, 0, rbac.RoleMember, rbac.RoleOrgAdmin)
		w := httptest.NewRecorder()

		handler.HandleMe(w, req)

		var me MeResponse
		decodeInto(t, w, &me)
		assert.Equal(t, "ext-1", me.ExternalID)
		assert.Equal(t, int64(3), *me.UserID)
		assert.True(t, me.Provisioned)
		assert.Equal(t, []string{"member", "org_admin"}, me.SystemRoles)
	})

	t.Run("not provisioned", func(t *testing.T) {
		req := asCaller(newRequest(http.MethodGet, "/api/v1/me", "", nil), nil, rbac.ScopeSystem, 0)
		w := httptest.NewRecorder()

		handler.HandleMe(w, req)

		var me MeResponse
		decodeInto(t, w, &me)
		assert.Nil(t, me.UserID)
		assert.False(t, me.Provisioned)
		assert.Empty(t, me.SystemRoles)
	})

	t.Run("no identity", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.HandleMe(w, newRequest(http.MethodGet, "/api/v1/me", "", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
