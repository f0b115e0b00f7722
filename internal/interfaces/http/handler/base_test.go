package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estateops/backend/internal/domain/metering"
	"github.com/estateops/backend/internal/domain/shared"
	"github.com/estateops/backend/internal/interfaces/http/dto"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func TestGetOrgID(t *testing.T) {
	t.Run("header value is parsed", func(t *testing.T) {
		c, _ := newTestContext(t)
		want := uuid.New()
		c.Request.Header.Set("X-Org-ID", want.String())

		got, err := getOrgID(c)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("missing header falls back to development default", func(t *testing.T) {
		c, _ := newTestContext(t)

		got, err := getOrgID(c)
		require.NoError(t, err)
		assert.Equal(t, uuid.MustParse("00000000-0000-0000-0000-000000000001"), got)
	})

	t.Run("malformed header is rejected", func(t *testing.T) {
		c, _ := newTestContext(t)
		c.Request.Header.Set("X-Org-ID", "not-a-uuid")

		_, err := getOrgID(c)
		assert.Error(t, err)
	})
}

func TestBaseHandler_HandleError(t *testing.T) {
	h := &BaseHandler{}

	t.Run("not found maps to 404", func(t *testing.T) {
		c, w := newTestContext(t)

		h.HandleError(c, shared.ErrNotFound)

		assert.Equal(t, http.StatusNotFound, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		assert.Equal(t, dto.ErrCodeNotFound, resp.Error.Code)
	})

	t.Run("invalid state maps to 422", func(t *testing.T) {
		c, w := newTestContext(t)

		h.HandleError(c, shared.NewDomainError("INVALID_STATE", "Meter is already inactive"))

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("validation-style domain errors map to 400", func(t *testing.T) {
		c, w := newTestContext(t)

		h.HandleError(c, shared.NewDomainError("INVALID_CURRENCY", "Currency must be a 3-letter ISO code"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("allocation conflict maps to 422 with contested units", func(t *testing.T) {
		c, w := newTestContext(t)
		unitID := uuid.New()

		h.HandleError(c, metering.NewAllocationConflictError([]metering.UnitConflict{
			{UnitID: unitID, UtilityType: metering.UtilityTypeWater},
		}))

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, dto.ErrCodeAllocationConflict, resp.Error.Code)

		details, ok := resp.Error.Details.(map[string]interface{})
		require.True(t, ok)
		conflicts, ok := details["conflicts"].([]interface{})
		require.True(t, ok)
		require.Len(t, conflicts, 1)
		first := conflicts[0].(map[string]interface{})
		assert.Equal(t, unitID.String(), first["unit_id"])
	})

	t.Run("unknown errors map to 500", func(t *testing.T) {
		c, w := newTestContext(t)

		h.HandleError(c, errors.New("disk on fire"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, dto.ErrCodeInternal, resp.Error.Code)
		assert.NotContains(t, resp.Error.Message, "disk")
	})
}

func TestBaseHandler_Responses(t *testing.T) {
	h := &BaseHandler{}

	t.Run("success envelope", func(t *testing.T) {
		c, w := newTestContext(t)

		h.Success(c, gin.H{"hello": "world"})

		assert.Equal(t, http.StatusOK, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
	})

	t.Run("paginated meta", func(t *testing.T) {
		c, w := newTestContext(t)

		h.SuccessWithMeta(c, []string{"a", "b"}, 5, 1, 2)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.Meta)
		assert.Equal(t, int64(5), resp.Meta.Total)
		assert.Equal(t, 3, resp.Meta.TotalPages)
	})
}
