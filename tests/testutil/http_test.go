package testutil

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crm/backend/internal/interfaces/http/dto"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// record serves a single handler and returns the recorder.
func record(h gin.HandlerFunc) *httptest.ResponseRecorder {
	engine := gin.New()
	engine.GET("/", h)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	return w
}

func TestDecodeResponse(t *testing.T) {
	t.Run("success envelope", func(t *testing.T) {
		w := record(func(c *gin.Context) {
			c.JSON(http.StatusOK, dto.NewSuccessResponse(map[string]string{"name": "Acme Boards"}))
		})

		resp := DecodeResponse(t, w)

		assert.True(t, resp.Success)
		assert.Nil(t, resp.Error)
	})

	t.Run("error envelope", func(t *testing.T) {
		w := record(func(c *gin.Context) {
			c.JSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeNotFound, "Customer not found", "req-9"))
		})

		resp := DecodeResponse(t, w)

		assert.False(t, resp.Success)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeNotFound, resp.Error.Code)
		assert.Equal(t, "req-9", resp.Error.RequestID)
	})
}

func TestDataOf(t *testing.T) {
	w := record(func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.NewSuccessResponse(map[string]interface{}{
			"id":   7,
			"name": "Acme Boards",
		}))
	})

	data := DataOf(t, DecodeResponse(t, w))

	assert.Equal(t, "Acme Boards", data["name"])
	assert.Equal(t, float64(7), data["id"], "numbers decode as float64")
}

func TestListOf(t *testing.T) {
	w := record(func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(
			[]map[string]interface{}{{"id": 1}, {"id": 2}}, 2, 1, 20))
	})

	resp := DecodeResponse(t, w)
	items := ListOf(t, resp)

	assert.Len(t, items, 2)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(2), resp.Meta.Total)
}
