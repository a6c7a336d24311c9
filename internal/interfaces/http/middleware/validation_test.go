package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/crm/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// customerPayload mirrors the shape of a customer create request.
type customerPayload struct {
	Name         string `json:"name" binding:"required"`
	ContactEmail string `json:"contact_email" binding:"required,email"`
	CreditLimit  int    `json:"credit_limit" binding:"gte=0"`
}

func bindCustomerRoute() *gin.Engine {
	router := gin.New()
	router.POST("/api/v1/customers", func(c *gin.Context) {
		var req customerPayload
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	return router
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSetupValidator(t *testing.T) {
	SetupValidator()

	// With the tag name function registered, details must name fields the
	// way clients sent them.
	w := postJSON(bindCustomerRoute(), "/api/v1/customers", `{"name": "Acme Boards", "contact_email": "not-an-email"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	require.Len(t, resp.Error.Details, 1)
	assert.Equal(t, "contact_email", resp.Error.Details[0].Field)
}

func TestWireFieldName(t *testing.T) {
	type tagged struct {
		Plain     string `json:"plain"`
		WithOpts  string `json:"with_opts,omitempty"`
		Skipped   string `json:"-"`
		FormOnly  string `form:"page_size"`
		Untagged  string
		FormAndJS string `json:"js_name" form:"form_name"`
	}

	typ := reflect.TypeOf(tagged{})
	byName := func(name string) reflect.StructField {
		f, ok := typ.FieldByName(name)
		require.True(t, ok)
		return f
	}

	assert.Equal(t, "plain", wireFieldName(byName("Plain")))
	assert.Equal(t, "with_opts", wireFieldName(byName("WithOpts")))
	assert.Equal(t, "", wireFieldName(byName("Skipped")))
	assert.Equal(t, "page_size", wireFieldName(byName("FormOnly")))
	assert.Equal(t, "", wireFieldName(byName("Untagged")))
	assert.Equal(t, "js_name", wireFieldName(byName("FormAndJS")))
}

func TestFormatValidationErrors(t *testing.T) {
	SetupValidator()

	t.Run("one detail per failed field", func(t *testing.T) {
		w := postJSON(bindCustomerRoute(), "/api/v1/customers", `{"contact_email": "sales", "credit_limit": -5}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

		assert.False(t, resp.Success)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		assert.Equal(t, "Request validation failed", resp.Error.Message)
		require.Len(t, resp.Error.Details, 3)

		messages := map[string]string{}
		for _, d := range resp.Error.Details {
			messages[d.Field] = d.Message
		}
		assert.Equal(t, "This field is required", messages["name"])
		assert.Equal(t, "Invalid email format", messages["contact_email"])
		assert.Equal(t, "Must be greater than or equal to 0", messages["credit_limit"])
	})

	t.Run("non-validator error yields empty details", func(t *testing.T) {
		resp := FormatValidationErrors(assert.AnError, "req-1")

		assert.False(t, resp.Success)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "req-1", resp.Error.RequestID)
		assert.Empty(t, resp.Error.Details)
	})

	t.Run("valid payload passes binding", func(t *testing.T) {
		w := postJSON(bindCustomerRoute(), "/api/v1/customers",
			`{"name": "Acme Boards", "contact_email": "sales@acme.example", "credit_limit": 50000}`)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestFieldMessage(t *testing.T) {
	type allTags struct {
		Required string `validate:"required"`
		Email    string `validate:"email"`
		MinStr   string `validate:"min=5"`
		MinNum   int    `validate:"min=18"`
		MaxStr   string `validate:"max=3"`
		Exact    string `validate:"len=8"`
		ID       string `validate:"uuid"`
		Level    string `validate:"oneof=bronze silver gold"`
		GTE      int    `validate:"gte=10"`
		LTE      int    `validate:"lte=100"`
		GT       int    `validate:"gt=0"`
		LT       int    `validate:"lt=1000"`
		Site     string `validate:"url"`
		Code     string `validate:"numeric"`
		SKU      string `validate:"alphanum"`
		Region   string `validate:"alpha"`
		Future   string `validate:"boolean"`
	}

	v := validator.New()
	err := v.Struct(allTags{
		MinNum: 7,
		MaxStr: "long",
		Exact:  "short",
		ID:     "not-a-uuid",
		Level:  "platinum",
		GTE:    5,
		LTE:    200,
		GT:     0,
		LT:     2000,
		Site:   "not a url",
		Code:   "abc",
		SKU:    "a-b",
		Region: "r2",
		Future: "maybe",
	})
	require.Error(t, err)

	var fieldErrs validator.ValidationErrors
	require.ErrorAs(t, err, &fieldErrs)

	want := map[string]string{
		"Required": "This field is required",
		"Email":    "Invalid email format",
		"MinStr":   "Must be at least 5 characters",
		"MinNum":   "Must be at least 18",
		"MaxStr":   "Must be at most 3 characters",
		"Exact":    "Must be exactly 8 characters",
		"ID":       "Invalid UUID format",
		"Level":    "Must be one of: bronze silver gold",
		"GTE":      "Must be greater than or equal to 10",
		"LTE":      "Must be less than or equal to 100",
		"GT":       "Must be greater than 0",
		"LT":       "Must be less than 1000",
		"Site":     "Invalid URL format",
		"Code":     "Must be numeric",
		"SKU":      "Must be alphanumeric",
		"Region":   "Must contain only letters",
		"Future":   "Invalid value",
	}

	seen := map[string]bool{}
	for _, fe := range fieldErrs {
		expected, ok := want[fe.Field()]
		require.True(t, ok, "unexpected failed field %s", fe.Field())
		assert.Equal(t, expected, fieldMessage(fe), "field %s", fe.Field())
		seen[fe.Field()] = true
	}
	assert.Len(t, seen, len(want), "every tag under test must fail")
}

func TestHandleValidationError(t *testing.T) {
	t.Run("carries the request ID from the context", func(t *testing.T) {
		router := gin.New()
		router.Use(func(c *gin.Context) {
			c.Set(RequestIDKey, "quote-req-77")
		})
		router.POST("/api/v1/quotes", func(c *gin.Context) {
			var req struct {
				CustomerID int64 `json:"customer_id" binding:"required"`
			}
			if err := c.ShouldBindJSON(&req); err != nil {
				HandleValidationError(c, err)
				return
			}
		})

		w := postJSON(router, "/api/v1/quotes", `{}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		assert.Equal(t, "quote-req-77", resp.Error.RequestID)
	})

	t.Run("falls back to the client header", func(t *testing.T) {
		router := gin.New()
		router.POST("/api/v1/quotes", func(c *gin.Context) {
			var req struct {
				CustomerID int64 `json:"customer_id" binding:"required"`
			}
			if err := c.ShouldBindJSON(&req); err != nil {
				HandleValidationError(c, err)
				return
			}
		})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/quotes", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(RequestIDKey, "header-req-12")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.Error)
		assert.Equal(t, "header-req-12", resp.Error.RequestID)
	})
}
