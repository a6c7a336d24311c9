package testutil

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/crm/backend/internal/interfaces/http/dto"
)

// DecodeResponse unmarshals a recorded response body into the standard API
// envelope. The raw body is included in the failure message because an
// undecodable body is usually a panic page or a gin debug string.
func DecodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "body: %s", w.Body.String())
	return resp
}

// DataOf returns the envelope's data as a JSON object.
func DataOf(t *testing.T, resp dto.Response) map[string]interface{} {
	t.Helper()

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok, "response data is not an object: %v", resp.Data)
	return data
}

// ListOf returns the envelope's data as a JSON array.
func ListOf(t *testing.T, resp dto.Response) []interface{} {
	t.Helper()

	items, ok := resp.Data.([]interface{})
	require.True(t, ok, "response data is not an array: %v", resp.Data)
	return items
}
