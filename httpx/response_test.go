package httpx

import (
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSON(t *testing.T) {
	w := httptest.NewRecorder()
	JSON(w, http.StatusCreated, map[string]int{"n": 1})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"n":1}`, w.Body.String())

	w = httptest.NewRecorder()
	JSON(w, http.StatusOK, math.Inf(1))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"encode_error"}`, w.Body.String())
}

func TestJSONError(t *testing.T) {
	w := httptest.NewRecorder()
	JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"tax_id": "invalid_nit"})
	assert.JSONEq(t, `{"error":"validation_failed","details":{"tax_id":"invalid_nit"}}`, w.Body.String())

	w = httptest.NewRecorder()
	JSONError(w, http.StatusNotFound, "not_found", nil)
	assert.JSONEq(t, `{"error":"not_found"}`, w.Body.String())
}

func TestDecode(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Grúa"}`))
	require.NoError(t, Decode(r, &v))
	assert.Equal(t, "Grúa", v.Name)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a"} {"name":"b"}`))
	assert.Error(t, Decode(r, &v))

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
	assert.Error(t, Decode(r, &v))
}

func TestRequestKinds(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Accept", "application/json")
	assert.True(t, WantsJSON(r))
	r.Header.Set("Accept", "text/html,application/json")
	assert.False(t, WantsJSON(r))

	r.Header.Set("Content-Type", "application/json; charset=utf-8")
	assert.True(t, IsJSONBody(r))
}
