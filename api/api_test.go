package api_test

import (
	"net/http"
	"testing"

	"fleet/api"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	doc, err := api.Load()
	require.NoError(t, err)

	require.Len(t, doc.Servers, 1)
	assert.Equal(t, api.BasePath, doc.Servers[0].URL)

	operations := map[string]string{
		"/loads":                       http.MethodPost,
		"/loads/{id}":                  http.MethodGet,
		"/loads/{id}/stage":            http.MethodPost,
		"/loads/{id}/assignments":      http.MethodPost,
		"/assignments/{id}/accept":     http.MethodPost,
		"/assignments/{id}/reject":     http.MethodPost,
		"/assignments/{id}/cancel":     http.MethodPost,
		"/resources":                   http.MethodPost,
		"/resources/available":         http.MethodGet,
		"/resources/{id}/availability": http.MethodPut,
		"/notifications":               http.MethodGet,
	}
	for path, method := range operations {
		item := doc.Paths.Value(path)
		require.NotNil(t, item, path)
		assert.NotNil(t, item.GetOperation(method), "%s %s", method, path)
	}
}

func TestLoad_TTLSecondsFitsDuration(t *testing.T) {
	doc, err := api.Load()
	require.NoError(t, err)

	schema := doc.Components.Schemas["CreateAssignmentRequest"].Value
	ttl := schema.Properties["ttlSeconds"].Value
	require.NotNil(t, ttl.Max)
	assert.EqualValues(t, 9223372036, *ttl.Max)
	require.NotNil(t, ttl.Min)
	assert.EqualValues(t, 1, *ttl.Min)
}
