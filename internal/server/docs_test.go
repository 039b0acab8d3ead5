package server

import (
	"encoding/json"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

var pathParam = regexp.MustCompile(`:(\w+)`)

// Served by middleware or infrastructure rather than a documented handler.
var undocumentedRoutes = map[string]bool{
	"GET /api":                   true,
	"GET /api/swagger/*":         true,
	"GET /api/metrics/dashboard": true,
}

func TestSwaggerDocMatchesRoutes(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	raw, err := swag.ReadDoc()
	require.NoError(t, err)
	var doc struct {
		BasePath string                                `json:"basePath"`
		Paths    map[string]map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	require.Equal(t, "/api", doc.BasePath)

	documented := map[string]bool{}
	for path, ops := range doc.Paths {
		for method := range ops {
			documented[strings.ToUpper(method)+" "+doc.BasePath+path] = true
		}
	}

	served := map[string]bool{}
	for _, r := range env.app.GetRoutes(true) {
		switch r.Method {
		case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch:
		default:
			continue
		}
		if !strings.HasPrefix(r.Path, "/api") {
			continue
		}
		path := strings.TrimSuffix(r.Path, "/")
		if path == "" {
			path = "/"
		}
		key := r.Method + " " + pathParam.ReplaceAllString(path, "{$1}")
		if undocumentedRoutes[key] {
			continue
		}
		served[key] = true
	}

	assert.Equal(t, sortedKeys(served), sortedKeys(documented))
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
