package gateway

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/flemzord/relaychat/internal/memory"
	"github.com/flemzord/relaychat/internal/provider"
	"gopkg.in/yaml.v3"
)

func mustYAMLNode(t *testing.T, s string) *yaml.Node {
	t.Helper()
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(s), &doc); err != nil {
		t.Fatalf("yaml.Unmarshal: %v", err)
	}
	if len(doc.Content) == 0 {
		t.Fatal("empty YAML document")
	}
	return doc.Content[0]
}

// newTestGateway returns a gateway wired to store and p, configured from
// cfg, without a listener.
func newTestGateway(t *testing.T, cfg string, store memory.KV, p provider.Provider) (*Gateway, http.Handler) {
	t.Helper()

	g := &Gateway{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	if err := g.Configure(mustYAMLNode(t, cfg)); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	g.setup(store, p)
	return g, g.buildRouter()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}
