package packagist

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/matzehuels/dazed/pkg/cache"
	"github.com/matzehuels/dazed/pkg/integrations"
)

func TestFetchPackage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/p2/monolog/monolog.json":
			w.Write([]byte(`{"packages":{"monolog/monolog":[{"version":"3.5.0"},{"version":"3.4.0"}]}}`))
		case "/p2/acme/empty.json":
			w.Write([]byte(`{"packages":{"acme/empty":[]}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	c := NewClient(cache.NewNullCache(), time.Hour)
	c.baseURL = server.URL

	info, err := c.FetchPackage(context.Background(), "Monolog/Monolog", false)
	if err != nil {
		t.Fatalf("FetchPackage() error: %v", err)
	}
	if info.Version != "3.5.0" {
		t.Errorf("Version = %q, want 3.5.0", info.Version)
	}

	for _, pkg := range []string{"acme/empty", "acme/internal-sdk"} {
		if _, err := c.FetchPackage(context.Background(), pkg, false); !errors.Is(err, integrations.ErrNotFound) {
			t.Errorf("FetchPackage(%s) error = %v, want ErrNotFound", pkg, err)
		}
	}
}
