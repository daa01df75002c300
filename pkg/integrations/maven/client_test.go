package maven

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/matzehuels/dazed/pkg/cache"
	"github.com/matzehuels/dazed/pkg/integrations"
)

func testClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c := NewClient(cache.NewNullCache(), time.Hour)
	c.baseURL = baseURL
	return c
}

func TestFetchArtifact(t *testing.T) {
	var queries []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		queries = append(queries, q)
		resp := searchResponse{}
		if q == `a:"guava" AND g:"com.google.guava"` || q == `a:"guava"` {
			resp.Response.NumFound = 1
			resp.Response.Docs = []searchDoc{
				{GroupID: "com.google.guava", ArtifactID: "guava", LatestVersion: "33.0.0-jre"},
			}
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	c := testClient(t, server.URL)

	info, err := c.FetchArtifact(context.Background(), "com.google.guava", "guava", false)
	if err != nil {
		t.Fatalf("FetchArtifact() error: %v", err)
	}
	if info.Version != "33.0.0-jre" {
		t.Errorf("Version = %q", info.Version)
	}
	if info.GroupID != "com.google.guava" || info.ArtifactID != "guava" {
		t.Errorf("coordinate = %s:%s", info.GroupID, info.ArtifactID)
	}

	if _, err := c.FetchArtifact(context.Background(), "", "guava", false); err != nil {
		t.Errorf("group-less search error: %v", err)
	}

	_, err = c.FetchArtifact(context.Background(), "com.acme.internal", "billing-core", false)
	if !errors.Is(err, integrations.ErrNotFound) {
		t.Errorf("zero hits error = %v, want ErrNotFound", err)
	}

	if len(queries) != 3 {
		t.Errorf("queries = %v", queries)
	}
}

func TestFetchArtifactFallsBackToVersion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response":{"numFound":1,"docs":[{"g":"junit","a":"junit","v":"4.13.2"}]}}`))
	}))
	defer server.Close()

	info, err := testClient(t, server.URL).FetchArtifact(context.Background(), "junit", "junit", false)
	if err != nil {
		t.Fatalf("FetchArtifact() error: %v", err)
	}
	if info.Version != "4.13.2" {
		t.Errorf("Version = %q, want 4.13.2", info.Version)
	}
}

func TestFetchArtifactServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	_, err := testClient(t, server.URL).FetchArtifact(context.Background(), "", "guava", false)
	if errors.Is(err, integrations.ErrNotFound) {
		t.Error("a failed search must not be reported as absence")
	}
	if !errors.Is(err, integrations.ErrNetwork) {
		t.Errorf("error = %v, want ErrNetwork", err)
	}
}
