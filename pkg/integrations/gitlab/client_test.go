package gitlab

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/matzehuels/dazed/pkg/integrations"
)

func TestHostListRepositories(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("PRIVATE-TOKEN") != "glpat" {
			t.Errorf("PRIVATE-TOKEN = %q", r.Header.Get("PRIVATE-TOKEN"))
		}
		if r.URL.EscapedPath() != "/groups/acme/projects" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("RateLimit-Remaining", "1999")
		w.Header().Set("RateLimit-Reset", "1700000000")
		switch r.URL.Query().Get("page") {
		case "1":
			w.Header().Set("X-Page", "1")
			w.Header().Set("X-Next-Page", "2")
			w.Write([]byte(`[{"path_with_namespace":"acme/web","default_branch":"main"}]`))
		default:
			w.Header().Set("X-Page", "2")
			w.Write([]byte(`[{"path_with_namespace":"acme/platform/api","default_branch":"develop","empty_repo":true}]`))
		}
	}))
	defer server.Close()

	h := NewHost(server.URL, "glpat")

	rs, _ := h.RateLimit(context.Background())
	if !rs.Unlimited {
		t.Error("rate limit should be unlimited before any response")
	}

	repos, err := h.ListRepositories(context.Background(), "acme")
	if err != nil {
		t.Fatalf("ListRepositories() error: %v", err)
	}
	if len(repos) != 2 {
		t.Fatalf("repos = %+v", repos)
	}
	if repos[1].Name != "platform/api" || !repos[1].Empty || repos[1].DefaultBranch != "develop" {
		t.Errorf("repos[1] = %+v", repos[1])
	}

	rs, _ = h.RateLimit(context.Background())
	if rs.Unlimited || rs.Remaining != 1999 || rs.Reset.Unix() != 1700000000 {
		t.Errorf("RateLimit() = %+v", rs)
	}
}

func TestHostListFilesAndContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.EscapedPath() {
		case "/projects/acme%2Fweb/repository/tree":
			w.Write([]byte(`[{"path":"Gemfile","type":"blob"},{"path":"app","type":"tree"},{"path":"app/Podfile","type":"blob"}]`))
		case "/projects/acme%2Fweb/repository/files/app%2FPodfile/raw":
			w.Write([]byte("pod 'AcmeKit', '1.0'\n"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	h := NewHost(server.URL, "")

	files, err := h.ListFiles(context.Background(), "acme", "web", "main")
	if err != nil {
		t.Fatalf("ListFiles() error: %v", err)
	}
	var paths []string
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	if strings.Join(paths, ",") != "Gemfile,app/Podfile" {
		t.Errorf("paths = %v", paths)
	}

	data, err := h.FileContent(context.Background(), "acme", "web", "app/Podfile")
	if err != nil {
		t.Fatalf("FileContent() error: %v", err)
	}
	if string(data) != "pod 'AcmeKit', '1.0'\n" {
		t.Errorf("content = %q", data)
	}

	_, err = h.ListFiles(context.Background(), "acme", "void", "")
	if !errors.Is(err, integrations.ErrEmptyRepository) {
		t.Errorf("error = %v, want ErrEmptyRepository", err)
	}
}

func TestHostListOrganizations(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/groups" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`[{"id":1,"full_path":"acme"},{"id":2,"full_path":"corp"}]`))
	}))
	defer server.Close()

	orgs, err := NewHost(server.URL, "").ListOrganizations(context.Background())
	if err != nil {
		t.Fatalf("ListOrganizations() error: %v", err)
	}
	if strings.Join(orgs, ",") != "acme,corp" {
		t.Errorf("orgs = %v", orgs)
	}
}
