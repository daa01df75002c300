package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	dazederrors "github.com/matzehuels/dazed/pkg/errors"
	"github.com/matzehuels/dazed/pkg/integrations"
)

func TestHostListOrganizations(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/organizations" {
			http.NotFound(w, r)
			return
		}
		switch r.URL.Query().Get("since") {
		case "0":
			w.Write([]byte(`[{"id":1,"login":"acme"},{"id":7,"login":"Beta"}]`))
		case "7":
			w.Write([]byte(`[{"id":9,"login":"corp"}]`))
		default:
			w.Write([]byte(`[]`))
		}
	}))
	defer server.Close()

	orgs, err := NewHost(server.URL, "t").ListOrganizations(context.Background())
	if err != nil {
		t.Fatalf("ListOrganizations() error: %v", err)
	}
	if strings.Join(orgs, ",") != "acme,Beta,corp" {
		t.Errorf("orgs = %v", orgs)
	}
}

func TestHostListRepositoriesPaginates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization = %q", got)
		}
		if r.URL.Path != "/orgs/acme/repos" {
			http.NotFound(w, r)
			return
		}
		if r.URL.Query().Get("page") == "1" {
			var b strings.Builder
			b.WriteString("[")
			for i := 0; i < perPage; i++ {
				if i > 0 {
					b.WriteString(",")
				}
				fmt.Fprintf(&b, `{"name":"repo-%03d","default_branch":"main","size":10}`, i)
			}
			b.WriteString("]")
			w.Write([]byte(b.String()))
			return
		}
		w.Write([]byte(`[{"name":"empty","default_branch":"","size":0}]`))
	}))
	defer server.Close()

	repos, err := NewHost(server.URL, "secret").ListRepositories(context.Background(), "acme")
	if err != nil {
		t.Fatalf("ListRepositories() error: %v", err)
	}
	if len(repos) != perPage+1 {
		t.Fatalf("len(repos) = %d, want %d", len(repos), perPage+1)
	}
	last := repos[len(repos)-1]
	if last.Name != "empty" || !last.Empty {
		t.Errorf("last repo = %+v, want empty", last)
	}
	if repos[0].DefaultBranch != "main" {
		t.Errorf("DefaultBranch = %q", repos[0].DefaultBranch)
	}
}

func TestHostListFiles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/acme/web/git/trees/main":
			if r.URL.Query().Get("recursive") != "1" {
				t.Error("tree must be listed recursively")
			}
			w.Write([]byte(`{"sha":"abc","tree":[
				{"path":"package.json","type":"blob"},
				{"path":"src","type":"tree"},
				{"path":"src/yarn.lock","type":"blob"},
				{"path":"vendor/lib","type":"commit"}]}`))
		case "/repos/acme/void/git/trees/HEAD":
			w.WriteHeader(http.StatusConflict)
			w.Write([]byte(`{"message":"Git Repository is empty."}`))
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
	if len(files) != 2 || files[0].Path != "package.json" || files[1].Path != "src/yarn.lock" {
		t.Errorf("files = %+v", files)
	}

	_, err = h.ListFiles(context.Background(), "acme", "void", "")
	if !errors.Is(err, integrations.ErrEmptyRepository) {
		t.Errorf("empty repo error = %v, want ErrEmptyRepository", err)
	}
	if !dazederrors.Is(err, dazederrors.ErrCodeEmptyRepository) {
		t.Errorf("empty repo code = %v", dazederrors.GetCode(err))
	}

	_, err = h.ListFiles(context.Background(), "acme", "missing", "main")
	if !errors.Is(err, integrations.ErrNotFound) {
		t.Errorf("missing repo error = %v, want ErrNotFound", err)
	}
}

func TestHostFileContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "application/vnd.github.raw" {
			t.Errorf("Accept = %q", r.Header.Get("Accept"))
		}
		if r.URL.Path == "/repos/acme/web/contents/services/api/build.gradle" {
			w.Write([]byte("dependencies {\n}\n"))
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	h := NewHost(server.URL, "")
	data, err := h.FileContent(context.Background(), "acme", "web", "services/api/build.gradle")
	if err != nil {
		t.Fatalf("FileContent() error: %v", err)
	}
	if string(data) != "dependencies {\n}\n" {
		t.Errorf("content = %q", data)
	}

	if _, err := h.FileContent(context.Background(), "acme", "web", "../secrets"); !dazederrors.Is(err, dazederrors.ErrCodeInvalidPath) {
		t.Errorf("traversal error = %v", err)
	}
}

func TestHostRateLimit(t *testing.T) {
	reset := time.Now().Add(time.Hour).Unix()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"resources":{"core":{"limit":5000,"remaining":321,"reset":%d}}}`, reset)
	}))
	defer server.Close()

	rs, err := NewHost(server.URL, "").RateLimit(context.Background())
	if err != nil {
		t.Fatalf("RateLimit() error: %v", err)
	}
	if rs.Remaining != 321 || rs.Reset.Unix() != reset || rs.Unlimited {
		t.Errorf("RateLimit() = %+v", rs)
	}
}

func TestHostRateLimitDisabled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	rs, err := NewHost(server.URL, "").RateLimit(context.Background())
	if err != nil {
		t.Fatalf("RateLimit() error: %v", err)
	}
	if !rs.Unlimited {
		t.Error("404 from /rate_limit should mean unlimited")
	}
}

func TestHostEmptyRepositoriesKeepBreakerClosed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/repos/acme/real/git/trees/main" {
			w.Write([]byte(`{"tree":[{"path":"package.json","type":"blob"}]}`))
			return
		}
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"message":"Git Repository is empty."}`))
	}))
	defer server.Close()

	h := NewHost(server.URL, "t")
	for i := 0; i < 8; i++ {
		_, err := h.ListFiles(context.Background(), "acme", fmt.Sprintf("empty%d", i), "main")
		if !errors.Is(err, integrations.ErrEmptyRepository) {
			t.Fatalf("ListFiles(empty%d) error = %v, want ErrEmptyRepository", i, err)
		}
	}

	files, err := h.ListFiles(context.Background(), "acme", "real", "main")
	if err != nil {
		t.Fatalf("ListFiles(real) after empty repositories: %v", err)
	}
	if len(files) != 1 || files[0].Path != "package.json" {
		t.Errorf("files = %+v", files)
	}
}
