package deps

import (
	"context"
	"fmt"
	"math/rand"
	"reflect"
	"testing"
)

func resolved(files []ManifestFile) map[string]bool {
	out := make(map[string]bool, len(files))
	for _, f := range files {
		out[f.Path] = f.Overridden
	}
	return out
}

func TestTable_Resolve(t *testing.T) {
	tbl := testTable(t)
	configs := map[string]string{
		"private/.npmrc": "https://npm.internal.acme.com/",
		"public/.npmrc":  "https://registry.npmjs.org/",
	}
	fetch := func(_ context.Context, p string) ([]byte, error) {
		c, ok := configs[p]
		if !ok {
			return nil, fmt.Errorf("no such file %s", p)
		}
		return []byte(c), nil
	}

	tests := []struct {
		name  string
		paths []string
		want  map[string]bool
	}{
		{
			name:  "manifest alone",
			paths: []string{"package.json", "README.md"},
			want:  map[string]bool{"package.json": false},
		},
		{
			name:  "lock overrides manifest",
			paths: []string{"package.json", "package-lock.json"},
			want:  map[string]bool{"package.json": true, "package-lock.json": false},
		},
		{
			name:  "canonical lock overrides earlier lock",
			paths: []string{"package.json", "package-lock.json", "npm-shrinkwrap.json"},
			want:  map[string]bool{"package.json": true, "package-lock.json": true, "npm-shrinkwrap.json": false},
		},
		{
			name:  "pipfile lock overrides both manifests",
			paths: []string{"requirements.txt", "Pipfile", "Pipfile.lock"},
			want:  map[string]bool{"requirements.txt": true, "Pipfile": true, "Pipfile.lock": false},
		},
		{
			name:  "override is scoped to a directory",
			paths: []string{"web/package.json", "web/package-lock.json", "api/package.json"},
			want:  map[string]bool{"web/package.json": true, "web/package-lock.json": false, "api/package.json": false},
		},
		{
			name:  "override is scoped to an ecosystem",
			paths: []string{"package.json", "yarn.lock"},
			want:  map[string]bool{"package.json": false, "yarn.lock": false},
		},
		{
			name:  "internal config overrides everything",
			paths: []string{"private/package.json", "private/package-lock.json", "private/.npmrc"},
			want:  map[string]bool{"private/package.json": true, "private/package-lock.json": true},
		},
		{
			name:  "public config overrides nothing",
			paths: []string{"public/package.json", "public/.npmrc"},
			want:  map[string]bool{"public/package.json": false},
		},
		{
			name:  "duplicate paths collapse",
			paths: []string{"package.json", "package.json"},
			want:  map[string]bool{"package.json": false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files, problems := tbl.Resolve(context.Background(), tt.paths, fetch, ParseOptions{})
			if len(problems) != 0 {
				t.Fatalf("Resolve() problems = %v", problems)
			}
			if got := resolved(files); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Resolve() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTable_Resolve_OrderIndependent(t *testing.T) {
	tbl := testTable(t)
	paths := []string{
		"package.json", "package-lock.json", "npm-shrinkwrap.json",
		"a/requirements.txt", "a/Pipfile.lock", "b/Pipfile", "yarn.lock",
	}
	base, _ := tbl.Resolve(context.Background(), paths, nil, ParseOptions{})

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		shuffled := append([]string(nil), paths...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		got, _ := tbl.Resolve(context.Background(), shuffled, nil, ParseOptions{})
		if !reflect.DeepEqual(resolved(got), resolved(base)) {
			t.Fatalf("Resolve(%v) = %v, want %v", shuffled, resolved(got), resolved(base))
		}
		for j := range got {
			if got[j].Path != base[j].Path {
				t.Fatalf("Resolve() order differs at %d: %s vs %s", j, got[j].Path, base[j].Path)
			}
		}
	}
}

func TestTable_Resolve_ConfigFetchError(t *testing.T) {
	tbl := testTable(t)
	fetch := func(context.Context, string) ([]byte, error) { return nil, fmt.Errorf("boom") }

	files, problems := tbl.Resolve(context.Background(), []string{"package.json", ".npmrc"}, fetch, ParseOptions{})
	if len(problems) != 1 || problems[0].Path != ".npmrc" {
		t.Fatalf("Resolve() problems = %v, want one for .npmrc", problems)
	}
	if len(files) != 1 || files[0].Overridden {
		t.Errorf("Resolve() = %+v, want package.json not overridden", files)
	}
}

func TestTable_Resolve_SortedCaseInsensitive(t *testing.T) {
	tbl := testTable(t)
	files, _ := tbl.Resolve(context.Background(), []string{"Zeta/package.json", "alpha/package.json", "Beta/package.json"}, nil, ParseOptions{})

	var got []string
	for _, f := range files {
		got = append(got, f.Path)
	}
	want := []string{"alpha/package.json", "Beta/package.json", "Zeta/package.json"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Resolve() order = %v, want %v", got, want)
	}
}
