package python

import (
	"reflect"
	"testing"

	"github.com/matzehuels/dazed/pkg/deps"
	"github.com/matzehuels/dazed/pkg/errors"
)

func TestPipParser_Requirements(t *testing.T) {
	content := `# app requirements
-r base.txt
--extra-index-url https://pypi.org/simple
requests==2.31.0
Django>=4.2,<5  # web
uvicorn[standard]~=0.23
acme-core
acme-utils @ git+https://git.internal.acme.com/py/utils.git ; python_version >= "3.9"
-e ./local
https://example.com/pkg.tar.gz

`
	got, err := PipParser{}.Parse("requirements.txt", []byte(content), deps.ParseOptions{})
	if err != nil {
		t.Fatal(err)
	}
	want := []deps.Dependency{
		{Name: "requests", Version: "2.31.0"},
		{Name: "Django", Version: "4.2"},
		{Name: "uvicorn", Version: "0.23"},
		{Name: "acme-core", Version: deps.UnknownVersion},
		{Name: "acme-utils", Version: deps.UnknownVersion, Resolved: "git+https://git.internal.acme.com/py/utils.git", Internal: true},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Parse() =\n%+v\nwant\n%+v", got, want)
	}
}

func TestPipParser_RequirementsInternalIndex(t *testing.T) {
	content := "--index-url https://pypi.internal.acme.com/simple\nacme-core==1.0\n"
	got, err := PipParser{}.Parse("requirements.txt", []byte(content), deps.ParseOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("Parse() = %v, want nothing for an internal-only index", got)
	}
}

func TestPipParser_Pipfile(t *testing.T) {
	content := `[[source]]
url = "https://pypi.org/simple"
verify_ssl = true
name = "pypi"

[[source]]
url = "https://pypi.internal.acme.com/simple"
verify_ssl = true
name = "corp"

[packages]
requests = "==2.31.0"
flask = "*"
acme-core = {version = ">=1.0", index = "corp"}
acme-tools = {git = "https://git.internal.acme.com/py/tools.git", ref = "main"}

[dev-packages]
pytest = ">=7"
`
	got, err := PipParser{}.Parse("Pipfile", []byte(content), deps.ParseOptions{})
	if err != nil {
		t.Fatal(err)
	}
	want := []deps.Dependency{
		{Name: "acme-core", Version: "1.0", Internal: true},
		{Name: "acme-tools", Version: deps.UnknownVersion, Resolved: "https://git.internal.acme.com/py/tools.git", Internal: true},
		{Name: "flask", Version: deps.UnknownVersion},
		{Name: "requests", Version: "2.31.0"},
		{Name: "pytest", Version: "7"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Parse() =\n%+v\nwant\n%+v", got, want)
	}
}

func TestPipParser_PipfileLock(t *testing.T) {
	public := `{
  "_meta": {"sources": [{"name": "pypi", "url": "https://pypi.org/simple", "verify_ssl": true}]},
  "default": {
    "requests": {"hashes": ["sha256:abc"], "version": "==2.31.0"},
    "acme-core": {"version": "==1.0.0"}
  },
  "develop": {
    "pytest": {"version": "==7.4.0"}
  }
}`
	internal := `{
  "_meta": {"sources": [{"name": "corp", "url": "https://pypi.internal.acme.com/simple"}]},
  "default": {"acme-core": {"version": "==1.0.0"}}
}`

	got, err := PipParser{}.Parse("Pipfile.lock", []byte(public), deps.ParseOptions{})
	if err != nil {
		t.Fatal(err)
	}
	want := []deps.Dependency{
		{Name: "acme-core", Version: "1.0.0"},
		{Name: "requests", Version: "2.31.0"},
		{Name: "pytest", Version: "7.4.0"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Parse() =\n%+v\nwant\n%+v", got, want)
	}

	got, err = PipParser{}.Parse("Pipfile.lock", []byte(internal), deps.ParseOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("Parse() = %v, want nothing for internal-only sources", got)
	}
}

func TestPipParser_Invalid(t *testing.T) {
	for _, name := range []string{"Pipfile", "Pipfile.lock"} {
		_, err := PipParser{}.Parse(name, []byte("[[[ nope"), deps.ParseOptions{})
		if !errors.Is(err, errors.ErrCodeParseFailed) {
			t.Errorf("Parse(%s) error = %v, want PARSE_FAILED", name, err)
		}
	}
}
