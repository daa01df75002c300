package dotnet

import (
	"context"
	"testing"

	"github.com/matzehuels/dazed/pkg/deps"
	"github.com/matzehuels/dazed/pkg/errors"
)

func TestNugetParser(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantVul bool
	}{
		{
			name: "cleared internal only",
			content: `<?xml version="1.0" encoding="utf-8"?>
<configuration>
  <packageSources>
    <clear />
    <add key="acme" value="https://nuget.internal.acme.com/v3/index.json" />
  </packageSources>
</configuration>`,
		},
		{
			name: "not cleared",
			content: `<configuration>
  <packageSources>
    <add key="acme" value="https://nuget.internal.acme.com/v3/index.json" />
  </packageSources>
</configuration>`,
			wantVul: true,
		},
		{
			name: "cleared with public feed",
			content: `<configuration>
  <packageSources>
    <clear />
    <add key="nuget.org" value="https://api.nuget.org/v3/index.json" />
    <add key="acme" value="https://nuget.internal.acme.com/v3/index.json" />
  </packageSources>
</configuration>`,
			wantVul: true,
		},
		{
			name: "public feed removed again",
			content: `<configuration>
  <packageSources>
    <clear />
    <add key="nuget.org" value="https://api.nuget.org/v3/index.json" />
    <add key="acme" value="https://nuget.internal.acme.com/v3/index.json" />
    <remove key="nuget.org" />
  </packageSources>
</configuration>`,
		},
		{
			name:    "no sources",
			content: `<configuration></configuration>`,
			wantVul: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NugetParser{}.Parse("nuget.config", []byte(tt.content), deps.ParseOptions{})
			if err != nil {
				t.Fatal(err)
			}
			if vul := len(got) == 1 && got[0].Name == VulnerableConfig; vul != tt.wantVul {
				t.Errorf("Parse() = %v, want vulnerable=%v", got, tt.wantVul)
			}
		})
	}
}

func TestNugetParser_Malformed(t *testing.T) {
	_, err := NugetParser{}.Parse("nuget.config", []byte("not xml at all"), deps.ParseOptions{})
	if !errors.Is(err, errors.ErrCodeParseFailed) {
		t.Errorf("Parse() error = %v, want PARSE_FAILED", err)
	}
}

func TestChecker_AlwaysAbsent(t *testing.T) {
	v, err := NewChecker().Lookup(context.Background(), deps.Dependency{Name: VulnerableConfig})
	if err != nil {
		t.Fatal(err)
	}
	if v.Found || v.Version != deps.NotFoundVersion {
		t.Errorf("Lookup() = %+v, want not found", v)
	}
}
