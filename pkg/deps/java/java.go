package java

import (
	"context"

	"github.com/matzehuels/dazed/pkg/deps"
	"github.com/matzehuels/dazed/pkg/integrations/maven"
)

// NewChecker returns a checker backed by Maven Central search. Maven and
// Gradle share it, and with it the client's request budget.
func NewChecker(client *maven.Client) deps.Checker {
	return deps.NewRegistryChecker("maven", func(ctx context.Context, dep deps.Dependency) (string, error) {
		a, err := client.FetchArtifact(ctx, dep.Group, dep.Name, false)
		if err != nil {
			return "", err
		}
		return a.Version, nil
	})
}

// Maven returns the pom.xml ecosystem.
func Maven(checker deps.Checker) *deps.Ecosystem {
	return &deps.Ecosystem{
		Name:          "maven",
		ManifestFiles: []string{"pom.xml"},
		Parser:        POMParser{},
		Checker:       checker,
	}
}

// Gradle returns the Gradle ecosystem. Both build.gradle and the legacy
// gradle.build name are recognized.
func Gradle(checker deps.Checker) *deps.Ecosystem {
	return &deps.Ecosystem{
		Name:          "gradle",
		ManifestFiles: []string{"build.gradle", "gradle.build"},
		LockFiles:     []string{"gradle.lockfile"},
		Parser:        GradleParser{},
		Checker:       checker,
	}
}
