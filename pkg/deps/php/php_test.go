package php

import (
	"reflect"
	"testing"

	"github.com/matzehuels/dazed/pkg/deps"
	"github.com/matzehuels/dazed/pkg/errors"
)

func TestComposerParser_Manifest(t *testing.T) {
	content := `{
  "name": "acme/site",
  "require": {"php": ">=8.1", "ext-json": "*", "monolog/monolog": "^3.0", "acme/billing": "dev-main"},
  "require-dev": {"phpunit/phpunit": "^10"}
}`
	got, err := ComposerParser{}.Parse("composer.json", []byte(content), deps.ParseOptions{})
	if err != nil {
		t.Fatal(err)
	}
	want := []deps.Dependency{
		{Name: "acme/billing", Version: "dev-main"},
		{Name: "monolog/monolog", Version: "^3.0"},
		{Name: "phpunit/phpunit", Version: "^10"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Parse() =\n%+v\nwant\n%+v", got, want)
	}
}

func TestComposerParser_Lock(t *testing.T) {
	content := `{
  "packages": [
    {"name": "acme/billing", "version": "1.4.0", "source": {"type": "git", "url": "https://git.internal.acme.com/php/billing.git"}},
    {"name": "monolog/monolog", "version": "3.5.0", "source": {"type": "git", "url": "https://github.com/Seldaek/monolog.git"}},
    {"name": "acme/zipped", "version": "0.1.0", "dist": {"type": "zip", "url": "https://satis.acme.com/dist/zipped.zip"}}
  ],
  "packages-dev": [
    {"name": "acme/fixtures", "version": "0.0.1"}
  ]
}`
	got, err := ComposerParser{}.Parse("composer.lock", []byte(content), deps.ParseOptions{})
	if err != nil {
		t.Fatal(err)
	}
	want := []deps.Dependency{
		{Name: "acme/billing", Version: "1.4.0", Resolved: "https://git.internal.acme.com/php/billing.git", Internal: true},
		{Name: "monolog/monolog", Version: "3.5.0", Resolved: "https://github.com/Seldaek/monolog.git"},
		{Name: "acme/zipped", Version: "0.1.0", Resolved: "https://satis.acme.com/dist/zipped.zip"},
		{Name: "acme/fixtures", Version: "0.0.1"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Parse() =\n%+v\nwant\n%+v", got, want)
	}
}

func TestComposerParser_Invalid(t *testing.T) {
	for _, name := range []string{"composer.json", "composer.lock"} {
		_, err := ComposerParser{}.Parse(name, []byte("["), deps.ParseOptions{})
		if !errors.Is(err, errors.ErrCodeParseFailed) {
			t.Errorf("Parse(%s) error = %v, want PARSE_FAILED", name, err)
		}
	}
}

func TestIsPlatform(t *testing.T) {
	for name, want := range map[string]bool{
		"php": true, "PHP": true, "ext-mbstring": true, "lib-curl": true,
		"composer-plugin-api": true, "monolog/monolog": false, "phpunit/phpunit": false,
	} {
		if got := isPlatform(name); got != want {
			t.Errorf("isPlatform(%q) = %v, want %v", name, got, want)
		}
	}
}
