package buildconfig_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/poltergeist/buildscript/pkg/buildconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type phpOptions struct {
	PHP          string `mapstructure:"php"`
	ComposerArgs string `mapstructure:"composer_args"`
}

var phpDefaults = map[string]any{
	"php":           "5.3.8",
	"composer_args": "",
}

func parse(t *testing.T, doc string) *buildconfig.Config {
	t.Helper()
	cfg, err := buildconfig.Parse([]byte(doc))
	require.NoError(t, err)
	return cfg
}

func TestResolve_DefaultUsedWhenMissing(t *testing.T) {
	cfg := parse(t, "language: php\n")

	var opts phpOptions
	require.NoError(t, cfg.Resolve("php", phpDefaults, &opts))
	assert.Equal(t, "5.3.8", opts.PHP)
	assert.Equal(t, "", opts.ComposerArgs)
}

func TestResolve_OverrideWins(t *testing.T) {
	cfg := parse(t, "language: php\nphp: \"7.4\"\ncomposer_args: --dev\n")

	var opts phpOptions
	require.NoError(t, cfg.Resolve("php", phpDefaults, &opts))
	assert.Equal(t, "7.4", opts.PHP)
	assert.Equal(t, "--dev", opts.ComposerArgs)
}

func TestResolve_NumericVersionKeepsLiteralText(t *testing.T) {
	for _, version := range []string{"5.4", "7.0", "5.10", "8.10", "7", "010", "1e3"} {
		t.Run(version, func(t *testing.T) {
			cfg := parse(t, "php: "+version+"\n")

			var opts phpOptions
			require.NoError(t, cfg.Resolve("php", phpDefaults, &opts))
			assert.Equal(t, version, opts.PHP)
		})
	}
}

func TestResolve_NumericVersionInJobKeepsLiteralText(t *testing.T) {
	jobs, err := parse(t, "php: 5.3\njobs:\n  - php: 7.0\n  - php: 5.10\n").Jobs()
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	for i, want := range []string{"7.0", "5.10"} {
		var opts phpOptions
		require.NoError(t, jobs[i].Resolve("php", phpDefaults, &opts))
		assert.Equal(t, want, opts.PHP)
	}
}

func TestParse_NumbersKeepTheirSpelling(t *testing.T) {
	cfg := parse(t, "php: 7.0\nquoted: \"7.0\"\nflag: true\nlist: [1.10, two]\n")

	v, _ := cfg.Get("php")
	assert.Equal(t, buildconfig.Number("7.0"), v)
	v, _ = cfg.Get("quoted")
	assert.Equal(t, "7.0", v)
	v, _ = cfg.Get("flag")
	assert.Equal(t, true, v)
	v, _ = cfg.Get("list")
	assert.Equal(t, []any{buildconfig.Number("1.10"), "two"}, v)
}

func TestParse_AnchorsAndMergeKeys(t *testing.T) {
	cfg := parse(t, `defaults: &defaults
  php: 5.10
  composer_args: --dev
job:
  <<: *defaults
  composer_args: --prefer-dist
`)
	v, _ := cfg.Get("job")
	assert.Equal(t, map[string]any{
		"php":           buildconfig.Number("5.10"),
		"composer_args": "--prefer-dist",
	}, v)
}

func TestParse_TopLevelMustBeMapping(t *testing.T) {
	_, err := buildconfig.Parse([]byte("- php\n"))
	assert.Error(t, err)

	cfg, err := buildconfig.Parse(nil)
	require.NoError(t, err)
	assert.Empty(t, cfg.Keys())
}

func TestResolve_NullOverrideFallsBackToDefault(t *testing.T) {
	cfg := parse(t, "php: ~\n")

	var opts phpOptions
	require.NoError(t, cfg.Resolve("php", phpDefaults, &opts))
	assert.Equal(t, "5.3.8", opts.PHP)
}

func TestResolve_MissingOptionIsConfigurationError(t *testing.T) {
	cfg := parse(t, "language: php\n")

	var opts phpOptions
	err := cfg.Resolve("php", map[string]any{"php": "5.3.8"}, &opts)
	require.Error(t, err)
	assert.True(t, errors.Is(err, buildconfig.ErrConfiguration))

	var cerr *buildconfig.ConfigurationError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, "php", cerr.Plugin)
	assert.Equal(t, "composer_args", cerr.Option)
}

func TestResolve_WrongShapeIsConfigurationError(t *testing.T) {
	cfg := parse(t, "php: {nested: true}\n")

	var opts phpOptions
	err := cfg.Resolve("php", phpDefaults, &opts)
	assert.True(t, errors.Is(err, buildconfig.ErrConfiguration))
}

func TestNew_CopiesInput(t *testing.T) {
	data := map[string]any{"language": "php", "cache": map[string]any{"composer": true}}
	cfg := buildconfig.New(data)

	data["language"] = "ruby"
	data["cache"].(map[string]any)["composer"] = false

	assert.Equal(t, "php", cfg.Language())
	assert.True(t, cfg.CacheEnabled(buildconfig.CacheComposer))
}

func TestLanguage(t *testing.T) {
	assert.Equal(t, buildconfig.DefaultLanguage, parse(t, "{}").Language())
	assert.Equal(t, "objective-c", parse(t, "language: Objective-C\n").Language())
}

func TestCache(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		kind string
		want bool
	}{
		{"no cache key", "language: php\n", buildconfig.CacheCocoapods, false},
		{"mapping", "cache: {cocoapods: true}\n", buildconfig.CacheCocoapods, true},
		{"mapping false", "cache: {cocoapods: false}\n", buildconfig.CacheCocoapods, false},
		{"single kind", "cache: bundler\n", buildconfig.CacheBundler, true},
		{"list", "cache: [bundler, cocoapods]\n", buildconfig.CacheCocoapods, true},
		{"targets", "cache: {enabled: true, targets: [composer]}\n", buildconfig.CacheComposer, true},
		{"master switch off", "cache: {enabled: false, cocoapods: true}\n", buildconfig.CacheCocoapods, false},
		{"disabled", "cache: false\n", buildconfig.CacheBundler, false},
		{"directories", "cache: {directories: [vendor]}\n", buildconfig.CacheDirectories, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parse(t, tt.doc).CacheEnabled(tt.kind))
		})
	}
}

func TestCache_EnabledKindsSorted(t *testing.T) {
	s := parse(t, "cache: [cocoapods, bundler]\n").Cache()
	assert.Equal(t, []string{"bundler", "cocoapods"}, s.EnabledKinds())
}

func TestStageCommands(t *testing.T) {
	cfg := parse(t, "install: make deps\nscript:\n  - make test\n  - make lint\n")

	cmds, ok := cfg.StageCommands("install")
	require.True(t, ok)
	assert.Equal(t, []string{"make deps"}, cmds)

	cmds, ok = cfg.StageCommands("script")
	require.True(t, ok)
	assert.Equal(t, []string{"make test", "make lint"}, cmds)

	_, ok = cfg.StageCommands("before_install")
	assert.False(t, ok)
}

func TestEnv(t *testing.T) {
	cfg := parse(t, `env:
  - FOO=bar baz
  - name: TOKEN
    value: s3cr3t
    secret: true
`)
	vars, err := cfg.Env()
	require.NoError(t, err)
	assert.Equal(t, []buildconfig.EnvVar{
		{Name: "FOO", Value: "bar baz"},
		{Name: "TOKEN", Value: "s3cr3t", Secret: true},
	}, vars)
}

func TestEnv_StringEntries(t *testing.T) {
	tests := []struct {
		entry string
		want  buildconfig.EnvVar
	}{
		{"FOO=bar", buildconfig.EnvVar{Name: "FOO", Value: "bar"}},
		{"FOO = bar ", buildconfig.EnvVar{Name: "FOO", Value: "bar"}},
		{"FOO=a=b", buildconfig.EnvVar{Name: "FOO", Value: "a=b"}},
		{"EMPTY=", buildconfig.EnvVar{Name: "EMPTY"}},
		{"SECURE TOKEN=s3cr3t", buildconfig.EnvVar{Name: "TOKEN", Value: "s3cr3t", Secret: true}},
		{"SECURE API_KEY = abc", buildconfig.EnvVar{Name: "API_KEY", Value: "abc", Secret: true}},
	}

	for _, tt := range tests {
		t.Run(tt.entry, func(t *testing.T) {
			cfg := buildconfig.New(map[string]any{"env": []any{tt.entry}})
			vars, err := cfg.Env()
			require.NoError(t, err)
			assert.Equal(t, []buildconfig.EnvVar{tt.want}, vars)
		})
	}
}

func TestEnv_Invalid(t *testing.T) {
	for _, doc := range []string{"env: [NOEQUALS]\n", "env: [\" =x\"]\n", "env: [\"SECURE =x\"]\n"} {
		_, err := parse(t, doc).Env()
		assert.True(t, errors.Is(err, buildconfig.ErrConfiguration), doc)
	}
}

func TestEnv_Files(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ci.env"), []byte("TOKEN=abc\nAPI_URL=\"https://example.test\"\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "override.env"), []byte("TOKEN=def\n"), 0644))
	path := filepath.Join(dir, ".build.yml")
	require.NoError(t, os.WriteFile(path, []byte("env: [PLAIN=1]\nenv_file: [ci.env, override.env]\n"), 0644))

	cfg, err := buildconfig.Load(path)
	require.NoError(t, err)

	vars, err := cfg.Env()
	require.NoError(t, err)
	assert.Equal(t, []buildconfig.EnvVar{
		{Name: "PLAIN", Value: "1"},
		{Name: "API_URL", Value: "https://example.test", Secret: true},
		{Name: "TOKEN", Value: "def", Secret: true},
	}, vars)

	jobs, err := cfg.Jobs()
	require.NoError(t, err)
	jobVars, err := jobs[0].Env()
	require.NoError(t, err)
	assert.Equal(t, vars, jobVars)
}

func TestEnv_MissingFile(t *testing.T) {
	_, err := parse(t, "env_file: /nonexistent/ci.env\n").Env()
	var cerr *buildconfig.ConfigurationError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, buildconfig.KeyEnvFile, cerr.Option)
}

func TestJobs(t *testing.T) {
	cfg := parse(t, `language: php
php: "5.3.8"
jobs:
  - php: "5.4"
  - php: "5.5"
    composer_args: --dev
`)
	jobs, err := cfg.Jobs()
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	for i, want := range []string{"5.4", "5.5"} {
		v, _ := jobs[i].Get("php")
		assert.Equal(t, want, v)
		assert.Equal(t, "php", jobs[i].Language())
		_, hasJobs := jobs[i].Get("jobs")
		assert.False(t, hasJobs)
	}
	_, ok := jobs[0].Get("composer_args")
	assert.False(t, ok)
}

func TestJobs_IncludeForm(t *testing.T) {
	jobs, err := parse(t, "jobs:\n  include:\n    - language: php\n").Jobs()
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "php", jobs[0].Language())
}

func TestJobs_NoMatrix(t *testing.T) {
	cfg := parse(t, "language: php\n")
	jobs, err := cfg.Jobs()
	require.NoError(t, err)
	assert.Equal(t, []*buildconfig.Config{cfg}, jobs)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".build.yml")
	require.NoError(t, os.WriteFile(path, []byte("language: objective-c\n"), 0644))

	cfg, err := buildconfig.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "objective-c", cfg.Language())

	_, err = buildconfig.Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}
