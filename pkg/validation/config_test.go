package validation_test

import (
	"testing"

	"github.com/poltergeist/buildscript/pkg/buildconfig"
	"github.com/poltergeist/buildscript/pkg/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidator_Validate(t *testing.T) {
	validator := validation.NewConfigValidator(nil)

	tests := []struct {
		name          string
		doc           string
		expectInvalid bool
		field         string
		level         validation.ValidationLevel
	}{
		{
			name: "valid php config",
			doc:  "language: php\nphp: \"7.4\"\ncomposer_args: --dev\n",
		},
		{
			name:          "unknown language",
			doc:           "language: cobol\n",
			expectInvalid: true,
			field:         "language",
			level:         validation.ValidationLevelError,
		},
		{
			name:  "unused option",
			doc:   "language: php\nxcode_scheme: App\n",
			field: "xcode_scheme",
			level: validation.ValidationLevelWarning,
		},
		{
			name:          "stage command mapping",
			doc:           "language: php\nscript: {run: phpunit}\n",
			expectInvalid: true,
			field:         "script",
			level:         validation.ValidationLevelError,
		},
		{
			name:          "stage command list item",
			doc:           "language: php\ninstall:\n  - composer install\n  - {bad: true}\n",
			expectInvalid: true,
			field:         "install[1]",
			level:         validation.ValidationLevelError,
		},
		{
			name:  "non-replaceable stage",
			doc:   "language: php\nsetup: echo hi\n",
			field: "setup",
			level: validation.ValidationLevelWarning,
		},
		{
			name:          "option with wrong shape",
			doc:           "language: php\nphp: [5.4, 5.5]\n",
			expectInvalid: true,
			level:         validation.ValidationLevelError,
		},
		{
			name:          "bad env entry",
			doc:           "language: php\nenv: [NOEQUALS]\n",
			expectInvalid: true,
			field:         "env[0]",
			level:         validation.ValidationLevelError,
		},
		{
			name:  "unknown cache kind",
			doc:   "language: php\ncache: [pip]\n",
			field: "cache",
			level: validation.ValidationLevelWarning,
		},
		{
			name:  "objective-c without scheme",
			doc:   "language: objective-c\n",
			field: "xcode_scheme",
			level: validation.ValidationLevelWarning,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := buildconfig.Parse([]byte(tt.doc))
			require.NoError(t, err)

			result := validator.Validate(cfg)
			assert.Equal(t, !tt.expectInvalid, result.Valid, "findings: %v", result.Errors)

			if tt.level == "" {
				assert.Empty(t, result.Errors)
				return
			}
			found := result.Filter(tt.level)
			require.NotEmpty(t, found, "findings: %v", result.Errors)
			if tt.field != "" {
				var fields []string
				for _, f := range found {
					fields = append(fields, f.Field)
				}
				assert.Contains(t, fields, tt.field)
			}
		})
	}
}

func TestConfigValidator_ValidatesEveryJob(t *testing.T) {
	cfg, err := buildconfig.Parse([]byte("language: php\njobs:\n  - php: \"5.4\"\n  - language: cobol\n"))
	require.NoError(t, err)

	result := validation.NewConfigValidator(nil).Validate(cfg)
	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "2", result.Errors[0].Job)
	assert.Contains(t, result.Errors[0].Error(), "[error] job 2, language:")
}

func TestConfigValidator_MalformedJobs(t *testing.T) {
	cfg, err := buildconfig.Parse([]byte("jobs: 3\n"))
	require.NoError(t, err)

	result := validation.NewConfigValidator(nil).Validate(cfg)
	assert.False(t, result.Valid)
}
