package gemini

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewConfigRequiresAPIKey(t *testing.T) {
	os.Unsetenv("GEMINI_API_KEY")

	_, err := NewConfig()
	assert.Error(t, err)
}

func TestNewConfigDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	os.Unsetenv("GEMINI_MODEL")

	config, err := NewConfig()
	assert.NoError(t, err)
	assert.Equal(t, "test-key", config.APIKey)
	assert.Equal(t, "gemini-2.5-flash", config.Model)
}

func TestNewConfigModelOverride(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("GEMINI_MODEL", "gemini-2.5-pro")

	config, err := NewConfig()
	assert.NoError(t, err)
	assert.Equal(t, "gemini-2.5-pro", config.Model)
}

func TestStripFences(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"bare json", `[{"question":"q","answer":"a"}]`, `[{"question":"q","answer":"a"}]`},
		{"json fence", "```json\n[1,2]\n```", "[1,2]"},
		{"plain fence", "```\n{}\n```", "{}"},
		{"surrounding whitespace", "  \n```json\n{\"a\":1}\n```\n ", `{"a":1}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StripFences(tc.in))
		})
	}
}
