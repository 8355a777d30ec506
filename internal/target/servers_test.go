package target

import (
	"strings"
	"testing"

	"github.com/mark3labs/swagger2client/internal/spec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRewritePlaceholders(t *testing.T) {
	got := RewritePlaceholders("https://{region}.example.com/{base_path}/x", func(n string) string {
		return "<" + CamelCase(n) + ">"
	})
	assert.Equal(t, "https://<region>.example.com/<basePath>/x", got)
	assert.Equal(t, "no/placeholders", RewritePlaceholders("no/placeholders", strings.ToUpper))
}

func TestTrailingAndLeadingSlash(t *testing.T) {
	assert.Equal(t, "https://api.example.com/", WithTrailingSlash("https://api.example.com"))
	assert.Equal(t, "https://api.example.com/", WithTrailingSlash("https://api.example.com/"))
	assert.Equal(t, "/", WithTrailingSlash(""))
	assert.Equal(t, "pets/{id}", StripLeadingSlash("/pets/{id}"))
	assert.Equal(t, "pets", StripLeadingSlash("//pets"))
	assert.Equal(t, "pets", StripLeadingSlash("pets"))
}

func TestBuildServers(t *testing.T) {
	servers := []spec.Server{
		{URL: "https://{region}.example.com/{base_path}", Variables: []spec.ServerVariable{
			{Name: "region", Default: "eu"},
			{Name: "base_path", Default: "v1"},
		}},
		{URL: "https://sandbox.example.com", Description: "Sandbox server"},
	}
	got := BuildServers(servers, WithTrailingSlash, CamelCase)
	require.Len(t, got, 2)

	assert.Equal(t, "https://{region}.example.com/{base_path}/", got[0].URL)
	assert.Equal(t, "default0", got[0].Description)
	assert.Equal(t, []string{"region", "basePath"}, got[0].Variables)
	assert.Equal(t, []Replacement{
		{Key: "{region}", Value: "region", Default: "eu"},
		{Key: "{base_path}", Value: "basePath", Default: "v1"},
	}, got[0].Replacements)

	assert.Equal(t, "sandboxServer", got[1].Description)
	assert.Empty(t, got[1].Variables)
	assert.NotNil(t, got[1].Variables)
}

func TestBuildServersEmpty(t *testing.T) {
	got := BuildServers(nil, WithTrailingSlash, CamelCase)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
