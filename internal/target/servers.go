package target

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mark3labs/swagger2client/internal/spec"
)

var placeholderRe = regexp.MustCompile(`\{([^{}]+)\}`)

// RewritePlaceholders replaces every "{name}" in tmpl with render(name).
func RewritePlaceholders(tmpl string, render func(name string) string) string {
	return placeholderRe.ReplaceAllStringFunc(tmpl, func(m string) string {
		return render(m[1 : len(m)-1])
	})
}

// WithTrailingSlash appends "/" unless u already ends with one.
func WithTrailingSlash(u string) string {
	if strings.HasSuffix(u, "/") {
		return u
	}
	return u + "/"
}

// StripLeadingSlash removes the leading path separators of a route path.
func StripLeadingSlash(p string) string {
	return strings.TrimLeft(p, "/")
}

// BuildServers renders servers with the target's url and variable casing.
// Servers without a description are named default<i>. The result is never nil.
func BuildServers(servers []spec.Server, url, variable func(string) string) []Server {
	out := make([]Server, 0, len(servers))
	for i, s := range servers {
		desc := s.Description
		if desc == "" {
			desc = fmt.Sprintf("default%d", i)
		}
		srv := Server{
			URL:          url(s.URL),
			Description:  variable(desc),
			Variables:    []string{},
			Replacements: []Replacement{},
		}
		for _, v := range s.Variables {
			name := variable(v.Name)
			srv.Variables = append(srv.Variables, name)
			srv.Replacements = append(srv.Replacements, Replacement{
				Key:     "{" + v.Name + "}",
				Value:   name,
				Default: v.Default,
			})
		}
		out = append(out, srv)
	}
	return out
}
