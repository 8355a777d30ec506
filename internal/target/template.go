package target

import (
	"bytes"
	"fmt"
	"io/fs"
	"path"
	"strconv"
	"strings"
	"text/template"
)

// FuncMap holds the helpers available to every target template.
var FuncMap = template.FuncMap{
	"join":     strings.Join,
	"indent":   indent,
	"quote":    strconv.Quote,
	"lower":    strings.ToLower,
	"upper":    strings.ToUpper,
	"receiver": receiver,
}

// indent prefixes every non-empty line of s with n spaces.
func indent(n int, s string) string {
	pad := strings.Repeat(" ", n)
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = pad + l
		}
	}
	return strings.Join(lines, "\n")
}

// receiver prepends recv to a rendered parameter list: "(a, b)" becomes
// "(recv, a, b)".
func receiver(recv, params string) string {
	inner := strings.TrimSuffix(strings.TrimPrefix(params, "("), ")")
	if strings.TrimSpace(inner) == "" {
		return "(" + recv + ")"
	}
	return "(" + recv + ", " + inner + ")"
}

// ParseTemplate parses the template stored at name in fsys.
func ParseTemplate(fsys fs.FS, name string) (*template.Template, error) {
	t, err := template.New(path.Base(name)).Funcs(FuncMap).ParseFS(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}
	return t, nil
}

// Render executes t with data.
func Render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s: %w", t.Name(), err)
	}
	return buf.String(), nil
}
