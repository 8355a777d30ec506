package targets

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/mark3labs/swagger2client/internal/target"
	"github.com/rs/zerolog"
)

// Options are passed to every target factory.
type Options struct {
	Logger zerolog.Logger
}

// Factory constructs a target. Construction fails when the target's
// embedded resources cannot be loaded.
type Factory func(opts Options) (target.Target, error)

// Registry manages available targets by language name.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	aliases   map[string]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		aliases:   make(map[string]string),
	}
}

// Register adds a target factory under language; aliases resolve to the
// same factory.
func (r *Registry) Register(language string, factory Factory, aliases ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	language = normalize(language)
	r.factories[language] = factory
	for _, a := range aliases {
		r.aliases[normalize(a)] = language
	}
}

// Resolve returns the canonical language name for a name or alias.
func (r *Registry) Resolve(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name = normalize(name)
	if _, ok := r.factories[name]; ok {
		return name, true
	}
	if canonical, ok := r.aliases[name]; ok {
		return canonical, true
	}
	return "", false
}

// Get constructs the target for a language name or alias.
func (r *Registry) Get(language string, opts Options) (target.Target, error) {
	canonical, ok := r.Resolve(language)
	if !ok {
		return nil, fmt.Errorf("unsupported language: %s", language)
	}
	r.mu.RLock()
	factory := r.factories[canonical]
	r.mu.RUnlock()

	t, err := factory(opts)
	if err != nil {
		return nil, fmt.Errorf("init %s target: %w", canonical, err)
	}
	return t, nil
}

// Languages returns the canonical language names, sorted.
func (r *Registry) Languages() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	languages := make([]string, 0, len(r.factories))
	for lang := range r.factories {
		languages = append(languages, lang)
	}
	sort.Strings(languages)
	return languages
}

// Aliases returns the aliases registered for a canonical language, sorted.
func (r *Registry) Aliases(language string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	language = normalize(language)
	var out []string
	for alias, canonical := range r.aliases {
		if canonical == language {
			out = append(out, alias)
		}
	}
	sort.Strings(out)
	return out
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
