package targets

import (
	"github.com/mark3labs/swagger2client/internal/target"
	"github.com/mark3labs/swagger2client/internal/target/ecmascript"
	"github.com/mark3labs/swagger2client/internal/target/rust"
)

// DefaultRegistry is the global registry with the built-in targets.
var DefaultRegistry = NewRegistry()

func init() {
	DefaultRegistry.Register(ecmascript.Name, func(opts Options) (target.Target, error) {
		return ecmascript.New(opts.Logger)
	}, "js", "javascript")

	DefaultRegistry.Register(rust.Name, func(opts Options) (target.Target, error) {
		return rust.New(opts.Logger)
	}, "rs")
}
