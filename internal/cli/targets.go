package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/bndr/gotabulate"
	"github.com/mark3labs/swagger2client/internal/target"
	"github.com/mark3labs/swagger2client/internal/targets"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func newTargetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "targets",
		Short: "List the languages clients can be generated for",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printTargets(cmd.OutOrStdout(), targets.DefaultRegistry)
		},
	}
}

// printTargets renders one row per registered language with its aliases and
// the files an empty client produces.
func printTargets(w io.Writer, reg *targets.Registry) error {
	var rows [][]any
	for _, lang := range reg.Languages() {
		outputs, err := targetOutputs(reg, lang)
		if err != nil {
			return err
		}
		rows = append(rows, []any{lang, strings.Join(reg.Aliases(lang), ", "), strings.Join(outputs, ", ")})
	}
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "no targets registered")
		return err
	}
	t := gotabulate.Create(rows)
	t.SetHeaders([]string{"Language", "Aliases", "Outputs"})
	t.SetAlign("left")
	_, err := fmt.Fprint(w, t.Render("grid"))
	return err
}

func targetOutputs(reg *targets.Registry, lang string) ([]string, error) {
	t, err := reg.Get(lang, targets.Options{Logger: zerolog.Nop()})
	if err != nil {
		return nil, err
	}
	files, err := t.Generate(&target.GenerateArguments{Target: t.Name()})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", lang, err)
	}
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
