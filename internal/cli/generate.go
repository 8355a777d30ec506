package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/mark3labs/swagger2client/internal/emitter"
	genspec "github.com/mark3labs/swagger2client/internal/spec"
	"github.com/mark3labs/swagger2client/internal/target"
	"github.com/mark3labs/swagger2client/internal/targets"
	"github.com/mark3labs/swagger2client/internal/visitor"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/xlab/treeprint"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

const defaultLang = "ecmascript"

// GenerateConfig captures all inputs that influence the generate command after
// merging defaults, config file values, and CLI overrides.
type GenerateConfig struct {
	Input       string
	Langs       []string
	Out         string
	IncludeTags []string
	ExcludeTags []string
	Methods     []string
	Paths       []string
	ConfigPath  string
	LogLevel    string
	Strict      bool
	DryRun      bool
	Force       bool
	Verbose     bool

	logOut io.Writer
}

func defaultGenerateConfig() GenerateConfig {
	return GenerateConfig{Langs: []string{defaultLang}}
}

var generateRunner = runGenerate

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate API clients from an OpenAPI/Swagger document",
		Long: "Generate API clients for one or more languages from an OpenAPI/Swagger document. " +
			"Options can be provided via flags, config files, or defaults.",
		Example: strings.TrimSpace(`  swagger2client generate --input spec.yaml --lang rust --out ./client
  swagger2client generate --input https://example.com/openapi.json --lang js,rs --out ./clients
  swagger2client --config config.yaml generate --force --dry-run`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveGenerateConfig(cmd)
			if err != nil {
				return err
			}
			cfg.logOut = cmd.ErrOrStderr()
			return generateRunner(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("input", "", "Path or URL to the Swagger/OpenAPI document")
	flags.StringSlice("lang", nil, "Target languages to emit (see 'targets'); defaults to "+defaultLang)
	flags.String("out", "", "Output directory (derived from spec when omitted)")
	flags.StringSlice("include-tags", nil, "Only include operations with these tags")
	flags.StringSlice("exclude-tags", nil, "Exclude operations with these tags")
	flags.StringSlice("methods", nil, "Only include operations with these HTTP methods")
	flags.StringSlice("paths", nil, "Only include operations whose path matches one of these regular expressions")
	flags.Bool("strict", false, "Fail when an operation cannot be generated instead of skipping it")
	flags.Bool("dry-run", false, "Preview planned outputs without writing files")
	flags.Bool("force", false, "Overwrite existing output when set")

	return cmd
}

func resolveGenerateConfig(cmd *cobra.Command) (*GenerateConfig, error) {
	cfg := defaultGenerateConfig()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	configPath = strings.TrimSpace(configPath)
	if configPath != "" {
		cfg.ConfigPath = configPath
		if err := applyGenerateConfigFromFile(&cfg, configPath); err != nil {
			return nil, err
		}
	}

	if err := applyGenerateFlagOverrides(cmd.Flags(), &cfg); err != nil {
		return nil, err
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyGenerateFlagOverrides(flags *pflag.FlagSet, cfg *GenerateConfig) error {
	if flags.Changed("input") {
		value, err := flags.GetString("input")
		if err != nil {
			return err
		}
		cfg.Input = strings.TrimSpace(value)
	}
	if flags.Changed("lang") {
		value, err := flags.GetStringSlice("lang")
		if err != nil {
			return err
		}
		cfg.Langs = value
	}
	if flags.Changed("out") {
		value, err := flags.GetString("out")
		if err != nil {
			return err
		}
		cfg.Out = strings.TrimSpace(value)
	}
	for name, dst := range map[string]*[]string{
		"include-tags": &cfg.IncludeTags,
		"exclude-tags": &cfg.ExcludeTags,
		"methods":      &cfg.Methods,
		"paths":        &cfg.Paths,
	} {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetStringSlice(name)
		if err != nil {
			return err
		}
		*dst = value
	}
	for name, dst := range map[string]*bool{
		"strict":  &cfg.Strict,
		"dry-run": &cfg.DryRun,
		"force":   &cfg.Force,
		"verbose": &cfg.Verbose,
	} {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetBool(name)
		if err != nil {
			return err
		}
		*dst = value
	}
	if flags.Changed("log-level") {
		value, err := flags.GetString("log-level")
		if err != nil {
			return err
		}
		cfg.LogLevel = strings.TrimSpace(value)
	}

	return nil
}

func (c *GenerateConfig) normalize() {
	c.Input = strings.TrimSpace(c.Input)
	c.Out = strings.TrimSpace(c.Out)
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.Langs = sanitizeTags(c.Langs)
	c.IncludeTags = sanitizeTags(c.IncludeTags)
	c.ExcludeTags = sanitizeTags(c.ExcludeTags)
	c.Paths = sanitizeTags(c.Paths)
	methods := make([]string, 0, len(c.Methods))
	for _, m := range c.Methods {
		methods = append(methods, strings.ToLower(m))
	}
	c.Methods = sanitizeTags(methods)
}

var knownMethods = map[string]bool{
	"get": true, "post": true, "put": true, "delete": true,
	"patch": true, "head": true, "options": true, "trace": true,
}

func (c *GenerateConfig) validate() error {
	if c.Input == "" {
		return newUsageError("generate: --input is required (set via flag or config file)")
	}

	if len(c.Langs) == 0 {
		c.Langs = []string{defaultLang}
	}
	langs := make([]string, 0, len(c.Langs))
	for _, l := range c.Langs {
		canonical, ok := targets.DefaultRegistry.Resolve(l)
		if !ok {
			return newUsageError(fmt.Sprintf("generate: unsupported --lang %q (allowed: %s)", l, strings.Join(targets.DefaultRegistry.Languages(), ", ")))
		}
		langs = append(langs, canonical)
	}
	c.Langs = sanitizeTags(langs)

	for _, m := range c.Methods {
		if !knownMethods[m] {
			return newUsageError(fmt.Sprintf("generate: unsupported --methods value %q", m))
		}
	}
	for _, p := range c.Paths {
		if _, err := regexp.Compile(p); err != nil {
			return newUsageError(fmt.Sprintf("generate: invalid --paths pattern %q: %v", p, err))
		}
	}

	overlap := intersect(c.IncludeTags, c.ExcludeTags)
	if len(overlap) > 0 {
		return newUsageError(fmt.Sprintf("generate: include/exclude tags overlap: %s", strings.Join(overlap, ", ")))
	}

	if c.LogLevel != "" {
		if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
			return newUsageError(fmt.Sprintf("generate: invalid log level %q", c.LogLevel))
		}
	}

	return nil
}

// langResult is the outcome of generating one language.
type langResult struct {
	lang string
	res  *emitter.Result
}

func runGenerate(ctx context.Context, cfg *GenerateConfig) error {
	logOut := cfg.logOut
	if logOut == nil {
		logOut = os.Stderr
	}
	log, err := newLogger(logOut, cfg.LogLevel, cfg.Verbose)
	if err != nil {
		return err
	}

	// 1) Load the document (file or http/https URL) with validation and conversion
	doc, err := genspec.Load(ctx, cfg.Input)
	if err != nil {
		var se *genspec.SpecError
		if errors.As(err, &se) {
			msg := fmt.Sprintf("spec: %s", se.Message)
			if se.Location != "" {
				msg = fmt.Sprintf("%s\nLocation: %s", msg, se.Location)
			}
			if se.JSONPointer != "" {
				msg = fmt.Sprintf("%s\nPointer: %s", msg, se.JSONPointer)
			}
			return newUsageError(msg)
		}
		return err
	}
	log.Debug().Str("input", doc.Location).Int("version", doc.SourceVersion).Msg("loaded document")

	// 2) Build the internal model (IM) with filters
	methods := make([]genspec.HttpMethod, 0, len(cfg.Methods))
	for _, m := range cfg.Methods {
		methods = append(methods, genspec.HttpMethod(m))
	}
	sm, err := genspec.BuildServiceModel(
		ctx,
		doc,
		genspec.WithIncludeTags(cfg.IncludeTags),
		genspec.WithExcludeTags(cfg.ExcludeTags),
		genspec.WithMethods(methods),
		genspec.WithPathPatterns(cfg.Paths),
	)
	if err != nil {
		return fmt.Errorf("build model: %w", err)
	}
	log.Debug().Int("operations", len(sm.Operations)).Int("schemas", len(sm.Schemas)).Msg("built service model")

	outDir := cfg.Out
	if outDir == "" {
		outDir = deriveOutDir(sm.Title)
		if outDir == "" {
			outDir = "client"
		}
	}

	// 3) Generate every language concurrently
	results := make([]langResult, len(cfg.Langs))
	g, gctx := errgroup.WithContext(ctx)
	for i, lang := range cfg.Langs {
		i, lang := i, lang
		dir := outDir
		if len(cfg.Langs) > 1 {
			dir = filepath.Join(outDir, lang)
		}
		g.Go(func() error {
			res, err := generateLang(gctx, cfg, log, sm, lang, dir)
			if err != nil {
				return err
			}
			results[i] = langResult{lang: lang, res: res}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if cfg.DryRun {
		printPlan(os.Stdout, results)
	}
	return nil
}

func generateLang(ctx context.Context, cfg *GenerateConfig, log zerolog.Logger, sm *genspec.ServiceModel, lang, dir string) (*emitter.Result, error) {
	log = log.With().Str("lang", lang).Logger()
	t, err := targets.DefaultRegistry.Get(lang, targets.Options{Logger: log})
	if err != nil {
		return nil, err
	}
	args, err := visitor.Build(t, sm, visitor.WithLogger(log))
	if err != nil {
		if cfg.Strict || !errors.Is(err, target.ErrConfiguration) {
			return nil, fmt.Errorf("%s: %w", lang, err)
		}
		log.Warn().Msg("some operations were skipped; use --strict to fail instead")
	}
	files, err := t.Generate(args)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", lang, err)
	}
	res, err := emitter.Emit(ctx, files, emitter.Options{
		OutDir: dir,
		Force:  cfg.Force,
		DryRun: cfg.DryRun,
	})
	if err != nil {
		absOut := dir
		if ap, aerr := filepath.Abs(dir); aerr == nil {
			absOut = ap
		}
		return nil, wrapOutputError(err, absOut)
	}
	if !cfg.DryRun {
		log.Info().Str("out", res.OutDir).Int("files", len(res.Planned)).Msg("wrote client")
	}
	return res, nil
}

// printPlan renders each language's planned files as a tree.
func printPlan(w io.Writer, results []langResult) {
	for _, r := range results {
		fmt.Fprintf(w, "Planned writes to %s (%d files):\n", r.res.OutDir, len(r.res.Planned))
		tree := treeprint.NewWithRoot(r.lang)
		dirs := map[string]treeprint.Tree{}
		for _, p := range r.res.Planned {
			dir, file := path.Split(p.RelPath)
			parent := tree
			if dir != "" {
				parent = planBranch(tree, dirs, strings.TrimSuffix(dir, "/"))
			}
			parent.AddMetaNode(fmt.Sprintf("%d bytes", p.Size), file)
		}
		fmt.Fprint(w, tree.String())
	}
}

func planBranch(root treeprint.Tree, dirs map[string]treeprint.Tree, dir string) treeprint.Tree {
	if b, ok := dirs[dir]; ok {
		return b
	}
	parent := root
	name := dir
	if i := strings.LastIndex(dir, "/"); i >= 0 {
		parent = planBranch(root, dirs, dir[:i])
		name = dir[i+1:]
	}
	b := parent.AddBranch(name)
	dirs[dir] = b
	return b
}

func wrapOutputError(err error, outDir string) error {
	// Provide clearer guidance for common FS failures.
	msg := err.Error()
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "permission") || strings.Contains(lower, "read-only") || strings.Contains(lower, "mkdir") || strings.Contains(lower, "rename") || strings.Contains(lower, "output directory") {
		return newUsageError(fmt.Sprintf("output error for %s: %s\nHint: choose a different --out or use --force when appropriate.", outDir, msg))
	}
	return err
}

func deriveOutDir(title string) string {
	t := strings.TrimSpace(title)
	if t == "" {
		return ""
	}
	t = strings.ToLower(t)
	repl := strings.NewReplacer("/", " ", "_", " ", ".", " ", ",", " ", ":", " ")
	t = repl.Replace(t)
	parts := strings.Fields(t)
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "-")
}

func sanitizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	result := make([]string, 0, len(tags))
	for _, tag := range tags {
		trimmed := strings.TrimSpace(tag)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func intersect(a, b []string) []string {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(a))
	for _, item := range a {
		set[item] = struct{}{}
	}
	var result []string
	for _, item := range b {
		if _, ok := set[item]; ok {
			result = append(result, item)
		}
	}
	return result
}

func applyGenerateConfigFromFile(cfg *GenerateConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return newUsageError(fmt.Sprintf("read config file %q: %v", path, err))
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return newUsageError(fmt.Sprintf("parse config file %q: %v", path, err))
	}

	for key, value := range raw {
		var err error
		switch normalizeKey(key) {
		case "input":
			cfg.Input, err = valueAsString(value)
		case "lang", "langs":
			cfg.Langs, err = valueAsStringSlice(value)
		case "out":
			cfg.Out, err = valueAsString(value)
		case "includetags":
			cfg.IncludeTags, err = valueAsStringSlice(value)
		case "excludetags":
			cfg.ExcludeTags, err = valueAsStringSlice(value)
		case "methods":
			cfg.Methods, err = valueAsStringSlice(value)
		case "paths":
			cfg.Paths, err = valueAsStringSlice(value)
		case "loglevel":
			cfg.LogLevel, err = valueAsString(value)
		case "strict":
			cfg.Strict, err = valueAsBool(value)
		case "dryrun":
			cfg.DryRun, err = valueAsBool(value)
		case "force":
			cfg.Force, err = valueAsBool(value)
		case "verbose":
			cfg.Verbose, err = valueAsBool(value)
		default:
			return newUsageError(fmt.Sprintf("config file %q: unknown field %q", path, key))
		}
		if err != nil {
			return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
		}
	}

	return nil
}

func normalizeKey(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	lowered = strings.ReplaceAll(lowered, "-", "")
	lowered = strings.ReplaceAll(lowered, "_", "")
	return lowered
}

func valueAsString(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("expected string, got %T", v)
	}
}

func valueAsStringSlice(v any) ([]string, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		if strings.TrimSpace(val) == "" {
			return nil, nil
		}
		return splitAndTrim(val), nil
	case []any:
		items := make([]string, 0, len(val))
		for idx, elem := range val {
			str, err := valueAsString(elem)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", idx, err)
			}
			if str != "" {
				items = append(items, str)
			}
		}
		return items, nil
	default:
		return nil, fmt.Errorf("expected string or list, got %T", v)
	}
}

func valueAsBool(v any) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		trimmed := strings.ToLower(strings.TrimSpace(val))
		switch trimmed {
		case "true", "t", "1", "yes", "y":
			return true, nil
		case "false", "f", "0", "no", "n":
			return false, nil
		case "":
			return false, nil
		default:
			return false, fmt.Errorf("invalid boolean value %q", val)
		}
	case nil:
		return false, nil
	default:
		return false, fmt.Errorf("expected boolean, got %T", v)
	}
}

func splitAndTrim(csv string) []string {
	parts := strings.Split(csv, ",")
	cleaned := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return cleaned
}
