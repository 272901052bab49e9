// fluentkit: Fluent localization loader and typed Go bindings generator.
package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/minios-linux/fluentkit/bindgen"
	"github.com/minios-linux/fluentkit/bundle"
	"github.com/minios-linux/fluentkit/config"
	"github.com/minios-linux/fluentkit/i18n"
	"github.com/minios-linux/fluentkit/langmeta"
	"github.com/minios-linux/fluentkit/localization"
	"github.com/minios-linux/fluentkit/lockfile"
	"github.com/minios-linux/fluentkit/logging"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[1;33m"
	colorBlue   = "\033[0;34m"
)

func logInfo(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorBlue+"[INFO]"+colorReset+" "+format+"\n", args...)
}

func logSuccess(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorGreen+"[OK]"+colorReset+" "+format+"\n", args...)
}

func logWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorYellow+"[WARN]"+colorReset+" "+format+"\n", args...)
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorRed+"[ERROR]"+colorReset+" "+format+"\n", args...)
}

// ---------------------------------------------------------------------------
// Global flags
// ---------------------------------------------------------------------------

var (
	rootDir     string
	dirFlag     string
	defaultLang string
	verbose     bool
	logFile     string

	logger = zap.NewNop()
)

func loadSettings() (*config.Settings, error) {
	return config.Load(rootDir, config.Overrides{Dir: dirFlag, DefaultLang: defaultLang})
}

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "fluentkit",
		Short: i18n.T("Fluent localization loader and typed bindings generator"),
		Long: `fluentkit: Fluent localization loader and typed bindings generator.

Localizations live in one directory per language (en_US/, fr_FR/, ...) of
.ftl files. A message "key" in "menu.ftl" is addressed as "menu_key". The
default language must define everything; other languages fall back to it.

Commands:
  generate    Write typed Go accessors for the default language's messages
  validate    Check the default language against the bound messages
  status      Show languages and translation coverage

Configuration is read from flags, TRANSLATION_DIR / DEFAULT_LANG,
and .fluentkit.yaml (or .fluentkit.toml) in the project root.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := logging.New(logging.Options{Verbose: verbose, File: logFile})
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}

	// Global persistent flags, inherited by all subcommands
	root.PersistentFlags().StringVar(&rootDir, "root", ".", "Project root directory")
	root.PersistentFlags().StringVar(&dirFlag, "dir", "", "Localization directory (overrides TRANSLATION_DIR and the project file)")
	root.PersistentFlags().StringVar(&defaultLang, "default-lang", "", "Default language (overrides DEFAULT_LANG and the project file)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")
	root.PersistentFlags().StringVar(&logFile, "log-file", "", "Also write JSON logs to this file (rotated)")

	root.AddCommand(
		newGenerateCmd(),
		newValidateCmd(),
		newStatusCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	i18n.Init("")
	if err := newRootCmd().Execute(); err != nil {
		logError("%v", err)
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// version (display version information)
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: i18n.T("Show version information"),
		Long:  `Display version, commit hash, and build date.`,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "fluentkit version %s\n", version)
			fmt.Fprintf(out, "  commit:    %s\n", commit)
			fmt.Fprintf(out, "  built:     %s\n", date)
		},
	}

	return cmd
}

// ---------------------------------------------------------------------------
// generate (write typed bindings)
// ---------------------------------------------------------------------------

type generateArgs struct {
	output   string
	pkg      string
	typeName string
	force    bool
	check    bool
}

func newGenerateCmd() *cobra.Command {
	var a generateArgs

	cmd := &cobra.Command{
		Use:   "generate",
		Short: i18n.T("Generate typed Go bindings from Fluent resources"),
		Long: `Analyse the default language and write one Go accessor per message.

Outputs come from --output or from the targets of the project file. Unless
--force is given, a target is skipped when the .ftl files it was built from
are unchanged (tracked in .fluentkit.lock). With --check nothing is written
and the command fails when a bindings file is missing or out of date.`,
		Example: `  fluentkit generate --output internal/l10n/localizer_gen.go
  fluentkit generate --check
  //go:generate go run github.com/minios-linux/fluentkit generate --output localizer_gen.go`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(a)
		},
	}

	cmd.Flags().StringVarP(&a.output, "output", "o", "", "Generated file (default: targets of the project file)")
	cmd.Flags().StringVar(&a.pkg, "package", "", "Package name of the generated file (default: output directory name)")
	cmd.Flags().StringVar(&a.typeName, "type", config.DefaultType, "Generated type name")
	cmd.Flags().BoolVarP(&a.force, "force", "f", false, "Regenerate even when sources are unchanged")
	cmd.Flags().BoolVar(&a.check, "check", false, "Fail if any bindings file is out of date, write nothing")

	return cmd
}

func resolveTargets(s *config.Settings, a generateArgs) ([]config.Target, error) {
	if a.output != "" {
		pkg := a.pkg
		if pkg == "" {
			pkg = config.PackageFor(a.output)
		}
		return []config.Target{{Name: filepath.Base(a.output), Output: a.output, Package: pkg, Type: a.typeName}}, nil
	}
	if len(s.Targets) == 0 {
		return nil, fmt.Errorf("no targets: pass --output or add targets to %s", config.FileName)
	}
	return s.Targets, nil
}

func runGenerate(a generateArgs) error {
	s, err := loadSettings()
	if err != nil {
		return err
	}
	targets, err := resolveTargets(s, a)
	if err != nil {
		return err
	}

	sourceDir := bindgen.DefaultDir(s.Dir, s.DefaultLang)
	logger.Debug("analysing default language", zap.String("dir", sourceDir), zap.String("language", s.DefaultLang))

	sources, err := lockfile.Snapshot(sourceDir)
	if err != nil {
		return fmt.Errorf("default language %s: %w", s.DefaultLang, err)
	}
	lf, err := lockfile.Load(s.Root)
	if err != nil {
		return err
	}

	analysis, err := bindgen.AnalyzeDir(s.Dir, s.DefaultLang, bundle.WithLogger(logger))
	if err != nil {
		return err
	}
	source := lockfile.TargetKey(s.Root, sourceDir)

	var (
		keys  []string
		stale []string
	)
	for _, t := range targets {
		out := s.OutputPath(t)
		key := lockfile.TargetKey(s.Root, out)
		keys = append(keys, key)

		files := make(map[string]string, len(sources)+1)
		for name, content := range sources {
			files[name] = content
		}
		files[lockfile.OptionsKey] = fmt.Sprintf("package=%s type=%s source=%s", t.Package, t.Type, source)

		src, err := bindgen.Emit(analysis, bindgen.EmitOptions{Package: t.Package, TypeName: t.Type, Source: source})
		if err != nil {
			return fmt.Errorf("target %s: %w", t.Name, err)
		}

		if a.check {
			existing, err := os.ReadFile(out)
			if err != nil || !bytes.Equal(existing, src) {
				logWarning(i18n.T("Bindings are stale: %s"), key)
				stale = append(stale, key)
			} else {
				logSuccess(i18n.T("Up to date: %s"), key)
			}
			continue
		}

		if !a.force && fileExists(out) && !lf.Stale(key, files) {
			logInfo(i18n.T("Up to date: %s"), key)
			continue
		}

		if err := bindgen.WriteFile(out, src); err != nil {
			return err
		}
		lf.Replace(key, files)
		logSuccess(i18n.T("Generated %s (%s)"), key,
			fmt.Sprintf(i18n.N("%d accessor", "%d accessors", len(analysis.Descriptors)), len(analysis.Descriptors)))
	}

	if a.check {
		if len(stale) > 0 {
			return fmt.Errorf("%d bindings file(s) out of date, run 'fluentkit generate'", len(stale))
		}
		return nil
	}

	// Only prune when the full target set is known.
	if a.output == "" {
		lf.Prune(keys)
	}
	return lf.Save()
}

// ---------------------------------------------------------------------------
// validate (default language completeness)
// ---------------------------------------------------------------------------

func newValidateCmd() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: i18n.T("Check that the default language defines every bound message"),
		Long: `Load every language the way the runtime does and check that the
default language defines each message and term the bindings expect.

Languages that fail to load are reported; with --strict they fail the run.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(strict)
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Fail when a non-default language fails to load")

	return cmd
}

func runValidate(strict bool) error {
	s, err := loadSettings()
	if err != nil {
		return err
	}

	holder, err := localization.Load(s.Dir, s.DefaultLang, localization.WithLogger(logger))
	if err != nil {
		return err
	}

	failures := holder.Failures()
	for _, lang := range sortedKeys(failures) {
		logWarning(i18n.T("Language %s was not loaded: %v"), lang, failures[lang])
	}

	analysis, err := bindgen.AnalyzeDir(s.Dir, s.DefaultLang, bundle.WithLogger(logger))
	if err != nil {
		return err
	}
	ids := analysis.IDs()
	if err := holder.ValidateComplete(ids); err != nil {
		return err
	}
	logSuccess(i18n.T("Default language %s is complete (%d ids)"), s.DefaultLang, len(ids))

	if strict && len(failures) > 0 {
		return fmt.Errorf("%d language(s) failed to load", len(failures))
	}
	return nil
}

// ---------------------------------------------------------------------------
// status (read-only: languages + coverage)
// ---------------------------------------------------------------------------

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: i18n.T("Show localization languages and coverage"),
		Long: `Show the resolved configuration, every language directory and how many
of the default language's messages each one translates. Does not modify any
files.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus()
		},
	}

	return cmd
}

type langStatus struct {
	lang       string
	translated int
	err        error
}

func runStatus() error {
	s, err := loadSettings()
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "\n%sProject%s\n", colorBlue, colorReset)
	fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))
	fmt.Fprintf(os.Stderr, "  Root:       %s\n", s.Root)
	dirNote := ""
	if s.Detected {
		dirNote = " (auto-detected)"
	}
	fmt.Fprintf(os.Stderr, "  Dir:        %s%s\n", s.Dir, dirNote)
	fmt.Fprintf(os.Stderr, "  Default:    %s\n", s.DefaultLang)
	if s.ProjectFile != "" {
		fmt.Fprintf(os.Stderr, "  Config:     %s\n", s.ProjectFile)
	}
	for _, t := range s.Targets {
		fmt.Fprintf(os.Stderr, "  Target:     %s -> %s (package %s, type %s)\n", t.Name, t.Output, t.Package, t.Type)
	}

	if lf, err := lockfile.Load(s.Root); err == nil {
		fmt.Fprintf(os.Stderr, "  Lock file:  %s\n", lf.Summary())
	}
	fmt.Fprintln(os.Stderr)

	holder, err := localization.Load(s.Dir, s.DefaultLang, localization.WithLogger(logger))
	if err != nil {
		return err
	}
	def := holder.DefaultBundle()
	var ids []string
	for _, m := range def.Messages() {
		ids = append(ids, m.ID)
	}
	total := len(ids)

	var rows []langStatus
	failures := holder.Failures()
	for _, lang := range holder.Languages() {
		b, _ := holder.Bundle(lang)
		n := 0
		for _, id := range ids {
			if _, ok := b.Message(id); ok {
				n++
			}
		}
		rows = append(rows, langStatus{lang: lang, translated: n})
	}
	for _, lang := range sortedKeys(failures) {
		rows = append(rows, langStatus{lang: lang, err: failures[lang]})
	}

	langs := make([]string, len(rows))
	for i, r := range rows {
		langs[i] = r.lang
	}
	width := langColumnWidth(langs)

	fmt.Fprintf(os.Stderr, "%sLanguages%s\n", colorBlue, colorReset)
	fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))
	for _, r := range rows {
		meta := langmeta.Resolve(r.lang)
		if r.err != nil {
			fmt.Fprintf(os.Stderr, "  %s  %sfailed%s  %v\n", langCell(r.lang, width), colorRed, colorReset, r.err)
			continue
		}
		percent := 100
		if total > 0 {
			percent = r.translated * 100 / total
		}
		fmt.Fprintf(os.Stderr, "  %s  %s  %d/%d  %s\n",
			langCell(r.lang, width), progressBar(percent, 20), r.translated, total, meta.Name)
	}
	fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))
	fmt.Fprintf(os.Stderr, "%s\n\n", fmt.Sprintf(i18n.N("%d message", "%d messages", total), total))
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

func sortedKeys(m map[string]error) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// progressBar renders percent (clamped to 0..100) as a coloured bar.
func progressBar(percent, width int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := percent * width / 100

	color := colorRed
	switch {
	case percent >= 90:
		color = colorGreen
	case percent >= 50:
		color = colorYellow
	}
	return color + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + colorReset +
		fmt.Sprintf(" %3d%%", percent)
}

func langFlag(lang string) string {
	return langmeta.Resolve(lang).Flag
}

func langColumnWidth(langs []string) int {
	width := 0
	for _, l := range langs {
		if n := utf8.RuneCountInString(l); n > width {
			width = n
		}
	}
	return width
}

// langCell pads lang to width and prefixes its flag when one is known.
func langCell(lang string, width int) string {
	cell := lang + strings.Repeat(" ", max(0, width-utf8.RuneCountInString(lang)))
	if flag := langFlag(lang); flag != "" {
		return flag + " " + cell
	}
	return "   " + cell
}
