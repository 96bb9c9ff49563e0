// l10nmerge: merges per-package LocalStrings*.properties bundles into one
// file per language, and splits them back.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/minios-linux/l10nmerge/config"
	"github.com/minios-linux/l10nmerge/export"
	"github.com/minios-linux/l10nmerge/i18n"
	"github.com/minios-linux/l10nmerge/importer"
	"github.com/minios-linux/l10nmerge/langmeta"
	"github.com/minios-linux/l10nmerge/lockfile"
	"github.com/minios-linux/l10nmerge/merge"
	"github.com/minios-linux/l10nmerge/propfile"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
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
	rootDir    string
	configPath string
)

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "l10nmerge",
		Short: i18n.T("Merge per-package properties bundles into per-language files"),
		Long: `l10nmerge collects LocalStrings*.properties files from a source tree and
merges them into one file per language. Every key is prefixed with the
package it came from, so the consolidated files can be split back.

Commands:
  status   Show languages, key counts and changes since the last export
  export   Write consolidated per-language files
  import   Split consolidated files back into the packages

Settings are read from .l10nmerge.yaml in the project root when present.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&rootDir, "root", ".", i18n.T("Project root directory"))
	root.PersistentFlags().StringVar(&configPath, "config", "", i18n.T("Config file (default: <root>/.l10nmerge.yaml)"))

	root.AddCommand(
		newStatusCmd(),
		newExportCmd(),
		newImportCmd(),
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

// addLangFlag registers the --lang filter shared by export and import.
func addLangFlag(fs *pflag.FlagSet, langs *[]string) {
	fs.StringSliceVar(langs, "lang", nil, i18n.T("Languages to process (comma-separated, e.g. fr,pt_BR,default)"))
}

// ---------------------------------------------------------------------------
// version
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: i18n.T("Show version information"),
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "l10nmerge version %s\n", version)
			fmt.Fprintf(out, "  commit:    %s\n", commit)
			fmt.Fprintf(out, "  built:     %s\n", date)
		},
	}
}

// ---------------------------------------------------------------------------
// Shared helpers
// ---------------------------------------------------------------------------

func loadConfig(langs []string) (*config.Config, error) {
	cfg, err := config.Load(rootDir, configPath)
	if err != nil {
		return nil, err
	}
	if len(langs) > 0 {
		cfg.Languages = langs
	}
	for _, l := range cfg.Languages {
		if l = strings.TrimSpace(l); l != config.DefaultLanguage && !langmeta.Valid(l) {
			logWarning("%q: %s", l, i18n.T("not a valid language tag"))
		}
	}
	return cfg, nil
}

func collect(cfg *config.Config) *merge.Result {
	c := &merge.Collector{
		Root:      cfg.Root,
		Naming:    cfg.Naming(),
		SkipDirs:  cfg.SkipSet(),
		SkipPaths: []string{cfg.AbsOutputDir()},
		OnLog:     logInfo,
		OnWarn:    logWarning,
		OnError:   logError,
	}
	return c.Collect(cfg.AbsSourceDirs()...)
}

// selectLanguages keeps the languages that pass the config filter.
func selectLanguages(cfg *config.Config, available []string) []string {
	var out []string
	for _, lang := range available {
		if cfg.WantLanguage(lang) {
			out = append(out, lang)
		}
	}
	return out
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

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
	case percent >= 100:
		color = colorGreen
	case percent >= 50:
		color = colorYellow
	}
	return color + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + colorReset +
		fmt.Sprintf(" %3d%%", percent)
}

// langLabel is the code shown in tables; the default bundle has none.
func langLabel(lang string) string {
	if lang == "" {
		return config.DefaultLanguage
	}
	return strings.TrimPrefix(lang, "_")
}

func langColumnWidth(langs []string) int {
	w := len(config.DefaultLanguage)
	for _, l := range langs {
		if n := utf8.RuneCountInString(langLabel(l)); n > w {
			w = n
		}
	}
	return w
}

// langCell renders the flag and code padded to width. Languages without a
// flag get two spaces so columns stay aligned.
func langCell(lang string, width int) string {
	flag := langmeta.Resolve(lang).Flag
	if flag == "" {
		flag = "  "
	}
	label := langLabel(lang)
	return flag + " " + label + strings.Repeat(" ", width-utf8.RuneCountInString(label))
}

// coverage is the share of the default bundle's keys present in values.
func coverage(base, values map[string]string) int {
	if len(base) == 0 {
		return 0
	}
	n := 0
	for k := range base {
		if _, ok := values[k]; ok {
			n++
		}
	}
	return n * 100 / len(base)
}

// ---------------------------------------------------------------------------
// status (read-only)
// ---------------------------------------------------------------------------

func newStatusCmd() *cobra.Command {
	var changed bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: i18n.T("Show languages, key counts and changes since the last export"),
		Long: `Scan the source tree and print, per language: the number of bundle
files, merged keys, coverage of the default bundle and keys changed since
the last export. Does not modify any files.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(changed)
		},
	}

	cmd.Flags().BoolVar(&changed, "changed", false, i18n.T("List keys added or changed since the last export"))

	return cmd
}

func runStatus(listChanged bool) error {
	cfg, err := loadConfig(nil)
	if err != nil {
		return err
	}
	n := cfg.Naming()

	fmt.Fprintf(os.Stderr, "\n%s%s%s\n", colorBlue, i18n.T("Project"), colorReset)
	fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))
	absRoot, _ := filepath.Abs(cfg.Root)
	fmt.Fprintf(os.Stderr, "  Root:       %s\n", absRoot)
	fmt.Fprintf(os.Stderr, "  Bundles:    %s*%s\n", n.Prefix, n.Suffix)
	fmt.Fprintf(os.Stderr, "  Marker:     %s\n", n.EndMarker)
	fmt.Fprintf(os.Stderr, "  Output:     %s\n", cfg.AbsOutputDir())
	fmt.Fprintln(os.Stderr)

	res := collect(cfg)
	langs := selectLanguages(cfg, res.Languages())
	if len(langs) == 0 {
		logWarning("%s", i18n.T("No localization files found"))
		return nil
	}

	lf, err := lockfile.Load(cfg.AbsOutputDir())
	if err != nil {
		return err
	}
	base := res.Translations[""]
	w := langColumnWidth(langs)

	fmt.Fprintf(os.Stderr, "%s%s%s\n", colorBlue, i18n.T("Languages"), colorReset)
	fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))
	for _, lang := range langs {
		values := res.Translations[lang]
		meta := langmeta.Resolve(lang)
		ch := lf.Diff(lang, values)

		files := len(res.Files[lang])
		fmt.Fprintf(os.Stderr, "%s  %-20s %-10s %-12s ",
			langCell(lang, w), meta.Name,
			fmt.Sprintf(i18n.N("%d file", "%d files", files), files),
			fmt.Sprintf(i18n.N("%d key", "%d keys", len(values)), len(values)))
		if base != nil && lang != "" {
			fmt.Fprint(os.Stderr, progressBar(coverage(base, values), 20))
		}
		if ch.Total() > 0 {
			fmt.Fprintf(os.Stderr, "  +%d ~%d -%d", ch.Added, ch.Changed, ch.Removed)
		}
		fmt.Fprintln(os.Stderr)

		if listChanged {
			pending := lf.FilterChanged(lang, values)
			for _, key := range merge.SortedKeys(pending) {
				fmt.Fprintf(os.Stderr, "      %s\n", key)
			}
		}
	}
	fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))

	if len(res.Duplicates) > 0 {
		logWarning(i18n.N("%d duplicate key (the last file read wins)",
			"%d duplicate keys (the last file read wins)", len(res.Duplicates)), len(res.Duplicates))
	}
	if !fileExists(lf.Path()) {
		logInfo("%s", i18n.T("Not exported yet; run 'l10nmerge export'"))
	}
	fmt.Fprintln(os.Stderr)
	return nil
}

// ---------------------------------------------------------------------------
// export
// ---------------------------------------------------------------------------

func newExportCmd() *cobra.Command {
	var (
		langs  []string
		outDir string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: i18n.T("Write consolidated per-language files"),
		Long: `Collect every bundle below the source directories and write one file per
language to the output directory. Keys are prefixed with their package and
values are escaped for MessageFormat. The lock file in the output directory
records what was exported.

Examples:
  l10nmerge export
  l10nmerge export --lang fr,de --out build/i18n`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(langs, outDir, dryRun)
		},
	}

	addLangFlag(cmd.Flags(), &langs)
	cmd.Flags().StringVar(&outDir, "out", "", i18n.T("Output directory (default: output_dir from config)"))
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, i18n.T("Show what would be written without writing"))

	return cmd
}

func runExport(langs []string, outDir string, dryRun bool) error {
	cfg, err := loadConfig(langs)
	if err != nil {
		return err
	}
	if outDir != "" {
		cfg.OutputDir = outDir
	}
	dir := cfg.AbsOutputDir()

	res := collect(cfg)
	selected := selectLanguages(cfg, res.Languages())
	if len(selected) == 0 {
		logWarning("%s", i18n.T("No localization files found"))
		return nil
	}
	if cfg.StrictDuplicates && len(res.Duplicates) > 0 {
		return fmt.Errorf(i18n.N("%d duplicate key found (strict_duplicates is set)",
			"%d duplicate keys found (strict_duplicates is set)", len(res.Duplicates)), len(res.Duplicates))
	}

	lf, err := lockfile.Load(dir)
	if err != nil {
		return err
	}

	wanted := make(merge.Translations, len(selected))
	for _, lang := range selected {
		wanted[lang] = res.Translations[lang]
	}
	paths, err := export.WriteAll(dir, cfg.Naming(), wanted, export.Options{Header: cfg.Header, DryRun: dryRun})
	if err != nil {
		return err
	}

	// WriteAll returns paths in sorted language order, as selected is.
	for i, lang := range selected {
		values := wanted[lang]
		path := paths[i]

		ch := lf.Diff(lang, values)
		logSuccess("%s: %s (+%d ~%d -%d)", path,
			fmt.Sprintf(i18n.N("%d key", "%d keys", len(values)), len(values)),
			ch.Added, ch.Changed, ch.Removed)

		lf.UpdateBatch(lang, values)
		lf.Clean(lang, res.Keys(lang))
	}

	// Languages whose bundles are gone no longer belong in the lock file.
	if len(cfg.Languages) == 0 {
		for _, lang := range lf.Languages() {
			if _, ok := res.Translations[lang]; !ok {
				logWarning("%s: %s", langLabel(lang), i18n.T("no source bundles left, dropped from the lock file"))
				lf.RemoveLanguage(lang)
			}
		}
	}

	if dryRun {
		logInfo("%s", i18n.T("Dry run: nothing written"))
		return nil
	}
	if err := lf.Save(); err != nil {
		return err
	}
	logInfo("%s: %s", lf.Path(), lf.Summary())
	return nil
}

// ---------------------------------------------------------------------------
// import
// ---------------------------------------------------------------------------

func newImportCmd() *cobra.Command {
	var (
		langs  []string
		inDir  string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: i18n.T("Split consolidated files back into the packages"),
		Long: `Read consolidated per-language files from the output directory and store
every key in the package it was exported from. Existing bundle files keep
their comments and key order; missing ones are created.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(langs, inDir, dryRun)
		},
	}

	addLangFlag(cmd.Flags(), &langs)
	cmd.Flags().StringVar(&inDir, "from", "", i18n.T("Directory with consolidated files (default: output_dir from config)"))
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, i18n.T("Show what would change without writing"))

	return cmd
}

func runImport(langs []string, inDir string, dryRun bool) error {
	cfg, err := loadConfig(langs)
	if err != nil {
		return err
	}
	dir := cfg.AbsOutputDir()
	if inDir != "" {
		dir = inDir
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading %s: %w", dir, err)
	}
	naming := cfg.Naming()

	var names []string
	for _, e := range entries {
		if !e.IsDir() && naming.Match(e.Name()) && cfg.WantLanguage(naming.Language(e.Name())) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	if len(names) == 0 {
		logWarning("%s", i18n.T("No localization files found"))
		return nil
	}

	var total importer.Stats
	for _, name := range names {
		path := filepath.Join(dir, name)
		f, err := propfile.ParseFile(path)
		if err != nil {
			logError("loading %s: %v", path, err)
			continue
		}

		st, err := importer.Import(cfg.Root, naming, naming.Language(name), f.Values(),
			importer.Options{DryRun: dryRun, OnWarn: logWarning})
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		logSuccess("%s: %d created, %d updated, %d unchanged, %s", name,
			st.Created, st.Updated, st.Unchanged,
			fmt.Sprintf(i18n.N("%d key changed", "%d keys changed", st.Keys), st.Keys))

		total.Created += st.Created
		total.Updated += st.Updated
		total.Unchanged += st.Unchanged
		total.Keys += st.Keys
		total.Skipped += st.Skipped
	}

	if total.Skipped > 0 {
		logWarning(i18n.N("%d package skipped (directory not found)",
			"%d packages skipped (directory not found)", total.Skipped), total.Skipped)
	}
	if dryRun {
		logInfo("%s", i18n.T("Dry run: nothing written"))
	}
	return nil
}
