package main

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/minios-linux/l10nmerge/config"
	"github.com/minios-linux/l10nmerge/lockfile"
	"github.com/minios-linux/l10nmerge/propfile"
)

func TestProgressBar(t *testing.T) {
	tests := []struct {
		name    string
		percent int
		width   int
		want    string
	}{
		{
			name:    "clamps below zero",
			percent: -10,
			width:   4,
			want:    colorRed + "░░░░" + colorReset + "   0%",
		},
		{
			name:    "mid range uses yellow",
			percent: 50,
			width:   4,
			want:    colorYellow + "██░░" + colorReset + "  50%",
		},
		{
			name:    "clamps above hundred",
			percent: 120,
			width:   4,
			want:    colorGreen + "████" + colorReset + " 100%",
		},
	}

	for _, tc := range tests {
		if got := progressBar(tc.percent, tc.width); got != tc.want {
			t.Fatalf("%s: progressBar() = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestLangHelpers(t *testing.T) {
	if got := langLabel(""); got != config.DefaultLanguage {
		t.Fatalf("langLabel(\"\") = %q, want %q", got, config.DefaultLanguage)
	}
	if got := langColumnWidth([]string{"", "_pt_BR", "_zh_Hant"}); got != len("zh_Hant") {
		t.Fatalf("langColumnWidth() = %d, want %d", got, len("zh_Hant"))
	}

	cell := langCell("_pt_BR", 7)
	if !strings.Contains(cell, "🇧🇷") || !strings.HasSuffix(cell, "pt_BR  ") {
		t.Fatalf("langCell() = %q, want flag and padded code", cell)
	}
	if cell := langCell("_fr", 3); cell != "   fr " {
		t.Fatalf("langCell(_fr) = %q, want blank flag", cell)
	}
}

func TestSelectLanguages(t *testing.T) {
	cfg := config.Default(t.TempDir())
	cfg.Languages = []string{"fr", "default"}

	got := selectLanguages(cfg, []string{"", "_de", "_fr"})
	if want := []string{"", "_fr"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("selectLanguages() = %#v, want %#v", got, want)
	}
}

func TestCoverage(t *testing.T) {
	base := map[string]string{"a": "1", "b": "2", "c": "3", "d": "4"}
	if got := coverage(base, map[string]string{"a": "x", "c": "y", "z": "extra"}); got != 50 {
		t.Fatalf("coverage() = %d, want 50", got)
	}
	if got := coverage(nil, base); got != 0 {
		t.Fatalf("coverage(empty base) = %d, want 0", got)
	}
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	filePath := filepath.Join(dir, "file.txt")
	if err := os.WriteFile(filePath, []byte("ok"), 0644); err != nil {
		t.Fatalf("os.WriteFile() error: %v", err)
	}

	if !fileExists(filePath) {
		t.Fatalf("fileExists(file) = false, want true")
	}
	if fileExists(dir) {
		t.Fatalf("fileExists(directory) = true, want false")
	}
	if fileExists(filepath.Join(dir, "missing.txt")) {
		t.Fatalf("fileExists(missing) = true, want false")
	}
}

// ---------------------------------------------------------------------------
// Commands
// ---------------------------------------------------------------------------

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(func() {
		rootDir = ""
		configPath = ""
	})

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(out, "l10nmerge version "+version) {
		t.Fatalf("version output = %q", out)
	}
}

func TestExportThenImport(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "org", "a", "LocalStrings.properties"), "greet=Hello\nbye=Goodbye\n")
	writeFile(t, filepath.Join(root, "org", "a", "LocalStrings_fr.properties"), "# French\ngreet=Bonjour\n")
	writeFile(t, filepath.Join(root, "org", "b", "LocalStrings_fr.properties"), "greet=Salut\n")

	if _, err := execute(t, "--root", root, "export"); err != nil {
		t.Fatalf("export: %v", err)
	}

	outDir := filepath.Join(root, config.DefaultOutputDir)
	fr := filepath.Join(outDir, "LocalStrings_fr.properties")
	if got, want := readFile(t, fr), "org.a.zzz.greet=Bonjour\norg.b.zzz.greet=Salut\n"; got != want {
		t.Fatalf("exported fr = %q, want %q", got, want)
	}
	if !fileExists(filepath.Join(outDir, "LocalStrings.properties")) {
		t.Fatal("default bundle not exported")
	}
	if !fileExists(filepath.Join(outDir, "l10nmerge.lock")) {
		t.Fatal("lock file not written")
	}

	// A second export must not pick up its own output.
	if _, err := execute(t, "--root", root, "export"); err != nil {
		t.Fatalf("second export: %v", err)
	}
	if got := readFile(t, fr); strings.Contains(got, "output") {
		t.Fatalf("export merged its own output: %q", got)
	}

	writeFile(t, fr, "org.a.zzz.greet=Bonjour!\norg.a.zzz.bye=Au revoir\norg.b.zzz.greet=Salut\n")
	if _, err := execute(t, "--root", root, "import", "--lang", "fr"); err != nil {
		t.Fatalf("import: %v", err)
	}

	f, err := propfile.ParseFile(filepath.Join(root, "org", "a", "LocalStrings_fr.properties"))
	if err != nil {
		t.Fatalf("parse imported file: %v", err)
	}
	if got := f.Values(); !reflect.DeepEqual(got, map[string]string{"greet": "Bonjour!", "bye": "Au revoir"}) {
		t.Fatalf("imported values = %#v", got)
	}
	if got := readFile(t, filepath.Join(root, "org", "a", "LocalStrings_fr.properties")); !strings.HasPrefix(got, "# French\n") {
		t.Fatalf("import dropped the comment: %q", got)
	}
	if got := readFile(t, filepath.Join(root, "org", "a", "LocalStrings.properties")); got != "greet=Hello\nbye=Goodbye\n" {
		t.Fatalf("--lang fr touched the default bundle: %q", got)
	}
}

func TestExportDryRunWritesNothing(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "pkg", "LocalStrings_de.properties"), "k=v\n")

	if _, err := execute(t, "--root", root, "export", "--dry-run"); err != nil {
		t.Fatalf("export --dry-run: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, config.DefaultOutputDir)); !os.IsNotExist(err) {
		t.Fatalf("dry run created the output dir: %v", err)
	}
}

func TestExportStrictDuplicates(t *testing.T) {
	root := t.TempDir()
	// "a/b" and "a.b" both prefix keys with "a.b.zzz.".
	writeFile(t, filepath.Join(root, "a", "b", "LocalStrings.properties"), "k=one\n")
	writeFile(t, filepath.Join(root, "a.b", "LocalStrings.properties"), "k=two\n")

	if _, err := execute(t, "--root", root, "export", "--dry-run"); err != nil {
		t.Fatalf("non-strict export failed: %v", err)
	}

	writeFile(t, filepath.Join(root, config.FileName), "strict_duplicates: true\n")
	if _, err := execute(t, "--root", root, "export"); err == nil {
		t.Fatal("strict export succeeded, want error")
	}
	if fileExists(filepath.Join(root, config.DefaultOutputDir, "LocalStrings.properties")) {
		t.Fatal("strict export wrote output")
	}
}

func TestStatusCommand(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "pkg", "LocalStrings.properties"), "k=v\n")

	if _, err := execute(t, "--root", root, "status", "--changed"); err != nil {
		t.Fatalf("status: %v", err)
	}
	if _, err := execute(t, "--root", root, "--config", filepath.Join(root, "missing.yaml"), "status"); err == nil {
		t.Fatal("status with a missing --config succeeded, want error")
	}
}

func TestExportDropsRemovedLanguages(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "pkg", "LocalStrings_fr.properties"), "k=v\n")
	de := filepath.Join(root, "pkg", "LocalStrings_de.properties")
	writeFile(t, de, "k=v\n")

	if _, err := execute(t, "--root", root, "export"); err != nil {
		t.Fatalf("export: %v", err)
	}
	if err := os.Remove(de); err != nil {
		t.Fatal(err)
	}
	if _, err := execute(t, "--root", root, "export"); err != nil {
		t.Fatalf("second export: %v", err)
	}

	lf, err := lockfile.Load(filepath.Join(root, config.DefaultOutputDir))
	if err != nil {
		t.Fatalf("lockfile.Load: %v", err)
	}
	if got := lf.Languages(); !reflect.DeepEqual(got, []string{"_fr"}) {
		t.Fatalf("lock languages = %v, want [_fr]", got)
	}
}

func TestExportImportWithoutEditsKeepsSources(t *testing.T) {
	root := t.TempDir()
	sources := map[string]string{
		filepath.Join(root, "pkg", "LocalStrings.properties"): "# Paths\n" +
			"path=C:\\\\dir\\\\file\n" +
			"quote=It's [{0}] done\n" +
			"multi=line1\\nline2\n" +
			"lead=\\ indented\n",
		filepath.Join(root, "pkg", "LocalStrings_fr.properties"): "quote=C'est [{0}] fini\n",
	}
	for path, content := range sources {
		writeFile(t, path, content)
	}

	if _, err := execute(t, "--root", root, "export"); err != nil {
		t.Fatalf("export: %v", err)
	}
	if _, err := execute(t, "--root", root, "import"); err != nil {
		t.Fatalf("import: %v", err)
	}

	for path, want := range sources {
		if got := readFile(t, path); got != want {
			t.Fatalf("%s changed by import:\n got %q\nwant %q", path, got, want)
		}
	}
}

func TestExportLanguageFilter(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"LocalStrings.properties", "LocalStrings_fr.properties", "LocalStrings_de.properties"} {
		writeFile(t, filepath.Join(root, "pkg", name), "k=v\n")
	}

	if _, err := execute(t, "--root", root, "export", "--lang", "fr,default,not a tag!"); err != nil {
		t.Fatalf("export: %v", err)
	}

	outDir := filepath.Join(root, config.DefaultOutputDir)
	for name, want := range map[string]bool{
		"LocalStrings.properties":    true,
		"LocalStrings_fr.properties": true,
		"LocalStrings_de.properties": false,
	} {
		if got := fileExists(filepath.Join(outDir, name)); got != want {
			t.Fatalf("%s exported = %v, want %v", name, got, want)
		}
	}
}
