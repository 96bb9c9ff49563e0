package export

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/minios-linux/l10nmerge/merge"
	"github.com/minios-linux/l10nmerge/propfile"
)

func TestRender(t *testing.T) {
	values := map[string]string{
		"b.zzz.quote": "It's [{0}]",
		"a.zzz.multi": "line1\nline2",
		"a.zzz.lead":  " space",
	}
	got := string(Render(values, "Licensed to the ASF.\n\nSecond paragraph."))
	want := "# Licensed to the ASF.\n" +
		"#\n" +
		"# Second paragraph.\n" +
		"\n" +
		"a.zzz.lead=\\ space\n" +
		"a.zzz.multi=line1\\n\\\nline2\n" +
		"b.zzz.quote=It''s [{0}]\n"
	if got != want {
		t.Fatalf("Render =\n%q\nwant\n%q", got, want)
	}
}

func TestRenderNoHeader(t *testing.T) {
	got := string(Render(map[string]string{"k": "v"}, ""))
	if got != "k=v\n" {
		t.Fatalf("Render = %q", got)
	}
}

func TestRenderedFileReloads(t *testing.T) {
	values := map[string]string{
		"pkg.zzz.multi":  "first\nsecond",
		"pkg.zzz.indent": "a\n  b",
		"pkg.zzz.plain":  "Hello",
	}
	f, err := propfile.Parse(Render(values, "header"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !reflect.DeepEqual(f.Values(), values) {
		t.Fatalf("reloaded = %#v, want %#v", f.Values(), values)
	}
}

func TestWriteAll(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	tr := merge.Translations{
		"":    {"a.zzz.k": "Hello"},
		"_fr": {"a.zzz.k": "Bonjour"},
	}

	paths, err := WriteAll(dir, merge.DefaultNaming(), tr, Options{})
	if err != nil {
		t.Fatalf("WriteAll: %v", err)
	}
	want := []string{
		filepath.Join(dir, "LocalStrings.properties"),
		filepath.Join(dir, "LocalStrings_fr.properties"),
	}
	if !reflect.DeepEqual(paths, want) {
		t.Fatalf("paths = %v, want %v", paths, want)
	}

	data, err := os.ReadFile(want[1])
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "a.zzz.k=Bonjour\n" {
		t.Fatalf("content = %q", data)
	}
}

func TestWriteDryRun(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	path, err := Write(dir, merge.DefaultNaming(), "_de", map[string]string{"k": "v"}, Options{DryRun: true})
	if err != nil {
		t.Fatal(err)
	}
	if path != filepath.Join(dir, "LocalStrings_de.properties") {
		t.Fatalf("path = %q", path)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("dry run created %s", dir)
	}
}
