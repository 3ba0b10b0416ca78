package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yuanying/ebook2pdf/internal/paginate"
	"github.com/yuanying/ebook2pdf/internal/pdf"
)

func readOptionsForTest(t *testing.T, flagArgs ...string) (cliOptions, error) {
	t.Helper()
	cmd := newRootCmd()
	if err := cmd.ParseFlags(flagArgs); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}
	return readCLIOptions(cmd, []string{"./input/book.mobi"})
}

func TestReadCLIOptions_Defaults(t *testing.T) {
	opts, err := readOptionsForTest(t)
	if err != nil {
		t.Fatalf("readCLIOptions() error = %v", err)
	}

	if opts.InputPath != "./input/book.mobi" {
		t.Fatalf("InputPath = %q", opts.InputPath)
	}
	if opts.OutputPath != "" {
		t.Fatalf("OutputPath = %q, want empty (derived by the pipeline)", opts.OutputPath)
	}
	if opts.Quality != pdf.DefaultQuality {
		t.Fatalf("Quality = %d, want %d", opts.Quality, pdf.DefaultQuality)
	}
	if opts.TextOnly {
		t.Fatal("TextOnly = true, want false")
	}
	if opts.Limit != 0 {
		t.Fatalf("Limit = %d, want 0", opts.Limit)
	}
	if opts.Debug {
		t.Fatal("Debug = true, want false")
	}
	if opts.Page.PageWidth != paginate.PageWidth || opts.Page.PageHeight != paginate.PageHeight {
		t.Fatalf("Page = %vx%v, want A4 points", opts.Page.PageWidth, opts.Page.PageHeight)
	}
}

func TestReadCLIOptions_CustomFlags(t *testing.T) {
	opts, err := readOptionsForTest(t,
		"--output", "./out/custom.pdf",
		"--text",
		"--limit", "2048",
		"--title", "Override Title",
		"--quality", "70",
		"--debug",
	)
	if err != nil {
		t.Fatalf("readCLIOptions() error = %v", err)
	}

	if opts.OutputPath != "./out/custom.pdf" {
		t.Fatalf("OutputPath = %q", opts.OutputPath)
	}
	if !opts.TextOnly {
		t.Fatal("TextOnly = false, want true")
	}
	if opts.Limit != 2048 {
		t.Fatalf("Limit = %d", opts.Limit)
	}
	if opts.Title != "Override Title" {
		t.Fatalf("Title = %q", opts.Title)
	}
	if opts.Quality != 70 {
		t.Fatalf("Quality = %d", opts.Quality)
	}
	if !opts.Debug {
		t.Fatal("Debug = false, want true")
	}
}

func TestReadCLIOptions_InvalidQuality(t *testing.T) {
	if _, err := readOptionsForTest(t, "--quality", "0"); err == nil || !strings.Contains(err.Error(), "--quality") {
		t.Fatalf("expected quality validation error, got %v", err)
	}
	if _, err := readOptionsForTest(t, "--quality", "101"); err == nil || !strings.Contains(err.Error(), "--quality") {
		t.Fatalf("expected quality validation error, got %v", err)
	}
}

func TestReadCLIOptions_NegativeLimit(t *testing.T) {
	if _, err := readOptionsForTest(t, "--limit", "-1"); err == nil || !strings.Contains(err.Error(), "--limit") {
		t.Fatalf("expected limit validation error, got %v", err)
	}
}

func TestReadCLIOptions_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
debug: true
output:
  quality: 60
extract:
  limit: 999
fonts:
  regular: serif.ttf
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	opts, err := readOptionsForTest(t, "--config", path)
	if err != nil {
		t.Fatalf("readCLIOptions() error = %v", err)
	}
	if !opts.Debug {
		t.Fatal("Debug should come from the config file")
	}
	if opts.Quality != 60 {
		t.Fatalf("Quality = %d, want 60 from the config file", opts.Quality)
	}
	if opts.Limit != 999 {
		t.Fatalf("Limit = %d, want 999 from the config file", opts.Limit)
	}
	if want := filepath.Join(dir, "serif.ttf"); opts.RegularFont != want {
		t.Fatalf("RegularFont = %q, want %q", opts.RegularFont, want)
	}
}

func TestReadCLIOptions_FlagsOverrideConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("output:\n  quality: 60\n"), 0600); err != nil {
		t.Fatal(err)
	}

	opts, err := readOptionsForTest(t, "--config", path, "--quality", "95")
	if err != nil {
		t.Fatalf("readCLIOptions() error = %v", err)
	}
	if opts.Quality != 95 {
		t.Fatalf("Quality = %d, the flag should override the config file", opts.Quality)
	}
}

func TestReadCLIOptions_MissingConfigFile(t *testing.T) {
	_, err := readOptionsForTest(t, "--config", filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}
