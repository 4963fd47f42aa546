package main

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hpungsan/docmint/internal/config"
	"github.com/hpungsan/docmint/internal/pdfdoc"
)

// testConfig returns a default config whose rasterizer cannot be found.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.PdftoppmPath = filepath.Join(t.TempDir(), "missing-pdftoppm")
	return cfg
}

// runApp runs the CLI with args and returns what it printed to stdout.
func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	app := newCLIApp(testConfig(t), nil)

	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	err := app.Run(append([]string{"docmint"}, args...))

	w.Close()
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	os.Stdout = oldStdout

	return buf.String(), err
}

// writePDF writes a one-page-per-image PDF and returns its path.
func writePDF(t *testing.T, dir, name string, pages int) string {
	t.Helper()
	var imgs [][]byte
	for range pages {
		var buf bytes.Buffer
		if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 40, 60))); err != nil {
			t.Fatalf("encode png: %v", err)
		}
		imgs = append(imgs, buf.Bytes())
	}
	doc, err := pdfdoc.FromImages(imgs)
	if err != nil {
		t.Fatalf("build pdf: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, doc, 0600); err != nil {
		t.Fatalf("write pdf: %v", err)
	}
	return path
}

func TestParseOpts(t *testing.T) {
	tests := []struct {
		name    string
		input   []string
		want    map[string]any
		wantErr bool
	}{
		{"empty", nil, map[string]any{}, false},
		{"single", []string{"mode=split_all"}, map[string]any{"mode": "split_all"}, false},
		{"value with equals", []string{"label=a=b"}, map[string]any{"label": "a=b"}, false},
		{"last wins", []string{"page=1", "page=3"}, map[string]any{"page": "3"}, false},
		{"empty value", []string{"format="}, map[string]any{"format": ""}, false},
		{"missing equals", []string{"page"}, nil, true},
		{"missing key", []string{"=3"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseOpts(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("opts[%q] = %v, want %v", k, got[k], v)
				}
			}
		})
	}
}

func TestToolsCommand(t *testing.T) {
	out, err := runApp(t, "tools")
	if err != nil {
		t.Fatalf("tools command failed: %v", err)
	}

	var output struct {
		Tools []struct {
			ID        string `json:"id"`
			Available bool   `json:"available"`
		} `json:"tools"`
	}
	if err := json.Unmarshal([]byte(out), &output); err != nil {
		t.Fatalf("failed to parse output: %v\nOutput: %s", err, out)
	}

	available := map[string]bool{}
	for _, tl := range output.Tools {
		available[tl.ID] = tl.Available
	}
	if !available["merge_pdf"] {
		t.Error("expected merge_pdf to be available")
	}
	if ok, listed := available["pdf_to_images"]; !listed || ok {
		t.Errorf("expected pdf_to_images listed as unavailable, got listed=%v available=%v", listed, ok)
	}
}

func TestRunCommand_MergeInArgumentOrder(t *testing.T) {
	dir := t.TempDir()
	a := writePDF(t, dir, "a.pdf", 2)
	b := writePDF(t, dir, "b.pdf", 1)
	target := filepath.Join(dir, "out", "merged.pdf")

	out, err := runApp(t, "run", "--out", target, "merge_pdf", b, a)
	if err != nil {
		t.Fatalf("run command failed: %v", err)
	}

	var output runOutput
	if err := json.Unmarshal([]byte(out), &output); err != nil {
		t.Fatalf("failed to parse output: %v\nOutput: %s", err, out)
	}
	if output.Tool != "merge_pdf" || output.Path != target {
		t.Errorf("unexpected output: %+v", output)
	}
	if output.Summary == nil || len(output.Summary.Pages) != 3 {
		t.Errorf("summary = %+v, want 3 pages", output.Summary)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read result: %v", err)
	}
	if output.Bytes != len(data) {
		t.Errorf("bytes = %d, file has %d", output.Bytes, len(data))
	}
	n, err := pdfdoc.PageCount(data)
	if err != nil {
		t.Fatalf("PageCount: %v", err)
	}
	if n != 3 {
		t.Errorf("merged page count = %d, want 3", n)
	}
}

func TestRunCommand_SplitAllListsEntries(t *testing.T) {
	dir := t.TempDir()
	src := writePDF(t, dir, "doc.pdf", 3)
	target := filepath.Join(dir, "pages.zip")

	out, err := runApp(t, "run", "--opt", "mode=split_all", "--out", target, "split_pdf", src)
	if err != nil {
		t.Fatalf("run command failed: %v", err)
	}

	var output runOutput
	if err := json.Unmarshal([]byte(out), &output); err != nil {
		t.Fatalf("failed to parse output: %v\nOutput: %s", err, out)
	}
	want := []string{"page_1.pdf", "page_2.pdf", "page_3.pdf"}
	if strings.Join(output.Entries, ",") != strings.Join(want, ",") {
		t.Errorf("entries = %v, want %v", output.Entries, want)
	}
	if _, err := os.Stat(target); err != nil {
		t.Errorf("expected archive at %s: %v", target, err)
	}
}

func TestRunCommand_DeclaredKind(t *testing.T) {
	dir := t.TempDir()
	// The declared kind wins over both the extension and the content.
	src := writePDF(t, dir, "doc.bin", 2)
	target := filepath.Join(dir, "page.pdf")

	if _, err := runApp(t, "run", "--kind", "PDF", "--opt", "page=1", "--out", target, "split_pdf", src); err != nil {
		t.Fatalf("run with --kind pdf failed: %v", err)
	}
	if _, err := os.Stat(target); err != nil {
		t.Errorf("expected output at %s: %v", target, err)
	}

	_, err := runApp(t, "run", "--kind", "image", "split_pdf", src)
	if err == nil || !strings.HasPrefix(err.Error(), "[UNSUPPORTED_KIND]") {
		t.Errorf("declared image kind: err = %v, want UNSUPPORTED_KIND", err)
	}
}

func TestRunCommand_DefaultOutputInWorkingDir(t *testing.T) {
	dir := t.TempDir()
	src := writePDF(t, dir, "doc.pdf", 2)
	t.Chdir(dir)

	if _, err := runApp(t, "run", "-o", "page=2", "split_pdf", src); err != nil {
		t.Fatalf("run command failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "page_2.pdf")); err != nil {
		t.Errorf("expected page_2.pdf in working dir: %v", err)
	}
}

func TestRunCommand_Errors(t *testing.T) {
	dir := t.TempDir()
	src := writePDF(t, dir, "doc.pdf", 1)

	tests := []struct {
		name string
		args []string
		code string
	}{
		{"missing files", []string{"run", "merge_pdf"}, "[INVALID_REQUEST]"},
		{"unknown tool", []string{"run", "no_such_tool", src}, "[UNKNOWN_TOOL]"},
		{"missing input", []string{"run", "merge_pdf", filepath.Join(dir, "nope.pdf")}, "[INVALID_REQUEST]"},
		{"malformed opt", []string{"run", "--opt", "page", "split_pdf", src}, "[INVALID_REQUEST]"},
		{"page out of range", []string{"run", "--opt", "page=5", "split_pdf", src}, "[INDEX_OUT_OF_RANGE]"},
		{"invalid option", []string{"run", "--opt", "mode=shred", "split_pdf", src}, "[INVALID_CONFIG]"},
		{"unknown kind", []string{"run", "--kind", "video", "merge_pdf", src}, "[INVALID_REQUEST]"},
		{"too many inputs", []string{"run", "split_pdf", src, src}, "[ARITY_MISMATCH]"},
		{"rasterizer missing", []string{"run", "pdf_to_images", src}, "[DEPENDENCY_UNAVAILABLE]"},
		{"wrong extension", []string{"run", "--out", filepath.Join(dir, "x.zip"), "merge_pdf", src}, "[INVALID_REQUEST]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runApp(t, tt.args...)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.HasPrefix(err.Error(), tt.code) {
				t.Errorf("error = %q, want prefix %s", err.Error(), tt.code)
			}
		})
	}
}
