package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestHTMLDocumentStructure(t *testing.T) {
	in := "# Title\n\n## Section\n\nFirst paragraph.\n\nSecond paragraph.\n\n---\n\n### Sub"
	doc := HTMLDocument(in, "Product Report")

	if !strings.HasPrefix(doc, "<!DOCTYPE html>") {
		t.Error("expected a standalone HTML document")
	}
	for _, want := range []string{"<h1", "<h2", "<h3", "<hr", "<p>First paragraph.</p>", "<p>Second paragraph.</p>", "<title>Product Report</title>"} {
		if !strings.Contains(doc, want) {
			t.Errorf("expected document to contain %q", want)
		}
	}
}

func TestHTMLDocumentEscapesTitle(t *testing.T) {
	doc := HTMLDocument("body", `<script>alert(1)</script>`)
	if strings.Contains(doc, "<title><script>") {
		t.Error("title must be escaped")
	}
}

func TestHTMLDocumentPure(t *testing.T) {
	in := "# Same\n\ninput"
	if HTMLDocument(in, "t") != HTMLDocument(in, "t") {
		t.Error("expected identical output for identical input")
	}
}

func TestWriteMarkdownVerbatim(t *testing.T) {
	content := "# Report\n\nwith **exact** bytes\n"
	path := filepath.Join(t.TempDir(), "report.md")
	if err := WriteMarkdown(path, content); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	if string(got) != content {
		t.Errorf("export must be verbatim; got %q", got)
	}
}

func TestFilename(t *testing.T) {
	now := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	if got := Filename("product-report", ".md", now); got != "product-report-2026-08-31.md" {
		t.Errorf("unexpected filename %q", got)
	}
	if got := Filename("product-report", "html", now); got != "product-report-2026-08-31.html" {
		t.Errorf("unexpected filename %q", got)
	}
}
