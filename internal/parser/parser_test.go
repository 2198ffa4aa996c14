package parser

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"document-qa/internal/models"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadDocument_Text(t *testing.T) {
	content := "Engine start\n  APU bleed ON\n"
	path := writeFile(t, "manual.txt", content)

	got, err := LoadDocument(path)
	if err != nil {
		t.Fatalf("LoadDocument() error = %v", err)
	}
	if got != content {
		t.Errorf("Expected %q, got %q", content, got)
	}
}

func TestLoadDocument_Markdown(t *testing.T) {
	src := "# Hydraulics\n\nThe A320 has **three** hydraulic systems.\n\n- Green\n- Blue\n\n```\nPTU test\n```\n"
	path := writeFile(t, "systems.MD", src)

	got, err := LoadDocument(path)
	if err != nil {
		t.Fatalf("LoadDocument() error = %v", err)
	}

	for _, want := range []string{"Hydraulics", "The A320 has three hydraulic systems.", "Green", "Blue", "PTU test"} {
		if !strings.Contains(got, want) {
			t.Errorf("Expected output to contain %q, got %q", want, got)
		}
	}
	for _, markup := range []string{"#", "**", "```"} {
		if strings.Contains(got, markup) {
			t.Errorf("Expected markup %q to be stripped, got %q", markup, got)
		}
	}
}

func TestLoadDocument_HTML(t *testing.T) {
	src := `<html><body><h1>Pressurization</h1><p>Cabin altitude is kept below <b>8000 ft</b>.</p><script>alert(1)</script></body></html>`
	path := writeFile(t, "page.html", src)

	got, err := LoadDocument(path)
	if err != nil {
		t.Fatalf("LoadDocument() error = %v", err)
	}
	for _, want := range []string{"Pressurization", "Cabin altitude is kept below 8000 ft."} {
		if !strings.Contains(got, want) {
			t.Errorf("Expected output to contain %q, got %q", want, got)
		}
	}
	if strings.Contains(got, "<") {
		t.Errorf("Expected tags to be stripped, got %q", got)
	}
}

func TestLoadDocument_SniffsUnknownExtension(t *testing.T) {
	content := "Plain training notes without an extension.\n"
	path := writeFile(t, "NOTES", content)

	got, err := LoadDocument(path)
	if err != nil {
		t.Fatalf("LoadDocument() error = %v", err)
	}
	if got != content {
		t.Errorf("Expected %q, got %q", content, got)
	}
}

func TestLoadDocument_Missing(t *testing.T) {
	_, err := LoadDocument(filepath.Join(t.TempDir(), "absent.pdf"))
	if !errors.Is(err, models.ErrDocumentNotFound) {
		t.Errorf("Expected ErrDocumentNotFound, got %v", err)
	}
}

func TestLoadDocument_UnsupportedFormat(t *testing.T) {
	path := writeFile(t, "image.png", "\x89PNG\r\n\x1a\n")

	_, err := LoadDocument(path)
	if err == nil {
		t.Fatal("Expected an error for an unsupported format")
	}
	if errors.Is(err, models.ErrDocumentNotFound) {
		t.Errorf("Unsupported format must not be reported as a missing document: %v", err)
	}
}

func TestExtractTextFromXML(t *testing.T) {
	xmlContent := `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		`<w:p><w:r><w:t>Cabin</w:t></w:r><w:r><w:t xml:space="preserve"> pressure</w:t></w:r></w:p>` +
		`<w:p><w:r><w:rPr><w:b/></w:rPr><w:t>Fuel &amp; oil</w:t></w:r></w:p>` +
		`</w:body></w:document>`

	got, err := extractTextFromXML(xmlContent, "t", "p")
	if err != nil {
		t.Fatalf("extractTextFromXML() error = %v", err)
	}
	want := "Cabin pressure\nFuel & oil\n"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestExtractTextFromXML_Malformed(t *testing.T) {
	if _, err := extractTextFromXML("<w:p><w:t>open", "t", "p"); err == nil {
		t.Error("Expected an error for truncated XML")
	}
}
