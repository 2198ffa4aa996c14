package parser

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"document-qa/internal/models"
)

// pageSeparator joins the text of consecutive pages, sheets and paragraphs.
const pageSeparator = "\n"

// LoadDocument extracts the raw text of the file at filePath. The format is
// chosen by extension, or sniffed from the content when the extension is
// missing or unknown. A missing file yields an error wrapping
// models.ErrDocumentNotFound.
func LoadDocument(filePath string) (string, error) {
	if _, err := os.Stat(filePath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", models.ErrDocumentNotFound, filePath)
		}
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(filePath))
	if !supported(ext) {
		mtype, err := mimetype.DetectFile(filePath)
		if err != nil {
			return "", fmt.Errorf("failed to detect MIME type: %w", err)
		}
		log.Debug().Str("path", filePath).Str("mime", mtype.String()).Msg("Detected document type")
		ext = mtype.Extension()
	}
	log.Debug().Str("path", filePath).Str("format", ext).Msg("Loading document")

	switch ext {
	case ".pdf":
		return parsePDF(filePath)
	case ".docx":
		return parseDOCX(filePath)
	case ".xlsx":
		return parseXLSX(filePath)
	case ".md", ".markdown":
		return parseMarkdown(filePath)
	case ".html", ".htm":
		return parseHTML(filePath)
	case ".txt":
		return parseText(filePath)
	default:
		return "", fmt.Errorf("unsupported file format: %s", ext)
	}
}

func supported(ext string) bool {
	switch ext {
	case ".pdf", ".docx", ".xlsx", ".md", ".markdown", ".html", ".htm", ".txt":
		return true
	}
	return false
}

func parsePDF(filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return "", err
	}

	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	numPages := reader.NumPage()
	pages := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("extract page %d: %w", i, err)
		}
		pages = append(pages, pageText)
	}
	return strings.Join(pages, pageSeparator), nil
}

func parseDOCX(filePath string) (string, error) {
	r, err := docx.ReadDocxFile(filePath)
	if err != nil {
		return "", err
	}
	defer r.Close()

	return extractTextFromXML(r.Editable().GetContent(), "t", "p")
}

func parseXLSX(filePath string) (string, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var sheets []string
	for _, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			log.Warn().Err(err).Str("sheet", sheetName).Msg("Skipping unreadable sheet")
			continue
		}
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("Sheet: %s\n", sheetName))
		for _, row := range rows {
			sb.WriteString(strings.Join(row, "\t"))
			sb.WriteString("\n")
		}
		sheets = append(sheets, sb.String())
	}
	return strings.Join(sheets, pageSeparator), nil
}

func parseMarkdown(filePath string) (string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", err
	}
	return markdownToText(data)
}

func parseHTML(filePath string) (string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", err
	}
	markdown, err := htmltomarkdown.ConvertString(string(data))
	if err != nil {
		return "", fmt.Errorf("convert html: %w", err)
	}
	return markdownToText([]byte(markdown))
}

func parseText(filePath string) (string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// markdownToText renders the text content of a markdown document, dropping
// markup and keeping one line per block.
func markdownToText(source []byte) (string, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	doc := md.Parser().Parse(text.NewReader(source))

	var buf bytes.Buffer
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.Text:
			if entering {
				buf.Write(node.Segment.Value(source))
				if node.SoftLineBreak() || node.HardLineBreak() {
					buf.WriteString("\n")
				}
			}
			return ast.WalkContinue, nil
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			if entering {
				lines := n.Lines()
				for i := 0; i < lines.Len(); i++ {
					seg := lines.At(i)
					buf.Write(seg.Value(source))
				}
			}
			return ast.WalkSkipChildren, nil
		}
		if !entering && n.Type() == ast.TypeBlock && n.Kind() != ast.KindDocument {
			if buf.Len() > 0 && !bytes.HasSuffix(buf.Bytes(), []byte("\n")) {
				buf.WriteString("\n")
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// extractTextFromXML collects the character data of every textTag element and
// ends a line at every closing paragraphTag. Namespaces are ignored.
func extractTextFromXML(xmlContent, textTag, paragraphTag string) (string, error) {
	dec := xml.NewDecoder(strings.NewReader(xmlContent))
	var sb strings.Builder
	inText := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("decode document xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == textTag {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case textTag:
				inText = false
			case paragraphTag:
				sb.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}
	return sb.String(), nil
}
