// Package extract pulls plain text out of uploaded document files.
// Supported formats are PDF, DOCX, and plain text.
package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/LexGuardAI/lexguard-mvp/engine/domain"
)

// FromFile reads path and returns its plain text. The format is chosen
// by file extension. Unknown extensions fail with ErrUnsupportedInput.
func FromFile(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return fromPDF(path)
	case ".docx":
		return fromDOCXFile(path)
	case ".txt", ".md":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("extract: read %s: %w", path, err)
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("extract: %s: unsupported file type: %w", path, domain.ErrUnsupportedInput)
	}
}

func fromPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("extract: open pdf %s: %w", path, err)
	}
	defer f.Close()

	text, err := pdfText(r)
	if err != nil {
		return "", fmt.Errorf("extract: pdf text %s: %w", path, err)
	}
	return text, nil
}

// FromPDF extracts plain text from PDF bytes.
func FromPDF(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("not a pdf: %w", domain.ErrUnsupportedInput)
	}
	text, err := pdfText(r)
	if err != nil {
		return "", fmt.Errorf("pdf text: %w", err)
	}
	return text, nil
}

func pdfText(r *pdf.Reader) (string, error) {
	plain, err := r.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func fromDOCXFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("extract: read %s: %w", path, err)
	}
	text, err := FromDOCX(data)
	if err != nil {
		return "", fmt.Errorf("extract: %s: %w", path, err)
	}
	return text, nil
}

// FromDOCX extracts paragraph text from DOCX bytes.
func FromDOCX(data []byte) (string, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("not a docx archive: %w", domain.ErrUnsupportedInput)
	}
	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return "", fmt.Errorf("open document.xml: %w", err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("read document.xml: %w", err)
		}
		return parseDocumentXML(content), nil
	}
	return "", fmt.Errorf("no document.xml in archive: %w", domain.ErrUnsupportedInput)
}

// CollapseWhitespace folds runs of whitespace into single spaces while
// keeping paragraph breaks, so chunking sees stable boundaries.
func CollapseWhitespace(s string) string {
	paragraphs := strings.Split(s, "\n")
	out := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		p = strings.Join(strings.Fields(p), " ")
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "\n")
}
