// Package extract pulls plain text out of uploaded study documents.
package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrUnsupportedType is returned for file types the extractor cannot handle.
var ErrUnsupportedType = errors.New("unsupported file type")

var supportedTypes = []string{"pdf", "pptx", "docx", "txt", "md"}

// ValidateFileType returns the normalized extension of filename, or
// ErrUnsupportedType.
func ValidateFileType(filename string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	for _, t := range supportedTypes {
		if ext == t {
			return ext, nil
		}
	}
	return "", fmt.Errorf("%w: %s (supported: %s)", ErrUnsupportedType, ext, strings.Join(supportedTypes, ", "))
}

// Text extracts the text content of data according to fileType.
func Text(data []byte, fileType string) (string, error) {
	switch strings.ToLower(fileType) {
	case "pdf":
		return fromPDF(data)
	case "docx":
		return fromDOCX(data)
	case "pptx":
		return fromPPTX(data)
	case "txt", "md":
		return string(data), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, fileType)
	}
}

func fromPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to extract text from PDF: %w", err)
	}

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			slog.Warn("skipping unreadable PDF page", "page", i, "error", err)
			continue
		}
		if strings.TrimSpace(text) != "" {
			pages = append(pages, text)
		}
	}

	extracted := strings.Join(pages, "\n\n")
	slog.Info("extracted text from PDF", "chars", len(extracted), "pages", reader.NumPage())
	return extracted, nil
}

// ooxmlText collects the character data of the named XML elements in order.
func ooxmlText(r io.Reader, textElement string) ([]string, error) {
	decoder := xml.NewDecoder(r)
	var texts []string
	var inText bool
	var current strings.Builder

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == textElement {
				inText = true
				current.Reset()
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		case xml.EndElement:
			if t.Name.Local == textElement {
				inText = false
				texts = append(texts, current.String())
			}
		}
	}
	return texts, nil
}

// fromDOCX reads word/document.xml out of the OOXML archive and joins
// paragraph texts with blank lines.
func fromDOCX(data []byte) (string, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to extract text from DOCX: %w", err)
	}

	var paragraphs []string
	for _, f := range archive.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("failed to extract text from DOCX: %w", err)
		}
		paragraphs, err = docxParagraphs(rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("failed to extract text from DOCX: %w", err)
		}
		break
	}

	extracted := strings.Join(paragraphs, "\n\n")
	slog.Info("extracted text from DOCX", "chars", len(extracted))
	return extracted, nil
}

// docxParagraphs walks w:p paragraph elements, concatenating their w:t runs.
func docxParagraphs(r io.Reader) ([]string, error) {
	decoder := xml.NewDecoder(r)
	var paragraphs []string
	var current strings.Builder
	var inRun bool
	depth := 0

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				depth++
				if depth == 1 {
					current.Reset()
				}
			case "t":
				inRun = true
			}
		case xml.CharData:
			if inRun {
				current.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inRun = false
			case "p":
				depth--
				if depth == 0 {
					if text := strings.TrimSpace(current.String()); text != "" {
						paragraphs = append(paragraphs, text)
					}
				}
			}
		}
	}
	return paragraphs, nil
}

// fromPPTX reads ppt/slides/slideN.xml files in slide order and prefixes each
// slide's text with a "Slide N:" header.
func fromPPTX(data []byte) (string, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to extract text from PPTX: %w", err)
	}

	var slideFiles []*zip.File
	for _, f := range archive.File {
		if strings.HasPrefix(f.Name, "ppt/slides/slide") && strings.HasSuffix(f.Name, ".xml") {
			slideFiles = append(slideFiles, f)
		}
	}
	sort.Slice(slideFiles, func(i, j int) bool {
		return slideNumber(slideFiles[i].Name) < slideNumber(slideFiles[j].Name)
	})

	var slides []string
	for i, f := range slideFiles {
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("failed to extract text from PPTX: %w", err)
		}
		texts, err := ooxmlText(rc, "t")
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("failed to extract text from PPTX: %w", err)
		}

		var nonEmpty []string
		for _, t := range texts {
			if trimmed := strings.TrimSpace(t); trimmed != "" {
				nonEmpty = append(nonEmpty, trimmed)
			}
		}
		if len(nonEmpty) > 0 {
			slides = append(slides, fmt.Sprintf("Slide %d:\n%s", i+1, strings.Join(nonEmpty, "\n")))
		}
	}

	extracted := strings.Join(slides, "\n\n")
	slog.Info("extracted text from PPTX", "chars", len(extracted), "slides", len(slideFiles))
	return extracted, nil
}

func slideNumber(name string) int {
	base := strings.TrimSuffix(strings.TrimPrefix(name, "ppt/slides/slide"), ".xml")
	n := 0
	for _, r := range base {
		if r < '0' || r > '9' {
			return n
		}
		n = n*10 + int(r-'0')
	}
	return n
}
