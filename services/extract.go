package services

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// InputType is the kind of uploaded study file.
type InputType string

const (
	InputTXT  InputType = "txt"
	InputPDF  InputType = "pdf"
	InputDOCX InputType = "docx"
)

var ErrUnsupportedFile = errors.New("unsupported file type")

// InputTypeFromFilename maps a file extension to an InputType.
func InputTypeFromFilename(name string) (InputType, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".md":
		return InputTXT, nil
	case ".pdf":
		return InputPDF, nil
	case ".docx":
		return InputDOCX, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFile, filepath.Ext(name))
	}
}

// ExtractText reads the plain text of an uploaded file.
func ExtractText(kind InputType, data []byte) (string, error) {
	var (
		text string
		err  error
	)
	switch kind {
	case InputTXT:
		text = string(data)
	case InputPDF:
		text, err = extractPDF(data)
	case InputDOCX:
		text, err = extractDOCX(data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFile, kind)
	}
	if err != nil {
		return "", err
	}
	return NormalizeText(text), nil
}

// ReadUpload loads a multipart file into memory.
func ReadUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, f); err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return buf.Bytes(), nil
}

func extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(content)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

// extractDOCX collects the <w:t> runs of word/document.xml.
func extractDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}

	var docFile *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", errors.New("docx: word/document.xml not found")
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	var sb strings.Builder
	decoder := xml.NewDecoder(rc)
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("docx: %w", err)
		}
		switch se := tok.(type) {
		case xml.StartElement:
			if se.Name.Local == "t" {
				var text string
				if err := decoder.DecodeElement(&text, &se); err == nil {
					sb.WriteString(text)
					sb.WriteString(" ")
				}
			}
		case xml.EndElement:
			if se.Name.Local == "p" {
				sb.WriteString("\n")
			}
		}
	}
	return sb.String(), nil
}

var (
	reTrailingSpace = regexp.MustCompile(`[ \t]+\n`)
	reBlankLines    = regexp.MustCompile(`\n{3,}`)
)

// NormalizeText unifies line endings, strips trailing spaces and collapses
// runs of blank lines.
func NormalizeText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = reTrailingSpace.ReplaceAllString(text, "\n")
	text = reBlankLines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
