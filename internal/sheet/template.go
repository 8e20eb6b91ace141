package sheet

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/asaniustaz/Campusconnect-sub000/pkg/errors"
)

// ExtractTemplateText pulls the plain text out of a report-card template so
// it can be scanned for placeholders. A .docx file is a zip archive whose
// word/document.xml carries the text in <w:t> runs; anything else is treated
// as plain text already.
func ExtractTemplateText(filename string, data []byte) (string, error) {
	if strings.HasSuffix(strings.ToLower(filename), ".docx") {
		return extractDocxText(data)
	}
	return string(data), nil
}

func extractDocxText(data []byte) (string, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open template archive: %w", err)
	}

	for _, file := range archive.File {
		if file.Name != "word/document.xml" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return "", fmt.Errorf("failed to open document part: %w", err)
		}
		defer rc.Close()
		return collectTextRuns(rc)
	}
	return "", errors.ErrInvalidFileFormat
}

// collectTextRuns walks the document XML and concatenates the character data
// of every <w:t> element. Word may split a placeholder across adjacent runs,
// so runs are joined without separators and paragraphs with newlines.
func collectTextRuns(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)

	var sb strings.Builder
	inText := false
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to parse document part: %w", err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			if t.Name.Local == "t" {
				inText = false
			}
			if t.Name.Local == "p" {
				sb.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}
	return sb.String(), nil
}
