package extractor

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

const docxBody = "word/document.xml"

// DocxReader reads the main document part of a WordprocessingML package.
// Runs are concatenated, paragraphs and breaks become newlines.
type DocxReader struct{}

func (s *DocxReader) Extract(r io.Reader) (string, error) {
	readerAt, size, err := asReaderAt(r)
	if err != nil {
		return "", err
	}
	zr, err := zip.NewReader(readerAt, size)
	if err != nil {
		return "", err
	}

	for _, zf := range zr.File {
		if zf.Name != docxBody {
			continue
		}
		rc, err := zf.Open()
		if err != nil {
			return "", err
		}
		defer rc.Close()
		return wordText(rc)
	}
	return "", errors.New("missing " + docxBody)
}

func wordText(r io.Reader) (string, error) {
	var sb strings.Builder
	dec := xml.NewDecoder(r)
	inText := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return sb.String(), nil
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				sb.WriteByte('\t')
			case "br", "cr":
				sb.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}
}
