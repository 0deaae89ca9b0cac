package extractor

import (
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFReader extracts the text layer page by page. Pages that fail to
// decode are skipped.
type PDFReader struct{}

func (s *PDFReader) Extract(r io.Reader) (string, error) {
	readerAt, size, err := asReaderAt(r)
	if err != nil {
		return "", err
	}

	doc, err := pdf.NewReader(readerAt, size)
	if err != nil {
		return "", err
	}

	pages := make([]string, 0, doc.NumPage())
	for i := 1; i <= doc.NumPage(); i++ {
		page := doc.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		pages = append(pages, text)
	}
	return strings.Join(pages, " "), nil
}
