package extractor

import (
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// TextReader decodes plain text files. A UTF-8 or UTF-16 byte order mark
// selects the encoding; otherwise UTF-8 is assumed and invalid sequences
// become U+FFFD.
type TextReader struct{}

func (s *TextReader) Extract(r io.Reader) (string, error) {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	data, err := io.ReadAll(transform.NewReader(r, dec))
	if err != nil {
		return "", err
	}
	return string(data), nil
}
