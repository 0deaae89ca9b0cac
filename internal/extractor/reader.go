package extractor

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// ContentReader extracts plain text from one document format.
type ContentReader interface {
	Extract(r io.Reader) (string, error)
}

var supported = map[string]bool{
	".txt":  true,
	".log":  true,
	".csv":  true,
	".json": true,
	".docx": true,
	".xlsx": true,
	".pdf":  true,
}

// SupportedExtensions returns the lowercase extensions the reader handles.
func SupportedExtensions() []string {
	return []string{".txt", ".log", ".csv", ".json", ".docx", ".xlsx", ".pdf"}
}

// IsSupported reports whether path has a scannable extension. Case is ignored.
func IsSupported(path string) bool {
	return supported[strings.ToLower(filepath.Ext(path))]
}

// Reader turns supported files into plain text. Any failure yields an
// empty string; the cause is only logged at debug level.
type Reader struct {
	log *zap.Logger
}

// NewReader creates a Reader. A nil logger disables logging.
func NewReader(log *zap.Logger) *Reader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reader{log: log}
}

// ReadFile returns the text content of path, or "" when the file is
// unsupported, unreadable or malformed.
func (r *Reader) ReadFile(path string) string {
	text, err := r.read(path)
	if err != nil {
		r.log.Debug("extraction failed", zap.String("path", path), zap.Error(err))
		return ""
	}
	return text
}

func (r *Reader) read(path string) (text string, err error) {
	// The PDF parser panics on some malformed inputs
	defer func() {
		if p := recover(); p != nil {
			text, err = "", fmt.Errorf("extractor panic: %v", p)
		}
	}()

	ext := strings.ToLower(filepath.Ext(path))
	cr, err := readerFor(ext)
	if err != nil {
		return "", err
	}

	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := sniff(f, ext); err != nil {
		return "", err
	}
	return cr.Extract(f)
}

func readerFor(ext string) (ContentReader, error) {
	switch ext {
	case ".docx":
		return &DocxReader{}, nil
	case ".xlsx":
		return &ExcelReader{}, nil
	case ".pdf":
		return &PDFReader{}, nil
	case ".txt", ".log", ".csv", ".json":
		return &TextReader{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}
