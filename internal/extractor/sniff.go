package extractor

import (
	"fmt"
	"io"
	"os"

	"github.com/gabriel-vasile/mimetype"
)

const sniffLen = 3072

// sniff rejects binary formats whose content does not match the extension,
// then rewinds f.
func sniff(f *os.File, ext string) error {
	var want string
	switch ext {
	case ".docx", ".xlsx":
		want = "application/zip"
	case ".pdf":
		want = "application/pdf"
	default:
		return nil
	}

	buf := make([]byte, sniffLen)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return err
	}

	mt := mimetype.Detect(buf[:n])
	for m := mt; m != nil; m = m.Parent() {
		if m.Is(want) {
			return nil
		}
	}
	return fmt.Errorf("content is %s, expected %s", mt.String(), want)
}
