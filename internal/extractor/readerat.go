package extractor

import (
	"bytes"
	"io"
	"os"
)

// asReaderAt adapts r for libraries that need random access. Files and
// byte readers are used directly; anything else is buffered in memory.
func asReaderAt(r io.Reader) (io.ReaderAt, int64, error) {
	switch v := r.(type) {
	case *os.File:
		stat, err := v.Stat()
		if err != nil {
			return nil, 0, err
		}
		return v, stat.Size(), nil
	case *bytes.Reader:
		return v, v.Size(), nil
	default:
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, 0, err
		}
		return bytes.NewReader(data), int64(len(data)), nil
	}
}
