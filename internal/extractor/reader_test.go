package extractor

import (
	"archive/zip"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const wordNS = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"`

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func writeDocx(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	ct, err := zw.Create("[Content_Types].xml")
	require.NoError(t, err)
	_, err = ct.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"></Types>`))
	require.NoError(t, err)

	doc, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = doc.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><w:document ` + wordNS + `><w:body>` + body + `</w:body></w:document>`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return path
}

// writePDF builds a minimal uncompressed PDF with one text line per page.
func writePDF(t *testing.T, dir, name string, pages ...string) string {
	t.Helper()
	objs := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"", // page tree, filled below
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	}
	kids := make([]string, 0, len(pages))
	for i, text := range pages {
		pageObj, contentObj := 4+2*i, 5+2*i
		kids = append(kids, fmt.Sprintf("%d 0 R", pageObj))
		content := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
		objs = append(objs,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", contentObj),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		)
	}
	objs[1] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages))

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, obj := range objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objs)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)

	return writeFile(t, dir, name, buf.Bytes())
}

func TestReadFile_Text(t *testing.T) {
	dir := t.TempDir()
	r := NewReader(nil)

	path := writeFile(t, dir, "notes.txt", []byte("Email: jean.dupont@example.com"))
	assert.Equal(t, "Email: jean.dupont@example.com", r.ReadFile(path))

	path = writeFile(t, dir, "UPPER.TXT", []byte("contenu"))
	assert.Equal(t, "contenu", r.ReadFile(path))

	path = writeFile(t, dir, "data.csv", []byte("nom;email\nJean;jean@example.com\n"))
	assert.Equal(t, "nom;email\nJean;jean@example.com\n", r.ReadFile(path))
}

func TestReadFile_TextByteOrderMarks(t *testing.T) {
	dir := t.TempDir()
	r := NewReader(nil)

	path := writeFile(t, dir, "bom.log", []byte("\xEF\xBB\xBFbonjour"))
	assert.Equal(t, "bonjour", r.ReadFile(path))

	path = writeFile(t, dir, "utf16.txt", []byte("\xFF\xFEh\x00i\x00"))
	assert.Equal(t, "hi", r.ReadFile(path))
}

func TestReadFile_TextInvalidUTF8IsLossy(t *testing.T) {
	r := NewReader(nil)
	path := writeFile(t, t.TempDir(), "bad.txt", []byte("a\xffb"))
	assert.Equal(t, "a�b", r.ReadFile(path))
}

func TestReadFile_Docx(t *testing.T) {
	r := NewReader(nil)
	path := writeDocx(t, t.TempDir(), "lettre.docx",
		`<w:p><w:r><w:t>Contact: jean.dupont@example.com</w:t></w:r></w:p>`+
			`<w:p><w:r><w:t xml:space="preserve">Né le </w:t></w:r><w:r><w:t>15/03/1985</w:t></w:r></w:p>`)

	assert.Equal(t, "Contact: jean.dupont@example.com\nNé le 15/03/1985\n", r.ReadFile(path))
}

func TestReadFile_DocxWithoutBody(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.docx")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	w, err := zw.Create("other.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte("<x/>"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	assert.Empty(t, NewReader(nil).ReadFile(path))
}

func TestReadFile_PDFPagesInOrder(t *testing.T) {
	path := writePDF(t, t.TempDir(), "courrier.pdf",
		"Page un jean.dupont@example.com",
		"Page deux 15/03/1985",
	)

	text := NewReader(nil).ReadFile(path)

	first := strings.Index(text, "jean.dupont@example.com")
	second := strings.Index(text, "15/03/1985")
	require.GreaterOrEqual(t, first, 0, text)
	require.Greater(t, second, first, text)
	assert.Contains(t, text, "jean.dupont@example.com ")
	assert.Equal(t, "Page un jean.dupont@example.com Page deux 15/03/1985", strings.Join(strings.Fields(text), " "))
}

func TestReadFile_Excel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clients.xlsx")
	wb := excelize.NewFile()
	require.NoError(t, wb.SetCellValue("Sheet1", "A1", "Nom"))
	require.NoError(t, wb.SetCellValue("Sheet1", "B1", "Email"))
	require.NoError(t, wb.SetCellValue("Sheet1", "A2", "Dupont"))
	require.NoError(t, wb.SetCellValue("Sheet1", "B2", "jean.dupont@example.com"))
	require.NoError(t, wb.SaveAs(path))
	require.NoError(t, wb.Close())

	text := NewReader(nil).ReadFile(path)
	assert.Contains(t, text, "Nom Email \n")
	assert.Contains(t, text, "Dupont jean.dupont@example.com \n")
}

func TestReadFile_Failures(t *testing.T) {
	dir := t.TempDir()
	r := NewReader(nil)

	tests := map[string]string{
		"corrupt docx": writeFile(t, dir, "broken.docx", []byte("this is not a zip archive")),
		"corrupt xlsx": writeFile(t, dir, "broken.xlsx", []byte("garbage")),
		"corrupt pdf":  writeFile(t, dir, "broken.pdf", []byte("%PDF-1.4 truncated")),
		"fake pdf":     writeFile(t, dir, "fake.pdf", []byte("plain text pretending")),
		"unsupported":  writeFile(t, dir, "photo.png", []byte("\x89PNG\r\n\x1a\n")),
		"missing file": filepath.Join(dir, "nope.txt"),
		"no extension": writeFile(t, dir, "README", []byte("jean@example.com")),
	}
	for name, path := range tests {
		t.Run(name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.Empty(t, r.ReadFile(path))
			})
		})
	}
}

func TestIsSupported(t *testing.T) {
	for _, ext := range SupportedExtensions() {
		assert.True(t, IsSupported("file"+ext), ext)
	}
	assert.True(t, IsSupported("/a/b/REPORT.PDF"))
	assert.False(t, IsSupported("image.png"))
	assert.False(t, IsSupported("archive.zip"))
	assert.False(t, IsSupported("Makefile"))
}
