package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/upfund/internal/core/domain"
)

// createTestDOCX creates a minimal DOCX archive in memory.
func createTestDOCX(t *testing.T, documentXML string) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)

	ct, err := w.Create("[Content_Types].xml")
	require.NoError(t, err)
	_, err = ct.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`))
	require.NoError(t, err)

	if documentXML != "" {
		doc, err := w.Create("word/document.xml")
		require.NoError(t, err)
		_, err = doc.Write([]byte(documentXML))
		require.NoError(t, err)
	}

	require.NoError(t, w.Close())
	return buf.Bytes()
}

const wordNS = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"`

func TestExtract_Paragraphs(t *testing.T) {
	xml := `<?xml version="1.0" encoding="UTF-8"?>
<w:document ` + wordNS + `><w:body>
<w:p><w:r><w:t>Paris is the </w:t></w:r><w:r><w:t>capital of France.</w:t></w:r></w:p>
<w:p><w:r><w:t>Second</w:t><w:tab/><w:t>paragraph</w:t></w:r></w:p>
</w:body></w:document>`

	got, err := New().Extract(context.Background(), &domain.RawDocument{Path: "a.docx", Content: createTestDOCX(t, xml)})
	require.NoError(t, err)
	assert.Equal(t, "Paris is the capital of France.\nSecond\tparagraph", got)
}

func TestExtract_Tables(t *testing.T) {
	xml := `<w:document ` + wordNS + `><w:body>
<w:tbl><w:tr>
<w:tc><w:p><w:r><w:t>City</w:t></w:r></w:p></w:tc>
<w:tc><w:p><w:r><w:t>Paris</w:t></w:r></w:p></w:tc>
</w:tr></w:tbl>
</w:body></w:document>`

	got, err := New().Extract(context.Background(), &domain.RawDocument{Path: "a.docx", Content: createTestDOCX(t, xml)})
	require.NoError(t, err)
	assert.Equal(t, "City | Paris", got)
}

func TestExtract_Errors(t *testing.T) {
	t.Run("not a zip", func(t *testing.T) {
		_, err := New().Extract(context.Background(), &domain.RawDocument{Path: "a.docx", Content: []byte("nope")})
		assert.Error(t, err)
	})

	t.Run("missing document part", func(t *testing.T) {
		_, err := New().Extract(context.Background(), &domain.RawDocument{Path: "a.docx", Content: createTestDOCX(t, "")})
		assert.ErrorIs(t, err, ErrNoDocumentPart)
	})

	t.Run("malformed xml", func(t *testing.T) {
		_, err := New().Extract(context.Background(), &domain.RawDocument{Path: "a.docx", Content: createTestDOCX(t, "<w:document")})
		assert.Error(t, err)
	})

	t.Run("nil document", func(t *testing.T) {
		_, err := New().Extract(context.Background(), nil)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}
