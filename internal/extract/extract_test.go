package extract

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slidesage-backend/internal/extract/pdftest"
)

func TestPDFExtractor_SinglePage(t *testing.T) {
	res, err := NewPDFExtractor().Extract(context.Background(), pdftest.Build("Hello World"))
	require.NoError(t, err)
	assert.Contains(t, res.Text, "Hello World")
	assert.Equal(t, 1, res.PageCount)
	assert.False(t, res.Encrypted)
}

func TestPDFExtractor_PagesInOrder(t *testing.T) {
	data := pdftest.Build("first page", "second page", "third page")
	res, err := NewPDFExtractor().Extract(context.Background(), data)
	require.NoError(t, err)
	assert.Equal(t, 3, res.PageCount)

	first := strings.Index(res.Text, "first page")
	second := strings.Index(res.Text, "second page")
	third := strings.Index(res.Text, "third page")
	require.True(t, first >= 0 && second >= 0 && third >= 0, "missing page text in %q", res.Text)
	assert.Less(t, first, second)
	assert.Less(t, second, third)
}

func TestPDFExtractor_BlankPage(t *testing.T) {
	res, err := NewPDFExtractor().Extract(context.Background(), pdftest.Build(""))
	require.NoError(t, err)
	assert.Equal(t, "", strings.TrimSpace(res.Text))
}

func TestPDFExtractor_Failures(t *testing.T) {
	cases := map[string][]byte{
		"empty":     nil,
		"not a pdf": []byte("definitely not a pdf document"),
		"truncated": pdftest.Build("cut short")[:40],
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewPDFExtractor().Extract(context.Background(), data)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrExtractionFailed), "expected ErrExtractionFailed, got %v", err)

			var extractErr *Error
			assert.True(t, errors.As(err, &extractErr))
		})
	}
}

func TestPDFExtractor_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewPDFExtractor().Extract(ctx, pdftest.Build("x"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestErrorMessage(t *testing.T) {
	err := fail("malformed pdf", errors.New("bad xref"))
	assert.Equal(t, "pdf extraction failed: malformed pdf: bad xref", err.Error())
}

func encryptPDF(t *testing.T, data []byte, userPW, ownerPW string) []byte {
	t.Helper()
	var out bytes.Buffer
	conf := model.NewAESConfiguration(userPW, ownerPW, 256)
	require.NoError(t, api.Encrypt(bytes.NewReader(data), &out, conf))
	return out.Bytes()
}

func TestInspect(t *testing.T) {
	info, err := Inspect(pdftest.Build("one", "two"))
	require.NoError(t, err)
	assert.Equal(t, 2, info.PageCount)
	assert.False(t, info.Encrypted)
	assert.False(t, info.Locked)

	_, err = Inspect([]byte("not a pdf"))
	assert.Error(t, err)
}

func TestPDFExtractor_PasswordProtected(t *testing.T) {
	data := encryptPDF(t, pdftest.Build("secret text"), "user-secret", "owner-secret")

	info, err := Inspect(data)
	require.NoError(t, err)
	assert.True(t, info.Encrypted)
	assert.True(t, info.Locked)

	_, err = NewPDFExtractor().Extract(context.Background(), data)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExtractionFailed)
	var extractErr *Error
	require.True(t, errors.As(err, &extractErr))
	assert.Equal(t, "password protected", extractErr.Reason)
}

func TestPDFExtractor_StripsNUL(t *testing.T) {
	res, err := NewPDFExtractor().Extract(context.Background(), pdftest.Build("Hel\x00lo"))
	require.NoError(t, err)
	assert.NotContains(t, res.Text, "\x00")
	assert.Contains(t, res.Text, "Hello")

	assert.Equal(t, "Hello", stripNUL("Hel\x00lo\x00"))
	assert.Equal(t, "plain", stripNUL("plain"))
}

func TestPDFExtractor_SkipInspect(t *testing.T) {
	ex := &PDFExtractor{SkipInspect: true}
	res, err := ex.Extract(context.Background(), pdftest.Build("plain"))
	require.NoError(t, err)
	assert.Contains(t, res.Text, "plain")
	assert.False(t, res.Encrypted)

	data := encryptPDF(t, pdftest.Build("secret text"), "user-secret", "owner-secret")
	_, err = ex.Extract(context.Background(), data)
	var extractErr *Error
	require.True(t, errors.As(err, &extractErr))
	assert.NotEqual(t, "unsupported encryption", extractErr.Reason)
}
