package encoding_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spendsense/spendsense/internal/encoding"
)

func decode(t *testing.T, input []byte) string {
	t.Helper()

	r, err := encoding.Reader(bytes.NewReader(input))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)

	return string(got)
}

func TestReader_UTF8Passthrough(t *testing.T) {
	input := "item,price,date\nCafé Máquina,129.99,2025-01-15\n"
	assert.Equal(t, input, decode(t, []byte(input)))
}

func TestReader_StripsUTF8BOM(t *testing.T) {
	content := "item,price,date\n"
	input := append([]byte{0xEF, 0xBB, 0xBF}, content...)
	assert.Equal(t, content, decode(t, input))
}

func TestReader_Windows1252(t *testing.T) {
	// "Máquina" with á as 0xE1.
	input := []byte{'M', 0xE1, 'q', 'u', 'i', 'n', 'a', '\n'}
	assert.Equal(t, "Máquina\n", decode(t, input))
}

func TestReader_UTF16LE(t *testing.T) {
	// "item\n" in UTF-16 LE with BOM.
	input := []byte{0xFF, 0xFE, 'i', 0, 't', 0, 'e', 0, 'm', 0, '\n', 0}
	assert.Equal(t, "item\n", decode(t, input))
}

func TestReader_Empty(t *testing.T) {
	assert.Equal(t, "", decode(t, nil))
}
