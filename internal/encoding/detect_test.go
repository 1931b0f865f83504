package encoding_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/MrJamesThe3rd/invoicer/internal/encoding"
)

func decodeAll(t *testing.T, input []byte) (string, encoding.Charset) {
	t.Helper()

	r, charset, err := encoding.Decode(bytes.NewReader(input))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)

	return string(got), charset
}

func TestDecode(t *testing.T) {
	const text = "Name,Rate\nCafé crème,12.50\nRéparation,3.00\n"

	latin1, err := charmap.Windows1252.NewEncoder().Bytes([]byte(text))
	require.NoError(t, err)

	utf16, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().Bytes([]byte(text))
	require.NoError(t, err)

	tests := []struct {
		name        string
		input       []byte
		wantCharset encoding.Charset
	}{
		{name: "UTF8", input: []byte(text), wantCharset: encoding.UTF8},
		{name: "UTF8BOM", input: append([]byte{0xEF, 0xBB, 0xBF}, text...), wantCharset: encoding.UTF8},
		{name: "UTF16LE", input: utf16, wantCharset: encoding.UTF16LE},
		{name: "Latin1", input: latin1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, charset := decodeAll(t, tt.input)
			assert.Equal(t, text, got)

			if tt.wantCharset != "" {
				assert.Equal(t, tt.wantCharset, charset)
			}
		})
	}
}

func TestDecode_Empty(t *testing.T) {
	got, charset := decodeAll(t, nil)
	assert.Empty(t, got)
	assert.Equal(t, encoding.UTF8, charset)
}

func TestSniffDelimiter(t *testing.T) {
	assert.Equal(t, ',', encoding.SniffDelimiter("name,rate,sku"))
	assert.Equal(t, ';', encoding.SniffDelimiter("Name;Rate;Tax rate"))
	assert.Equal(t, '\t', encoding.SniffDelimiter("name\trate"))
	assert.Equal(t, ',', encoding.SniffDelimiter("name"))
}
