package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	in := Cursor{UserID: "b5c1d2aa-0000-4000-8000-000000000001", CreatedUnix: 1724900000000}

	token, err := Encode(in)
	require.NoError(t, err)

	out, err := Decode(token)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestDecodeEmptyToken(t *testing.T) {
	c, err := Decode("")
	require.NoError(t, err)
	assert.Equal(t, Cursor{}, c)
}

func TestDecodeGarbage(t *testing.T) {
	_, err := Decode("not-base64!!!")
	assert.Error(t, err)

	// valid base64, invalid JSON
	_, err = Decode("bm90LWpzb24=")
	assert.Error(t, err)
}
