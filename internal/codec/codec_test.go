package codec

import (
	"bytes"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBase58KnownVectors(t *testing.T) {
	cases := []struct {
		in   []byte
		want string
	}{
		{in: []byte("hello world"), want: "StV1DL6CwTryKyV"},
		{in: []byte{1, 2}, want: "5T"},
		{in: []byte{0, 0, 1, 2}, want: "115T"},
		{in: []byte{0}, want: "1"},
		{in: []byte{}, want: ""},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, EncodeBase58(tc.in), "EncodeBase58(%v)", tc.in)
		got, err := DecodeBase58(tc.want)
		require.NoError(t, err)
		require.True(t, bytes.Equal(tc.in, got), "DecodeBase58(%q) = %v, want %v", tc.want, got, tc.in)
	}
}

func TestBase58LeadingZerosPreserved(t *testing.T) {
	encoded := EncodeBase58([]byte{0, 0, 1, 2})
	require.Equal(t, "11"+EncodeBase58([]byte{1, 2}), encoded)

	decoded, err := DecodeBase58(encoded)
	require.NoError(t, err)
	require.Equal(t, []byte{0, 0, 1, 2}, decoded)

	decoded, err = DecodeBase58("111")
	require.NoError(t, err)
	require.Equal(t, []byte{0, 0, 0}, decoded)
}

func TestDecodeBase58RejectsForeignCharacters(t *testing.T) {
	for _, in := range []string{"0abc", "abcO", "Il", "ab+c", "héllo"} {
		_, err := DecodeBase58(in)
		require.Error(t, err, "DecodeBase58(%q)", in)
		require.True(t, errors.Is(err, ErrInvalidCharacter), "DecodeBase58(%q) error = %v", in, err)
	}

	_, err := DecodeBase58("abc0")
	var charErr *InvalidCharacterError
	require.True(t, errors.As(err, &charErr))
	require.Equal(t, '0', charErr.Char)
	require.Equal(t, 3, charErr.Pos)
	require.Equal(t, "base58", charErr.Encoding)
}

func TestRoundTripRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		b := make([]byte, rng.Intn(70))
		rng.Read(b)
		// Sprinkle leading zeros into some samples.
		if i%5 == 0 && len(b) > 3 {
			b[0], b[1] = 0, 0
		}

		got, err := DecodeBase58(EncodeBase58(b))
		require.NoError(t, err)
		require.True(t, bytes.Equal(b, got), "base58 round trip of %x = %x", b, got)

		got, err = DecodeHex(EncodeHex(b))
		require.NoError(t, err)
		require.True(t, bytes.Equal(b, got), "hex round trip of %x = %x", b, got)
	}
}

func TestDecodeHexPrefixCaseAndPadding(t *testing.T) {
	a, err := DecodeHex("0xA")
	require.NoError(t, err)
	b, err := DecodeHex("0A")
	require.NoError(t, err)
	require.Equal(t, []byte{0x0a}, a)
	require.Equal(t, a, b)

	got, err := DecodeHex("0xDeadBEEF")
	require.NoError(t, err)
	require.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, got)

	got, err = DecodeHex("")
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestDecodeHexRejectsForeignCharacters(t *testing.T) {
	_, err := DecodeHex("0xZZ")
	require.ErrorIs(t, err, ErrInvalidCharacter)

	_, err = DecodeHex("12g4")
	var charErr *InvalidCharacterError
	require.ErrorAs(t, err, &charErr)
	require.Equal(t, 'g', charErr.Char)
	require.Equal(t, 2, charErr.Pos)
}

func TestEncodeHexLowercase(t *testing.T) {
	require.Equal(t, "00ff10", EncodeHex([]byte{0x00, 0xff, 0x10}))
}

func TestEncodeBase64URL(t *testing.T) {
	// 0xfb 0xff encodes to "+/8=" in standard Base64.
	require.Equal(t, "-_8", EncodeBase64URL([]byte{0xfb, 0xff}))
	require.Equal(t, "YQ", EncodeBase64URL([]byte("a")))
	require.Equal(t, "YWJj", EncodeBase64URL([]byte("abc")))
	require.Equal(t, "", EncodeBase64URL(nil))

	raw, err := DecodeBase64URL("-_8")
	require.NoError(t, err)
	require.Equal(t, []byte{0xfb, 0xff}, raw)
	raw, err = DecodeBase64URL("YQ==")
	require.NoError(t, err)
	require.Equal(t, []byte("a"), raw)
	_, err = DecodeBase64URL("+/8")
	require.Error(t, err)
}

func TestFormatPredicates(t *testing.T) {
	require.True(t, IsHex("0123abcDEF"))
	require.False(t, IsHex(""))
	require.False(t, IsHex("0x12"))
	require.True(t, IsBase58("StV1DL6CwTryKyV"))
	require.False(t, IsBase58(""))
	require.False(t, IsBase58("0OIl"))
}
