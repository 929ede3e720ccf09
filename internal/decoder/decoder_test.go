package decoder

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anime-shed/blur-culler/internal/sharpness"
)

// checkerImage creates an RGBA image with 4px black/white squares
func checkerImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x/4+y/4)%2 == 0 {
				img.Set(x, y, color.White)
			} else {
				img.Set(x, y, color.Black)
			}
		}
	}
	return img
}

func encodeJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}))
	return buf.Bytes()
}

func TestValidateJPEGHeader(t *testing.T) {
	testCases := []struct {
		name    string
		data    []byte
		wantErr bool
	}{
		{"Valid", []byte{0xFF, 0xD8, 0xFF, 0xE0}, false},
		{"Exactly three bytes", []byte{0xFF, 0xD8, 0xFF}, false},
		{"PNG", []byte{0x89, 'P', 'N', 'G'}, true},
		{"Too short", []byte{0xFF, 0xD8}, true},
		{"Empty", nil, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateJPEGHeader(tc.data)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrNotJPEG)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDecodeJPEG_Color(t *testing.T) {
	data := encodeJPEG(t, checkerImage(40, 30))

	img, err := New(0).DecodeJPEG(data)
	require.NoError(t, err)
	assert.Equal(t, 40, img.Width)
	assert.Equal(t, 30, img.Height)
	assert.Equal(t, 4, img.Channels)
	assert.NoError(t, img.Validate())
}

func TestDecodeJPEG_Grayscale(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 16, 12))
	for i := range gray.Pix {
		gray.Pix[i] = uint8(i)
	}

	img, err := New(0).DecodeJPEG(encodeJPEG(t, gray))
	require.NoError(t, err)
	assert.Equal(t, 1, img.Channels)
	assert.Len(t, img.Pix, 16*12)
}

func TestDecodeJPEG_RejectsPNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, checkerImage(8, 8)))

	_, err := New(0).DecodeJPEG(buf.Bytes())
	assert.ErrorIs(t, err, ErrNotJPEG)

	// The generic path accepts it
	img, err := New(0).Decode(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, 8, img.Width)
}

func TestDecode_Corrupt(t *testing.T) {
	_, err := New(0).DecodeJPEG([]byte{0xFF, 0xD8, 0xFF, 0x00, 0x01})
	assert.Error(t, err)

	_, err = New(0).Decode(nil)
	assert.Error(t, err)
}

func TestDecode_MaxDimension(t *testing.T) {
	data := encodeJPEG(t, checkerImage(200, 100))

	img, err := New(50).DecodeJPEG(data)
	require.NoError(t, err)
	assert.Equal(t, 50, img.Width)
	assert.Equal(t, 25, img.Height)

	// Images already within bounds are untouched
	img, err = New(500).DecodeJPEG(data)
	require.NoError(t, err)
	assert.Equal(t, 200, img.Width)
}

func TestDecodeFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.jpg")
	require.NoError(t, os.WriteFile(path, encodeJPEG(t, checkerImage(20, 20)), 0644))

	img, err := New(0).DecodeFile(path)
	require.NoError(t, err)
	assert.Equal(t, 20, img.Width)

	_, err = New(0).DecodeFile(filepath.Join(dir, "missing.jpg"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestToDecodedImage_SubImage(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 10, 10))
	for i := range gray.Pix {
		gray.Pix[i] = uint8(i)
	}
	sub := gray.SubImage(image.Rect(2, 3, 6, 5)).(*image.Gray)

	img := ToDecodedImage(sub)
	assert.Equal(t, 4, img.Width)
	assert.Equal(t, 2, img.Height)
	assert.Equal(t, []uint8{32, 33, 34, 35, 42, 43, 44, 45}, img.Pix)
}

func TestBlurredScoresLower(t *testing.T) {
	src := checkerImage(96, 96)
	dec := New(0)

	sharpImg, err := dec.DecodeJPEG(encodeJPEG(t, src))
	require.NoError(t, err)
	blurImg, err := dec.DecodeJPEG(encodeJPEG(t, imaging.Blur(src, 3)))
	require.NoError(t, err)

	sharpRes, err := sharpness.Score(sharpImg, sharpness.DefaultConfig())
	require.NoError(t, err)
	blurRes, err := sharpness.Score(blurImg, sharpness.DefaultConfig())
	require.NoError(t, err)

	assert.Greater(t, sharpRes.Score, blurRes.Score)
}

func TestReadMetadata_NoExif(t *testing.T) {
	md := ReadMetadata(encodeJPEG(t, checkerImage(8, 8)))
	assert.Nil(t, md.CapturedAt)
	assert.Empty(t, md.CameraModel)

	md = ReadMetadata([]byte("not an image"))
	assert.Equal(t, Metadata{}, md)
}
