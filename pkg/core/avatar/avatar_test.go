package avatar

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonerrors "task-manager/pkg/common/errors"
)

func testPNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestProcessRejectsExtension(t *testing.T) {
	_, err := Process("x.gif", testPNG(t, 10, 10))
	require.Error(t, err)
	assert.True(t, errors.Is(err, commonerrors.ErrValidation))

	_, err = Process("noextension", testPNG(t, 10, 10))
	assert.Error(t, err)
}

func TestProcessRejectsOversize(t *testing.T) {
	_, err := Process("x.png", make([]byte, MaxFileSize+1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, commonerrors.ErrValidation))
}

func TestProcessRejectsUndecodable(t *testing.T) {
	_, err := Process("x.png", []byte("definitely not an image"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, commonerrors.ErrValidation))
}

func TestProcessResizesToFixedSquare(t *testing.T) {
	// 宽高比不保持，任何输入尺寸都硬缩放到250x250
	for _, dims := range [][2]int{{10, 10}, {640, 480}, {30, 300}} {
		out, err := Process("x.png", testPNG(t, dims[0], dims[1]))
		require.NoError(t, err)

		cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
		require.NoError(t, err)
		assert.Equal(t, "png", format)
		assert.Equal(t, 250, cfg.Width)
		assert.Equal(t, 250, cfg.Height)
	}
}

func TestProcessAcceptsJpegExtensions(t *testing.T) {
	// imaging按内容嗅探格式，.jpg扩展名下的png字节同样可解码
	for _, name := range []string{"x.jpg", "x.jpeg", "X.PNG"} {
		_, err := Process(name, testPNG(t, 20, 20))
		assert.NoError(t, err, "filename %s", name)
	}
}
