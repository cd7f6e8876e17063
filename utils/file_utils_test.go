package utils

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/HSouheill/shop_backoffice/storage"
	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// fileHeader builds a real *multipart.FileHeader by parsing a form.
func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("image", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))
	return req.MultipartForm.File["image"][0]
}

func TestValidateFileType(t *testing.T) {
	for _, name := range []string{"a.jpg", "a.JPEG", "a.png", "a.gif", "a.svg", "a.webp"} {
		assert.NoError(t, ValidateFileType(name), name)
	}
	for _, name := range []string{"a.exe", "a", "a.mp4"} {
		assert.Error(t, ValidateFileType(name), name)
	}
}

func TestGenerateFilenameKeepsCleanName(t *testing.T) {
	name := GenerateFilename("../My Shoes!.PNG")
	assert.True(t, strings.HasSuffix(name, "-myshoes.png"), name)
	assert.NotEqual(t, name, GenerateFilename("../My Shoes!.PNG"))
}

func TestPrepareImageDownscalesLargeRaster(t *testing.T) {
	out, contentType, err := PrepareImage(pngBytes(t, 3200, 800), "wide.png")
	require.NoError(t, err)
	assert.Equal(t, "image/png", contentType)

	img, err := imaging.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 1600, img.Bounds().Dx())
	assert.Equal(t, 400, img.Bounds().Dy())
}

func TestPrepareImageKeepsSmallAndVector(t *testing.T) {
	small := pngBytes(t, 10, 10)
	out, _, err := PrepareImage(small, "small.png")
	require.NoError(t, err)
	assert.Equal(t, small, out)

	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg"/>`)
	out, contentType, err := PrepareImage(svg, "logo.svg")
	require.NoError(t, err)
	assert.Equal(t, svg, out)
	assert.Equal(t, "image/svg+xml", contentType)

	_, _, err = PrepareImage([]byte("not a png"), "broken.png")
	assert.Error(t, err)
}

func TestUploadImageAndAbsoluteURL(t *testing.T) {
	ctx := context.Background()
	disk := storage.NewLocalDisk(t.TempDir(), "/uploads")

	key, err := UploadImage(ctx, disk, fileHeader(t, "shoe.png", pngBytes(t, 4, 4)), "categories")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "categories/"))
	assert.True(t, strings.HasSuffix(key, "-shoe.png"))
	assert.True(t, disk.Exists(ctx, key))

	assert.Equal(t, "http://example.com/uploads/"+key, AbsoluteURL(disk, "http", "example.com", key))
	assert.Equal(t, "https://cdn/x.png", AbsoluteURL(disk, "http", "example.com", "https://cdn/x.png"))
	assert.Equal(t, "", AbsoluteURL(disk, "http", "example.com", ""))

	require.NoError(t, RemoveFile(ctx, disk, key))
	assert.False(t, disk.Exists(ctx, key))

	_, err = UploadImage(ctx, disk, fileHeader(t, "virus.exe", []byte("MZ")), "categories")
	assert.Error(t, err)
}

func TestParsePrice(t *testing.T) {
	v, err := ParsePrice(" 19.99 ")
	require.NoError(t, err)
	assert.InDelta(t, 19.99, v, 1e-9)

	_, err = ParsePrice("-1")
	assert.Error(t, err)
	_, err = ParsePrice("abc")
	assert.Error(t, err)

	assert.Equal(t, int64(1999), ToMinorUnits(19.99))
	assert.Equal(t, int64(1050), ToMinorUnits(10.5))
}
