package capture

import (
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/oned"
	"github.com/makiuchi-d/gozxing/qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func encodeQR(t *testing.T, text string) image.Image {
	t.Helper()
	img, err := qrcode.NewQRCodeWriter().Encode(text, gozxing.BarcodeFormat_QR_CODE, 200, 200, nil)
	require.NoError(t, err)
	return img
}

func writePNG(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func TestZXingDecoder_QRCode(t *testing.T) {
	code, err := NewZXingDecoder().Decode(encodeQR(t, "4002"))

	require.NoError(t, err)
	assert.Equal(t, "4002", code)
}

func TestZXingDecoder_EAN13(t *testing.T) {
	img, err := oned.NewEAN13Writer().Encode("4006381333931", gozxing.BarcodeFormat_EAN_13, 300, 80, nil)
	require.NoError(t, err)

	code, err := NewZXingDecoder().Decode(img)

	require.NoError(t, err)
	assert.Equal(t, "4006381333931", code)
}

func TestZXingDecoder_BlankFrame(t *testing.T) {
	blank := image.NewGray(image.Rect(0, 0, 100, 100))
	for i := range blank.Pix {
		blank.Pix[i] = 0xff
	}

	_, err := NewZXingDecoder().Decode(blank)
	assert.ErrorIs(t, err, ErrNoBarcode)
}

func TestFileCamera_ScansUntilFirstBarcode(t *testing.T) {
	dir := t.TempDir()

	blank := image.NewGray(image.Rect(0, 0, 50, 50))
	for i := range blank.Pix {
		blank.Pix[i] = 0xff
	}

	broken := filepath.Join(dir, "broken.png")
	require.NoError(t, os.WriteFile(broken, []byte("not an image"), 0o600))

	paths := []string{
		writePNG(t, dir, "blank.png", blank),
		broken,
		writePNG(t, dir, "qr.png", encodeQR(t, "4001")),
		writePNG(t, dir, "other.png", encodeQR(t, "9999")),
	}

	session := NewSession(NewFileCamera(paths...), NewZXingDecoder(), zap.NewNop())
	ch, err := session.Start(context.Background())
	require.NoError(t, err)

	code, ok := <-ch
	require.True(t, ok)
	assert.Equal(t, "4001", code)
	session.Stop()
}

func TestFileCamera_NoFiles(t *testing.T) {
	_, err := NewFileCamera().Open(context.Background(), FacingEnvironment)
	assert.ErrorIs(t, err, ErrCameraUnavailable)
}

func TestFileCamera_ClosedStreamEnds(t *testing.T) {
	stream, err := NewFileCamera("a.png").Open(context.Background(), FacingEnvironment)
	require.NoError(t, err)
	require.NoError(t, stream.Close())

	_, err = stream.Frame(context.Background())
	assert.ErrorIs(t, err, ErrStreamEnded)
}
