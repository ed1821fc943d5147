package assets

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"path"
	"strings"

	"github.com/klauspost/compress/zstd"
	"golang.org/x/image/bmp"
	"golang.org/x/image/webp"
)

// zstdExt marks a zstd compressed image; the extension before it names the image format.
const zstdExt = ".zst"

type decodeFunc func(r io.Reader) (image.Image, error)

var decoders = map[string]decodeFunc{
	".png":  png.Decode,
	".jpg":  jpeg.Decode,
	".jpeg": jpeg.Decode,
	".webp": webp.Decode,
	".bmp":  bmp.Decode,
}

// Supported reports whether name has an image extension the server decodes, optionally
// followed by .zst.
func Supported(name string) bool {
	_, _, err := decoderFor(name)
	return err == nil
}

func decoderFor(name string) (decodeFunc, bool, error) {
	lower := strings.ToLower(name)
	compressed := strings.HasSuffix(lower, zstdExt)
	if compressed {
		lower = strings.TrimSuffix(lower, zstdExt)
	}
	ext := path.Ext(lower)
	decode, ok := decoders[ext]
	if !ok {
		return nil, false, fmt.Errorf("unsupported image format %q", ext)
	}
	return decode, compressed, nil
}

// decode reads one image from r in the format named by name.
func decode(name string, r io.Reader) (image.Image, error) {
	decodeImage, compressed, err := decoderFor(name)
	if err != nil {
		return nil, err
	}
	if compressed {
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		defer zr.Close()
		r = zr
	}
	img, err := decodeImage(r)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return img, nil
}
