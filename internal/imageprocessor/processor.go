package imageprocessor

import (
	"bytes"
	"image"
	"strings"

	// декодеры форматов для DecodeConfig
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Info - размеры изображения, сохраняемые в meta_data файла
type Info struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
}

// IsImage проверяет MIME-тип
func IsImage(mime string) bool {
	return strings.HasPrefix(mime, "image/")
}

// Inspect читает размеры из заголовка файла. Для JPEG с большим EXIF
// заголовка может не хватить, тогда ok == false.
func Inspect(head []byte) (info Info, ok bool) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(head))
	if err != nil || cfg.Width == 0 || cfg.Height == 0 {
		return Info{}, false
	}
	return Info{Width: cfg.Width, Height: cfg.Height, Format: format}, true
}
