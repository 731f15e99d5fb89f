package fill

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/h2non/filetype"
	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/ByLCY/pagefill/binding"
	"github.com/ByLCY/pagefill/layout"
	"github.com/ByLCY/pagefill/renderer"
)

// supportedImages 列出可以解码的图片类型（filetype 扩展名）。
var supportedImages = map[string]bool{
	"png": true, "jpg": true, "gif": true, "bmp": true, "tif": true, "webp": true,
}

// fillImage 按比例缩放图片放入洞中并居中。图片不会溢出。
func fillImage(_ context.Context, hole layout.Hole, c Contents, fc *Context) (*Contents, error) {
	img, err := loadImage(c, fc)
	if err != nil {
		return nil, fmt.Errorf("hole %q: %w", hole.Name, err)
	}
	if img == nil {
		return nil, nil
	}
	img = downsample(img, hole, fc.MaxDPI)
	b := img.Bounds()
	x, y, w, h := renderer.FitImage(hole, b.Dx(), b.Dy())
	if err := fc.Doc.DrawImage(img, x, y, w, h); err != nil {
		return nil, fmt.Errorf("hole %q: %w", hole.Name, err)
	}
	fc.logger().Debug("Image placed",
		zap.String("hole", hole.Name),
		zap.Int("px", b.Dx()),
		zap.Float64("width", w),
		zap.Float64("height", h))
	fc.Record(HoleReport{
		Hole:  hole.Name,
		Type:  hole.Type,
		Image: &Placement{X: x, Y: y, Width: w, Height: h},
	})
	return nil, nil
}

func loadImage(c Contents, fc *Context) (image.Image, error) {
	if c.Image != nil {
		return c.Image, nil
	}
	data := c.ImageData
	if len(data) == 0 && c.ImagePath != "" {
		path := binding.Interpolate(c.ImagePath, fc.Data)
		if !filepath.IsAbs(path) {
			path = filepath.Join(fc.BaseDir, path)
		}
		var err error
		if data, err = os.ReadFile(path); err != nil {
			return nil, fmt.Errorf("读取图片 %s 失败: %w", c.ImagePath, err)
		}
	}
	if len(data) == 0 {
		return nil, nil
	}
	return decodeImage(data)
}

// decodeImage 先用文件头识别类型，再交给已注册的解码器。
func decodeImage(data []byte) (image.Image, error) {
	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown {
		return nil, fmt.Errorf("无法识别的图片数据")
	}
	if !supportedImages[kind.Extension] {
		return nil, fmt.Errorf("不支持的图片类型 %s", kind.MIME.Value)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("解码 %s 图片失败: %w", kind.Extension, err)
	}
	return img, nil
}

// downsample 在图片像素宽度超过洞宽对应的 maxDPI 时等比缩小。
func downsample(img image.Image, hole layout.Hole, maxDPI float64) image.Image {
	if maxDPI <= 0 || hole.Width <= 0 {
		return img
	}
	limit := int(math.Ceil(hole.Width / 72 * maxDPI))
	if limit <= 0 || img.Bounds().Dx() <= limit {
		return img
	}
	return imaging.Resize(img, limit, 0, imaging.Lanczos)
}
