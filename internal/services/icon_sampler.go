package services

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	sampleSize     = 64
	minSampleAlpha = 32
)

var errNoOpaquePixels = errors.New("icon has no opaque pixels")

func looksLikeSvg(data []byte, contentType string) bool {
	if strings.Contains(contentType, "svg") {
		return true
	}
	head := bytes.TrimSpace(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")))
	if len(head) > 512 {
		head = head[:512]
	}
	return bytes.HasPrefix(head, []byte("<svg")) ||
		(bytes.HasPrefix(head, []byte("<?xml")) && bytes.Contains(head, []byte("<svg")))
}

// decodeIcon rasterizes svg icons and decodes png, jpeg, gif and webp ones.
func decodeIcon(data []byte, contentType string) (image.Image, error) {
	if looksLikeSvg(data, contentType) {
		return rasterizeSvg(data)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding icon: %w", err)
	}
	return img, nil
}

func rasterizeSvg(data []byte) (image.Image, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, fmt.Errorf("parsing svg icon: %w", err)
	}
	icon.SetTarget(0, 0, sampleSize, sampleSize)
	rgba := image.NewRGBA(image.Rect(0, 0, sampleSize, sampleSize))
	scanner := rasterx.NewScannerGV(sampleSize, sampleSize, rgba, rgba.Bounds())
	icon.Draw(rasterx.NewDasher(sampleSize, sampleSize, scanner), 1)
	return rgba, nil
}

// downscale shrinks large rasters so sampling cost stays constant.
func downscale(img image.Image) image.Image {
	b := img.Bounds()
	if b.Dx() <= sampleSize && b.Dy() <= sampleSize {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, sampleSize, sampleSize))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// averageColor is the alpha-weighted mean of the visible pixels.
func averageColor(img image.Image) (color.NRGBA, error) {
	img = downscale(img)
	b := img.Bounds()

	var r, g, bl, weight uint64
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			px := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if px.A < minSampleAlpha {
				continue
			}
			a := uint64(px.A)
			r += uint64(px.R) * a
			g += uint64(px.G) * a
			bl += uint64(px.B) * a
			weight += a
		}
	}
	if weight == 0 {
		return color.NRGBA{}, errNoOpaquePixels
	}
	return color.NRGBA{
		R: uint8(r / weight),
		G: uint8(g / weight),
		B: uint8(bl / weight),
		A: 0xff,
	}, nil
}

// isDark uses perceived brightness (ITU-R BT.601 weights) below the midpoint.
func isDark(c color.NRGBA) bool {
	brightness := (uint32(c.R)*299 + uint32(c.G)*587 + uint32(c.B)*114) / 1000
	return brightness < 128
}

func hexColor(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
