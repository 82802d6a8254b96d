package service

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"

	xdraw "golang.org/x/image/draw"
)

// maxOCRDimension bounds the longer image side before recognition. Larger
// photographed receipts are downscaled; smaller images are never upscaled.
const maxOCRDimension = 2048

// preprocessImage runs the accuracy pipeline on raw image bytes: greyscale,
// contrast normalization, sharpening and a bounded aspect-preserving
// downscale. The result is re-encoded as PNG.
func preprocessImage(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	gray := toGrayscale(img)
	gray = normalizeContrast(gray)
	gray = sharpen(gray)
	result := downscale(gray)

	var buf bytes.Buffer
	if err := png.Encode(&buf, result); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

func toGrayscale(img image.Image) *image.Gray {
	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	xdraw.Draw(gray, bounds, img, bounds.Min, xdraw.Src)
	return gray
}

// normalizeContrast stretches the luminance histogram to the full 0-255
// range. A flat image (min == max) is returned unchanged.
func normalizeContrast(gray *image.Gray) *image.Gray {
	minV, maxV := uint8(255), uint8(0)
	for _, p := range gray.Pix {
		if p < minV {
			minV = p
		}
		if p > maxV {
			maxV = p
		}
	}
	if minV >= maxV {
		return gray
	}

	out := image.NewGray(gray.Bounds())
	scale := 255.0 / float64(maxV-minV)
	for i, p := range gray.Pix {
		out.Pix[i] = uint8(float64(p-minV) * scale)
	}
	return out
}

// sharpen applies a 3x3 unsharp kernel. Border pixels are copied as-is.
func sharpen(gray *image.Gray) *image.Gray {
	bounds := gray.Bounds()
	out := image.NewGray(bounds)
	copy(out.Pix, gray.Pix)

	kernel := [3][3]float64{
		{0, -1, 0},
		{-1, 5, -1},
		{0, -1, 0},
	}

	for y := bounds.Min.Y + 1; y < bounds.Max.Y-1; y++ {
		for x := bounds.Min.X + 1; x < bounds.Max.X-1; x++ {
			var sum float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					sum += float64(gray.GrayAt(x+kx, y+ky).Y) * kernel[ky+1][kx+1]
				}
			}
			if sum < 0 {
				sum = 0
			} else if sum > 255 {
				sum = 255
			}
			out.SetGray(x, y, color.Gray{Y: uint8(sum)})
		}
	}
	return out
}

// downscale limits the longer side to maxOCRDimension, preserving aspect
// ratio. Images already within the bound are returned unchanged.
func downscale(gray *image.Gray) *image.Gray {
	bounds := gray.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	longer := w
	if h > longer {
		longer = h
	}
	if longer <= maxOCRDimension {
		return gray
	}

	scale := float64(maxOCRDimension) / float64(longer)
	dw := int(float64(w) * scale)
	dh := int(float64(h) * scale)

	out := image.NewGray(image.Rect(0, 0, dw, dh))
	xdraw.CatmullRom.Scale(out, out.Bounds(), gray, bounds, xdraw.Src, nil)
	return out
}
