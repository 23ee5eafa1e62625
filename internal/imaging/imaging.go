// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package imaging normalises uploaded post images using libvips. Each
// upload is converted to WebP in two sizes: a card thumbnail for post
// lists and a full-width version for the detail page. Variants wider
// than the source are capped to avoid upscaling.
package imaging

import (
	"fmt"
	"log/slog"

	"github.com/davidbyttow/govips/v2/vips"
)

// Variant describes a single output size.
type Variant struct {
	Name    string // e.g., "card", "full"
	Width   int    // Target width in pixels
	Quality int    // WebP quality 1-100
}

// DefaultVariants covers the two places a post image appears.
var DefaultVariants = []Variant{
	{Name: "card", Width: 640, Quality: 78},
	{Name: "full", Width: 1280, Quality: 82},
}

// ProcessedImage holds one generated variant ready for upload.
type ProcessedImage struct {
	Name        string
	Width       int
	Height      int
	Data        []byte // WebP-encoded image bytes
	ContentType string // Always "image/webp"
}

// Startup initialises the libvips library. Call once at application start.
// concurrency controls the number of libvips worker threads (0 = auto).
func Startup(concurrency int) {
	cfg := &vips.Config{
		ConcurrencyLevel: concurrency,
		MaxCacheSize:     100,
		MaxCacheMem:      50 * 1024 * 1024, // 50 MB
	}
	vips.LoggingSettings(nil, vips.LogLevelWarning)
	vips.Startup(cfg)
	slog.Info("libvips started", "version", vips.Version)
}

// Shutdown releases libvips resources. Call at application shutdown.
func Shutdown() {
	vips.Shutdown()
}

// GenerateVariants converts the uploaded image into WebP variants. It
// caps widths at the original to avoid upscaling. Every variant is
// always produced: callers address objects by variant name.
func GenerateVariants(original []byte, variants []Variant) ([]ProcessedImage, error) {
	if len(variants) == 0 {
		variants = DefaultVariants
	}

	// Probe original dimensions without fully decoding.
	probe, err := vips.NewImageFromBuffer(original)
	if err != nil {
		return nil, fmt.Errorf("imaging: probe failed: %w", err)
	}
	origWidth := probe.Width()
	probe.Close()

	var results []ProcessedImage

	for _, v := range variants {
		targetWidth := v.Width
		if origWidth <= targetWidth {
			targetWidth = origWidth
		}

		img, err := vips.NewThumbnailFromBuffer(original, targetWidth, 0, vips.InterestingNone)
		if err != nil {
			return nil, fmt.Errorf("imaging: thumbnail %s (%dpx): %w", v.Name, targetWidth, err)
		}

		// Auto-rotate based on EXIF orientation, then strip metadata.
		if err := img.AutoRotate(); err != nil {
			img.Close()
			return nil, fmt.Errorf("imaging: autorotate %s: %w", v.Name, err)
		}

		params := vips.NewWebpExportParams()
		params.Quality = v.Quality
		params.Lossless = false
		params.StripMetadata = true

		buf, meta, err := img.ExportWebp(params)
		img.Close()
		if err != nil {
			return nil, fmt.Errorf("imaging: export %s: %w", v.Name, err)
		}

		results = append(results, ProcessedImage{
			Name:        v.Name,
			Width:       meta.Width,
			Height:      meta.Height,
			Data:        buf,
			ContentType: "image/webp",
		})
	}

	return results, nil
}
