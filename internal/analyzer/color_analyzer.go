package analyzer

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // register GIF format
	_ "image/jpeg" // register JPEG format
	_ "image/png"  // register PNG format
	"math"
	"sync"
	"time"

	_ "golang.org/x/image/bmp"  // register BMP format
	_ "golang.org/x/image/webp" // register WebP format
)

// Degenerate input (unreadable image, zero pixels) degrades to this pair
// instead of failing the caller.
var (
	fallbackColors = []string{"#000000", "#ffffff"}
	fallbackNames  = []string{"black", "white"}
)

// BatchItem pairs a decoded image with the name it was uploaded under.
type BatchItem struct {
	Img          image.Image
	OriginalName string
}

// paletteAnalyzer implements ColorAnalyzer: k-means palette extraction plus
// image metrics and file-name type inference.
type paletteAnalyzer struct {
	classifier TypeClassifier
	pool       *WorkerPool
	defaults   ExtractionOptions
}

// NewColorAnalyzer creates a new color analyzer with default options
func NewColorAnalyzer() (ColorAnalyzer, error) {
	return NewColorAnalyzerWithOptions(DefaultOptions())
}

// NewColorAnalyzerWithOptions creates a color analyzer using the given
// extraction defaults
func NewColorAnalyzerWithOptions(defaults ExtractionOptions) (ColorAnalyzer, error) {
	pool := NewWorkerPool(0) // default CPU count
	pool.Start()

	return &paletteAnalyzer{
		classifier: NewFilenameClassifier(),
		pool:       pool,
		defaults:   defaults,
	}, nil
}

// Decode parses raw upload bytes into an image. Supported formats: PNG, JPEG,
// GIF, BMP, WebP.
func Decode(data []byte) (image.Image, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image (format: %s): %w", format, err)
	}
	return img, nil
}

// Analyze extracts the representative palette and metrics for one image
func (pa *paletteAnalyzer) Analyze(img image.Image, originalName string) ImageAnalysis {
	return pa.AnalyzeWithOptions(img, originalName, pa.defaults)
}

// AnalyzeWithOptions performs analysis with a custom palette configuration
func (pa *paletteAnalyzer) AnalyzeWithOptions(img image.Image, originalName string, options ExtractionOptions) ImageAnalysis {
	start := time.Now()

	if img == nil {
		return pa.fallbackAnalysis(start)
	}

	bounds := img.Bounds()
	points := samplePixelPoints(img, options.MaxSamples)
	if len(points) == 0 {
		return pa.fallbackAnalysis(start)
	}

	k := options.PaletteSize
	if k < 1 {
		k = DefaultOptions().PaletteSize
	}

	centroids, _ := clusterColors(points, k, options)
	if len(centroids) == 0 {
		return pa.fallbackAnalysis(start)
	}

	colors := make([]string, len(centroids))
	names := make([]string, len(centroids))
	for i, c := range centroids {
		r := clampChannel(c.r)
		g := clampChannel(c.g)
		b := clampChannel(c.b)
		colors[i] = fmt.Sprintf("#%02x%02x%02x", r, g, b)
		names[i] = nearestColorName(r, g, b)
	}

	m := calculateBasicMetrics(img)

	return ImageAnalysis{
		Colors:            colors,
		ColorNames:        names,
		ClothingType:      pa.classifier.Classify(originalName),
		Width:             bounds.Dx(),
		Height:            bounds.Dy(),
		DominantColor:     colors[0],
		ColorDiversity:    colorDiversity(centroids),
		AvgLuminance:      m.avgLuminance,
		AvgSaturation:     m.avgSaturation,
		Timestamp:         start,
		ProcessingTimeSec: time.Since(start).Seconds(),
	}
}

// AnalyzeBatch analyzes several images concurrently through the worker pool,
// preserving input order in the result slice. Each batch waits on its own
// WaitGroup, so concurrent upload requests sharing the pool cannot observe
// each other's jobs.
func (pa *paletteAnalyzer) AnalyzeBatch(items []BatchItem, options ExtractionOptions) []ImageAnalysis {
	results := make([]ImageAnalysis, len(items))

	var wg sync.WaitGroup
	for i, item := range items {
		i, item := i, item
		wg.Add(1)
		pa.pool.Submit(func() {
			defer wg.Done()
			results[i] = pa.AnalyzeWithOptions(item.Img, item.OriginalName, options)
		})
	}
	wg.Wait()
	return results
}

// Close releases the worker pool
func (pa *paletteAnalyzer) Close() error {
	pa.pool.Close()
	return nil
}

// fallbackAnalysis builds the degraded result for unreadable input
func (pa *paletteAnalyzer) fallbackAnalysis(start time.Time) ImageAnalysis {
	return ImageAnalysis{
		Colors:            append([]string(nil), fallbackColors...),
		ColorNames:        append([]string(nil), fallbackNames...),
		ClothingType:      ClothingTypeUnknown,
		DominantColor:     fallbackColors[0],
		ColorDiversity:    1.0, // black vs white, maximally spread
		Fallback:          true,
		Timestamp:         start,
		ProcessingTimeSec: time.Since(start).Seconds(),
	}
}

// clampChannel rounds a centroid channel to the nearest valid 8-bit value
func clampChannel(v float64) int {
	r := int(math.Round(v))
	if r < 0 {
		return 0
	}
	if r > 255 {
		return 255
	}
	return r
}
