package analyzer

import (
	"image"
	"math"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/stat"
)

// calculateBasicMetrics computes average luminance, saturation and channel
// means over the whole image, processing horizontal strips in parallel.
func calculateBasicMetrics(img image.Image) metrics {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	// Handle empty images
	if width == 0 || height == 0 {
		return metrics{}
	}

	numWorkers := runtime.NumCPU()
	if height < numWorkers {
		numWorkers = height
	}
	rowsPerWorker := (height + numWorkers - 1) / numWorkers // ceil division

	type regionResult struct {
		lum, sat, r, g, b float64
		pixelCount        int
	}

	results := make(chan regionResult, numWorkers)
	var wg sync.WaitGroup

	// Horizontal strips for cache locality
	for i := 0; i < numWorkers; i++ {
		startY := bounds.Min.Y + i*rowsPerWorker
		endY := startY + rowsPerWorker
		if endY > bounds.Max.Y {
			endY = bounds.Max.Y
		}
		wg.Add(1)
		go func(startY, endY int) {
			defer wg.Done()

			var lum, sat, r, g, b float64
			pixelCount := 0

			for y := startY; y < endY; y++ {
				for x := bounds.Min.X; x < bounds.Max.X; x++ {
					rVal, gVal, bVal, _ := img.At(x, y).RGBA()
					rf := float64(rVal) / 65535.0
					gf := float64(gVal) / 65535.0
					bf := float64(bVal) / 65535.0

					_, s, v := rgbToHSV(rf, gf, bf)
					sat += s
					lum += v
					r += rf
					g += gf
					b += bf
					pixelCount++
				}
			}

			results <- regionResult{lum, sat, r, g, b, pixelCount}
		}(startY, endY)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var totalLum, totalSat, totalR, totalG, totalB float64
	totalPixels := 0
	for res := range results {
		totalLum += res.lum
		totalSat += res.sat
		totalR += res.r
		totalG += res.g
		totalB += res.b
		totalPixels += res.pixelCount
	}

	if totalPixels == 0 {
		return metrics{}
	}

	n := float64(totalPixels)
	return metrics{
		avgLuminance:  totalLum / n,
		avgSaturation: totalSat / n,
		avgR:          totalR / n,
		avgG:          totalG / n,
		avgB:          totalB / n,
	}
}

// rgbToHSV converts normalized RGB components in [0,1] to HSV.
// Hue is in degrees [0,360), saturation and value in [0,1].
func rgbToHSV(r, g, b float64) (h, s, v float64) {
	maxC := math.Max(r, math.Max(g, b))
	minC := math.Min(r, math.Min(g, b))
	delta := maxC - minC

	v = maxC
	if maxC > 0 {
		s = delta / maxC
	}

	if delta == 0 {
		return 0, s, v
	}

	switch maxC {
	case r:
		h = 60 * math.Mod((g-b)/delta, 6)
	case g:
		h = 60 * ((b-r)/delta + 2)
	default:
		h = 60 * ((r-g)/delta + 4)
	}
	if h < 0 {
		h += 360
	}
	return h, s, v
}

// colorDiversity measures how spread out a palette is in RGB space: the mean
// pairwise distance between representative colors, normalized to [0,1].
func colorDiversity(centroids []point3) float64 {
	if len(centroids) < 2 {
		return 0
	}

	maxDistance := math.Sqrt(3) * 255 // black to white
	var pairwise []float64
	for i := 0; i < len(centroids); i++ {
		for j := i + 1; j < len(centroids); j++ {
			pairwise = append(pairwise, centroids[i].distance(centroids[j])/maxDistance)
		}
	}
	return stat.Mean(pairwise, nil)
}
