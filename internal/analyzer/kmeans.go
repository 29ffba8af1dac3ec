package analyzer

import (
	"image"
	"math"
	"math/rand"
	"sort"
)

// point3 represents a point in 3D RGB color space.
type point3 struct {
	r, g, b float64
}

// distance calculates the Euclidean distance between two points in RGB space.
func (p point3) distance(other point3) float64 {
	dr := p.r - other.r
	dg := p.g - other.g
	db := p.b - other.b
	return math.Sqrt(dr*dr + dg*dg + db*db)
}

// clusterRun holds the outcome of a single k-means run.
type clusterRun struct {
	centroids []point3
	sizes     []int
	inertia   float64
}

// clusterColors performs k-means clustering over the sampled pixel points.
// The random source is seeded from the options so identical input yields an
// identical palette; opts.Restarts independent runs are performed and the run
// with the lowest within-cluster sum of squares wins.
// Returned centroids are ordered by cluster size, largest first.
func clusterColors(points []point3, k int, opts ExtractionOptions) ([]point3, []int) {
	if len(points) == 0 || k < 1 {
		return nil, nil
	}
	if k > len(points) {
		k = len(points)
	}

	restarts := opts.Restarts
	if restarts < 1 {
		restarts = 1
	}

	var best clusterRun
	best.inertia = math.MaxFloat64

	for attempt := 0; attempt < restarts; attempt++ {
		rng := rand.New(rand.NewSource(opts.Seed + int64(attempt)))
		run := kmeansOnce(points, k, opts, rng)
		if run.inertia < best.inertia {
			best = run
		}
	}

	// Order clusters by size descending; ties broken by centroid order so
	// the result stays deterministic.
	order := make([]int, k)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return best.sizes[order[a]] > best.sizes[order[b]]
	})

	centroids := make([]point3, k)
	sizes := make([]int, k)
	for i, idx := range order {
		centroids[i] = best.centroids[idx]
		sizes[i] = best.sizes[idx]
	}
	return centroids, sizes
}

// kmeansOnce runs a single k-means pass with k-means++ initialization.
func kmeansOnce(points []point3, k int, opts ExtractionOptions, rng *rand.Rand) clusterRun {
	centroids := initializeCentroids(points, k, rng)
	assignments := make([]int, len(points))

	maxIter := opts.MaxIterations
	if maxIter < 1 {
		maxIter = 20
	}

	for iter := 0; iter < maxIter; iter++ {
		// Assign each point to its nearest centroid
		changed := 0
		for i, point := range points {
			nearest := nearestCentroid(point, centroids)
			if assignments[i] != nearest {
				assignments[i] = nearest
				changed++
			}
		}

		// If very few assignments changed (< 1%), we've converged
		if float64(changed)/float64(len(points)) < 0.01 {
			break
		}

		newCentroids := recalculateCentroids(points, assignments, k, rng)

		// Check convergence based on centroid movement
		totalMovement := 0.0
		for i := range centroids {
			totalMovement += centroids[i].distance(newCentroids[i])
		}
		centroids = newCentroids

		if totalMovement/float64(k) < opts.Convergence {
			break
		}
	}

	sizes := make([]int, k)
	inertia := 0.0
	for i, point := range points {
		cluster := nearestCentroid(point, centroids)
		assignments[i] = cluster
		sizes[cluster]++
		d := point.distance(centroids[cluster])
		inertia += d * d
	}

	return clusterRun{centroids: centroids, sizes: sizes, inertia: inertia}
}

// initializeCentroids seeds centroids using the k-means++ scheme, which gives
// better starting positions than uniform random selection.
func initializeCentroids(points []point3, k int, rng *rand.Rand) []point3 {
	centroids := make([]point3, 0, k)
	centroids = append(centroids, points[rng.Intn(len(points))])

	distances := make([]float64, len(points))
	for len(centroids) < k {
		totalDistance := 0.0
		for i, point := range points {
			minDist := math.MaxFloat64
			for _, centroid := range centroids {
				if d := point.distance(centroid); d < minDist {
					minDist = d
				}
			}
			// Squared distance weighting per k-means++
			distances[i] = minDist * minDist
			totalDistance += distances[i]
		}

		if totalDistance == 0 {
			// Remaining points coincide with existing centroids; duplicate
			// the last centroid slightly perturbed so the loop terminates.
			last := centroids[len(centroids)-1]
			centroids = append(centroids, point3{last.r + 0.1, last.g + 0.1, last.b + 0.1})
			continue
		}

		target := rng.Float64() * totalDistance
		cumulative := 0.0
		for i, dist := range distances {
			cumulative += dist
			if cumulative >= target {
				centroids = append(centroids, points[i])
				break
			}
		}
	}

	return centroids
}

// nearestCentroid finds the index of the centroid closest to a point.
func nearestCentroid(point point3, centroids []point3) int {
	minDist := math.MaxFloat64
	nearest := 0
	for i, centroid := range centroids {
		if d := point.distance(centroid); d < minDist {
			minDist = d
			nearest = i
		}
	}
	return nearest
}

// recalculateCentroids moves each centroid to the mean of its assigned points.
func recalculateCentroids(points []point3, assignments []int, k int, rng *rand.Rand) []point3 {
	sums := make([]point3, k)
	counts := make([]int, k)

	for i, point := range points {
		cluster := assignments[i]
		sums[cluster].r += point.r
		sums[cluster].g += point.g
		sums[cluster].b += point.b
		counts[cluster]++
	}

	centroids := make([]point3, k)
	for i := 0; i < k; i++ {
		if counts[i] > 0 {
			centroids[i] = point3{
				r: sums[i].r / float64(counts[i]),
				g: sums[i].g / float64(counts[i]),
				b: sums[i].b / float64(counts[i]),
			}
		} else {
			// Empty cluster: reinitialize from a random point
			centroids[i] = points[rng.Intn(len(points))]
		}
	}
	return centroids
}

// samplePixelPoints flattens image pixels into RGB points. Large images are
// grid-sampled down to maxSamples points.
func samplePixelPoints(img image.Image, maxSamples int) []point3 {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	totalPixels := width * height
	if totalPixels <= 0 {
		return nil
	}
	if maxSamples < 1 {
		maxSamples = 2000
	}

	step := 1
	if totalPixels > maxSamples {
		step = int(math.Sqrt(float64(totalPixels) / float64(maxSamples)))
		if step < 1 {
			step = 1
		}
	}

	points := make([]point3, 0, maxSamples)
	for y := bounds.Min.Y; y < bounds.Max.Y; y += step {
		for x := bounds.Min.X; x < bounds.Max.X; x += step {
			r, g, b, _ := img.At(x, y).RGBA()
			points = append(points, point3{
				r: float64(r >> 8),
				g: float64(g >> 8),
				b: float64(b >> 8),
			})
			if len(points) >= maxSamples {
				return points
			}
		}
	}
	return points
}
