package analyzer

import "time"

// ImageAnalysis holds the result of analyzing a single clothing image.
// Colors are hex strings ordered by cluster size, most dominant first.
type ImageAnalysis struct {
	Colors            []string  `json:"colors"`
	ColorNames        []string  `json:"color_names"`
	ClothingType      string    `json:"clothing_type"`
	Width             int       `json:"width"`
	Height            int       `json:"height"`
	DominantColor     string    `json:"dominant_color"`
	ColorDiversity    float64   `json:"color_diversity"`
	AvgLuminance      float64   `json:"avg_luminance"`
	AvgSaturation     float64   `json:"avg_saturation"`
	Fallback          bool      `json:"fallback,omitempty"`
	Timestamp         time.Time `json:"timestamp"`
	ProcessingTimeSec float64   `json:"processing_time_sec"`
}

// metrics holds internal calculation results
type metrics struct {
	avgLuminance, avgSaturation float64
	avgR, avgG, avgB            float64
}
