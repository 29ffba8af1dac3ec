package models

import "go-outfit-advisor/internal/repository"

// Combination is one proposed outfit: a subset of the uploaded working set
// with its deterministic harmony verdict.
type Combination struct {
	ID             int                        `json:"id"`
	Images         []repository.ClothingImage `json:"images"`
	Score          int                        `json:"score"`
	Rating         int                        `json:"rating"`
	Harmony        string                     `json:"harmony"`
	StyleNotes     string                     `json:"style_notes"`
	ColorAnalysis  string                     `json:"color_analysis"`
	Recommendation string                     `json:"recommendation"`
}

// GenerateRequest asks for outfit combinations over the working set.
// Images lists image ids; an empty list means the whole working set.
// ColorPreference is accepted for parity with the upload form but does not
// influence the deterministic scorer.
type GenerateRequest struct {
	Images          []string `json:"images"`
	Occasion        string   `json:"occasion" binding:"required"`
	ClothingType    string   `json:"clothingType"`
	ColorPreference string   `json:"colorPreference"`
}

// GenerateResponse returns the scored combinations, best first. Sequence is
// the session's monotonically increasing generation counter; clients should
// drop any response whose sequence is lower than the newest already seen.
type GenerateResponse struct {
	Success           bool          `json:"success"`
	Combinations      []Combination `json:"combinations"`
	TotalCombinations int           `json:"total_combinations"`
	Sequence          int64         `json:"sequence"`
}

// UploadResponse reports the stored and analyzed images of one upload batch
type UploadResponse struct {
	Success bool                       `json:"success"`
	Images  []repository.ClothingImage `json:"images"`
	Message string                     `json:"message"`
}

// Dimensions carries pixel width and height
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// AnalysisDetail is the ad hoc single-image analysis payload
type AnalysisDetail struct {
	Colors         []string   `json:"colors"`
	ColorNames     []string   `json:"color_names"`
	ClothingType   string     `json:"clothing_type"`
	Dimensions     Dimensions `json:"dimensions"`
	DominantColor  string     `json:"dominant_color"`
	ColorDiversity float64    `json:"color_diversity"`
}

// AnalyzeResponse wraps a single-image analysis
type AnalyzeResponse struct {
	Success  bool           `json:"success"`
	Analysis AnalysisDetail `json:"analysis"`
}

// HealthResponse reports service liveness plus pipeline activity counters
type HealthResponse struct {
	Status    string           `json:"status"`
	Timestamp string           `json:"timestamp"`
	Version   string           `json:"version"`
	Activity  map[string]int64 `json:"activity,omitempty"`
}

// RemoveResponse confirms an image left the working set
type RemoveResponse struct {
	Success   bool   `json:"success"`
	RemovedID string `json:"removed_id"`
	Remaining int    `json:"remaining"`
}

// ErrorResponse is the uniform error payload
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
