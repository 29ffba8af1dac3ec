package analyzer

import "image"

// ColorAnalyzer defines the main interface for clothing image analysis
type ColorAnalyzer interface {
	Analyze(img image.Image, originalName string) ImageAnalysis

	// Options-based method for callers that need a non-default palette size
	AnalyzeWithOptions(img image.Image, originalName string, options ExtractionOptions) ImageAnalysis

	// AnalyzeBatch analyzes several images concurrently, preserving order
	AnalyzeBatch(items []BatchItem, options ExtractionOptions) []ImageAnalysis

	// Lifecycle management
	Close() error
}

// TypeClassifier infers a clothing type tag from an uploaded file name
type TypeClassifier interface {
	Classify(originalName string) string
}
