package service

import (
	"context"
	"fmt"
	"image"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"go-outfit-advisor/internal/analyzer"
	apperrors "go-outfit-advisor/internal/errors"
	"go-outfit-advisor/internal/harmony"
	"go-outfit-advisor/internal/logger"
	"go-outfit-advisor/internal/observer"
	"go-outfit-advisor/internal/repository"
	"go-outfit-advisor/internal/storage"
	"go-outfit-advisor/internal/strategy"
	"go-outfit-advisor/pkg/models"
	"go-outfit-advisor/pkg/validation"
)

// MinImagesPerGeneration is the smallest working set a generation request
// will accept.
const MinImagesPerGeneration = 2

// colorsPerImage caps how many representative colors each image contributes
// to the harmony classifier.
const colorsPerImage = 2

// UploadFile is one file from a multipart upload batch
type UploadFile struct {
	OriginalName string
	Data         []byte
}

/// OutfitService orchestrates the analysis pipeline: store uploads, extract
// palettes, select combinations and score them.
type OutfitService interface {
	UploadImages(ctx context.Context, sessionID string, files []UploadFile) (*models.UploadResponse, error)
	GenerateCombinations(ctx context.Context, sessionID string, req models.GenerateRequest) (*models.GenerateResponse, error)
	AnalyzeUpload(ctx context.Context, originalName string, data []byte) (*models.AnalyzeResponse, error)
	AnalyzeURL(ctx context.Context, imageURL string) (*models.AnalyzeResponse, error)
	RemoveImage(ctx context.Context, sessionID, imageID string) (*models.RemoveResponse, error)
}

// outfitService implements OutfitService
type outfitService struct {
	wardrobe      repository.WardrobeRepository
	colorAnalyzer analyzer.ColorAnalyzer
	store         storage.ImageStore
	fetcher       storage.ImageFetcher
	selector      strategy.CombinationStrategy
	events        observer.Subject
	uploadRules   *validation.UploadValidator
	urlRules      *validation.URLValidator
	extraction    analyzer.ExtractionOptions
}

// NewOutfitService creates a new outfit service
func NewOutfitService(
	wardrobe repository.WardrobeRepository,
	colorAnalyzer analyzer.ColorAnalyzer,
	store storage.ImageStore,
	fetcher storage.ImageFetcher,
	selector strategy.CombinationStrategy,
	events observer.Subject,
	uploadRules *validation.UploadValidator,
	extraction analyzer.ExtractionOptions,
) OutfitService {
	return &outfitService{
		wardrobe:      wardrobe,
		colorAnalyzer: colorAnalyzer,
		store:         store,
		fetcher:       fetcher,
		selector:      selector,
		events:        events,
		uploadRules:   uploadRules,
		urlRules:      validation.NewURLValidator(),
		extraction:    extraction,
	}
}

// UploadImages validates, stores and analyzes an upload batch. Files with a
// bad extension are dropped; files that fail to decode degrade to the
// fallback palette instead of failing the batch.
func (s *outfitService) UploadImages(ctx context.Context, sessionID string, files []UploadFile) (*models.UploadResponse, error) {
	start := time.Now()

	type pending struct {
		file     UploadFile
		filename string
	}
	accepted := make([]pending, 0, len(files))
	items := make([]analyzer.BatchItem, 0, len(files))

	for _, f := range files {
		if err := s.uploadRules.ValidateFilename(f.OriginalName); err != nil {
			logger.WithError(err).WithField("file", f.OriginalName).Warn("Skipping invalid upload")
			continue
		}
		if err := s.uploadRules.ValidateSize(int64(len(f.Data))); err != nil {
			logger.WithError(err).WithField("file", f.OriginalName).Warn("Skipping oversized upload")
			continue
		}

		img, err := analyzer.Decode(f.Data)
		if err != nil {
			// Degrade to the fallback palette rather than dropping the file
			logger.WithError(err).WithField("file", f.OriginalName).Warn("Image undecodable, using fallback palette")
			img = nil
		}

		ext := strings.ToLower(filepath.Ext(f.OriginalName))
		accepted = append(accepted, pending{
			file:     f,
			filename: uuid.NewString() + ext,
		})
		items = append(items, analyzer.BatchItem{Img: img, OriginalName: f.OriginalName})
	}

	if len(accepted) == 0 {
		return nil, apperrors.NewValidationError("no valid images in upload", nil)
	}

	analyses := s.colorAnalyzer.AnalyzeBatch(items, s.extraction)

	stored := make([]repository.ClothingImage, 0, len(accepted))
	for i, p := range accepted {
		if err := s.store.Save(ctx, p.filename, p.file.Data); err != nil {
			logger.WithError(err).WithField("file", p.file.OriginalName).Error("Failed to store upload")
			continue
		}

		img := repository.ClothingImage{
			ID:           uuid.NewString(),
			Filename:     p.filename,
			OriginalName: p.file.OriginalName,
			Colors:       analyses[i].Colors,
			ColorNames:   analyses[i].ColorNames,
			ClothingType: analyses[i].ClothingType,
			URL:          s.store.URL(p.filename),
		}
		s.wardrobe.Add(sessionID, img)
		stored = append(stored, img)
	}

	if len(stored) == 0 {
		return nil, apperrors.NewInternalError("failed to store any upload", nil)
	}

	s.events.NotifyObservers(ctx, observer.PipelineEvent{
		EventType:      observer.ImagesUploaded,
		Timestamp:      start,
		SessionID:      sessionID,
		ProcessingTime: time.Since(start),
		Success:        true,
		Metadata:       map[string]interface{}{"count": len(stored)},
	})

	return &models.UploadResponse{
		Success: true,
		Images:  stored,
		Message: fmt.Sprintf("%d image(s) uploaded and analyzed", len(stored)),
	}, nil
}

// GenerateCombinations selects subsets of the working set and scores each
// one deterministically. Results come back sorted by score descending.
func (s *outfitService) GenerateCombinations(ctx context.Context, sessionID string, req models.GenerateRequest) (*models.GenerateResponse, error) {
	start := time.Now()

	images, err := s.resolveImages(sessionID, req.Images)
	if err != nil {
		s.notifyGenerationFailure(ctx, sessionID, start, err)
		return nil, err
	}
	if len(images) < MinImagesPerGeneration {
		err := apperrors.NewValidationError(
			fmt.Sprintf("at least %d images are required", MinImagesPerGeneration), nil)
		s.notifyGenerationFailure(ctx, sessionID, start, err)
		return nil, err
	}

	// Sequence is taken before any work so a slow early request can never
	// claim a later number than a fast late one.
	sequence := s.wardrobe.NextSequence(sessionID)

	occasion := strings.ToLower(strings.TrimSpace(req.Occasion))
	clothingType := strings.ToLower(strings.TrimSpace(req.ClothingType))

	subsets := s.selector.Select(images)
	combos := make([]models.Combination, 0, len(subsets))
	for i, subset := range subsets {
		palette := combinedPalette(subset)
		names := combinedNames(subset)

		label := harmony.Classify(palette)
		score := harmony.Score(label, occasion)
		rating := harmony.Rating(score)

		combos = append(combos, models.Combination{
			ID:             i + 1,
			Images:         subset,
			Score:          score,
			Rating:         rating,
			Harmony:        string(label),
			StyleNotes:     harmony.StyleNotes(label, occasion, clothingType),
			ColorAnalysis:  harmony.ColorAnalysis(label, names),
			Recommendation: harmony.Recommendation(label, occasion, rating),
		})
	}

	sort.SliceStable(combos, func(a, b int) bool {
		return combos[a].Score > combos[b].Score
	})

	s.events.NotifyObservers(ctx, observer.PipelineEvent{
		EventType:      observer.CombinationsGenerated,
		Timestamp:      start,
		SessionID:      sessionID,
		ProcessingTime: time.Since(start),
		Success:        true,
		Metadata: map[string]interface{}{
			"combinations": len(combos),
			"occasion":     occasion,
			"sequence":     sequence,
		},
	})

	return &models.GenerateResponse{
		Success:           true,
		Combinations:      combos,
		TotalCombinations: len(combos),
		Sequence:          sequence,
	}, nil
}

// AnalyzeUpload runs the ad hoc single-image analysis used by the
// analyze-image endpoint.
func (s *outfitService) AnalyzeUpload(ctx context.Context, originalName string, data []byte) (*models.AnalyzeResponse, error) {
	if err := s.uploadRules.ValidateFilename(originalName); err != nil {
		return nil, err
	}

	img, err := analyzer.Decode(data)
	if err != nil {
		img = nil // analysis degrades to the fallback palette
	}
	return s.analyze(ctx, img, originalName)
}

// AnalyzeURL fetches a remote image and analyzes it
func (s *outfitService) AnalyzeURL(ctx context.Context, imageURL string) (*models.AnalyzeResponse, error) {
	if err := s.urlRules.ValidateImageURL(imageURL); err != nil {
		return nil, err
	}

	data, err := s.fetcher.FetchImage(ctx, imageURL)
	if err != nil {
		if ctx.Err() != nil {
			return nil, apperrors.NewTimeoutError("image fetch timed out", err)
		}
		return nil, apperrors.NewNetworkError("failed to fetch image", err)
	}

	img, err := analyzer.Decode(data)
	if err != nil {
		img = nil
	}
	return s.analyze(ctx, img, filepath.Base(imageURL))
}

// RemoveImage drops an image from the working set and deletes its stored
// file, returning the set to its pre-upload state.
func (s *outfitService) RemoveImage(ctx context.Context, sessionID, imageID string) (*models.RemoveResponse, error) {
	removed, err := s.wardrobe.Remove(sessionID, imageID)
	if err != nil {
		return nil, apperrors.NewNotFoundError("image not in working set", err)
	}

	if err := s.store.Remove(ctx, removed.Filename); err != nil {
		// The working set is already consistent; an orphaned file is only
		// worth a log line.
		logger.WithError(err).WithField("filename", removed.Filename).Warn("Failed to delete stored upload")
	}

	s.events.NotifyObservers(ctx, observer.PipelineEvent{
		EventType: observer.ImageRemoved,
		Timestamp: time.Now(),
		SessionID: sessionID,
		Success:   true,
		Metadata:  map[string]interface{}{"image_id": imageID},
	})

	return &models.RemoveResponse{
		Success:   true,
		RemovedID: imageID,
		Remaining: len(s.wardrobe.List(sessionID)),
	}, nil
}

// analyze runs the analyzer and maps its result onto the API payload.
// Ad hoc requests are interactive, so they use the fast extraction profile
// instead of the batch one.
func (s *outfitService) analyze(ctx context.Context, img image.Image, originalName string) (*models.AnalyzeResponse, error) {
	opts := analyzer.FastOptions().WithPaletteSize(s.extraction.PaletteSize)
	result := s.colorAnalyzer.AnalyzeWithOptions(img, originalName, opts)

	s.events.NotifyObservers(ctx, observer.PipelineEvent{
		EventType:      observer.ImageAnalyzed,
		Timestamp:      result.Timestamp,
		ProcessingTime: time.Duration(result.ProcessingTimeSec * float64(time.Second)),
		Success:        true,
		Metadata:       map[string]interface{}{"file": originalName, "fallback": result.Fallback},
	})

	return &models.AnalyzeResponse{
		Success: true,
		Analysis: models.AnalysisDetail{
			Colors:         result.Colors,
			ColorNames:     result.ColorNames,
			ClothingType:   result.ClothingType,
			Dimensions:     models.Dimensions{Width: result.Width, Height: result.Height},
			DominantColor:  result.DominantColor,
			ColorDiversity: result.ColorDiversity,
		},
	}, nil
}

// resolveImages maps requested ids to working-set images; an empty id list
// selects the whole set.
func (s *outfitService) resolveImages(sessionID string, ids []string) ([]repository.ClothingImage, error) {
	if len(ids) == 0 {
		return s.wardrobe.List(sessionID), nil
	}

	out := make([]repository.ClothingImage, 0, len(ids))
	for _, id := range ids {
		img, err := s.wardrobe.Get(sessionID, id)
		if err != nil {
			return nil, apperrors.NewValidationError(
				fmt.Sprintf("image %q is not in the working set", id), err)
		}
		out = append(out, img)
	}
	return out, nil
}

// combinedPalette concatenates up to colorsPerImage representative colors
// from each image, dominant first.
func combinedPalette(images []repository.ClothingImage) []string {
	palette := make([]string, 0, len(images)*colorsPerImage)
	for _, img := range images {
		n := len(img.Colors)
		if n > colorsPerImage {
			n = colorsPerImage
		}
		palette = append(palette, img.Colors[:n]...)
	}
	return palette
}

// combinedNames mirrors combinedPalette for the human-readable names
func combinedNames(images []repository.ClothingImage) []string {
	names := make([]string, 0, len(images)*colorsPerImage)
	for _, img := range images {
		n := len(img.ColorNames)
		if n > colorsPerImage {
			n = colorsPerImage
		}
		names = append(names, img.ColorNames[:n]...)
	}
	return names
}

func (s *outfitService) notifyGenerationFailure(ctx context.Context, sessionID string, start time.Time, err error) {
	s.events.NotifyObservers(ctx, observer.PipelineEvent{
		EventType:      observer.GenerationFailed,
		Timestamp:      start,
		SessionID:      sessionID,
		ProcessingTime: time.Since(start),
		Success:        false,
		ErrorMessage:   err.Error(),
	})
}
