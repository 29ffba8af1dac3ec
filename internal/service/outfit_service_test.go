package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"go-outfit-advisor/internal/analyzer"
	apperrors "go-outfit-advisor/internal/errors"
	"go-outfit-advisor/internal/observer"
	"go-outfit-advisor/internal/repository"
	"go-outfit-advisor/internal/strategy"
	"go-outfit-advisor/pkg/models"
	"go-outfit-advisor/pkg/validation"
)

// fakeStore keeps stored uploads in memory
type fakeStore struct {
	files map[string][]byte
}

func newFakeStore() *fakeStore {
	return &fakeStore{files: make(map[string][]byte)}
}

func (f *fakeStore) Save(_ context.Context, filename string, data []byte) error {
	f.files[filename] = data
	return nil
}

func (f *fakeStore) Remove(_ context.Context, filename string) error {
	delete(f.files, filename)
	return nil
}

func (f *fakeStore) URL(filename string) string {
	return "/uploads/" + filename
}

// fakeFetcher returns canned bytes or a canned error
type fakeFetcher struct {
	data []byte
	err  error
}

func (f *fakeFetcher) FetchImage(context.Context, string) ([]byte, error) {
	return f.data, f.err
}

func pngBytes(t *testing.T, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 20, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode failed: %v", err)
	}
	return buf.Bytes()
}

type serviceFixture struct {
	svc      OutfitService
	store    *fakeStore
	fetcher  *fakeFetcher
	wardrobe *repository.MemoryWardrobe
	counters *observer.CountingObserver
}

func newFixture(t *testing.T) *serviceFixture {
	t.Helper()

	ca, err := analyzer.NewColorAnalyzer()
	if err != nil {
		t.Fatalf("NewColorAnalyzer failed: %v", err)
	}
	t.Cleanup(func() { ca.Close() })

	store := newFakeStore()
	fetcher := &fakeFetcher{}
	wardrobe := repository.NewMemoryWardrobe(0)
	events := observer.NewEventBus()
	counters := observer.NewCountingObserver()
	events.Subscribe(counters)

	svc := NewOutfitService(
		wardrobe,
		ca,
		store,
		fetcher,
		strategy.NewSlidingWindowStrategy(),
		events,
		validation.NewUploadValidator(16*1024*1024),
		analyzer.DefaultOptions(),
	)

	return &serviceFixture{svc: svc, store: store, fetcher: fetcher, wardrobe: wardrobe, counters: counters}
}

func TestUploadImages_SkipsInvalidFiles(t *testing.T) {
	fx := newFixture(t)

	files := []UploadFile{
		{OriginalName: "red-shirt.png", Data: pngBytes(t, color.RGBA{255, 0, 0, 255})},
		{OriginalName: "notes.txt", Data: []byte("not an image")},
		{OriginalName: "blue-jeans.png", Data: pngBytes(t, color.RGBA{0, 0, 255, 255})},
	}

	resp, err := fx.svc.UploadImages(context.Background(), "s1", files)
	if err != nil {
		t.Fatalf("UploadImages failed: %v", err)
	}
	if len(resp.Images) != 2 {
		t.Fatalf("Expected 2 stored images, got %d", len(resp.Images))
	}
	if len(fx.store.files) != 2 {
		t.Errorf("Expected 2 files in store, got %d", len(fx.store.files))
	}
	if len(fx.wardrobe.List("s1")) != 2 {
		t.Errorf("Expected 2 images in working set")
	}

	first := resp.Images[0]
	if first.ClothingType != "top" {
		t.Errorf("ClothingType = %s, want top", first.ClothingType)
	}
	if len(first.Colors) == 0 || first.Colors[0] != "#ff0000" {
		t.Errorf("Colors = %v, want leading #ff0000", first.Colors)
	}
	if first.URL != "/uploads/"+first.Filename {
		t.Errorf("URL = %s does not match stored filename %s", first.URL, first.Filename)
	}
}

func TestUploadImages_AllInvalid(t *testing.T) {
	fx := newFixture(t)

	files := []UploadFile{
		{OriginalName: "notes.txt", Data: []byte("x")},
		{OriginalName: "empty.png", Data: nil},
	}

	_, err := fx.svc.UploadImages(context.Background(), "s1", files)
	if err == nil {
		t.Fatal("Expected error when no file survives validation")
	}
	if !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
		t.Errorf("Expected validation error, got %v", err)
	}
}

func TestUploadImages_UndecodableFallsBack(t *testing.T) {
	fx := newFixture(t)

	files := []UploadFile{
		{OriginalName: "corrupt.png", Data: []byte("valid extension, broken bytes")},
	}

	resp, err := fx.svc.UploadImages(context.Background(), "s1", files)
	if err != nil {
		t.Fatalf("UploadImages failed: %v", err)
	}
	if len(resp.Images) != 1 {
		t.Fatalf("Expected the corrupt file to be kept, got %d images", len(resp.Images))
	}

	img := resp.Images[0]
	if len(img.Colors) != 2 || img.Colors[0] != "#000000" || img.Colors[1] != "#ffffff" {
		t.Errorf("Expected fallback palette, got %v", img.Colors)
	}
	if img.ClothingType != "unknown" {
		t.Errorf("Expected unknown type for fallback, got %s", img.ClothingType)
	}
}

func TestGenerateCombinations_RequiresTwoImages(t *testing.T) {
	fx := newFixture(t)

	files := []UploadFile{
		{OriginalName: "solo.png", Data: pngBytes(t, color.RGBA{255, 0, 0, 255})},
	}
	if _, err := fx.svc.UploadImages(context.Background(), "s1", files); err != nil {
		t.Fatalf("UploadImages failed: %v", err)
	}

	_, err := fx.svc.GenerateCombinations(context.Background(), "s1",
		models.GenerateRequest{Occasion: "casual"})
	if err == nil {
		t.Fatal("Expected error for a single-image working set")
	}
	if !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
		t.Errorf("Expected validation error, got %v", err)
	}
	if got := fx.counters.Snapshot()[observer.GenerationFailed]; got != 1 {
		t.Errorf("Expected 1 generation failure event, got %d", got)
	}
}

func TestGenerateCombinations_SortedAndSequenced(t *testing.T) {
	fx := newFixture(t)

	files := []UploadFile{
		{OriginalName: "red-shirt.png", Data: pngBytes(t, color.RGBA{255, 0, 0, 255})},
		{OriginalName: "cyan-pants.png", Data: pngBytes(t, color.RGBA{0, 255, 255, 255})},
		{OriginalName: "green-jacket.png", Data: pngBytes(t, color.RGBA{0, 255, 0, 255})},
	}
	if _, err := fx.svc.UploadImages(context.Background(), "s1", files); err != nil {
		t.Fatalf("UploadImages failed: %v", err)
	}

	resp, err := fx.svc.GenerateCombinations(context.Background(), "s1",
		models.GenerateRequest{Occasion: "casual"})
	if err != nil {
		t.Fatalf("GenerateCombinations failed: %v", err)
	}

	if resp.Sequence != 1 {
		t.Errorf("First generation sequence = %d, want 1", resp.Sequence)
	}
	if resp.TotalCombinations != len(resp.Combinations) {
		t.Errorf("TotalCombinations = %d, but %d combinations returned",
			resp.TotalCombinations, len(resp.Combinations))
	}
	if len(resp.Combinations) == 0 {
		t.Fatal("Expected at least one combination")
	}

	for i := 1; i < len(resp.Combinations); i++ {
		if resp.Combinations[i-1].Score < resp.Combinations[i].Score {
			t.Errorf("Combinations not sorted by score descending at index %d", i)
		}
	}
	for _, combo := range resp.Combinations {
		if combo.Score < 65 || combo.Score > 95 {
			t.Errorf("Score %d outside [65,95]", combo.Score)
		}
		if combo.Rating < 1 || combo.Rating > 5 {
			t.Errorf("Rating %d outside [1,5]", combo.Rating)
		}
		if combo.Harmony == "" || combo.StyleNotes == "" || combo.Recommendation == "" {
			t.Error("Expected non-empty harmony verdict fields")
		}
		if len(combo.Images) < 2 {
			t.Errorf("Combination has %d images, want at least 2", len(combo.Images))
		}
	}

	// Sequence is per session and monotonically increasing
	again, err := fx.svc.GenerateCombinations(context.Background(), "s1",
		models.GenerateRequest{Occasion: "formal"})
	if err != nil {
		t.Fatalf("Second generation failed: %v", err)
	}
	if again.Sequence != 2 {
		t.Errorf("Second generation sequence = %d, want 2", again.Sequence)
	}
}

func TestGenerateCombinations_UnknownImageID(t *testing.T) {
	fx := newFixture(t)

	files := []UploadFile{
		{OriginalName: "a.png", Data: pngBytes(t, color.RGBA{255, 0, 0, 255})},
		{OriginalName: "b.png", Data: pngBytes(t, color.RGBA{0, 0, 255, 255})},
	}
	if _, err := fx.svc.UploadImages(context.Background(), "s1", files); err != nil {
		t.Fatalf("UploadImages failed: %v", err)
	}

	_, err := fx.svc.GenerateCombinations(context.Background(), "s1",
		models.GenerateRequest{Images: []string{"no-such-id"}, Occasion: "casual"})
	if err == nil {
		t.Fatal("Expected error for unknown image id")
	}
	if !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
		t.Errorf("Expected validation error, got %v", err)
	}
}

func TestGenerateCombinations_Deterministic(t *testing.T) {
	fx := newFixture(t)

	files := []UploadFile{
		{OriginalName: "a.png", Data: pngBytes(t, color.RGBA{255, 0, 0, 255})},
		{OriginalName: "b.png", Data: pngBytes(t, color.RGBA{0, 255, 255, 255})},
	}
	if _, err := fx.svc.UploadImages(context.Background(), "s1", files); err != nil {
		t.Fatalf("UploadImages failed: %v", err)
	}

	req := models.GenerateRequest{Occasion: "party"}
	first, err := fx.svc.GenerateCombinations(context.Background(), "s1", req)
	if err != nil {
		t.Fatalf("GenerateCombinations failed: %v", err)
	}
	again, err := fx.svc.GenerateCombinations(context.Background(), "s1", req)
	if err != nil {
		t.Fatalf("GenerateCombinations failed: %v", err)
	}

	if len(first.Combinations) != len(again.Combinations) {
		t.Fatal("Combination count changed between identical requests")
	}
	for i := range first.Combinations {
		if first.Combinations[i].Score != again.Combinations[i].Score ||
			first.Combinations[i].Harmony != again.Combinations[i].Harmony {
			t.Errorf("Combination %d differs between identical requests", i)
		}
	}
}

func TestRemoveImage(t *testing.T) {
	fx := newFixture(t)

	files := []UploadFile{
		{OriginalName: "a.png", Data: pngBytes(t, color.RGBA{255, 0, 0, 255})},
		{OriginalName: "b.png", Data: pngBytes(t, color.RGBA{0, 0, 255, 255})},
	}
	up, err := fx.svc.UploadImages(context.Background(), "s1", files)
	if err != nil {
		t.Fatalf("UploadImages failed: %v", err)
	}

	target := up.Images[0]
	resp, err := fx.svc.RemoveImage(context.Background(), "s1", target.ID)
	if err != nil {
		t.Fatalf("RemoveImage failed: %v", err)
	}
	if resp.RemovedID != target.ID {
		t.Errorf("RemovedID = %s, want %s", resp.RemovedID, target.ID)
	}
	if resp.Remaining != 1 {
		t.Errorf("Remaining = %d, want 1", resp.Remaining)
	}
	if _, ok := fx.store.files[target.Filename]; ok {
		t.Error("Stored file should be deleted with the image")
	}

	// Second removal of the same id is a not-found error
	_, err = fx.svc.RemoveImage(context.Background(), "s1", target.ID)
	if !apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
		t.Errorf("Expected not-found error, got %v", err)
	}
}

func TestAnalyzeUpload(t *testing.T) {
	fx := newFixture(t)

	resp, err := fx.svc.AnalyzeUpload(context.Background(), "green-dress.png",
		pngBytes(t, color.RGBA{0, 128, 0, 255}))
	if err != nil {
		t.Fatalf("AnalyzeUpload failed: %v", err)
	}
	if !resp.Success {
		t.Error("Expected success")
	}
	if resp.Analysis.ClothingType != "dress" {
		t.Errorf("ClothingType = %s, want dress", resp.Analysis.ClothingType)
	}
	if resp.Analysis.Dimensions.Width != 20 || resp.Analysis.Dimensions.Height != 20 {
		t.Errorf("Dimensions = %v", resp.Analysis.Dimensions)
	}

	// Disallowed extension is rejected before any analysis
	if _, err := fx.svc.AnalyzeUpload(context.Background(), "file.tiff", nil); err == nil {
		t.Error("Expected error for unsupported extension")
	}
}

func TestAnalyzeURL(t *testing.T) {
	fx := newFixture(t)
	fx.fetcher.data = pngBytes(t, color.RGBA{0, 0, 255, 255})

	resp, err := fx.svc.AnalyzeURL(context.Background(), "https://example.com/blue-coat.png")
	if err != nil {
		t.Fatalf("AnalyzeURL failed: %v", err)
	}
	if resp.Analysis.DominantColor != "#0000ff" {
		t.Errorf("DominantColor = %s, want #0000ff", resp.Analysis.DominantColor)
	}
	if resp.Analysis.ClothingType != "outerwear" {
		t.Errorf("ClothingType = %s, want outerwear", resp.Analysis.ClothingType)
	}
}

func TestAnalyzeURL_FetchFailure(t *testing.T) {
	fx := newFixture(t)
	fx.fetcher.err = errors.New("connection refused")

	_, err := fx.svc.AnalyzeURL(context.Background(), "https://example.com/x.png")
	if !apperrors.IsType(err, apperrors.ErrorTypeNetwork) {
		t.Errorf("Expected network error, got %v", err)
	}
}

func TestAnalyzeURL_InvalidURL(t *testing.T) {
	fx := newFixture(t)

	for _, u := range []string{"", "ftp://example.com/x.png", "not a url"} {
		if _, err := fx.svc.AnalyzeURL(context.Background(), u); err == nil {
			t.Errorf("Expected validation error for %q", u)
		}
	}
}
