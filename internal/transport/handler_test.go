package transport

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"go-outfit-advisor/internal/analyzer"
	"go-outfit-advisor/internal/config"
	"go-outfit-advisor/internal/observer"
	"go-outfit-advisor/internal/repository"
	"go-outfit-advisor/internal/service"
	"go-outfit-advisor/internal/storage"
	"go-outfit-advisor/internal/strategy"
	"go-outfit-advisor/pkg/models"
	"go-outfit-advisor/pkg/validation"
)

func testConfig() *config.Config {
	return &config.Config{
		Host:               "127.0.0.1",
		Port:               "8080",
		RequestTimeout:     10 * time.Second,
		AnalysisTimeout:    10 * time.Second,
		MaxRequestBodySize: 16 * 1024 * 1024,
		SessionTTL:         30 * time.Minute,
		PaletteSize:        5,
	}
}

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	return newTestHandlerWithConfig(t, testConfig())
}

func newTestHandlerWithConfig(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ca, err := analyzer.NewColorAnalyzer()
	if err != nil {
		t.Fatalf("NewColorAnalyzer failed: %v", err)
	}
	t.Cleanup(func() { ca.Close() })

	store, err := storage.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore failed: %v", err)
	}

	events := observer.NewEventBus()
	counters := observer.NewCountingObserver()
	events.Subscribe(counters)

	svc := service.NewOutfitService(
		repository.NewMemoryWardrobe(cfg.SessionTTL),
		ca,
		store,
		storage.NewHTTPImageFetcher(cfg.MaxRequestBodySize),
		strategy.NewSlidingWindowStrategy(),
		events,
		validation.NewUploadValidator(cfg.MaxRequestBodySize),
		analyzer.DefaultOptions(),
	)

	return NewHandler(svc, counters, cfg, store.Dir())
}

func pngBytes(t *testing.T, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode failed: %v", err)
	}
	return buf.Bytes()
}

func multipartBody(t *testing.T, field string, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, data := range files {
		part, err := w.CreateFormFile(field, name)
		if err != nil {
			t.Fatalf("CreateFormFile failed: %v", err)
		}
		if _, err := part.Write(data); err != nil {
			t.Fatalf("part write failed: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("multipart close failed: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func TestHealthEndpoint(t *testing.T) {
	h := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("health status = %d, want 200", rec.Code)
	}

	var resp models.HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid health JSON: %v", err)
	}
	if resp.Status != "available" {
		t.Errorf("Status = %q, want available", resp.Status)
	}
	if resp.Version == "" || resp.Timestamp == "" {
		t.Error("Expected version and timestamp in health payload")
	}
}

func TestUpload_NoFiles(t *testing.T) {
	h := newTestHandler(t)

	body, contentType := multipartBody(t, "images", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("upload without files = %d, want 400", rec.Code)
	}
}

func TestUpload_GeneratesSessionID(t *testing.T) {
	h := newTestHandler(t)

	body, contentType := multipartBody(t, "images", map[string][]byte{
		"red-shirt.png": pngBytes(t, color.RGBA{255, 0, 0, 255}),
	})
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("upload = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Session-ID") == "" {
		t.Error("Expected a generated session id in the response header")
	}
}

func TestUploadAndGenerateFlow(t *testing.T) {
	h := newTestHandler(t)
	session := "flow-session"

	// Upload three solid-color clothing images
	body, contentType := multipartBody(t, "images", map[string][]byte{
		"red-shirt.png":  pngBytes(t, color.RGBA{255, 0, 0, 255}),
		"cyan-pants.png": pngBytes(t, color.RGBA{0, 255, 255, 255}),
		"blue-coat.png":  pngBytes(t, color.RGBA{0, 0, 255, 255}),
	})
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Session-ID", session)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("upload = %d (body: %s)", rec.Code, rec.Body.String())
	}

	var up models.UploadResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &up); err != nil {
		t.Fatalf("invalid upload JSON: %v", err)
	}
	if len(up.Images) != 3 {
		t.Fatalf("Expected 3 uploaded images, got %d", len(up.Images))
	}

	// Uploaded files must be downloadable from the static route
	fileReq := httptest.NewRequest(http.MethodGet, up.Images[0].URL, nil)
	fileRec := httptest.NewRecorder()
	h.ServeHTTP(fileRec, fileReq)
	if fileRec.Code != http.StatusOK {
		t.Errorf("static file fetch = %d, want 200", fileRec.Code)
	}

	// Generate combinations over the whole working set
	genBody, _ := json.Marshal(models.GenerateRequest{Occasion: "casual"})
	genReq := httptest.NewRequest(http.MethodPost, "/api/generate-combinations", bytes.NewReader(genBody))
	genReq.Header.Set("Content-Type", "application/json")
	genReq.Header.Set("X-Session-ID", session)

	genRec := httptest.NewRecorder()
	h.ServeHTTP(genRec, genReq)
	if genRec.Code != http.StatusOK {
		t.Fatalf("generate = %d (body: %s)", genRec.Code, genRec.Body.String())
	}

	var gen models.GenerateResponse
	if err := json.Unmarshal(genRec.Body.Bytes(), &gen); err != nil {
		t.Fatalf("invalid generate JSON: %v", err)
	}
	if gen.Sequence != 1 {
		t.Errorf("Sequence = %d, want 1", gen.Sequence)
	}
	if len(gen.Combinations) == 0 {
		t.Fatal("Expected combinations for a three-image working set")
	}
	for i := 1; i < len(gen.Combinations); i++ {
		if gen.Combinations[i-1].Score < gen.Combinations[i].Score {
			t.Errorf("Combinations not sorted descending at index %d", i)
		}
	}

	// Remove one image and confirm the working set shrinks
	delReq := httptest.NewRequest(http.MethodDelete, "/api/images/"+up.Images[0].ID, nil)
	delReq.Header.Set("X-Session-ID", session)
	delRec := httptest.NewRecorder()
	h.ServeHTTP(delRec, delReq)
	if delRec.Code != http.StatusOK {
		t.Fatalf("delete = %d (body: %s)", delRec.Code, delRec.Body.String())
	}

	var rm models.RemoveResponse
	if err := json.Unmarshal(delRec.Body.Bytes(), &rm); err != nil {
		t.Fatalf("invalid remove JSON: %v", err)
	}
	if rm.Remaining != 2 {
		t.Errorf("Remaining = %d, want 2", rm.Remaining)
	}
}

func TestGenerate_MissingOccasion(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/generate-combinations",
		bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("generate without occasion = %d, want 400", rec.Code)
	}
}

func TestGenerate_EmptyWorkingSet(t *testing.T) {
	h := newTestHandler(t)

	body, _ := json.Marshal(models.GenerateRequest{Occasion: "casual"})
	req := httptest.NewRequest(http.MethodPost, "/api/generate-combinations", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Session-ID", "empty-session")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("generate on empty set = %d, want 400", rec.Code)
	}
}

func TestAnalyzeImage_Multipart(t *testing.T) {
	h := newTestHandler(t)

	body, contentType := multipartBody(t, "image", map[string][]byte{
		"green-dress.png": pngBytes(t, color.RGBA{0, 128, 0, 255}),
	})
	req := httptest.NewRequest(http.MethodPost, "/api/analyze-image", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("analyze = %d (body: %s)", rec.Code, rec.Body.String())
	}

	var resp models.AnalyzeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid analyze JSON: %v", err)
	}
	if resp.Analysis.ClothingType != "dress" {
		t.Errorf("ClothingType = %s, want dress", resp.Analysis.ClothingType)
	}
	if len(resp.Analysis.Colors) == 0 {
		t.Error("Expected a non-empty palette")
	}
}

func TestAnalyzeImage_MissingFile(t *testing.T) {
	h := newTestHandler(t)

	body, contentType := multipartBody(t, "wrong-field", map[string][]byte{
		"x.png": pngBytes(t, color.RGBA{1, 2, 3, 255}),
	})
	req := httptest.NewRequest(http.MethodPost, "/api/analyze-image", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("analyze without file = %d, want 400", rec.Code)
	}
}

func TestAnalyzeImage_ByURL(t *testing.T) {
	h := newTestHandler(t)

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(pngBytes(t, color.RGBA{0, 0, 255, 255}))
	}))
	defer upstream.Close()

	body, _ := json.Marshal(map[string]string{"url": upstream.URL + "/blue-jeans.png"})
	req := httptest.NewRequest(http.MethodPost, "/api/analyze-image", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("analyze by URL = %d (body: %s)", rec.Code, rec.Body.String())
	}

	var resp models.AnalyzeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid analyze JSON: %v", err)
	}
	if resp.Analysis.DominantColor != "#0000ff" {
		t.Errorf("DominantColor = %s, want #0000ff", resp.Analysis.DominantColor)
	}
}

func TestAnalyzeImage_ByURL_SlowUpstreamTimesOut(t *testing.T) {
	cfg := testConfig()
	cfg.AnalysisTimeout = 50 * time.Millisecond
	h := newTestHandlerWithConfig(t, cfg)

	release := make(chan struct{})
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer upstream.Close()
	defer close(release)

	body, _ := json.Marshal(map[string]string{"url": upstream.URL + "/slow.png"})
	req := httptest.NewRequest(http.MethodPost, "/api/analyze-image", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusGatewayTimeout {
		t.Errorf("analyze against stalled upstream = %d, want 504 (body: %s)",
			rec.Code, rec.Body.String())
	}
}

func TestAnalyzeImage_BadURLScheme(t *testing.T) {
	h := newTestHandler(t)

	body, _ := json.Marshal(map[string]string{"url": "ftp://example.com/x.png"})
	req := httptest.NewRequest(http.MethodPost, "/api/analyze-image", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("analyze with ftp URL = %d, want 400", rec.Code)
	}
}

func TestRemoveImage_Unknown(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodDelete, "/api/images/no-such-id", nil)
	req.Header.Set("X-Session-ID", "s1")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("delete unknown image = %d, want 404", rec.Code)
	}
}
