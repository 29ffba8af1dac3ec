package container

import (
	"fmt"
	"net/http"

	"go-outfit-advisor/internal/analyzer"
	"go-outfit-advisor/internal/config"
	"go-outfit-advisor/internal/factory"
	"go-outfit-advisor/internal/logger"
	"go-outfit-advisor/internal/observer"
	"go-outfit-advisor/internal/repository"
	"go-outfit-advisor/internal/service"
	"go-outfit-advisor/internal/storage"
	"go-outfit-advisor/internal/strategy"
	"go-outfit-advisor/internal/transport"
	"go-outfit-advisor/pkg/validation"
)

// Container holds all application dependencies
type Container struct {
	config        *config.Config
	colorAnalyzer analyzer.ColorAnalyzer
	wardrobe      *repository.MemoryWardrobe
	store         storage.ImageStore
	fetcher       storage.ImageFetcher
	events        *observer.EventBus
	counters      *observer.CountingObserver
	outfitService service.OutfitService
	handler       http.Handler
}

// NewContainer creates a new dependency injection container
func NewContainer() (*Container, error) {
	// Load configuration
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Build dependency graph
	store, err := factory.NewStorageFactory().CreateStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload store: %w", err)
	}

	colorAnalyzer, err := analyzer.NewColorAnalyzerWithOptions(
		analyzer.DefaultOptions().WithPaletteSize(cfg.PaletteSize))
	if err != nil {
		return nil, err
	}

	fetcher := storage.NewHTTPImageFetcher(cfg.MaxRequestBodySize)
	wardrobe := repository.NewMemoryWardrobe(cfg.SessionTTL)

	var selector strategy.CombinationStrategy
	switch cfg.CombinationStrategy {
	case config.StrategyShuffle:
		selector = strategy.NewShuffleStrategy(1)
	default:
		selector = strategy.NewSlidingWindowStrategy()
	}

	events := observer.NewEventBus()
	counters := observer.NewCountingObserver()
	events.Subscribe(observer.NewLoggingObserver(logger.Logger))
	events.Subscribe(counters)

	outfitService := service.NewOutfitService(
		wardrobe,
		colorAnalyzer,
		store,
		fetcher,
		selector,
		events,
		validation.NewUploadValidator(cfg.MaxRequestBodySize),
		analyzer.DefaultOptions().WithPaletteSize(cfg.PaletteSize),
	)

	// Only the local backend serves uploads from disk
	uploadsDir := ""
	if local, ok := store.(*storage.LocalStore); ok {
		uploadsDir = local.Dir()
	}

	handler := transport.NewHandler(outfitService, counters, cfg, uploadsDir)

	return &Container{
		config:        cfg,
		colorAnalyzer: colorAnalyzer,
		wardrobe:      wardrobe,
		store:         store,
		fetcher:       fetcher,
		events:        events,
		counters:      counters,
		outfitService: outfitService,
		handler:       handler,
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Close releases analyzer resources
func (c *Container) Close() error {
	return c.colorAnalyzer.Close()
}
