package repository

// ClothingImage is one analyzed upload in a session's working set.
// Immutable once stored; removal is the only mutation.
type ClothingImage struct {
	ID           string   `json:"id"`
	Filename     string   `json:"filename"`
	OriginalName string   `json:"original_name"`
	Colors       []string `json:"colors"`
	ColorNames   []string `json:"color_names"`
	ClothingType string   `json:"clothing_type"`
	URL          string   `json:"url"`
}

// WardrobeRepository manages the session-scoped working sets of uploaded
// images. State is held per session rather than in package globals so
// concurrent sessions never see each other's uploads.
type WardrobeRepository interface {
	// Add appends an image to a session's working set, creating the
	// session if needed
	Add(sessionID string, img ClothingImage)

	// Get returns one image by id
	Get(sessionID, imageID string) (ClothingImage, error)

	// List returns the working set in upload order
	List(sessionID string) []ClothingImage

	// Remove deletes an image from the working set and returns it so the
	// caller can clean up the stored file
	Remove(sessionID, imageID string) (ClothingImage, error)

	// NextSequence returns the session's next generation sequence number.
	// Strictly increasing per session; lets clients discard responses that
	// arrive after a newer request already resolved.
	NextSequence(sessionID string) int64
}
