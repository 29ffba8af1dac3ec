package repository

import (
	"sync"
	"time"
)

// workingSet holds one session's uploads and its generation sequence.
type workingSet struct {
	images   []ClothingImage
	sequence int64
	lastSeen time.Time
}

// MemoryWardrobe is an in-memory WardrobeRepository. Sessions idle longer
// than the TTL are swept out on the next write.
type MemoryWardrobe struct {
	mu       sync.RWMutex
	sessions map[string]*workingSet
	ttl      time.Duration
	now      func() time.Time
}

// NewMemoryWardrobe creates an in-memory wardrobe with the given session TTL.
// A non-positive TTL disables expiry.
func NewMemoryWardrobe(ttl time.Duration) *MemoryWardrobe {
	return &MemoryWardrobe{
		sessions: make(map[string]*workingSet),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Add appends an image to a session's working set
func (m *MemoryWardrobe) Add(sessionID string, img ClothingImage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweepLocked()

	ws := m.sessions[sessionID]
	if ws == nil {
		ws = &workingSet{}
		m.sessions[sessionID] = ws
	}
	ws.images = append(ws.images, img)
	ws.lastSeen = m.now()
}

// Get returns one image by id
func (m *MemoryWardrobe) Get(sessionID, imageID string) (ClothingImage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ws := m.sessions[sessionID]
	if ws == nil {
		return ClothingImage{}, ErrSessionNotFound
	}
	for _, img := range ws.images {
		if img.ID == imageID {
			return img, nil
		}
	}
	return ClothingImage{}, ErrImageNotFound
}

// List returns the working set in upload order
func (m *MemoryWardrobe) List(sessionID string) []ClothingImage {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ws := m.sessions[sessionID]
	if ws == nil {
		return nil
	}
	out := make([]ClothingImage, len(ws.images))
	copy(out, ws.images)
	return out
}

// Remove deletes an image from the working set and returns it
func (m *MemoryWardrobe) Remove(sessionID, imageID string) (ClothingImage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ws := m.sessions[sessionID]
	if ws == nil {
		return ClothingImage{}, ErrSessionNotFound
	}
	for i, img := range ws.images {
		if img.ID == imageID {
			ws.images = append(ws.images[:i], ws.images[i+1:]...)
			ws.lastSeen = m.now()
			return img, nil
		}
	}
	return ClothingImage{}, ErrImageNotFound
}

// NextSequence returns the session's next generation sequence number
func (m *MemoryWardrobe) NextSequence(sessionID string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	ws := m.sessions[sessionID]
	if ws == nil {
		ws = &workingSet{}
		m.sessions[sessionID] = ws
	}
	ws.sequence++
	ws.lastSeen = m.now()
	return ws.sequence
}

// sweepLocked drops sessions idle past the TTL. Caller holds the write lock.
func (m *MemoryWardrobe) sweepLocked() {
	if m.ttl <= 0 {
		return
	}
	cutoff := m.now().Add(-m.ttl)
	for id, ws := range m.sessions {
		if ws.lastSeen.Before(cutoff) {
			delete(m.sessions, id)
		}
	}
}
