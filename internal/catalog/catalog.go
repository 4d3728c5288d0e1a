package catalog

import (
	"sync"

	model "art-auction/internal/models"
)

// MemoryCatalog is a concurrency-safe in-memory artwork catalog. It stands in
// for the platform's artwork service, which the auction core only consults
// for existence checks.
type MemoryCatalog struct {
	mu       sync.RWMutex
	artworks map[string]model.Artwork
}

// NewMemoryCatalog creates a new in-memory catalog instance
func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{
		artworks: make(map[string]model.Artwork),
	}
}

// AddArtwork registers an artwork in the catalog
func (c *MemoryCatalog) AddArtwork(artwork model.Artwork) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.artworks[artwork.ArtworkID] = artwork
}

// ArtworkExists reports whether the artwork is known to the catalog
func (c *MemoryCatalog) ArtworkExists(artworkID string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.artworks[artworkID]
	return ok, nil
}

// GetArtwork returns the artwork record when present
func (c *MemoryCatalog) GetArtwork(artworkID string) (model.Artwork, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.artworks[artworkID]
	return a, ok
}
