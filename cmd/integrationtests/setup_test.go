package integrationtests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"art-auction/internal/catalog"
	"art-auction/internal/clock"
	"art-auction/internal/fanout"
	"art-auction/internal/ledger"
	model "art-auction/internal/models"
	"art-auction/internal/registry"
	"art-auction/internal/repository"
	"art-auction/internal/server"
	"art-auction/internal/ws"
)

// SetupTestRouter initializes the full stack with in-memory storage and a
// fast sweep interval for integration testing. The sweeper is stopped when
// the test finishes.
func SetupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := repository.NewMemoryStore()

	artworks := catalog.NewMemoryCatalog()
	for _, a := range []model.Artwork{
		{ArtworkID: "artwork1", ArtistID: "artist1", Title: "Sunrise Over Ganges"},
		{ArtworkID: "artwork2", ArtistID: "artist1", Title: "Monsoon Study II"},
		{ArtworkID: "artwork3", ArtistID: "artist2", Title: "Untitled (Charcoal)"},
	} {
		artworks.AddArtwork(a)
	}

	broker := fanout.NewBroker(16)
	registrySvc := registry.NewRegistry(store, artworks, broker)
	ledgerSvc := ledger.NewLedger(store, broker)
	wsHandler := ws.NewHandler(broker, registrySvc)

	sweeper := clock.NewSweeper(registrySvc, 20*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go sweeper.Run(ctx)

	return server.SetupRouter(registrySvc, ledgerSvc, wsHandler)
}

// ExecuteRequest executes an HTTP request and returns the response recorder.
func ExecuteRequest(t *testing.T, router *gin.Engine, method, url string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, url, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// ExecuteRequestAndParse executes an HTTP request on the given router and parses the response
func ExecuteRequestAndParse(t *testing.T, router *gin.Engine, method, url string, body any) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()

	var reqBody []byte
	var err error

	switch v := body.(type) {
	case nil:
	case []byte:
		reqBody = v
	default:
		reqBody, err = json.Marshal(v)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	var resp map[string]any
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
	}
	return resp, w
}
