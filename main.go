package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"art-auction/internal/catalog"
	"art-auction/internal/clock"
	"art-auction/internal/config"
	"art-auction/internal/fanout"
	"art-auction/internal/ledger"
	model "art-auction/internal/models"
	"art-auction/internal/registry"
	"art-auction/internal/repository"
	"art-auction/internal/server"
	"art-auction/internal/ws"
	"art-auction/utils"
)

func main() {
	cfg, err := config.Load(os.Getenv("AUCTION_CONFIG"))
	if err != nil {
		utils.Fatal("failed to load config", map[string]any{"error": err.Error()})
	}

	store := repository.NewMemoryStore()
	artworks := catalog.NewMemoryCatalog()
	prepopulateArtworks(artworks)

	broker := fanout.NewBroker(cfg.Fanout.SubscriberBuffer)
	registrySvc := registry.NewRegistry(store, artworks, broker)
	ledgerSvc := ledger.NewLedger(store, broker)
	wsHandler := ws.NewHandler(broker, registrySvc)

	router := server.SetupRouter(registrySvc, ledgerSvc, wsHandler)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sweeper := clock.NewSweeper(registrySvc, cfg.Clock.SweepInterval)
	go sweeper.Run(ctx)

	srv := &http.Server{
		Addr:    cfg.Server.Port,
		Handler: router,
	}

	go func() {
		utils.Info("starting auction server", map[string]any{"addr": cfg.Server.Port})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Fatal("server failed", map[string]any{"error": err.Error()})
		}
	}()

	<-ctx.Done()
	utils.Info("shutting down", nil)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.Error("shutdown error", map[string]any{"error": err.Error()})
	}
}

// prepopulateArtworks seeds sample artworks. In the full platform the
// catalog is fed by the artwork service.
func prepopulateArtworks(c *catalog.MemoryCatalog) {
	artworks := []model.Artwork{
		{ArtworkID: "artwork1", ArtistID: "artist1", Title: "Sunrise Over Ganges", Medium: "oil on canvas"},
		{ArtworkID: "artwork2", ArtistID: "artist1", Title: "Monsoon Study II", Medium: "watercolor"},
		{ArtworkID: "artwork3", ArtistID: "artist2", Title: "Untitled (Charcoal)", Medium: "charcoal"},
	}

	for _, a := range artworks {
		c.AddArtwork(a)
	}
}
