// Package services implements the offline-first repository layer. Each
// service sequences local-store reads, remote fetches, cache warming, and
// change notification for one entity family.
//
// Read protocol: a non-empty local read is returned immediately and a
// detached remote refresh is scheduled behind it; an empty local read falls
// back to a synchronous remote fetch. Writes go to the remote store first,
// then mirror best-effort into the local store.
package services

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"platescout/internal/cache"
	"platescout/internal/config"
	"platescout/internal/events"
	"platescout/internal/logging"
	"platescout/internal/remote"
	"platescout/internal/repositories/favorites"
	"platescout/internal/repositories/reviews"
	"platescout/internal/repositories/users"
	"platescout/internal/repositories/venues"
	"platescout/internal/session"
)

// Services bundles the per-entity services over one shared set of
// dependencies: a single database handle, the remote stores, the caches,
// and the change-notification bus.
type Services struct {
	Users     *UserService
	Venues    *VenueService
	Reviews   *ReviewService
	Favorites *FavoriteService
	Images    *ImageLoader

	Bus *events.Bus

	profiles *cache.Profiles
	images   *cache.Images
	refresh  *refresher
}

// New wires the services over the given database handle and remote stores.
// blobs may be nil when no object store is configured; avatar and review
// photo uploads then fail gracefully.
func New(cfg *config.Config, db *sql.DB, store remote.Store, blobs remote.Blobs, sess session.Provider, log logging.Logger) *Services {
	bus := events.NewBus()
	profiles := cache.NewProfiles(cfg.ProfileCacheEntries)
	images := cache.NewImages(cfg.ImageCacheBytes)
	ref := newRefresher(log, cfg.RefreshTimeout)
	validate := validator.New(validator.WithRequiredStructEnabled())

	s := &Services{
		Bus:      bus,
		profiles: profiles,
		images:   images,
		refresh:  ref,
	}

	s.Users = &UserService{
		users:    users.NewSQLiteRepository(db),
		store:    store,
		blobs:    blobs,
		profiles: profiles,
		bus:      bus,
		session:  sess,
		validate: validate,
		log:      log.With("service", "users"),
		refresh:  ref,
	}

	s.Venues = &VenueService{
		venues:  venues.NewSQLiteRepository(db),
		store:   store,
		bus:     bus,
		log:     log.With("service", "venues"),
		refresh: ref,
	}

	s.Reviews = &ReviewService{
		reviews:  reviews.NewSQLiteRepository(db),
		store:    store,
		blobs:    blobs,
		bus:      bus,
		session:  sess,
		validate: validate,
		log:      log.With("service", "reviews"),
		refresh:  ref,
	}

	s.Favorites = &FavoriteService{
		db:      db,
		favs:    favorites.NewSQLiteRepository(db),
		store:   store,
		bus:     bus,
		session: sess,
		log:     log.With("service", "favorites"),
		refresh: ref,
	}

	s.Images = &ImageLoader{
		cache:  images,
		blobs:  blobs,
		client: &http.Client{Timeout: 30 * time.Second},
		maxDim: cfg.ImageMaxDim,
		log:    log.With("service", "images"),
	}

	return s
}

// Reset drops all in-memory cache state. Called when the session identity
// changes so one account never sees another account's cached data. The
// local store is keyed by stable ids and is left intact.
func (s *Services) Reset() {
	s.profiles.Clear()
	s.images.Clear()
}

// Wait blocks until all detached background refreshes currently in flight
// have finished. Used by tests and during shutdown.
func (s *Services) Wait() {
	s.refresh.Wait()
}
