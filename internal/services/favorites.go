package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"platescout/internal/common"
	"platescout/internal/dbx"
	"platescout/internal/events"
	"platescout/internal/logging"
	"platescout/internal/models"
	"platescout/internal/remote"
	"platescout/internal/repositories/favorites"
	"platescout/internal/session"
)

// FavoriteService serves the signed-in user's favorite-venue relation. The
// remote side lives on the user document in two historical encodings; reads
// normalize both, writes use the nested encoding and deletes target both.
type FavoriteService struct {
	db      *sql.DB
	favs    favorites.Repository
	store   remote.Store
	bus     *events.Bus
	session session.Provider
	log     logging.Logger
	refresh *refresher
}

// FavoriteVenueIDs lists the signed-in user's favorite venue ids, newest
// first. A non-empty local copy is served immediately with a refresh behind
// it; otherwise the remote document is fetched synchronously.
func (s *FavoriteService) FavoriteVenueIDs(ctx context.Context) ([]string, error) {
	userID, err := s.session.CurrentUserID(ctx)
	if err != nil {
		return nil, err
	}

	local, err := s.favs.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read favorites: %w", err)
	}

	if len(local) > 0 {
		s.refresh.Go("favorites of "+userID, func(ctx context.Context) error {
			return s.refreshFavorites(ctx, userID)
		})
		return venueIDs(local), nil
	}

	if err := s.refreshFavorites(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to fetch favorites: %w", err)
	}

	local, err = s.favs.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read favorites: %w", err)
	}
	return venueIDs(local), nil
}

// IsFavorite reports whether the signed-in user has favorited the venue.
// An empty local mirror may just mean nothing has been synced yet, so it
// triggers a synchronous remote fetch before answering.
func (s *FavoriteService) IsFavorite(ctx context.Context, venueID string) (bool, error) {
	userID, err := s.session.CurrentUserID(ctx)
	if err != nil {
		return false, err
	}

	local, err := s.favs.ListByUser(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to read favorites: %w", err)
	}

	if len(local) == 0 {
		if err := s.refreshFavorites(ctx, userID); err != nil {
			return false, fmt.Errorf("failed to fetch favorites: %w", err)
		}
		if local, err = s.favs.ListByUser(ctx, userID); err != nil {
			return false, fmt.Errorf("failed to read favorites: %w", err)
		}
	}

	for _, f := range local {
		if f.VenueID == venueID {
			return true, nil
		}
	}
	return false, nil
}

// Add favorites a venue. The remote user document is written first, in the
// nested encoding only; the local mirror is best-effort.
func (s *FavoriteService) Add(ctx context.Context, venueID string) error {
	userID, err := s.session.CurrentUserID(ctx)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if err := s.store.Set(ctx, remote.CollectionUsers, userID, remote.FavoriteWrite(venueID, now)); err != nil {
		return fmt.Errorf("failed to add favorite: %w", err)
	}

	fav := &models.Favorite{UserID: userID, VenueID: venueID, AddedAt: now}
	if err := s.favs.Upsert(ctx, fav); err != nil {
		s.log.Warn(ctx, "failed to mirror favorite locally", "venue", venueID, "error", err)
	}
	s.bus.Publish(events.FavoritesChanged)
	return nil
}

// Remove unfavorites a venue. The deletion targets both remote encodings,
// since older documents may still carry the legacy flat field.
func (s *FavoriteService) Remove(ctx context.Context, venueID string) error {
	userID, err := s.session.CurrentUserID(ctx)
	if err != nil {
		return err
	}

	if err := s.store.DeleteFields(ctx, remote.CollectionUsers, userID, remote.FavoriteDeletePaths(venueID)...); err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}

	if err := s.favs.Remove(ctx, userID, venueID); err != nil {
		s.log.Warn(ctx, "failed to remove local favorite", "venue", venueID, "error", err)
	}
	s.bus.Publish(events.FavoritesChanged)
	return nil
}

// refreshFavorites replaces the local mirror with the remote document's
// normalized favorite set. The remote copy is authoritative and may have
// dropped pairs, so the whole per-user set is swapped in one transaction.
// A missing user document means an empty set.
func (s *FavoriteService) refreshFavorites(ctx context.Context, userID string) error {
	doc, err := s.store.Get(ctx, remote.CollectionUsers, userID)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return err
	}

	var favs []models.Favorite
	if doc != nil {
		for venueID, addedAt := range remote.ParseFavorites(doc) {
			favs = append(favs, models.Favorite{UserID: userID, VenueID: venueID, AddedAt: addedAt})
		}
	}

	// a cancelled refresh must not commit stale results or signal a change
	if err := ctx.Err(); err != nil {
		return err
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return favorites.NewSQLiteRepository(tx).ReplaceAll(ctx, userID, favs)
	})
	if err != nil {
		return fmt.Errorf("failed to store favorites: %w", err)
	}

	s.bus.Publish(events.FavoritesChanged)
	return nil
}

func venueIDs(favs []models.Favorite) []string {
	ids := make([]string, len(favs))
	for i, f := range favs {
		ids[i] = f.VenueID
	}
	return ids
}
