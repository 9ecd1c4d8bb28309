package services

import (
	"context"
	"fmt"
	"time"

	"platescout/internal/events"
	"platescout/internal/logging"
	"platescout/internal/models"
	"platescout/internal/remote"
	"platescout/internal/repositories/venues"
)

// VenueService serves venue records offline-first.
type VenueService struct {
	venues  venues.Repository
	store   remote.Store
	bus     *events.Bus
	log     logging.Logger
	refresh *refresher
}

// Venue returns a venue by id, local copy first.
func (s *VenueService) Venue(ctx context.Context, id string) (*models.Venue, error) {
	local, err := s.venues.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to read venue %s: %w", id, err)
	}

	if local != nil {
		s.refresh.Go("venue "+id, func(ctx context.Context) error {
			doc, err := s.store.Get(ctx, remote.CollectionVenues, id)
			if err != nil {
				return err
			}
			return s.commit(ctx, []remote.Document{*doc})
		})
		return local, nil
	}

	doc, err := s.store.Get(ctx, remote.CollectionVenues, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch venue %s: %w", id, err)
	}

	v, err := remote.DecodeVenue(doc)
	if err != nil {
		return nil, err
	}
	v.UpdatedAt = time.Now().UTC()

	if err := s.venues.Upsert(ctx, v); err != nil {
		s.log.Warn(ctx, "failed to mirror venue locally", "venue", id, "error", err)
	}
	return v, nil
}

// Venues lists all venues, local copy first.
func (s *VenueService) Venues(ctx context.Context) ([]models.Venue, error) {
	return s.list(ctx, "venues",
		func(ctx context.Context) ([]models.Venue, error) {
			return s.venues.List(ctx)
		},
		func(ctx context.Context) ([]remote.Document, error) {
			return s.store.List(ctx, remote.CollectionVenues)
		})
}

// VenuesByCategory lists venues in one food category, local copy first.
func (s *VenueService) VenuesByCategory(ctx context.Context, category string) ([]models.Venue, error) {
	return s.list(ctx, "venues by category",
		func(ctx context.Context) ([]models.Venue, error) {
			return s.venues.ListByCategory(ctx, category)
		},
		func(ctx context.Context) ([]remote.Document, error) {
			return s.store.QueryByField(ctx, remote.CollectionVenues, remote.FieldVenueCategory, category)
		})
}

// VenuesWithOffer lists venues with an active offer, local copy first.
func (s *VenueService) VenuesWithOffer(ctx context.Context) ([]models.Venue, error) {
	return s.list(ctx, "venues with offer",
		func(ctx context.Context) ([]models.Venue, error) {
			return s.venues.ListWithOffer(ctx)
		},
		func(ctx context.Context) ([]remote.Document, error) {
			return s.store.QueryByField(ctx, remote.CollectionVenues, remote.FieldVenueOffer, true)
		})
}

// list is the shared offline-first sequence for venue list reads: serve the
// local rows when there are any and refresh behind them, otherwise fetch
// synchronously.
func (s *VenueService) list(ctx context.Context, task string,
	localFn func(ctx context.Context) ([]models.Venue, error),
	remoteFn func(ctx context.Context) ([]remote.Document, error),
) ([]models.Venue, error) {
	local, err := localFn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read venues: %w", err)
	}

	if len(local) > 0 {
		s.refresh.Go(task, func(ctx context.Context) error {
			docs, err := remoteFn(ctx)
			if err != nil {
				return err
			}
			return s.commit(ctx, docs)
		})
		return local, nil
	}

	docs, err := remoteFn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch venues: %w", err)
	}
	if err := s.commit(ctx, docs); err != nil {
		return nil, err
	}

	// re-read so the caller sees the same ordering every read path uses
	return localFn(ctx)
}

// commit decodes fetched venue documents, stamps the fetch time, mirrors
// them into the local store and signals the change. A cancelled context
// aborts before anything is written.
func (s *VenueService) commit(ctx context.Context, docs []remote.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	now := time.Now().UTC()
	stored := 0
	for i := range docs {
		v, err := remote.DecodeVenue(&docs[i])
		if err != nil {
			s.log.Warn(ctx, "skipping undecodable venue", "venue", docs[i].ID, "error", err)
			continue
		}
		v.UpdatedAt = now

		if err := s.venues.Upsert(ctx, v); err != nil {
			return fmt.Errorf("failed to store venue %s: %w", v.ID, err)
		}
		stored++
	}

	if stored > 0 {
		s.bus.Publish(events.VenuesChanged)
	}
	return nil
}
