package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"platescout/internal/common"
	"platescout/internal/events"
	"platescout/internal/logging"
	"platescout/internal/models"
	"platescout/internal/remote"
	"platescout/internal/repositories/reviews"
	"platescout/internal/session"
)

// ReviewService serves review records offline-first and owns the review
// write path.
type ReviewService struct {
	reviews  reviews.Repository
	store    remote.Store
	blobs    remote.Blobs
	bus      *events.Bus
	session  session.Provider
	validate *validator.Validate
	log      logging.Logger
	refresh  *refresher
}

// VenueReviews lists a venue's reviews newest first, local copy first.
func (s *ReviewService) VenueReviews(ctx context.Context, venueID string) ([]models.Review, error) {
	return s.list(ctx, "reviews for venue "+venueID,
		func(ctx context.Context) ([]models.Review, error) {
			return s.reviews.ListByVenue(ctx, venueID)
		},
		func(ctx context.Context) ([]remote.Document, error) {
			return s.store.QueryByField(ctx, remote.CollectionReviews, remote.FieldReviewVenue, venueID)
		})
}

// MyReviews lists the signed-in user's reviews newest first, local copy
// first.
func (s *ReviewService) MyReviews(ctx context.Context) ([]models.Review, error) {
	userID, err := s.session.CurrentUserID(ctx)
	if err != nil {
		return nil, err
	}

	return s.list(ctx, "reviews by user "+userID,
		func(ctx context.Context) ([]models.Review, error) {
			return s.reviews.ListByUser(ctx, userID)
		},
		func(ctx context.Context) ([]remote.Document, error) {
			return s.store.QueryByField(ctx, remote.CollectionReviews, remote.FieldReviewUser, userID)
		})
}

// list is the shared offline-first sequence for review list reads.
func (s *ReviewService) list(ctx context.Context, task string,
	localFn func(ctx context.Context) ([]models.Review, error),
	remoteFn func(ctx context.Context) ([]remote.Document, error),
) ([]models.Review, error) {
	local, err := localFn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read reviews: %w", err)
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
		return nil, fmt.Errorf("failed to fetch reviews: %w", err)
	}
	if err := s.commit(ctx, docs); err != nil {
		return nil, err
	}

	return localFn(ctx)
}

// commit mirrors fetched review documents into the local store and signals
// the change. A cancelled context aborts before anything is written.
func (s *ReviewService) commit(ctx context.Context, docs []remote.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	stored := 0
	for i := range docs {
		rev, err := remote.DecodeReview(&docs[i])
		if err != nil {
			s.log.Warn(ctx, "skipping undecodable review", "review", docs[i].ID, "error", err)
			continue
		}

		if err := s.reviews.Upsert(ctx, rev); err != nil {
			return fmt.Errorf("failed to store review %s: %w", rev.ID, err)
		}
		stored++
	}

	if stored > 0 {
		s.bus.Publish(events.ReviewsChanged)
	}
	return nil
}

// Create validates and publishes a new review. The remote write is
// authoritative; the local mirror and the photo upload are best-effort.
func (s *ReviewService) Create(ctx context.Context, in *models.ReviewInput) (*models.Review, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("invalid review: %v: %w", err, common.ErrValidation)
	}

	userID, err := s.session.CurrentUserID(ctx)
	if err != nil {
		return nil, err
	}

	rev := &models.Review{
		ID:        uuid.NewString(),
		UserID:    userID,
		VenueID:   in.VenueID,
		Stars:     in.Stars,
		Comment:   in.Comment,
		CreatedAt: time.Now().UTC(),
	}

	if len(in.Photo) > 0 {
		if key, err := s.uploadPhoto(ctx, in.Photo); err != nil {
			// the review still goes out, just without its picture
			s.log.Warn(ctx, "failed to upload review photo", "review", rev.ID, "error", err)
		} else {
			rev.ImageURL = &key
		}
	}

	if err := s.store.Set(ctx, remote.CollectionReviews, rev.ID, remote.EncodeReview(rev)); err != nil {
		return nil, fmt.Errorf("failed to publish review: %w", err)
	}

	s.mirror(ctx, rev)
	s.bus.Publish(events.ReviewCreated)
	s.bus.Publish(events.ReviewsChanged)
	return rev, nil
}

// Update edits an existing review owned by the signed-in user.
func (s *ReviewService) Update(ctx context.Context, reviewID string, in *models.ReviewInput) (*models.Review, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("invalid review: %v: %w", err, common.ErrValidation)
	}

	userID, err := s.session.CurrentUserID(ctx)
	if err != nil {
		return nil, err
	}

	rev, err := s.reviews.GetByID(ctx, reviewID)
	if err != nil {
		return nil, fmt.Errorf("failed to read review %s: %w", reviewID, err)
	}
	if rev == nil {
		doc, err := s.store.Get(ctx, remote.CollectionReviews, reviewID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch review %s: %w", reviewID, err)
		}
		if rev, err = remote.DecodeReview(doc); err != nil {
			return nil, err
		}
	}
	if rev.UserID != userID {
		return nil, fmt.Errorf("review %s belongs to another user: %w", reviewID, common.ErrUnauthorized)
	}

	rev.Stars = in.Stars
	rev.Comment = in.Comment

	if len(in.Photo) > 0 {
		if key, err := s.uploadPhoto(ctx, in.Photo); err != nil {
			s.log.Warn(ctx, "failed to upload review photo", "review", rev.ID, "error", err)
		} else {
			rev.ImageURL = &key
		}
	}

	if err := s.store.Set(ctx, remote.CollectionReviews, rev.ID, remote.EncodeReview(rev)); err != nil {
		return nil, fmt.Errorf("failed to update review: %w", err)
	}

	s.mirror(ctx, rev)
	s.bus.Publish(events.ReviewsChanged)
	return rev, nil
}

// mirror upserts a successfully published review into the local store.
// Failures are logged only; the remote copy is already authoritative.
func (s *ReviewService) mirror(ctx context.Context, rev *models.Review) {
	if err := s.reviews.Upsert(ctx, rev); err != nil {
		s.log.Warn(ctx, "failed to mirror review locally", "review", rev.ID, "error", err)
	}
}

func (s *ReviewService) uploadPhoto(ctx context.Context, data []byte) (string, error) {
	if s.blobs == nil {
		return "", fmt.Errorf("no object store configured")
	}

	key := remote.StorageKey("reviews")
	if err := s.blobs.Upload(ctx, key, data, http.DetectContentType(data)); err != nil {
		return "", err
	}
	return key, nil
}
