package services

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"platescout/internal/cache"
	"platescout/internal/common"
	"platescout/internal/events"
	"platescout/internal/logging"
	"platescout/internal/models"
	"platescout/internal/remote"
	"platescout/internal/repositories/users"
	"platescout/internal/session"
)

// hydrateConcurrency bounds how many remote id-batch lookups run at once
// during bulk profile hydration.
const hydrateConcurrency = 3

// UserService serves profile records offline-first and keeps the
// profile-summary cache warm.
type UserService struct {
	users    users.Repository
	store    remote.Store
	blobs    remote.Blobs
	profiles *cache.Profiles
	bus      *events.Bus
	session  session.Provider
	validate *validator.Validate
	log      logging.Logger
	refresh  *refresher
}

// Profile returns the signed-in user's profile.
func (s *UserService) Profile(ctx context.Context) (*models.User, error) {
	userID, err := s.session.CurrentUserID(ctx)
	if err != nil {
		return nil, err
	}
	return s.User(ctx, userID)
}

// User returns a profile by id. A locally stored copy is returned
// immediately with a detached refresh behind it; otherwise the remote copy
// is fetched synchronously.
func (s *UserService) User(ctx context.Context, id string) (*models.User, error) {
	local, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to read user %s: %w", id, err)
	}

	if local != nil {
		s.refresh.Go("user "+id, func(ctx context.Context) error {
			return s.refreshUser(ctx, id)
		})
		return local, nil
	}

	return s.fetchUser(ctx, id)
}

// fetchUser pulls a profile from the remote store, mirrors it locally and
// warms the summary cache.
func (s *UserService) fetchUser(ctx context.Context, id string) (*models.User, error) {
	doc, err := s.store.Get(ctx, remote.CollectionUsers, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user %s: %w", id, err)
	}

	u, err := remote.DecodeUser(doc)
	if err != nil {
		return nil, err
	}

	if err := s.users.Upsert(ctx, u); err != nil {
		// the fetched copy is still good, the mirror is best-effort
		s.log.Warn(ctx, "failed to mirror user locally", "user", id, "error", err)
	}
	s.profiles.Set(remote.Summary(u))
	return u, nil
}

// refreshUser is the detached half of User: re-fetch, mirror, notify.
func (s *UserService) refreshUser(ctx context.Context, id string) error {
	doc, err := s.store.Get(ctx, remote.CollectionUsers, id)
	if err != nil {
		return err
	}

	u, err := remote.DecodeUser(doc)
	if err != nil {
		return err
	}

	// a cancelled refresh must not commit stale results or signal a change
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.users.Upsert(ctx, u); err != nil {
		return err
	}
	s.profiles.Set(remote.Summary(u))
	s.bus.Publish(events.UsersChanged)
	return nil
}

// ProfileSummaries resolves ids to lightweight summaries for list
// rendering. Resolution order is summary cache, then local store, then the
// remote store in id batches of at most remote.BatchLimit, fetched
// concurrently and merged in arrival order. Ids unknown everywhere are
// silently absent from the result.
func (s *UserService) ProfileSummaries(ctx context.Context, ids []string) ([]models.ProfileSummary, error) {
	out, missing := s.profiles.GetMany(ids)
	if len(missing) == 0 {
		return out, nil
	}

	locals, err := s.users.GetMany(ctx, missing)
	if err != nil {
		return nil, fmt.Errorf("failed to read users: %w", err)
	}

	found := make(map[string]struct{}, len(locals))
	for i := range locals {
		sum := remote.Summary(&locals[i])
		s.profiles.Set(sum)
		out = append(out, sum)
		found[locals[i].ID] = struct{}{}
	}

	var remaining []string
	for _, id := range missing {
		if _, ok := found[id]; !ok {
			remaining = append(remaining, id)
		}
	}
	if len(remaining) == 0 {
		return out, nil
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(hydrateConcurrency)

	for chunk := range slices.Chunk(remaining, remote.BatchLimit) {
		g.Go(func() error {
			docs, err := s.store.GetMany(gctx, remote.CollectionUsers, chunk)
			if err != nil {
				return err
			}

			batch := make([]models.ProfileSummary, 0, len(docs))
			for i := range docs {
				u, err := remote.DecodeUser(&docs[i])
				if err != nil {
					s.log.Warn(gctx, "skipping undecodable user", "user", docs[i].ID, "error", err)
					continue
				}
				if err := s.users.Upsert(gctx, u); err != nil {
					s.log.Warn(gctx, "failed to mirror user locally", "user", u.ID, "error", err)
				}
				batch = append(batch, remote.Summary(u))
			}

			s.profiles.SetMany(batch)
			mu.Lock()
			out = append(out, batch...)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if len(out) == 0 {
			return nil, fmt.Errorf("failed to hydrate profiles: %w", err)
		}
		// cached and local summaries already cover part of the request
		s.log.Warn(ctx, "partial profile hydration", "error", err)
	}

	return out, nil
}

// UpdateProfile writes the signed-in user's profile to the remote store
// first, then mirrors it locally and signals the change. A non-empty Avatar
// is uploaded to the blob store and referenced from the profile.
func (s *UserService) UpdateProfile(ctx context.Context, in *models.ProfileInput) (*models.User, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("invalid profile: %v: %w", err, common.ErrValidation)
	}

	userID, err := s.session.CurrentUserID(ctx)
	if err != nil {
		return nil, err
	}

	current, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read user %s: %w", userID, err)
	}
	if current == nil {
		current = &models.User{ID: userID, CreatedAt: time.Now().UTC()}
	}

	u := *current
	u.Name = in.Name
	if in.Email != "" {
		u.Email = in.Email
	}
	u.Budget = in.Budget
	u.Diet = in.Diet
	u.UpdatedAt = time.Now().UTC()

	if len(in.Avatar) > 0 {
		key, err := s.uploadImage(ctx, "avatars", in.Avatar)
		if err != nil {
			return nil, fmt.Errorf("failed to upload avatar: %w", err)
		}
		u.AvatarURL = &key
	}

	if err := s.store.Set(ctx, remote.CollectionUsers, userID, remote.EncodeUserProfile(&u)); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	if err := s.users.Upsert(ctx, &u); err != nil {
		s.log.Warn(ctx, "failed to mirror profile locally", "user", userID, "error", err)
	}
	s.profiles.Set(remote.Summary(&u))
	s.bus.Publish(events.UsersChanged)
	return &u, nil
}

// uploadImage stores raw image bytes in the object store and returns the
// storage key. Readers resolve the key to a short-lived URL via the image
// loader when they actually need the bytes.
func (s *UserService) uploadImage(ctx context.Context, prefix string, data []byte) (string, error) {
	if s.blobs == nil {
		return "", fmt.Errorf("no object store configured")
	}

	key := remote.StorageKey(prefix)
	if err := s.blobs.Upload(ctx, key, data, http.DetectContentType(data)); err != nil {
		return "", err
	}
	return key, nil
}
