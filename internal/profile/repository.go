package profile

import (
	"context"
	"errors"
	"fmt"

	"fjacquet/budget-tracker/internal/logging"
)

// Repository keeps the local profile copy in step with the remote store.
// The remote copy wins whenever it is reachable.
type Repository struct {
	local  LocalStore
	remote RemoteStore
	logger logging.Logger
}

// NewRepository creates a repository. remote may be nil for offline use.
func NewRepository(local LocalStore, remote RemoteStore, logger logging.Logger) *Repository {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Repository{local: local, remote: remote, logger: logger}
}

// Save writes the profile locally as pending, pushes it to the remote store
// and marks it synced. A failed push leaves the local copy pending and is
// returned to the caller.
func (r *Repository) Save(ctx context.Context, p *Profile) error {
	if p == nil {
		return fmt.Errorf("cannot save nil profile")
	}
	p.Status = SyncPending
	if err := r.local.Save(ctx, p); err != nil {
		return fmt.Errorf("failed to save profile locally: %w", err)
	}
	if r.remote == nil {
		return nil
	}

	if err := r.remote.CompleteProfile(ctx, p); err != nil {
		r.logger.WithError(err).Warn("Profile saved locally but not synced")
		return fmt.Errorf("%w: %w", ErrNotSynced, err)
	}

	p.Status = Synced
	if err := r.local.Save(ctx, p); err != nil {
		return fmt.Errorf("failed to mark profile synced: %w", err)
	}
	r.logger.WithField(logging.FieldStatus, string(Synced)).Info("Profile saved")
	return nil
}

// Load returns the remote profile when available, overwriting the local
// copy. If the remote store fails the local copy is returned with its own
// status.
func (r *Repository) Load(ctx context.Context) (*Profile, error) {
	if r.remote != nil {
		p, err := r.remote.FetchProfile(ctx)
		if err == nil {
			p.Status = Synced
			if saveErr := r.local.Save(ctx, p); saveErr != nil {
				r.logger.WithError(saveErr).Warn("Failed to refresh local profile copy")
			}
			return p, nil
		}
		if errors.Is(err, ErrNoProfile) {
			return r.loadWithoutRemote(ctx)
		}
		r.logger.WithError(err).Warn("Remote profile unavailable, using local copy")
	}

	return r.local.Load(ctx)
}

// loadWithoutRemote handles a remote store that holds no profile. A pending
// local copy has not been pushed yet and is kept; a synced one was removed
// remotely and is dropped.
func (r *Repository) loadWithoutRemote(ctx context.Context) (*Profile, error) {
	p, err := r.local.Load(ctx)
	if err != nil {
		return nil, err
	}
	if p.Status == SyncPending {
		return p, nil
	}
	if err := r.local.Clear(ctx); err != nil {
		r.logger.WithError(err).Warn("Failed to drop stale local profile")
	}
	return nil, ErrNoProfile
}

// Reset clears the profile in both stores. Both are attempted; the first
// failure is returned.
func (r *Repository) Reset(ctx context.Context) error {
	var firstErr error
	if r.remote != nil {
		if err := r.remote.ResetProfile(ctx); err != nil {
			firstErr = fmt.Errorf("failed to reset remote profile: %w", err)
		}
	}
	if err := r.local.Clear(ctx); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("failed to clear local profile: %w", err)
	}
	if firstErr == nil {
		r.logger.Info("Profile reset")
	}
	return firstErr
}
