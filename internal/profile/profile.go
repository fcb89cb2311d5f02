package profile

import (
	"context"
	"errors"
	"time"

	"fjacquet/budget-tracker/internal/models"
)

// SyncStatus tells whether the local copy has reached the remote store.
type SyncStatus string

const (
	SyncPending SyncStatus = "pending"
	Synced      SyncStatus = "synced"
)

var (
	// ErrNoProfile is returned when no profile has been saved yet.
	ErrNoProfile = errors.New("no financial profile")
	// ErrNotSynced marks a profile saved locally that did not reach the
	// remote store.
	ErrNotSynced = errors.New("profile not synced")
)

// Profile is a completed questionnaire with its accepted suggestions.
type Profile struct {
	Answers    Questionnaire               `json:"answers" yaml:"answers"`
	Categories []models.CategorySuggestion `json:"categories" yaml:"categories"`
	Completed  bool                        `json:"completed" yaml:"completed"`
	Status     SyncStatus                  `json:"-" yaml:"status"`
	UpdatedAt  time.Time                   `json:"updatedAt" yaml:"updated_at"`
}

// Complete validates answers and builds a profile with suggestions.
func Complete(q Questionnaire, now time.Time) (*Profile, error) {
	if err := Validate(q); err != nil {
		return nil, err
	}
	return &Profile{
		Answers:    q,
		Categories: Suggest(q),
		Completed:  true,
		UpdatedAt:  now.UTC(),
	}, nil
}

// LocalStore keeps the on-device copy of the profile.
type LocalStore interface {
	Load(ctx context.Context) (*Profile, error)
	Save(ctx context.Context, p *Profile) error
	Clear(ctx context.Context) error
}

// RemoteStore is the authoritative server copy.
type RemoteStore interface {
	FetchProfile(ctx context.Context) (*Profile, error)
	CompleteProfile(ctx context.Context, p *Profile) error
	ResetProfile(ctx context.Context) error
}
