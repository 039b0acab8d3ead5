package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"archives/internal/models"
	"archives/internal/prefs"
)

// Prefs is a visitor's stored settings.
type Prefs struct {
	DarkMode      bool   `json:"dark_mode"`
	VaultUnlocked bool   `json:"vault_unlocked"`
	AnonName      string `json:"anon_name"`
}

// PrefsPatch updates the settings a visitor may change. The vault flag is
// only ever set by entering the vault.
type PrefsPatch struct {
	DarkMode *bool   `json:"dark_mode"`
	AnonName *string `json:"anon_name"`
}

type PrefsService struct {
	store prefs.Store
}

func NewPrefsService(store prefs.Store) *PrefsService {
	return &PrefsService{store: store}
}

func (s *PrefsService) Get(ctx context.Context, visitorID string) (*Prefs, error) {
	var out Prefs
	var err error
	if out.DarkMode, err = s.store.GetBool(ctx, visitorID, prefs.KeyDarkMode); err != nil {
		return nil, err
	}
	if out.VaultUnlocked, err = s.store.GetBool(ctx, visitorID, prefs.KeyVaultUnlocked); err != nil {
		return nil, err
	}
	if out.AnonName, err = s.store.GetString(ctx, visitorID, prefs.KeyAnonName); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *PrefsService) Update(ctx context.Context, visitorID string, in PrefsPatch) (*Prefs, error) {
	if in.AnonName != nil {
		name := strings.TrimSpace(*in.AnonName)
		if utf8.RuneCountInString(name) > maxAuthorNameLen {
			return nil, models.NewValidationError("Name too long (max 60 characters)")
		}
		if err := s.store.SetString(ctx, visitorID, prefs.KeyAnonName, name); err != nil {
			return nil, err
		}
	}
	if in.DarkMode != nil {
		if err := s.store.SetBool(ctx, visitorID, prefs.KeyDarkMode, *in.DarkMode); err != nil {
			return nil, err
		}
	}
	return s.Get(ctx, visitorID)
}
