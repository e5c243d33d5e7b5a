package clinic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/oauth2"
)

const (
	clinicSettingsKey  = "clinic_settings"
	bookingSettingsKey = "booking_settings"
	calendarTokenKey   = "google_calendar_token"
)

// SettingsStore reads and writes the typed singleton documents.
type SettingsStore struct {
	kv KV
}

// NewSettingsStore wraps a KV backend.
func NewSettingsStore(kv KV) *SettingsStore {
	return &SettingsStore{kv: kv}
}

// ClinicSettings returns the clinic profile, writing defaults on first access.
func (s *SettingsStore) ClinicSettings(ctx context.Context) (*ClinicSettings, error) {
	out := &ClinicSettings{}
	if err := s.loadOrInit(ctx, clinicSettingsKey, DefaultClinicSettings(), out); err != nil {
		return nil, err
	}
	return out, nil
}

// SaveClinicSettings overwrites the clinic profile.
func (s *SettingsStore) SaveClinicSettings(ctx context.Context, cs *ClinicSettings) error {
	cs.UpdatedAt = time.Now().UTC()
	return s.save(ctx, clinicSettingsKey, cs)
}

// BookingSettings returns the booking policy, writing defaults on first access.
func (s *SettingsStore) BookingSettings(ctx context.Context) (*BookingSettings, error) {
	out := &BookingSettings{}
	if err := s.loadOrInit(ctx, bookingSettingsKey, DefaultBookingSettings(), out); err != nil {
		return nil, err
	}
	return out, nil
}

// SaveBookingSettings overwrites the booking policy.
func (s *SettingsStore) SaveBookingSettings(ctx context.Context, bs *BookingSettings) error {
	bs.UpdatedAt = time.Now().UTC()
	return s.save(ctx, bookingSettingsKey, bs)
}

// LoadToken returns the stored calendar OAuth token, or nil when none has been saved.
func (s *SettingsStore) LoadToken(ctx context.Context) (*oauth2.Token, error) {
	data, err := s.kv.Load(ctx, calendarTokenKey)
	if errors.Is(err, ErrSettingNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("clinic: unmarshal calendar token: %w", err)
	}
	return &tok, nil
}

// SaveToken persists the calendar OAuth token.
func (s *SettingsStore) SaveToken(ctx context.Context, tok *oauth2.Token) error {
	return s.save(ctx, calendarTokenKey, tok)
}

func (s *SettingsStore) loadOrInit(ctx context.Context, key string, def any, out any) error {
	defData, err := json.Marshal(def)
	if err != nil {
		return fmt.Errorf("clinic: marshal default %s: %w", key, err)
	}
	data, err := s.kv.InitIfAbsent(ctx, key, defData)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("clinic: unmarshal %s: %w", key, err)
	}
	return nil
}

func (s *SettingsStore) save(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("clinic: marshal %s: %w", key, err)
	}
	return s.kv.Store(ctx, key, data)
}
