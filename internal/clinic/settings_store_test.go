package clinic

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestSettingsStore_DefaultsOnFirstAccess(t *testing.T) {
	store := NewSettingsStore(NewMemoryKV())
	ctx := context.Background()

	cs, err := store.ClinicSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultClinicSettings().ClinicName, cs.ClinicName)
	assert.Len(t, cs.Departments, 3)
	assert.True(t, cs.OperatingHours["sunday"].Closed)

	bs, err := store.BookingSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 30, bs.SlotDuration)
	assert.Equal(t, 24, bs.MinBookingNoticeHours)
}

func TestSettingsStore_PartialUpdatePersists(t *testing.T) {
	store := NewSettingsStore(NewMemoryKV())
	ctx := context.Background()

	cs, err := store.ClinicSettings(ctx)
	require.NoError(t, err)
	name := "Riverside Clinic"
	(&UpdateClinicSettingsRequest{ClinicName: &name}).Apply(cs)
	require.NoError(t, store.SaveClinicSettings(ctx, cs))

	reloaded, err := store.ClinicSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Riverside Clinic", reloaded.ClinicName)
	assert.Equal(t, cs.Phone, reloaded.Phone)
	assert.False(t, reloaded.UpdatedAt.IsZero())
}

func TestSettingsStore_CalendarToken(t *testing.T) {
	store := NewSettingsStore(NewMemoryKV())
	ctx := context.Background()

	tok, err := store.LoadToken(ctx)
	require.NoError(t, err)
	assert.Nil(t, tok)

	expiry := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.SaveToken(ctx, &oauth2.Token{AccessToken: "a", RefreshToken: "r", Expiry: expiry}))

	tok, err = store.LoadToken(ctx)
	require.NoError(t, err)
	require.NotNil(t, tok)
	assert.Equal(t, "r", tok.RefreshToken)
	assert.True(t, tok.Expiry.Equal(expiry))
}
