package calendar

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/wolfman30/clinic-assistant/internal/resilience"
	"github.com/wolfman30/clinic-assistant/pkg/logging"
)

type fakeProvider struct {
	createID  string
	err       error
	busy      []Interval
	calls     int
	deletedID string
}

func (f *fakeProvider) CreateEvent(ctx context.Context, d EventDetails) (string, error) {
	f.calls++
	return f.createID, f.err
}

func (f *fakeProvider) UpdateEvent(ctx context.Context, id string, d EventDetails) error {
	f.calls++
	return f.err
}

func (f *fakeProvider) DeleteEvent(ctx context.Context, id string) error {
	f.calls++
	f.deletedID = id
	return f.err
}

func (f *fakeProvider) BusyIntervals(ctx context.Context, start, end time.Time) ([]Interval, error) {
	f.calls++
	return f.busy, f.err
}

func testPolicy() resilience.Policy {
	return resilience.Policy{Timeout: time.Second, Retries: 1, Backoff: time.Millisecond}
}

func TestServiceWithoutProvider(t *testing.T) {
	svc := NewService(nil, testPolicy(), logging.Default(), nil)
	assert.False(t, svc.Enabled())
	assert.Equal(t, "", svc.CreateEvent(context.Background(), EventDetails{}))
	assert.False(t, svc.UpdateEvent(context.Background(), "evt", EventDetails{}))
	assert.False(t, svc.DeleteEvent(context.Background(), "evt"))
	assert.Equal(t, DefaultSlots(), svc.ListAvailableSlots(context.Background(), time.Now()))
}

func TestServiceSwallowsProviderErrors(t *testing.T) {
	p := &fakeProvider{err: errors.New("unreachable")}
	svc := NewService(p, testPolicy(), logging.Default(), nil)

	assert.Equal(t, "", svc.CreateEvent(context.Background(), EventDetails{}))
	assert.False(t, svc.UpdateEvent(context.Background(), "evt", EventDetails{}))
	assert.False(t, svc.DeleteEvent(context.Background(), "evt"))
	assert.Equal(t, DefaultSlots(), svc.ListAvailableSlots(context.Background(), time.Now()))
	// permanent errors are not retried
	assert.Equal(t, 4, p.calls)
}

func TestServiceRetriesTransientError(t *testing.T) {
	p := &fakeProvider{err: context.DeadlineExceeded}
	svc := NewService(p, testPolicy(), logging.Default(), nil)
	assert.Equal(t, DefaultSlots(), svc.ListAvailableSlots(context.Background(), time.Now()))
	assert.Equal(t, 2, p.calls)
}

func TestServiceHappyPath(t *testing.T) {
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	p := &fakeProvider{
		createID: "evt-1",
		busy:     []Interval{{Start: date.Add(9 * time.Hour), End: date.Add(12 * time.Hour)}},
	}
	svc := NewService(p, testPolicy(), logging.Default(), nil)

	assert.Equal(t, "evt-1", svc.CreateEvent(context.Background(), EventDetails{}))
	assert.True(t, svc.DeleteEvent(context.Background(), "evt-1"))
	assert.Equal(t, "evt-1", p.deletedID)
	assert.Equal(t, []string{"12:00", "13:00", "14:00", "15:00", "16:00"}, svc.ListAvailableSlots(context.Background(), date))
}

func TestServiceSkipsEmptyEventID(t *testing.T) {
	p := &fakeProvider{}
	svc := NewService(p, testPolicy(), logging.Default(), nil)
	assert.False(t, svc.UpdateEvent(context.Background(), "", EventDetails{}))
	assert.False(t, svc.DeleteEvent(context.Background(), ""))
	assert.Equal(t, 0, p.calls)
}
