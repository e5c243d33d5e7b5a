package appointments

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Repository defines the interface for appointment storage.
type Repository interface {
	Create(ctx context.Context, a *Appointment) (*Appointment, error)
	GetByID(ctx context.Context, id int64) (*Appointment, error)
	List(ctx context.Context) ([]*Appointment, error)
	Update(ctx context.Context, id int64, req *UpdateAppointmentRequest) (*Appointment, error)
	SetCalendarEventID(ctx context.Context, id int64, eventID string) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
}

// InMemoryRepository keeps appointments in a map.
type InMemoryRepository struct {
	mu           sync.RWMutex
	nextID       int64
	appointments map[int64]*Appointment
}

// NewInMemoryRepository creates an empty in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{appointments: make(map[int64]*Appointment)}
}

func (r *InMemoryRepository) Create(ctx context.Context, a *Appointment) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	now := time.Now().UTC()
	stored := *a
	stored.ID = r.nextID
	stored.CreatedAt = now
	stored.UpdatedAt = now
	if stored.Status == "" {
		stored.Status = StatusScheduled
	}
	r.appointments[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id int64) (*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.appointments[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	out := *a
	return &out, nil
}

func (r *InMemoryRepository) List(ctx context.Context) ([]*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Appointment, 0, len(r.appointments))
	for _, a := range r.appointments {
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AppointmentDate.Equal(out[j].AppointmentDate) {
			return out[i].ID < out[j].ID
		}
		return out[i].AppointmentDate.Before(out[j].AppointmentDate)
	})
	return out, nil
}

func (r *InMemoryRepository) Update(ctx context.Context, id int64, req *UpdateAppointmentRequest) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appointments[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	updated := *a
	if err := req.Apply(&updated); err != nil {
		return nil, err
	}
	updated.UpdatedAt = time.Now().UTC()
	r.appointments[id] = &updated
	out := updated
	return &out, nil
}

func (r *InMemoryRepository) SetCalendarEventID(ctx context.Context, id int64, eventID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appointments[id]
	if !ok {
		return ErrAppointmentNotFound
	}
	a.CalendarEventID = eventID
	return nil
}

func (r *InMemoryRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.appointments[id]; !ok {
		return ErrAppointmentNotFound
	}
	delete(r.appointments, id)
	return nil
}

func (r *InMemoryRepository) Count(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.appointments)), nil
}

func (r *InMemoryRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, a := range r.appointments {
		if a.Status == status {
			n++
		}
	}
	return n, nil
}
