package patients

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// Repository defines the interface for patient storage.
type Repository interface {
	Create(ctx context.Context, req *CreatePatientRequest) (*Patient, error)
	GetByID(ctx context.Context, id int64) (*Patient, error)
	GetByEmail(ctx context.Context, email string) (*Patient, error)
	List(ctx context.Context) ([]*Patient, error)
	Update(ctx context.Context, id int64, req *UpdatePatientRequest) (*Patient, error)
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}

// InMemoryRepository keeps patients in a map. Used by tests and when no database is configured.
type InMemoryRepository struct {
	mu       sync.RWMutex
	nextID   int64
	patients map[int64]*Patient
}

// NewInMemoryRepository creates an empty in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{patients: make(map[int64]*Patient)}
}

func (r *InMemoryRepository) Create(ctx context.Context, req *CreatePatientRequest) (*Patient, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	p, err := req.toPatient()
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.patients {
		if strings.EqualFold(existing.Email, p.Email) {
			return nil, ErrDuplicateEmail
		}
	}
	r.nextID++
	now := time.Now().UTC()
	p.ID = r.nextID
	p.CreatedAt = now
	p.UpdatedAt = now
	r.patients[p.ID] = p

	out := *p
	return &out, nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id int64) (*Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.patients[id]
	if !ok {
		return nil, ErrPatientNotFound
	}
	out := *p
	return &out, nil
}

func (r *InMemoryRepository) GetByEmail(ctx context.Context, email string) (*Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.patients {
		if strings.EqualFold(p.Email, strings.TrimSpace(email)) {
			out := *p
			return &out, nil
		}
	}
	return nil, ErrPatientNotFound
}

func (r *InMemoryRepository) List(ctx context.Context) ([]*Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Patient, 0, len(r.patients))
	for _, p := range r.patients {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *InMemoryRepository) Update(ctx context.Context, id int64, req *UpdatePatientRequest) (*Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.patients[id]
	if !ok {
		return nil, ErrPatientNotFound
	}
	updated := *p
	if err := req.Apply(&updated); err != nil {
		return nil, err
	}
	updated.UpdatedAt = time.Now().UTC()
	r.patients[id] = &updated
	out := updated
	return &out, nil
}

func (r *InMemoryRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.patients[id]; !ok {
		return ErrPatientNotFound
	}
	delete(r.patients, id)
	return nil
}

func (r *InMemoryRepository) Count(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.patients)), nil
}
