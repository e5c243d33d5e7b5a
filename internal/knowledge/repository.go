package knowledge

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Repository stores FAQs and aftercare instructions. FAQs are soft-deleted.
type Repository interface {
	CreateFAQ(ctx context.Context, req *CreateFAQRequest) (*FAQ, error)
	GetFAQ(ctx context.Context, id int64) (*FAQ, error)
	// ListFAQs returns active FAQs in insertion order.
	ListFAQs(ctx context.Context, filter FAQFilter) ([]*FAQ, error)
	UpdateFAQ(ctx context.Context, id int64, req *UpdateFAQRequest) (*FAQ, error)
	DeactivateFAQ(ctx context.Context, id int64) error
	CountActiveFAQs(ctx context.Context) (int64, error)

	CreateAftercare(ctx context.Context, req *CreateAftercareRequest) (*Aftercare, error)
	// ListAftercare returns active instructions in insertion order.
	ListAftercare(ctx context.Context, filter AftercareFilter) ([]*Aftercare, error)
}

// InMemoryRepository keeps content in maps.
type InMemoryRepository struct {
	mu        sync.RWMutex
	nextFAQ   int64
	nextCare  int64
	faqs      map[int64]*FAQ
	aftercare map[int64]*Aftercare
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		faqs:      make(map[int64]*FAQ),
		aftercare: make(map[int64]*Aftercare),
	}
}

func (r *InMemoryRepository) CreateFAQ(ctx context.Context, req *CreateFAQRequest) (*FAQ, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	f := req.toFAQ()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextFAQ++
	now := time.Now().UTC()
	f.ID, f.CreatedAt, f.UpdatedAt = r.nextFAQ, now, now
	r.faqs[f.ID] = f
	out := *f
	return &out, nil
}

func (r *InMemoryRepository) GetFAQ(ctx context.Context, id int64) (*FAQ, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.faqs[id]
	if !ok {
		return nil, ErrFAQNotFound
	}
	out := *f
	return &out, nil
}

func (r *InMemoryRepository) ListFAQs(ctx context.Context, filter FAQFilter) ([]*FAQ, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*FAQ{}
	for _, f := range r.faqs {
		if filter.matches(f) {
			cp := *f
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *InMemoryRepository) UpdateFAQ(ctx context.Context, id int64, req *UpdateFAQRequest) (*FAQ, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.faqs[id]
	if !ok {
		return nil, ErrFAQNotFound
	}
	updated := *f
	req.Apply(&updated)
	updated.UpdatedAt = time.Now().UTC()
	r.faqs[id] = &updated
	out := updated
	return &out, nil
}

func (r *InMemoryRepository) DeactivateFAQ(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.faqs[id]
	if !ok {
		return ErrFAQNotFound
	}
	f.IsActive = false
	f.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *InMemoryRepository) CountActiveFAQs(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, f := range r.faqs {
		if f.IsActive {
			n++
		}
	}
	return n, nil
}

func (r *InMemoryRepository) CreateAftercare(ctx context.Context, req *CreateAftercareRequest) (*Aftercare, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	a := req.toAftercare()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextCare++
	now := time.Now().UTC()
	a.ID, a.CreatedAt, a.UpdatedAt = r.nextCare, now, now
	r.aftercare[a.ID] = a
	out := *a
	return &out, nil
}

func (r *InMemoryRepository) ListAftercare(ctx context.Context, filter AftercareFilter) ([]*Aftercare, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*Aftercare{}
	for _, a := range r.aftercare {
		if filter.matches(a) {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
