package leads

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for lead storage
type Repository interface {
	Create(ctx context.Context, req *CreateLeadRequest) (*Lead, error)
	GetByID(ctx context.Context, siteID, id string) (*Lead, error)
	ListBySite(ctx context.Context, siteID string, filter ListLeadsFilter) ([]*Lead, error)
}

// ListLeadsFilter pages through a site's leads, newest first.
type ListLeadsFilter struct {
	Limit   int
	Offset  int
	Program string
}

// InMemoryRepository keeps leads in process memory. Used when no database is configured.
type InMemoryRepository struct {
	mu    sync.RWMutex
	leads map[string]*Lead
	now   func() time.Time
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		leads: make(map[string]*Lead),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Create stores a new lead in memory
func (r *InMemoryRepository) Create(ctx context.Context, req *CreateLeadRequest) (*Lead, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	lead := &Lead{
		ID:        uuid.New().String(),
		SiteID:    req.SiteID,
		SessionID: req.SessionID,
		Form:      req.Form,
		Option:    req.Option,
		DeepLink:  req.DeepLink,
		CreatedAt: r.now(),
	}

	r.mu.Lock()
	r.leads[lead.ID] = lead
	r.mu.Unlock()

	copied := *lead
	return &copied, nil
}

// GetByID retrieves a lead by ID scoped to the site
func (r *InMemoryRepository) GetByID(ctx context.Context, siteID, id string) (*Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lead, ok := r.leads[id]
	if !ok || lead.SiteID != siteID {
		return nil, ErrLeadNotFound
	}

	copied := *lead
	return &copied, nil
}

// ListBySite returns the site's leads newest first.
func (r *InMemoryRepository) ListBySite(ctx context.Context, siteID string, filter ListLeadsFilter) ([]*Lead, error) {
	r.mu.RLock()
	matched := make([]*Lead, 0)
	for _, lead := range r.leads {
		if lead.SiteID != siteID {
			continue
		}
		if filter.Program != "" && lead.Form.Program != filter.Program {
			continue
		}
		copied := *lead
		matched = append(matched, &copied)
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if filter.Offset >= len(matched) {
		return []*Lead{}, nil
	}
	matched = matched[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}
