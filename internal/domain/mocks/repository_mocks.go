package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/V4T54L/leadstore/internal/domain"
)

// MockLeadRepository is an in-memory domain.LeadRepository for testing.
type MockLeadRepository struct {
	mu     sync.Mutex
	nextID int64
	Leads  []domain.Lead // newest last

	CreateErr error
	ListErr   error
	GetErr    error
	UpdateErr error
	DeleteErr error

	CreateCalls int
	GetCalls    int
	UpdateCalls int

	// AfterGet, when set, runs after Get has read the row and before it
	// returns, outside the lock.
	AfterGet func(id int64)
}

func (m *MockLeadRepository) Create(ctx context.Context, in domain.LeadInput) (*domain.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls++
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	m.nextID++
	now := time.Now().UTC()
	lead := applyInput(domain.Lead{ID: m.nextID, CreatedAt: now, UpdatedAt: &now}, in)
	m.Leads = append(m.Leads, lead)
	return &lead, nil
}

func (m *MockLeadRepository) List(ctx context.Context) ([]domain.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	out := make([]domain.Lead, 0, len(m.Leads))
	for i := len(m.Leads) - 1; i >= 0; i-- {
		out = append(out, m.Leads[i])
	}
	return out, nil
}

func (m *MockLeadRepository) Get(ctx context.Context, id int64) (*domain.Lead, error) {
	lead, err := m.get(id)
	if m.AfterGet != nil {
		m.AfterGet(id)
	}
	return lead, err
}

func (m *MockLeadRepository) get(id int64) (*domain.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetCalls++
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	for _, l := range m.Leads {
		if l.ID == id {
			lead := l
			return &lead, nil
		}
	}
	return nil, domain.ErrLeadNotFound
}

func (m *MockLeadRepository) Update(ctx context.Context, id int64, in domain.LeadInput) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateCalls++
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	for i, l := range m.Leads {
		if l.ID == id {
			now := time.Now().UTC()
			l.UpdatedAt = &now
			m.Leads[i] = applyInput(l, in)
			return nil
		}
	}
	return domain.ErrLeadNotFound
}

func (m *MockLeadRepository) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	for i, l := range m.Leads {
		if l.ID == id {
			m.Leads = append(m.Leads[:i], m.Leads[i+1:]...)
			return nil
		}
	}
	return domain.ErrLeadNotFound
}

// Has reports whether a lead with the id is stored.
func (m *MockLeadRepository) Has(id int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.Leads {
		if l.ID == id {
			return true
		}
	}
	return false
}

func applyInput(l domain.Lead, in domain.LeadInput) domain.Lead {
	if in.CompanyName != nil {
		l.CompanyName = *in.CompanyName
	}
	if in.Status != nil {
		l.Status = *in.Status
	}
	l.ContactPerson = in.ContactPerson
	l.OrganizationNumber = in.OrganizationNumber
	l.Industry = in.Industry
	l.Website = in.Website
	l.Summary = in.Summary
	return l
}

// MockNoteRepository is an in-memory domain.NoteRepository for testing.
// LeadExists decides which lead ids are valid; nil treats every lead as missing.
type MockNoteRepository struct {
	mu         sync.Mutex
	nextID     int64
	Notes      []domain.Note // newest last
	LeadExists func(id int64) bool

	CreateErr   error
	ListErr     error
	CreateCalls int
}

func (m *MockNoteRepository) Create(ctx context.Context, leadID int64, note string) (*domain.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls++
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	if m.LeadExists == nil || !m.LeadExists(leadID) {
		return nil, domain.ErrLeadNotFound
	}
	m.nextID++
	n := domain.Note{ID: m.nextID, LeadID: leadID, Note: note, CreatedAt: time.Now().UTC()}
	m.Notes = append(m.Notes, n)
	return &n, nil
}

func (m *MockNoteRepository) ListByLead(ctx context.Context, leadID int64) ([]domain.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	if m.LeadExists == nil || !m.LeadExists(leadID) {
		return nil, domain.ErrLeadNotFound
	}
	out := []domain.Note{}
	for i := len(m.Notes) - 1; i >= 0; i-- {
		if m.Notes[i].LeadID == leadID {
			out = append(out, m.Notes[i])
		}
	}
	return out, nil
}

// MockLeadCache is a map-backed domain.LeadCache for testing.
// It honours generations the way the Redis cache does.
type MockLeadCache struct {
	mu          sync.Mutex
	Entries     map[int64]domain.Lead
	Generations map[int64]int64
	GetErr      error
	SetErr      error
	Invalidated []int64
	StaleSets   int
}

func NewMockLeadCache() *MockLeadCache {
	return &MockLeadCache{
		Entries:     make(map[int64]domain.Lead),
		Generations: make(map[int64]int64),
	}
}

func (m *MockLeadCache) Get(ctx context.Context, id int64) (*domain.Lead, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, 0, m.GetErr
	}
	l, ok := m.Entries[id]
	if !ok {
		return nil, m.Generations[id], domain.ErrCacheMiss
	}
	return &l, m.Generations[id], nil
}

func (m *MockLeadCache) Set(ctx context.Context, lead *domain.Lead, generation int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetErr != nil {
		return m.SetErr
	}
	if m.Generations[lead.ID] != generation {
		m.StaleSets++
		return nil
	}
	m.Entries[lead.ID] = *lead
	return nil
}

func (m *MockLeadCache) Invalidate(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Entries, id)
	m.Generations[id]++
	m.Invalidated = append(m.Invalidated, id)
	return nil
}
