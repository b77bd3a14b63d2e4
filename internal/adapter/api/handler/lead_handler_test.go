package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/V4T54L/leadstore/internal/domain"
	"github.com/V4T54L/leadstore/internal/domain/mocks"
	"github.com/V4T54L/leadstore/internal/usecase"
)

// MockLeadService is a mock implementation of LeadService.
type MockLeadService struct {
	CreateLeadFunc func(ctx context.Context, in domain.LeadInput) (*domain.Lead, error)
	ListLeadsFunc  func(ctx context.Context) ([]domain.Lead, error)
	GetLeadFunc    func(ctx context.Context, id int64) (*domain.Lead, error)
	UpdateLeadFunc func(ctx context.Context, id int64, in domain.LeadInput) error
	DeleteLeadFunc func(ctx context.Context, id int64) error
	AddNoteFunc    func(ctx context.Context, leadID int64, in domain.NoteInput) (*domain.Note, error)
	ListNotesFunc  func(ctx context.Context, leadID int64) ([]domain.Note, error)
}

func (m *MockLeadService) CreateLead(ctx context.Context, in domain.LeadInput) (*domain.Lead, error) {
	return m.CreateLeadFunc(ctx, in)
}

func (m *MockLeadService) ListLeads(ctx context.Context) ([]domain.Lead, error) {
	return m.ListLeadsFunc(ctx)
}

func (m *MockLeadService) GetLead(ctx context.Context, id int64) (*domain.Lead, error) {
	return m.GetLeadFunc(ctx, id)
}

func (m *MockLeadService) UpdateLead(ctx context.Context, id int64, in domain.LeadInput) error {
	return m.UpdateLeadFunc(ctx, id, in)
}

func (m *MockLeadService) DeleteLead(ctx context.Context, id int64) error {
	return m.DeleteLeadFunc(ctx, id)
}

func (m *MockLeadService) AddNote(ctx context.Context, leadID int64, in domain.NoteInput) (*domain.Note, error) {
	return m.AddNoteFunc(ctx, leadID, in)
}

func (m *MockLeadService) ListNotes(ctx context.Context, leadID int64) ([]domain.Note, error) {
	return m.ListNotesFunc(ctx, leadID)
}

func newTestMux(h *LeadHandler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /leads", h.CreateLead)
	mux.HandleFunc("GET /leads", h.ListLeads)
	mux.HandleFunc("GET /leads/{id}", h.GetLead)
	mux.HandleFunc("PUT /leads/{id}", h.UpdateLead)
	mux.HandleFunc("DELETE /leads/{id}", h.DeleteLead)
	mux.HandleFunc("POST /leads/{id}/notes", h.AddNote)
	mux.HandleFunc("GET /leads/{id}/notes", h.ListNotes)
	return mux
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLeadHandler_WithMockService(t *testing.T) {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	errDB := errors.New("connection refused")

	tests := []struct {
		name           string
		method         string
		path           string
		body           string
		service        *MockLeadService
		expectedStatus int
		expectedBody   string
	}{
		{
			name:   "Create returns the stored lead",
			method: http.MethodPost,
			path:   "/leads",
			body:   `{"company_name":"Acme AB","status":"new"}`,
			service: &MockLeadService{
				CreateLeadFunc: func(ctx context.Context, in domain.LeadInput) (*domain.Lead, error) {
					return &domain.Lead{ID: 1, CompanyName: *in.CompanyName, Status: *in.Status, CreatedAt: created}, nil
				},
			},
			expectedStatus: http.StatusCreated,
			expectedBody: `{"id":1,"company_name":"Acme AB","contact_person":null,"organization_number":null,` +
				`"industry":null,"website":null,"status":"new","summary":null,"created_at":"2024-03-01T12:00:00Z","updated_at":null}`,
		},
		{
			name:   "Create accepts non-string values as text",
			method: http.MethodPost,
			path:   "/leads",
			body:   `{"company_name":123,"status":"x"}`,
			service: &MockLeadService{
				CreateLeadFunc: func(ctx context.Context, in domain.LeadInput) (*domain.Lead, error) {
					if in.CompanyName == nil || *in.CompanyName != "123" {
						return nil, errors.New("company_name not converted")
					}
					return &domain.Lead{ID: 2, CompanyName: *in.CompanyName, Status: *in.Status, CreatedAt: created}, nil
				},
			},
			expectedStatus: http.StatusCreated,
			expectedBody: `{"id":2,"company_name":"123","contact_person":null,"organization_number":null,` +
				`"industry":null,"website":null,"status":"x","summary":null,"created_at":"2024-03-01T12:00:00Z","updated_at":null}`,
		},
		{
			name:           "Create with malformed JSON",
			method:         http.MethodPost,
			path:           "/leads",
			body:           `{"company_name":`,
			service:        &MockLeadService{},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"Invalid request body"}`,
		},
		{
			name:           "Create with empty body",
			method:         http.MethodPost,
			path:           "/leads",
			body:           ``,
			service:        &MockLeadService{},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"Invalid request body"}`,
		},
		{
			name:   "Create propagates validation errors",
			method: http.MethodPost,
			path:   "/leads",
			body:   `{"company_name":"Acme AB"}`,
			service: &MockLeadService{
				CreateLeadFunc: func(ctx context.Context, in domain.LeadInput) (*domain.Lead, error) {
					return nil, in.Validate()
				},
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"status is required"}`,
		},
		{
			name:   "Create hides internal errors",
			method: http.MethodPost,
			path:   "/leads",
			body:   `{"company_name":"Acme AB","status":"new"}`,
			service: &MockLeadService{
				CreateLeadFunc: func(ctx context.Context, in domain.LeadInput) (*domain.Lead, error) {
					return nil, errDB
				},
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"error":"Internal server error"}`,
		},
		{
			name:   "List with no leads returns an empty array",
			method: http.MethodGet,
			path:   "/leads",
			service: &MockLeadService{
				ListLeadsFunc: func(ctx context.Context) ([]domain.Lead, error) { return nil, nil },
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `[]`,
		},
		{
			name:   "Get unknown lead",
			method: http.MethodGet,
			path:   "/leads/99",
			service: &MockLeadService{
				GetLeadFunc: func(ctx context.Context, id int64) (*domain.Lead, error) {
					return nil, domain.ErrLeadNotFound
				},
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"error":"Lead not found"}`,
		},
		{
			name:           "Get with non-numeric id",
			method:         http.MethodGet,
			path:           "/leads/abc",
			service:        &MockLeadService{},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"error":"Lead not found"}`,
		},
		{
			name:           "Get with zero id",
			method:         http.MethodGet,
			path:           "/leads/0",
			service:        &MockLeadService{},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"error":"Lead not found"}`,
		},
		{
			name:           "Get with signed id",
			method:         http.MethodGet,
			path:           "/leads/+5",
			service:        &MockLeadService{},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"error":"Lead not found"}`,
		},
		{
			name:           "Delete with signed id",
			method:         http.MethodDelete,
			path:           "/leads/-5",
			service:        &MockLeadService{},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"error":"Lead not found"}`,
		},
		{
			name:   "Update success",
			method: http.MethodPut,
			path:   "/leads/3",
			body:   `{"company_name":"Acme AB","status":"won"}`,
			service: &MockLeadService{
				UpdateLeadFunc: func(ctx context.Context, id int64, in domain.LeadInput) error {
					if id != 3 {
						return errors.New("wrong id")
					}
					return nil
				},
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"message":"Lead updated successfully"}`,
		},
		{
			name:   "Update unknown lead",
			method: http.MethodPut,
			path:   "/leads/3",
			body:   `{"company_name":"Acme AB","status":"won"}`,
			service: &MockLeadService{
				UpdateLeadFunc: func(ctx context.Context, id int64, in domain.LeadInput) error {
					return domain.ErrLeadNotFound
				},
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"error":"Lead not found"}`,
		},
		{
			name:   "Delete success",
			method: http.MethodDelete,
			path:   "/leads/3",
			service: &MockLeadService{
				DeleteLeadFunc: func(ctx context.Context, id int64) error { return nil },
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"message":"Lead deleted successfully"}`,
		},
		{
			name:   "Add note success",
			method: http.MethodPost,
			path:   "/leads/3/notes",
			body:   `{"note":"called back"}`,
			service: &MockLeadService{
				AddNoteFunc: func(ctx context.Context, leadID int64, in domain.NoteInput) (*domain.Note, error) {
					return &domain.Note{ID: 7, LeadID: leadID, Note: *in.Note, CreatedAt: created}, nil
				},
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `{"id":7,"lead_id":3,"note":"called back","created_at":"2024-03-01T12:00:00Z"}`,
		},
		{
			name:   "Add note with empty body reports the missing note",
			method: http.MethodPost,
			path:   "/leads/3/notes",
			body:   ``,
			service: &MockLeadService{
				AddNoteFunc: func(ctx context.Context, leadID int64, in domain.NoteInput) (*domain.Note, error) {
					return nil, in.Validate()
				},
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"Note content is required"}`,
		},
		{
			name:           "Add note with empty body on id 0",
			method:         http.MethodPost,
			path:           "/leads/0/notes",
			body:           `{}`,
			service:        &MockLeadService{},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"Note content is required"}`,
		},
		{
			name:           "Add note with empty body on an id beyond int64",
			method:         http.MethodPost,
			path:           "/leads/99999999999999999999/notes",
			body:           `{}`,
			service:        &MockLeadService{},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"Note content is required"}`,
		},
		{
			name:           "Add note on id 0",
			method:         http.MethodPost,
			path:           "/leads/0/notes",
			body:           `{"note":"hello"}`,
			service:        &MockLeadService{},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"error":"Lead not found"}`,
		},
		{
			name:           "Add note on a non-numeric id",
			method:         http.MethodPost,
			path:           "/leads/abc/notes",
			body:           `{}`,
			service:        &MockLeadService{},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"error":"Lead not found"}`,
		},
		{
			name:           "Add note with a null note",
			method:         http.MethodPost,
			path:           "/leads/3/notes",
			body:           `{"note":null}`,
			service:        &MockLeadService{},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"Note content is required"}`,
		},
		{
			name:           "Add note with malformed JSON",
			method:         http.MethodPost,
			path:           "/leads/3/notes",
			body:           `{"note"`,
			service:        &MockLeadService{},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"Invalid request body"}`,
		},
		{
			name:   "List notes for unknown lead",
			method: http.MethodGet,
			path:   "/leads/3/notes",
			service: &MockLeadService{
				ListNotesFunc: func(ctx context.Context, leadID int64) ([]domain.Note, error) {
					return nil, domain.ErrLeadNotFound
				},
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"error":"Lead not found"}`,
		},
		{
			name:   "List notes with none returns an empty array",
			method: http.MethodGet,
			path:   "/leads/3/notes",
			service: &MockLeadService{
				ListNotesFunc: func(ctx context.Context, leadID int64) ([]domain.Note, error) {
					return []domain.Note{}, nil
				},
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `[]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewLeadHandler(tt.service, discardLogger(), 1024)

			req := httptest.NewRequest(tt.method, tt.path, bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rr := httptest.NewRecorder()

			newTestMux(h).ServeHTTP(rr, req)

			if status := rr.Code; status != tt.expectedStatus {
				t.Errorf("handler returned wrong status code: got %v want %v", status, tt.expectedStatus)
			}
			if body := rr.Body.String(); body != tt.expectedBody {
				t.Errorf("handler returned unexpected body: got %q want %q", body, tt.expectedBody)
			}
			if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("unexpected Content-Type: %q", ct)
			}
		})
	}
}

func TestLeadHandler_PayloadTooLarge(t *testing.T) {
	h := NewLeadHandler(&MockLeadService{}, discardLogger(), 32)

	body := `{"company_name":"` + strings.Repeat("x", 64) + `","status":"new"}`
	req := httptest.NewRequest(http.MethodPost, "/leads", strings.NewReader(body))
	rr := httptest.NewRecorder()

	newTestMux(h).ServeHTTP(rr, req)

	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("got status %d, want %d", rr.Code, http.StatusRequestEntityTooLarge)
	}
	if got := rr.Body.String(); got != `{"error":"Request body too large"}` {
		t.Errorf("unexpected body %q", got)
	}
}

// TestLeadHandler_EndToEnd drives the handler through the real use case
// backed by in-memory repositories.
func TestLeadHandler_EndToEnd(t *testing.T) {
	leads := &mocks.MockLeadRepository{}
	notes := &mocks.MockNoteRepository{LeadExists: leads.Has}
	uc := usecase.NewLeadUseCase(leads, notes, nil, discardLogger())
	mux := newTestMux(NewLeadHandler(uc, discardLogger(), 1<<20))

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, req)
		return rr
	}

	rr := do(http.MethodPost, "/leads", `{"company_name":"Acme AB","status":"new","industry":"Retail"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: got %d: %s", rr.Code, rr.Body.String())
	}
	var lead domain.Lead
	if err := json.Unmarshal(rr.Body.Bytes(), &lead); err != nil {
		t.Fatalf("decode created lead: %v", err)
	}
	if lead.ID == 0 || lead.Industry == nil || *lead.Industry != "Retail" {
		t.Fatalf("unexpected created lead: %+v", lead)
	}

	path := "/leads/" + strconv.FormatInt(lead.ID, 10)

	if rr := do(http.MethodPost, path+"/notes", `{"note":null}`); rr.Code != http.StatusBadRequest {
		t.Errorf("null note: got %d", rr.Code)
	}
	if rr := do(http.MethodPost, path+"/notes", `{"note":"first"}`); rr.Code != http.StatusCreated {
		t.Errorf("add note: got %d", rr.Code)
	}
	if rr := do(http.MethodPost, "/leads/999/notes", `{"note":"orphan"}`); rr.Code != http.StatusNotFound {
		t.Errorf("note on unknown lead: got %d", rr.Code)
	}

	if rr := do(http.MethodPut, path, `{"company_name":"Acme AB","status":"won"}`); rr.Code != http.StatusOK {
		t.Errorf("update: got %d", rr.Code)
	}
	rr = do(http.MethodGet, path, "")
	if err := json.Unmarshal(rr.Body.Bytes(), &lead); err != nil {
		t.Fatalf("decode lead: %v", err)
	}
	if lead.Status != "won" || lead.Industry != nil {
		t.Errorf("update did not overwrite every column: %+v", lead)
	}

	if rr := do(http.MethodDelete, path, ""); rr.Code != http.StatusOK {
		t.Errorf("delete: got %d", rr.Code)
	}
	if rr := do(http.MethodDelete, path, ""); rr.Code != http.StatusNotFound {
		t.Errorf("second delete: got %d", rr.Code)
	}
}
