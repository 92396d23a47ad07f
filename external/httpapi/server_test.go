package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/orcavozapp/orcavoz/internal/budget"
	"github.com/orcavozapp/orcavoz/internal/config"
	"github.com/orcavozapp/orcavoz/internal/document"
	"github.com/orcavozapp/orcavoz/internal/extractor"
	"github.com/orcavozapp/orcavoz/internal/recognizer"
	"github.com/orcavozapp/orcavoz/internal/repository"
	"github.com/orcavozapp/orcavoz/internal/wizard"
)

type fakeRepo struct {
	profile *repository.Profile
	budgets map[string]*repository.Budget
	created []*repository.Budget
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		profile: &repository.Profile{
			UserID:       "user-1",
			Professional: repository.Professional{Name: "REFORMAS SILVA"},
		},
		budgets: map[string]*repository.Budget{},
	}
}

func (f *fakeRepo) CreateBudget(_ context.Context, b *repository.Budget) error {
	f.created = append(f.created, b)
	f.budgets[b.ID] = b
	return nil
}

func (f *fakeRepo) GetBudget(_ context.Context, budgetID, userID string) (*repository.Budget, error) {
	b, ok := f.budgets[budgetID]
	if !ok || b.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return b, nil
}

func (f *fakeRepo) ListBudgetsByUser(_ context.Context, userID string) ([]repository.Budget, error) {
	var list []repository.Budget
	for _, b := range f.budgets {
		if b.UserID == userID {
			list = append(list, *b)
		}
	}
	return list, nil
}

func (f *fakeRepo) UpdateBudgetValues(_ context.Context, budgetID, userID string, values repository.Values) error {
	b, ok := f.budgets[budgetID]
	if !ok || b.UserID != userID {
		return repository.ErrNotFound
	}
	b.Values = values
	return nil
}

func (f *fakeRepo) UpdateBudgetStatus(_ context.Context, budgetID, userID string, status repository.BudgetStatus) error {
	b, ok := f.budgets[budgetID]
	if !ok || b.UserID != userID {
		return repository.ErrNotFound
	}
	b.Status = status
	return nil
}

func (f *fakeRepo) MarkBudgetSent(_ context.Context, budgetID, userID string) error {
	b, ok := f.budgets[budgetID]
	if !ok || b.UserID != userID {
		return repository.ErrNotFound
	}
	b.Sent = true
	return nil
}

func (f *fakeRepo) DeleteBudget(_ context.Context, budgetID, userID string) error {
	b, ok := f.budgets[budgetID]
	if !ok || b.UserID != userID {
		return repository.ErrNotFound
	}
	delete(f.budgets, budgetID)
	return nil
}

func (f *fakeRepo) GetProfile(_ context.Context, userID string) (*repository.Profile, error) {
	if f.profile == nil || f.profile.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return f.profile, nil
}

func (f *fakeRepo) SaveProfile(_ context.Context, p *repository.Profile) error {
	f.profile = p
	return nil
}

type fakeRenderer struct{}

func (fakeRenderer) SendBudget(_ context.Context, _ *repository.Budget) error { return nil }
func (fakeRenderer) SendReceipt(_ context.Context, _ *document.Receipt) error { return nil }

type fakeExtractor struct {
	byTranscript map[string]*extractor.Candidate
}

func (f *fakeExtractor) Extract(_ context.Context, transcript string) *extractor.Candidate {
	return f.byTranscript[transcript]
}

type nopCapture struct{}

func (nopCapture) Start(_ context.Context, _ string, _ recognizer.Handler) error { return nil }
func (nopCapture) WriteAudio(_ []byte) error                                     { return nil }
func (nopCapture) Stop() error                                                   { return nil }

func newTestHandler(repo *fakeRepo, ext extractor.Extractor) http.Handler {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		Env:                   "test",
		HTTPPort:              8080,
		SpeechLanguage:        "pt-BR",
		SilenceTimeoutSeconds: 8,
		DefaultPaymentMethod:  "PIX",
		BudgetValidity:        "7 dias",
		ServiceWarranty:       "90 dias",
	}
	budgets := budget.NewService(repo, fakeRenderer{})
	wizards := wizard.NewManager(cfg, repo, ext, func() recognizer.SpeechCapture { return nopCapture{} })
	engine := gin.New()
	registerRoutes(engine, budgets, wizards)
	return engine
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("X-User-ID", "user-1")
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	h := newTestHandler(newFakeRepo(), &fakeExtractor{})
	rec := doRequest(t, h, http.MethodGet, "/v1/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestMissingUserHeader(t *testing.T) {
	h := newTestHandler(newFakeRepo(), &fakeExtractor{})
	req := httptest.NewRequest(http.MethodGet, "/v1/budgets", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestWizardSnapshotWithoutActiveSession(t *testing.T) {
	h := newTestHandler(newFakeRepo(), &fakeExtractor{})
	rec := doRequest(t, h, http.MethodGet, "/v1/wizard", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestWizardFlowOverHTTP(t *testing.T) {
	repo := newFakeRepo()
	ext := &fakeExtractor{byTranscript: map[string]*extractor.Candidate{
		"pintura de parede 500 reais": {ServiceDescription: "PINTURA DE PAREDE", TotalValue: "R$ 500,00"},
		"João Silva":                  {ClientName: "JOÃO SILVA"},
	}}
	h := newTestHandler(repo, ext)

	if rec := doRequest(t, h, http.MethodPost, "/v1/wizard", ""); rec.Code != http.StatusOK {
		t.Fatalf("start wizard: %d %s", rec.Code, rec.Body)
	}

	steps := []struct {
		method, path, body string
		want               int
	}{
		{http.MethodPut, "/v1/wizard/transcript", `{"transcript":"pintura de parede 500 reais"}`, http.StatusNoContent},
		{http.MethodPost, "/v1/wizard/submit", "", http.StatusOK},
		{http.MethodPost, "/v1/wizard/items/confirm", `{"adicionar_outro":false}`, http.StatusOK},
		{http.MethodPut, "/v1/wizard/transcript", `{"transcript":"João Silva"}`, http.StatusNoContent},
		{http.MethodPost, "/v1/wizard/submit", "", http.StatusOK},
		{http.MethodPost, "/v1/wizard/submit", "", http.StatusOK}, // empty notes
		{http.MethodPost, "/v1/wizard/advance", "", http.StatusOK},
		{http.MethodPost, "/v1/wizard/finalize", "", http.StatusCreated},
	}
	for _, s := range steps {
		rec := doRequest(t, h, s.method, s.path, s.body)
		if rec.Code != s.want {
			t.Fatalf("%s %s: status = %d, want %d: %s", s.method, s.path, rec.Code, s.want, rec.Body)
		}
	}

	if len(repo.created) != 1 {
		t.Fatalf("budgets persisted = %d", len(repo.created))
	}
	created := repo.created[0]
	if created.Client.Name != "JOÃO SILVA" || created.Values.Total != "R$ 500,00" {
		t.Fatalf("unexpected budget: %+v", created)
	}

	rec := doRequest(t, h, http.MethodGet, "/v1/budgets", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list budgets: %d", rec.Code)
	}
	var list []repository.Budget
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("listed budgets = %d", len(list))
	}
}

func TestUpdateStatusValidation(t *testing.T) {
	repo := newFakeRepo()
	repo.budgets["b-1"] = &repository.Budget{ID: "b-1", UserID: "user-1", Status: repository.BudgetStatusPendente}
	h := newTestHandler(repo, &fakeExtractor{})

	rec := doRequest(t, h, http.MethodPatch, "/v1/budgets/b-1/status", `{"status_orcamento":"Cancelado"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid status: %d, want 400", rec.Code)
	}

	rec = doRequest(t, h, http.MethodPatch, "/v1/budgets/b-1/status", `{"status_orcamento":"Aprovado"}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("valid status: %d, want 204", rec.Code)
	}
	if repo.budgets["b-1"].Status != repository.BudgetStatusAprovado {
		t.Fatalf("status not persisted: %s", repo.budgets["b-1"].Status)
	}
}

func TestReceiptEndpoints(t *testing.T) {
	repo := newFakeRepo()
	repo.budgets["b-1"] = &repository.Budget{
		ID: "b-1", UserID: "user-1",
		Values: repository.Values{Total: "R$ 1.000,00", PaidToDate: "R$ 300,00"},
	}
	h := newTestHandler(repo, &fakeExtractor{})

	rec := doRequest(t, h, http.MethodPost, "/v1/budgets/b-1/receipts/preview", `{"valor_recebido":"R$ 400,00"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("preview: %d %s", rec.Code, rec.Body)
	}
	var preview map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &preview); err != nil {
		t.Fatal(err)
	}
	if preview["valor_restante"] != "R$ 300,00" {
		t.Fatalf("preview remaining = %v", preview["valor_restante"])
	}
	if repo.budgets["b-1"].Values.PaidToDate != "R$ 300,00" {
		t.Fatal("preview mutated the ledger")
	}

	rec = doRequest(t, h, http.MethodPost, "/v1/budgets/b-1/receipts", `{"valor_recebido":"R$ 400,00"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("issue: %d %s", rec.Code, rec.Body)
	}
	if repo.budgets["b-1"].Values.PaidToDate != "R$ 700,00" {
		t.Fatalf("ledger = %q", repo.budgets["b-1"].Values.PaidToDate)
	}
}

func TestBudgetNotFound(t *testing.T) {
	h := newTestHandler(newFakeRepo(), &fakeExtractor{})
	rec := doRequest(t, h, http.MethodGet, "/v1/budgets/missing", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
