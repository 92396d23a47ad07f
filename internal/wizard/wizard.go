// Package wizard drives the multi-step assembly of a budget from voice
// dictation: capture service items, capture client data, capture notes,
// direct editing, preview and finalize.
package wizard

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/orcavozapp/orcavoz/internal/dictation"
	"github.com/orcavozapp/orcavoz/internal/extractor"
	"github.com/orcavozapp/orcavoz/internal/money"
	"github.com/orcavozapp/orcavoz/internal/normalize"
	"github.com/orcavozapp/orcavoz/internal/repository"
)

type Step string

const (
	StepCaptureService Step = "capture_service"
	StepCaptureClient  Step = "capture_client"
	StepCaptureNotes   Step = "capture_notes"
	StepEditDetails    Step = "edit_details"
	StepPreview        Step = "preview"
	StepFinalized      Step = "finalized"
)

var (
	ErrWrongStep         = errors.New("operation not allowed in the current step")
	ErrEmptyTranscript   = errors.New("nothing was dictated")
	ErrServiceIncomplete = errors.New("a service description and a total value are required")
	ErrNoPendingItem     = errors.New("no extracted service item awaiting confirmation")
	ErrNoItems           = errors.New("at least one service item is required")
	ErrItemIndex         = errors.New("service item index out of range")
)

const fallbackItemDescription = "SERVIÇO"

// Wizard owns the working state of one budget under assembly. All
// mutating methods serialize through the wizard mutex; the extraction
// network call runs outside it and its result is discarded when the
// wizard moved on in the meantime.
type Wizard struct {
	extract extractor.Extractor
	repo    repository.Repository
	session *dictation.Session

	userID       string
	professional repository.Professional

	now   func() time.Time
	newID func() string

	mu           sync.Mutex
	step         Step
	finalizing   bool
	generation   uint64
	nextSequence int
	client       repository.Client
	items        []repository.ServiceItem
	notes        string
	values       repository.Values
	legal        repository.Legal
	pending      *extractor.Candidate
	rawDictation []string
	lastBudget   *repository.Budget
}

// Defaults seed the working values and legal blocks for each new budget.
type Defaults struct {
	PaymentMethod string
	Validity      string
	Warranty      string
}

func New(ext extractor.Extractor, repo repository.Repository, session *dictation.Session, userID string, professional repository.Professional, nextSequence int, defaults Defaults) *Wizard {
	w := &Wizard{
		extract:      ext,
		repo:         repo,
		session:      session,
		userID:       userID,
		professional: professional,
		nextSequence: nextSequence,
		now:          time.Now,
		newID:        uuid.NewString,
	}
	w.resetLocked(defaults)
	return w
}

// Step returns the current wizard step.
func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// Session exposes the dictation session for audio forwarding.
func (w *Wizard) Session() *dictation.Session {
	return w.session
}

// StartDictation begins a fresh recording for the current capture step.
// The transcript is cleared here so re-recording is an explicit,
// side-effect-free retry that never double-appends.
func (w *Wizard) StartDictation(ctx context.Context) error {
	w.mu.Lock()
	step := w.step
	w.mu.Unlock()
	switch step {
	case StepCaptureService, StepCaptureClient, StepCaptureNotes:
	default:
		return ErrWrongStep
	}
	w.session.SetTranscript("")
	return w.session.Start(ctx)
}

// StopDictation stops recording, keeping the accumulated transcript.
func (w *Wizard) StopDictation() {
	w.session.Stop()
}

// Transcript returns the session's accumulated text.
func (w *Wizard) Transcript() string {
	return w.session.Transcript()
}

// SetTranscript lets the operator edit the text directly while idle.
func (w *Wizard) SetTranscript(text string) {
	w.session.SetTranscript(text)
}

// Submit processes the current transcript for the current capture step.
// Extraction failures never abort the flow: the client step falls back
// to the raw transcript and the notes step takes the text verbatim. The
// service step is the only one that refuses to advance without a usable
// candidate.
func (w *Wizard) Submit(ctx context.Context) error {
	w.mu.Lock()
	step := w.step
	gen := w.generation
	w.mu.Unlock()

	switch step {
	case StepCaptureService, StepCaptureClient, StepCaptureNotes:
	default:
		return ErrWrongStep
	}

	w.session.Stop()
	transcript := strings.TrimSpace(w.session.Transcript())

	if step == StepCaptureNotes {
		return w.applyNotes(gen, transcript)
	}
	if transcript == "" {
		return ErrEmptyTranscript
	}

	candidate := w.extract.Extract(ctx, transcript)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.generation != gen || w.step != step {
		slog.Warn("discarding stale extraction result", "user_id", w.userID, "step", string(step))
		return nil
	}

	switch step {
	case StepCaptureService:
		if !candidate.HasServiceItem() {
			return ErrServiceIncomplete
		}
		w.pending = candidate
		return nil
	case StepCaptureClient:
		w.applyClientLocked(candidate, transcript)
		w.rawDictation = append(w.rawDictation, transcript)
		w.session.SetTranscript("")
		w.step = StepCaptureNotes
		return nil
	}
	return ErrWrongStep
}

func (w *Wizard) applyNotes(gen uint64, transcript string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.generation != gen || w.step != StepCaptureNotes {
		return nil
	}
	w.notes = transcript
	if transcript != "" {
		w.rawDictation = append(w.rawDictation, transcript)
	}
	w.session.SetTranscript("")
	w.step = StepEditDetails
	return nil
}

func (w *Wizard) applyClientLocked(c *extractor.Candidate, transcript string) {
	if c != nil && c.ClientName != "" {
		w.client.Name = c.ClientName
	} else {
		w.client.Name = normalize.Name(transcript)
	}
	if c != nil {
		if c.ClientPhone != "" {
			w.client.Phone = c.ClientPhone
		}
		if c.ClientAddress != "" {
			w.client.Address = c.ClientAddress
		}
	}
}

// PendingItem returns the extracted candidate awaiting confirmation.
func (w *Wizard) PendingItem() *extractor.Candidate {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pending
}

// ConfirmServiceItem appends the pending candidate as a line item and
// recomputes the total. With addAnother the wizard loops back to the
// service step, otherwise it advances to client capture.
func (w *Wizard) ConfirmServiceItem(addAnother bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step != StepCaptureService {
		return ErrWrongStep
	}
	if w.pending == nil {
		return ErrNoPendingItem
	}
	c := w.pending
	item := repository.ServiceItem{
		Description: c.ServiceDescription,
		Value:       c.TotalValue,
	}
	if item.Description == "" {
		item.Description = fallbackItemDescription
	}
	if item.Value == "" {
		item.Value = money.Format(0)
	}
	w.items = append(w.items, item)
	w.recomputeTotalLocked()
	if c.LaborValue != "" {
		w.values.Labor = c.LaborValue
	}
	if c.MaterialValue != "" {
		w.values.Material = c.MaterialValue
	}
	if c.PaymentMethod != "" {
		w.values.PaymentMethod = c.PaymentMethod
	}
	transcript := strings.TrimSpace(w.session.Transcript())
	if transcript != "" {
		w.rawDictation = append(w.rawDictation, transcript)
	}
	w.session.SetTranscript("")
	w.pending = nil
	if !addAnother {
		w.step = StepCaptureClient
	}
	return nil
}

// DiscardPendingItem drops the candidate so the operator can re-record.
func (w *Wizard) DiscardPendingItem() {
	w.mu.Lock()
	w.pending = nil
	w.mu.Unlock()
}

// AddItem appends a manually entered item during edit_details.
func (w *Wizard) AddItem(description, value string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step != StepEditDetails {
		return ErrWrongStep
	}
	description = normalize.Description(description)
	if description == "" || strings.TrimSpace(value) == "" {
		return ErrServiceIncomplete
	}
	w.items = append(w.items, repository.ServiceItem{
		Description: description,
		Value:       money.Format(money.Parse(value)),
	})
	w.recomputeTotalLocked()
	return nil
}

// UpdateItem replaces an item in place and recomputes the total.
func (w *Wizard) UpdateItem(index int, description, value string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step != StepEditDetails {
		return ErrWrongStep
	}
	if index < 0 || index >= len(w.items) {
		return ErrItemIndex
	}
	w.items[index] = repository.ServiceItem{
		Description: normalize.Description(description),
		Value:       money.Format(money.Parse(value)),
	}
	w.recomputeTotalLocked()
	return nil
}

// RemoveItem deletes an item and recomputes the total.
func (w *Wizard) RemoveItem(index int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step != StepEditDetails && w.step != StepCaptureService {
		return ErrWrongStep
	}
	if index < 0 || index >= len(w.items) {
		return ErrItemIndex
	}
	w.items = append(w.items[:index], w.items[index+1:]...)
	w.recomputeTotalLocked()
	return nil
}

// EditDetails applies direct corrections to the working set. Empty
// fields are left untouched; the total, when set manually, survives
// only until the item list changes again.
type DetailsEdit struct {
	ClientName    string
	ClientPhone   string
	ClientAddress string
	Notes         *string
	Labor         string
	Material      string
	Discount      string
	PaymentMethod string
	TotalOverride string
}

func (w *Wizard) EditDetails(e DetailsEdit) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step != StepEditDetails {
		return ErrWrongStep
	}
	if e.ClientName != "" {
		w.client.Name = normalize.Name(e.ClientName)
	}
	if e.ClientPhone != "" {
		w.client.Phone = e.ClientPhone
	}
	if e.ClientAddress != "" {
		w.client.Address = e.ClientAddress
	}
	if e.Notes != nil {
		w.notes = *e.Notes
	}
	if e.Labor != "" {
		w.values.Labor = money.Format(money.Parse(e.Labor))
	}
	if e.Material != "" {
		w.values.Material = money.Format(money.Parse(e.Material))
	}
	if e.Discount != "" {
		w.values.Discount = money.Format(money.Parse(e.Discount))
	}
	if e.PaymentMethod != "" {
		w.values.PaymentMethod = e.PaymentMethod
	}
	if e.TotalOverride != "" {
		w.values.Total = money.Format(money.Parse(e.TotalOverride))
	}
	return nil
}

// AdvanceToPreview moves from edit_details to the read-only preview;
// it refuses when no item has been captured.
func (w *Wizard) AdvanceToPreview() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step != StepEditDetails {
		return ErrWrongStep
	}
	if len(w.items) == 0 {
		return ErrNoItems
	}
	w.step = StepPreview
	return nil
}

// BackToDetails returns from preview without side effects.
func (w *Wizard) BackToDetails() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step != StepPreview {
		return ErrWrongStep
	}
	w.step = StepEditDetails
	return nil
}

// Finalize is the single point where a Budget record is constructed and
// handed to the repository. The wizard only advances to finalized after
// the write succeeds, so a persistence failure loses nothing. While the
// write is in flight a second Finalize gets ErrWrongStep; a failed
// write clears the guard so the same action can be retried.
func (w *Wizard) Finalize(ctx context.Context) (*repository.Budget, error) {
	w.mu.Lock()
	if w.step != StepPreview || w.finalizing {
		w.mu.Unlock()
		return nil, ErrWrongStep
	}
	w.finalizing = true
	b := w.buildBudgetLocked()
	gen := w.generation
	w.mu.Unlock()

	err := w.repo.CreateBudget(ctx, b)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.finalizing = false
	if err != nil {
		return nil, err
	}
	if w.generation != gen {
		// Reset raced the write; the budget is persisted, the working
		// state already belongs to the next one.
		return b, nil
	}
	w.step = StepFinalized
	w.lastBudget = b
	w.nextSequence++
	slog.Info("budget finalized", "budget_id", b.ID, "user_id", b.UserID, "sequence", b.SequenceNumber, "total", b.Values.Total)
	return b, nil
}

func (w *Wizard) buildBudgetLocked() *repository.Budget {
	descriptions := make([]string, 0, len(w.items))
	for _, item := range w.items {
		descriptions = append(descriptions, item.Description)
	}
	items := make([]repository.ServiceItem, len(w.items))
	copy(items, w.items)
	return &repository.Budget{
		ID:             w.newID(),
		UserID:         w.userID,
		SequenceNumber: w.nextSequence,
		Status:         repository.BudgetStatusPendente,
		CreatedAt:      w.now(),
		Professional:   w.professional,
		Client:         w.client,
		Service: repository.Service{
			Items:       items,
			Notes:       w.notes,
			Description: strings.Join(descriptions, "\n"),
			Value:       w.values.Total,
		},
		Values:     w.values,
		Legal:      w.legal,
		Transcript: strings.Join(w.rawDictation, "\n"),
	}
}

// LastBudget returns the budget produced by the last Finalize.
func (w *Wizard) LastBudget() *repository.Budget {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastBudget
}

// Reset clears all working state and returns to the service step.
// Allowed from any step.
func (w *Wizard) Reset() {
	w.session.Stop()
	w.session.SetTranscript("")
	w.mu.Lock()
	defaults := Defaults{
		PaymentMethod: w.values.PaymentMethod,
		Validity:      w.legal.Validity,
		Warranty:      w.legal.Warranty,
	}
	w.generation++
	w.resetLocked(defaults)
	w.mu.Unlock()
}

func (w *Wizard) resetLocked(defaults Defaults) {
	w.step = StepCaptureService
	w.client = repository.Client{}
	w.items = nil
	w.notes = ""
	w.pending = nil
	w.rawDictation = nil
	w.values = repository.Values{
		Total:         money.Format(0),
		PaymentMethod: defaults.PaymentMethod,
	}
	w.legal = repository.Legal{
		IssueDate: w.now().Format("02/01/2006"),
		Validity:  defaults.Validity,
		Warranty:  defaults.Warranty,
		Signature: w.professional.Name,
	}
}

func (w *Wizard) recomputeTotalLocked() {
	values := make([]string, 0, len(w.items))
	for _, item := range w.items {
		values = append(values, item.Value)
	}
	w.values.Total = money.Sum(values...)
}

// Snapshot is the read-only view served to the operator surface.
type Snapshot struct {
	Step         Step                     `json:"step"`
	Recording    bool                     `json:"recording"`
	Transcript   string                   `json:"transcript"`
	Client       repository.Client        `json:"cliente"`
	Items        []repository.ServiceItem `json:"items"`
	Notes        string                   `json:"observacoes_servico"`
	Values       repository.Values        `json:"valores"`
	Legal        repository.Legal         `json:"legal"`
	Pending      *extractor.Candidate     `json:"pendente,omitempty"`
	NextSequence int                      `json:"numero_sequencial"`
}

func (w *Wizard) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	items := make([]repository.ServiceItem, len(w.items))
	copy(items, w.items)
	return Snapshot{
		Step:         w.step,
		Recording:    w.session.Recording(),
		Transcript:   w.session.Transcript(),
		Client:       w.client,
		Items:        items,
		Notes:        w.notes,
		Values:       w.values,
		Legal:        w.legal,
		Pending:      w.pending,
		NextSequence: w.nextSequence,
	}
}
