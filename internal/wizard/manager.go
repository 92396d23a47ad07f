package wizard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/orcavozapp/orcavoz/internal/config"
	"github.com/orcavozapp/orcavoz/internal/dictation"
	"github.com/orcavozapp/orcavoz/internal/extractor"
	"github.com/orcavozapp/orcavoz/internal/recognizer"
	"github.com/orcavozapp/orcavoz/internal/repository"
)

var ErrNoActiveWizard = errors.New("no active wizard for this user")

// Manager keeps at most one active wizard per user. The next sequence
// number is computed from the loaded budget set at wizard start, not
// stored as a counter; two sessions for the same user opened at the
// same time can therefore race (kept as-is, the store does not enforce
// uniqueness).
type Manager struct {
	cfg        *config.Config
	repo       repository.Repository
	extractor  extractor.Extractor
	newCapture recognizer.CaptureFactory

	mu      sync.Mutex
	wizards map[string]*Wizard
}

func NewManager(cfg *config.Config, repo repository.Repository, ext extractor.Extractor, newCapture recognizer.CaptureFactory) *Manager {
	return &Manager{
		cfg:        cfg,
		repo:       repo,
		extractor:  ext,
		newCapture: newCapture,
		wizards:    make(map[string]*Wizard),
	}
}

// StartWizard returns the user's active wizard, creating one when none
// exists. Creation loads the profile snapshot and the budget list to
// derive the next sequence number.
func (m *Manager) StartWizard(ctx context.Context, userID string) (*Wizard, error) {
	m.mu.Lock()
	if w, ok := m.wizards[userID]; ok {
		m.mu.Unlock()
		return w, nil
	}
	m.mu.Unlock()

	profile, err := m.repo.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	budgets, err := m.repo.ListBudgetsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load budgets: %w", err)
	}
	next := nextSequence(budgets)

	session := dictation.NewSession(m.newCapture(), dictation.Options{
		Language:            m.cfg.SpeechLanguage,
		SilenceTimeoutTicks: m.cfg.SilenceTimeoutSeconds,
	})
	w := New(m.extractor, m.repo, session, userID, profile.Professional, next, Defaults{
		PaymentMethod: m.cfg.DefaultPaymentMethod,
		Validity:      m.cfg.BudgetValidity,
		Warranty:      m.cfg.ServiceWarranty,
	})

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.wizards[userID]; ok {
		return existing, nil
	}
	m.wizards[userID] = w
	slog.Info("wizard started", "user_id", userID, "next_sequence", next)
	return w, nil
}

// Get returns the user's active wizard.
func (m *Manager) Get(userID string) (*Wizard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.wizards[userID]
	if !ok {
		return nil, ErrNoActiveWizard
	}
	return w, nil
}

// End stops dictation and discards the user's wizard.
func (m *Manager) End(userID string) {
	m.mu.Lock()
	w, ok := m.wizards[userID]
	delete(m.wizards, userID)
	m.mu.Unlock()
	if ok {
		w.Session().Stop()
		slog.Info("wizard ended", "user_id", userID)
	}
}

func nextSequence(budgets []repository.Budget) int {
	max := 0
	for _, b := range budgets {
		if b.SequenceNumber > max {
			max = b.SequenceNumber
		}
	}
	return max + 1
}
