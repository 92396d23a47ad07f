// Package budget is the application service over stored budgets:
// listing, status transitions, deletion, delivery and receipt issuing.
package budget

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/orcavozapp/orcavoz/internal/document"
	"github.com/orcavozapp/orcavoz/internal/payment"
	"github.com/orcavozapp/orcavoz/internal/repository"
)

var ErrInvalidStatus = errors.New("invalid budget status")

type Service struct {
	repo     repository.Repository
	renderer document.Renderer
	now      func() time.Time
}

func NewService(repo repository.Repository, renderer document.Renderer) *Service {
	return &Service{
		repo:     repo,
		renderer: renderer,
		now:      time.Now,
	}
}

// List returns the user's budgets as the store orders them.
func (s *Service) List(ctx context.Context, userID string) ([]repository.Budget, error) {
	return s.repo.ListBudgetsByUser(ctx, userID)
}

func (s *Service) Get(ctx context.Context, budgetID, userID string) (*repository.Budget, error) {
	return s.repo.GetBudget(ctx, budgetID, userID)
}

// UpdateStatus moves a budget between Pendente, Aprovado and Recusado.
func (s *Service) UpdateStatus(ctx context.Context, budgetID, userID string, status repository.BudgetStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	if err := s.repo.UpdateBudgetStatus(ctx, budgetID, userID, status); err != nil {
		return fmt.Errorf("update budget status: %w", err)
	}
	slog.Info("budget status updated", "budget_id", budgetID, "user_id", userID, "status", status)
	return nil
}

func (s *Service) Delete(ctx context.Context, budgetID, userID string) error {
	if err := s.repo.DeleteBudget(ctx, budgetID, userID); err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	slog.Info("budget deleted", "budget_id", budgetID, "user_id", userID)
	return nil
}

// Send hands the budget to the renderer and marks it as delivered. The
// sent flag is only set after the renderer accepts the document.
func (s *Service) Send(ctx context.Context, budgetID, userID string) (*repository.Budget, error) {
	b, err := s.repo.GetBudget(ctx, budgetID, userID)
	if err != nil {
		return nil, fmt.Errorf("load budget: %w", err)
	}
	if err := s.renderer.SendBudget(ctx, b); err != nil {
		return nil, fmt.Errorf("send budget: %w", err)
	}
	if err := s.repo.MarkBudgetSent(ctx, budgetID, userID); err != nil {
		return nil, fmt.Errorf("mark budget sent: %w", err)
	}
	b.Sent = true
	slog.Info("budget sent", "budget_id", budgetID, "user_id", userID)
	return b, nil
}

// PreviewReceipt reconciles a received amount against the ledger
// without persisting anything.
func (s *Service) PreviewReceipt(ctx context.Context, budgetID, userID, received string) (*document.Receipt, error) {
	b, err := s.repo.GetBudget(ctx, budgetID, userID)
	if err != nil {
		return nil, fmt.Errorf("load budget: %w", err)
	}
	return s.buildReceipt(b, received), nil
}

// IssueReceipt commits a received amount: the values ledger is updated
// in the store, then the receipt snapshot goes to the renderer. The two
// steps are not atomic; a renderer failure after a successful ledger
// write is logged and the updated ledger stands.
func (s *Service) IssueReceipt(ctx context.Context, budgetID, userID, received string) (*document.Receipt, error) {
	b, err := s.repo.GetBudget(ctx, budgetID, userID)
	if err != nil {
		return nil, fmt.Errorf("load budget: %w", err)
	}
	receipt := s.buildReceipt(b, received)

	values := b.Values
	values.PaidToDate = receipt.PaidToDate
	if err := s.repo.UpdateBudgetValues(ctx, budgetID, userID, values); err != nil {
		return nil, fmt.Errorf("persist receipt ledger: %w", err)
	}

	if err := s.renderer.SendReceipt(ctx, receipt); err != nil {
		slog.Warn("receipt document not delivered, ledger already updated",
			"budget_id", budgetID, "user_id", userID, "error", err)
	}
	slog.Info("receipt issued",
		"budget_id", budgetID, "user_id", userID,
		"received", received, "paid_to_date", receipt.PaidToDate)
	return receipt, nil
}

func (s *Service) buildReceipt(b *repository.Budget, received string) *document.Receipt {
	r := payment.Reconcile(b.Values.Total, b.Values.PaidToDate, received)
	return &document.Receipt{
		BudgetID:       b.ID,
		UserID:         b.UserID,
		SequenceNumber: b.SequenceNumber,
		ClientName:     b.Client.Name,
		Total:          b.Values.Total,
		Received:       received,
		PaidToDate:     r.NewAccumulated,
		Remaining:      r.Remaining,
		IssuedAt:       s.now(),
	}
}
