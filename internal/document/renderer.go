// Package document is the boundary to the rendering/delivery
// collaborator: PDF generation and message transport live on the other
// side of Renderer; this core only hands over finalized snapshots.
package document

import (
	"context"
	"time"

	"github.com/orcavozapp/orcavoz/internal/repository"
)

// Receipt is the ledger snapshot handed to the renderer when the
// operator confirms a payment.
type Receipt struct {
	BudgetID       string    `json:"id_orcamento"`
	UserID         string    `json:"user_id"`
	SequenceNumber int       `json:"numero_sequencial"`
	ClientName     string    `json:"nome_cliente"`
	Total          string    `json:"valor_total"`
	Received       string    `json:"valor_recebido"`
	PaidToDate     string    `json:"valor_pago_acumulado"`
	Remaining      string    `json:"valor_restante"`
	IssuedAt       time.Time `json:"emitido_em"`
}

type Renderer interface {
	SendBudget(ctx context.Context, b *repository.Budget) error
	SendReceipt(ctx context.Context, r *Receipt) error
}
