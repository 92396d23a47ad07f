// Package payment computes receipt ledger updates against a budget
// total. Pure arithmetic over formatted currency strings; persistence
// and document emission belong to the caller.
package payment

import "github.com/orcavozapp/orcavoz/internal/money"

type Result struct {
	NewAccumulated string `json:"valor_pago_acumulado"`
	Remaining      string `json:"valor_restante"`
}

// Reconcile adds a newly received amount to the accumulated-paid ledger
// and recomputes the remaining balance. An empty accumulated string
// counts as zero; the remaining balance is floored at zero so the
// ledger can never show a negative debt.
func Reconcile(total, accumulated, received string) Result {
	paid := money.Parse(accumulated) + money.Parse(received)
	remaining := money.Parse(total) - paid
	if remaining < 0 {
		remaining = 0
	}
	return Result{
		NewAccumulated: money.Format(paid),
		Remaining:      money.Format(remaining),
	}
}
