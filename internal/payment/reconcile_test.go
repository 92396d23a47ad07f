package payment

import (
	"testing"

	"github.com/orcavozapp/orcavoz/internal/money"
)

func TestReconcile(t *testing.T) {
	got := Reconcile("R$ 1.000,00", "R$ 300,00", "R$ 400,00")
	if got.NewAccumulated != "R$ 700,00" {
		t.Errorf("NewAccumulated = %q", got.NewAccumulated)
	}
	if got.Remaining != "R$ 300,00" {
		t.Errorf("Remaining = %q", got.Remaining)
	}
}

func TestReconcileEmptyLedger(t *testing.T) {
	got := Reconcile("R$ 500,00", "", "R$ 200,00")
	if got.NewAccumulated != "R$ 200,00" {
		t.Errorf("NewAccumulated = %q", got.NewAccumulated)
	}
	if got.Remaining != "R$ 300,00" {
		t.Errorf("Remaining = %q", got.Remaining)
	}
}

func TestReconcileRemainingFlooredAtZero(t *testing.T) {
	got := Reconcile("R$ 1.000,00", "R$ 900,00", "R$ 500,00")
	if got.NewAccumulated != "R$ 1.400,00" {
		t.Errorf("NewAccumulated = %q", got.NewAccumulated)
	}
	if got.Remaining != "R$ 0,00" {
		t.Errorf("Remaining = %q, want floored at zero", got.Remaining)
	}
}

func TestReconcileMonotonicity(t *testing.T) {
	total := "R$ 2.500,00"
	acc := "R$ 750,00"
	base := money.Parse(Reconcile(total, acc, "R$ 0,00").Remaining)
	for _, received := range []string{"R$ 0,00", "R$ 0,01", "R$ 100,00", "R$ 5.000,00"} {
		r := Reconcile(total, acc, received)
		remaining := money.Parse(r.Remaining)
		if remaining > base {
			t.Errorf("remaining grew after receiving %s: %v > %v", received, remaining, base)
		}
		if remaining < 0 {
			t.Errorf("negative remaining for %s", received)
		}
	}
}
