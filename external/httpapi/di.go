package httpapi

import (
	"github.com/orcavozapp/orcavoz/internal/budget"
	"github.com/orcavozapp/orcavoz/internal/config"
	"github.com/orcavozapp/orcavoz/internal/wizard"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Server, error) {
		cfg := do.MustInvoke[*config.Config](i)
		budgets := do.MustInvoke[*budget.Service](i)
		wizards := do.MustInvoke[*wizard.Manager](i)
		return NewServer(cfg, budgets, wizards), nil
	})
}
