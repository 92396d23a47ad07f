package budget

import (
	"github.com/orcavozapp/orcavoz/internal/document"
	"github.com/orcavozapp/orcavoz/internal/repository"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Service, error) {
		repo := do.MustInvoke[repository.Repository](i)
		renderer := do.MustInvoke[document.Renderer](i)
		return NewService(repo, renderer), nil
	})
}
