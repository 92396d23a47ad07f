package wizard

import (
	"github.com/orcavozapp/orcavoz/internal/config"
	"github.com/orcavozapp/orcavoz/internal/extractor"
	"github.com/orcavozapp/orcavoz/internal/recognizer"
	"github.com/orcavozapp/orcavoz/internal/repository"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Manager, error) {
		cfg := do.MustInvoke[*config.Config](i)
		repo := do.MustInvoke[repository.Repository](i)
		ext := do.MustInvoke[extractor.Extractor](i)
		newCapture := do.MustInvoke[recognizer.CaptureFactory](i)
		return NewManager(cfg, repo, ext, newCapture), nil
	})
}
