package document

import (
	"github.com/orcavozapp/orcavoz/internal/config"
	"github.com/orcavozapp/orcavoz/internal/document"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (document.Renderer, error) {
		c := do.MustInvoke[*config.Config](i)
		return NewHTTPRenderer(c.RendererWebhookURL), nil
	})
}
