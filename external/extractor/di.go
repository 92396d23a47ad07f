package extractor

import (
	"github.com/orcavozapp/orcavoz/internal/config"
	"github.com/orcavozapp/orcavoz/internal/extractor"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (extractor.Extractor, error) {
		c := do.MustInvoke[*config.Config](i)
		return NewGeminiExtractor(c.GeminiAPIKey, c.GeminiModel, c.GeminiEndpoint), nil
	})
}
