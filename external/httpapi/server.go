// Package httpapi is the operator-facing HTTP surface: budget
// management plus the dictation wizard session endpoints the mobile
// shell drives.
package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/orcavozapp/orcavoz/internal/budget"
	"github.com/orcavozapp/orcavoz/internal/config"
	"github.com/orcavozapp/orcavoz/internal/wizard"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	httpServer *http.Server
}

func NewServer(cfg *config.Config, budgets *budget.Service, wizards *wizard.Manager) *Server {
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Logger(), gin.Recovery())

	registerRoutes(engine, budgets, wizards)

	return &Server{
		httpServer: &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
			Handler: engine,
		},
	}
}

func registerRoutes(engine *gin.Engine, budgets *budget.Service, wizards *wizard.Manager) {
	v1 := engine.Group("/v1")
	v1.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	bh := newBudgetHandler(budgets)
	budgetRoutes := v1.Group("/budgets")
	{
		budgetRoutes.GET("", bh.List)
		budgetRoutes.GET("/:id", bh.Get)
		budgetRoutes.PATCH("/:id/status", bh.UpdateStatus)
		budgetRoutes.DELETE("/:id", bh.Delete)
		budgetRoutes.POST("/:id/send", bh.Send)
		budgetRoutes.POST("/:id/receipts/preview", bh.PreviewReceipt)
		budgetRoutes.POST("/:id/receipts", bh.IssueReceipt)
	}

	wh := newWizardHandler(wizards)
	wizardRoutes := v1.Group("/wizard")
	{
		wizardRoutes.POST("", wh.Start)
		wizardRoutes.GET("", wh.Snapshot)
		wizardRoutes.DELETE("", wh.End)
		wizardRoutes.POST("/reset", wh.Reset)
		wizardRoutes.POST("/dictation/start", wh.StartDictation)
		wizardRoutes.POST("/dictation/stop", wh.StopDictation)
		wizardRoutes.POST("/dictation/audio", wh.WriteAudio)
		wizardRoutes.GET("/transcript", wh.GetTranscript)
		wizardRoutes.PUT("/transcript", wh.PutTranscript)
		wizardRoutes.POST("/submit", wh.Submit)
		wizardRoutes.POST("/items/confirm", wh.ConfirmItem)
		wizardRoutes.DELETE("/items/pending", wh.DiscardPending)
		wizardRoutes.POST("/items", wh.AddItem)
		wizardRoutes.PUT("/items/:index", wh.UpdateItem)
		wizardRoutes.DELETE("/items/:index", wh.RemoveItem)
		wizardRoutes.PATCH("/details", wh.EditDetails)
		wizardRoutes.POST("/advance", wh.AdvanceToPreview)
		wizardRoutes.POST("/back", wh.BackToDetails)
		wizardRoutes.POST("/finalize", wh.Finalize)
	}
}

// ListenAndServe blocks until the server stops.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}
