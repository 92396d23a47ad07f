package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/orcavozapp/orcavoz/internal/budget"
	"github.com/orcavozapp/orcavoz/internal/repository"
)

type budgetHandler struct {
	budgets *budget.Service
}

func newBudgetHandler(budgets *budget.Service) *budgetHandler {
	return &budgetHandler{budgets: budgets}
}

func (h *budgetHandler) List(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	list, err := h.budgets.List(c.Request.Context(), uid)
	if err != nil {
		writeError(c, err)
		return
	}
	if list == nil {
		list = []repository.Budget{}
	}
	c.JSON(http.StatusOK, list)
}

func (h *budgetHandler) Get(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	b, err := h.budgets.Get(c.Request.Context(), c.Param("id"), uid)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

type statusRequest struct {
	Status string `json:"status_orcamento" binding:"required"`
}

func (h *budgetHandler) UpdateStatus(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if err := h.budgets.UpdateStatus(c.Request.Context(), c.Param("id"), uid, repository.BudgetStatus(req.Status)); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *budgetHandler) Delete(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	if err := h.budgets.Delete(c.Request.Context(), c.Param("id"), uid); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *budgetHandler) Send(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	b, err := h.budgets.Send(c.Request.Context(), c.Param("id"), uid)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

type receiptRequest struct {
	Received string `json:"valor_recebido" binding:"required"`
}

func (h *budgetHandler) PreviewReceipt(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	var req receiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	r, err := h.budgets.PreviewReceipt(c.Request.Context(), c.Param("id"), uid, req.Received)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *budgetHandler) IssueReceipt(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	var req receiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	r, err := h.budgets.IssueReceipt(c.Request.Context(), c.Param("id"), uid, req.Received)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}
