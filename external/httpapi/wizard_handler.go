package httpapi

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/orcavozapp/orcavoz/internal/wizard"
)

// maxAudioChunkBytes caps one audio POST; the shell streams small PCM
// chunks, anything larger is a client bug.
const maxAudioChunkBytes = 1 << 20

type wizardHandler struct {
	wizards *wizard.Manager
}

func newWizardHandler(wizards *wizard.Manager) *wizardHandler {
	return &wizardHandler{wizards: wizards}
}

func (h *wizardHandler) active(c *gin.Context) (*wizard.Wizard, bool) {
	uid, ok := userID(c)
	if !ok {
		return nil, false
	}
	w, err := h.wizards.Get(uid)
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	return w, true
}

func (h *wizardHandler) Start(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	w, err := h.wizards.StartWizard(c.Request.Context(), uid)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, w.Snapshot())
}

func (h *wizardHandler) Snapshot(c *gin.Context) {
	w, ok := h.active(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, w.Snapshot())
}

func (h *wizardHandler) End(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	h.wizards.End(uid)
	c.Status(http.StatusNoContent)
}

func (h *wizardHandler) Reset(c *gin.Context) {
	w, ok := h.active(c)
	if !ok {
		return
	}
	w.Reset()
	c.JSON(http.StatusOK, w.Snapshot())
}

func (h *wizardHandler) StartDictation(c *gin.Context) {
	w, ok := h.active(c)
	if !ok {
		return
	}
	// The capture stream outlives this request; it is stopped by the
	// silence timer or an explicit dictation stop, not by the request
	// context.
	if err := w.StartDictation(context.Background()); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *wizardHandler) StopDictation(c *gin.Context) {
	w, ok := h.active(c)
	if !ok {
		return
	}
	w.StopDictation()
	c.JSON(http.StatusOK, gin.H{"transcript": w.Transcript()})
}

func (h *wizardHandler) WriteAudio(c *gin.Context) {
	w, ok := h.active(c)
	if !ok {
		return
	}
	pcm, err := io.ReadAll(io.LimitReader(c.Request.Body, maxAudioChunkBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable audio chunk"})
		return
	}
	if err := w.Session().WriteAudio(pcm); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *wizardHandler) GetTranscript(c *gin.Context) {
	w, ok := h.active(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"transcript": w.Transcript()})
}

type transcriptRequest struct {
	Text string `json:"transcript"`
}

func (h *wizardHandler) PutTranscript(c *gin.Context) {
	w, ok := h.active(c)
	if !ok {
		return
	}
	var req transcriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	w.SetTranscript(req.Text)
	c.Status(http.StatusNoContent)
}

func (h *wizardHandler) Submit(c *gin.Context) {
	w, ok := h.active(c)
	if !ok {
		return
	}
	if err := w.Submit(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, w.Snapshot())
}

type confirmItemRequest struct {
	AddAnother bool `json:"adicionar_outro"`
}

func (h *wizardHandler) ConfirmItem(c *gin.Context) {
	w, ok := h.active(c)
	if !ok {
		return
	}
	var req confirmItemRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}
	}
	if err := w.ConfirmServiceItem(req.AddAnother); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, w.Snapshot())
}

func (h *wizardHandler) DiscardPending(c *gin.Context) {
	w, ok := h.active(c)
	if !ok {
		return
	}
	w.DiscardPendingItem()
	c.Status(http.StatusNoContent)
}

type itemRequest struct {
	Description string `json:"descricao" binding:"required"`
	Value       string `json:"valor" binding:"required"`
}

func (h *wizardHandler) AddItem(c *gin.Context) {
	w, ok := h.active(c)
	if !ok {
		return
	}
	var req itemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if err := w.AddItem(req.Description, req.Value); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, w.Snapshot())
}

func (h *wizardHandler) UpdateItem(c *gin.Context) {
	w, ok := h.active(c)
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item index"})
		return
	}
	var req itemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if err := w.UpdateItem(index, req.Description, req.Value); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, w.Snapshot())
}

func (h *wizardHandler) RemoveItem(c *gin.Context) {
	w, ok := h.active(c)
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item index"})
		return
	}
	if err := w.RemoveItem(index); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, w.Snapshot())
}

type detailsRequest struct {
	ClientName    string  `json:"nome_cliente"`
	ClientPhone   string  `json:"telefone_cliente"`
	ClientAddress string  `json:"endereco_cliente"`
	Notes         *string `json:"observacoes_servico"`
	Labor         string  `json:"valor_mao_de_obra"`
	Material      string  `json:"valor_material"`
	Discount      string  `json:"desconto"`
	PaymentMethod string  `json:"forma_pagamento"`
	TotalOverride string  `json:"valor_total"`
}

func (h *wizardHandler) EditDetails(c *gin.Context) {
	w, ok := h.active(c)
	if !ok {
		return
	}
	var req detailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	err := w.EditDetails(wizard.DetailsEdit{
		ClientName:    req.ClientName,
		ClientPhone:   req.ClientPhone,
		ClientAddress: req.ClientAddress,
		Notes:         req.Notes,
		Labor:         req.Labor,
		Material:      req.Material,
		Discount:      req.Discount,
		PaymentMethod: req.PaymentMethod,
		TotalOverride: req.TotalOverride,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, w.Snapshot())
}

func (h *wizardHandler) AdvanceToPreview(c *gin.Context) {
	w, ok := h.active(c)
	if !ok {
		return
	}
	if err := w.AdvanceToPreview(); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, w.Snapshot())
}

func (h *wizardHandler) BackToDetails(c *gin.Context) {
	w, ok := h.active(c)
	if !ok {
		return
	}
	if err := w.BackToDetails(); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, w.Snapshot())
}

func (h *wizardHandler) Finalize(c *gin.Context) {
	w, ok := h.active(c)
	if !ok {
		return
	}
	b, err := w.Finalize(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}
