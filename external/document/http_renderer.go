package document

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/orcavozapp/orcavoz/internal/document"
	"github.com/orcavozapp/orcavoz/internal/repository"
)

// HTTPRenderer posts finalized documents to the rendering webhook,
// which owns PDF generation and delivery. With no URL configured every
// send is a no-op so the core flow works without a renderer.
type HTTPRenderer struct {
	webhookURL string
	client     *http.Client
}

func NewHTTPRenderer(webhookURL string) document.Renderer {
	return &HTTPRenderer{
		webhookURL: webhookURL,
		client:     &http.Client{},
	}
}

type renderPayload struct {
	Kind    string `json:"kind"`
	Budget  any    `json:"orcamento,omitempty"`
	Receipt any    `json:"recibo,omitempty"`
	// Link is the WhatsApp deep link for the renderer to embed; empty
	// when the client has no phone on file.
	Link string `json:"link_whatsapp,omitempty"`
}

func (r *HTTPRenderer) SendBudget(ctx context.Context, b *repository.Budget) error {
	return r.post(ctx, renderPayload{
		Kind:   "orcamento",
		Budget: b,
		Link:   document.WhatsAppLink(b),
	})
}

func (r *HTTPRenderer) SendReceipt(ctx context.Context, receipt *document.Receipt) error {
	return r.post(ctx, renderPayload{
		Kind:    "recibo",
		Receipt: receipt,
	})
}

func (r *HTTPRenderer) post(ctx context.Context, payload renderPayload) error {
	if r.webhookURL == "" {
		return nil
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.webhookURL, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if !isHTTPSuccessStatus(resp.StatusCode) {
		return fmt.Errorf("renderer returned status %d", resp.StatusCode)
	}
	return nil
}

func isHTTPSuccessStatus(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}
