package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/orcavozapp/orcavoz/internal/extractor"
	"github.com/orcavozapp/orcavoz/internal/money"
	"github.com/orcavozapp/orcavoz/internal/normalize"
)

const requestTimeout = 30 * time.Second

// extractionPrompt carries the formatting rules the backend must apply;
// the same rules are re-applied locally because the model does not
// always honor them.
const extractionPrompt = `Extraia dados deste orçamento a partir da transcrição de voz: %q.
REGRAS CRÍTICAS DE FORMATAÇÃO:
1. Nomes de clientes e descrições de serviços devem estar sempre em MAIÚSCULAS.
2. METRAGEM: Se o usuário mencionar uma medida (ex: "12 metros", "10 metros quadrados", "5 metro"), você DEVE formatar como "XXM²" no início da descrição do serviço. Exemplo: "12 METROS DE INSTALAÇÃO DE CALHAS" vira "12M² INSTALAÇÃO DE CALHAS".
3. Remova preposições desnecessárias como "DE" logo após a metragem (ex: "10M² DE PINTURA" vira "10M² PINTURA").
4. VALORES: Formate sempre como "R$ X.XXX,XX".`

// GeminiExtractor calls the Gemini generateContent REST API with a
// response schema constraining the output to the candidate fields.
type GeminiExtractor struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

func NewGeminiExtractor(apiKey, model, endpoint string) extractor.Extractor {
	return &GeminiExtractor{
		apiKey:   apiKey,
		model:    model,
		endpoint: strings.TrimRight(endpoint, "/"),
		client:   &http.Client{Timeout: requestTimeout},
	}
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMIMEType string          `json:"responseMimeType"`
	ResponseSchema   *responseSchema `json:"responseSchema"`
	ThinkingConfig   thinkingConfig  `json:"thinkingConfig"`
}

type thinkingConfig struct {
	ThinkingBudget int `json:"thinkingBudget"`
}

type responseSchema struct {
	Type       string                    `json:"type"`
	Properties map[string]schemaProperty `json:"properties"`
}

type schemaProperty struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func candidateSchema() *responseSchema {
	return &responseSchema{
		Type: "OBJECT",
		Properties: map[string]schemaProperty{
			"nome_cliente":     {Type: "STRING"},
			"telefone_cliente": {Type: "STRING"},
			"endereco_cliente": {Type: "STRING"},
			"descricao_servico": {
				Type:        "STRING",
				Description: "Descrição do serviço iniciando com a metragem formatada XXM² se houver.",
			},
			"valor_total":         {Type: "STRING"},
			"valor_mao_de_obra":   {Type: "STRING"},
			"valor_material":      {Type: "STRING"},
			"observacoes_servico": {Type: "STRING"},
			"forma_pagamento":     {Type: "STRING"},
		},
	}
}

// Extract never returns an error: any failure is logged and yields nil,
// and the wizard falls back to the raw transcript.
func (g *GeminiExtractor) Extract(ctx context.Context, transcript string) *extractor.Candidate {
	if g.apiKey == "" {
		slog.Warn("extraction skipped, no api key configured")
		return nil
	}

	reqBody := generateRequest{
		Contents: []content{{Parts: []part{{Text: fmt.Sprintf(extractionPrompt, transcript)}}}},
		GenerationConfig: generationConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   candidateSchema(),
			ThinkingConfig:   thinkingConfig{ThinkingBudget: 0},
		},
	}
	encoded, err := json.Marshal(reqBody)
	if err != nil {
		slog.Warn("extraction request encode failed", "error", err)
		return nil
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", g.endpoint, g.model, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(encoded))
	if err != nil {
		slog.Warn("extraction request build failed", "error", err)
		return nil
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		slog.Warn("extraction request failed", "error", err)
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		slog.Warn("extraction backend rejected request", "status", resp.StatusCode, "body", string(body))
		return nil
	}

	var gr generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		slog.Warn("extraction response decode failed", "error", err)
		return nil
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		slog.Warn("extraction response empty")
		return nil
	}

	var c extractor.Candidate
	dec := json.NewDecoder(strings.NewReader(gr.Candidates[0].Content.Parts[0].Text))
	if err := dec.Decode(&c); err != nil {
		slog.Warn("extraction payload decode failed", "error", err)
		return nil
	}

	c.Trim()
	if c.ServiceDescription != "" {
		c.ServiceDescription = normalize.Description(c.ServiceDescription)
	}
	if c.ClientName != "" {
		c.ClientName = normalize.Name(c.ClientName)
	}
	c.TotalValue = reformatMoney(c.TotalValue)
	c.LaborValue = reformatMoney(c.LaborValue)
	c.MaterialValue = reformatMoney(c.MaterialValue)
	return &c
}

// reformatMoney re-applies the "R$ X.XXX,XX" rule locally, like the
// casing and measurement rules above. Values that do not parse as an
// amount pass through untouched so an absent or free-form field is not
// turned into an affirmative zero.
func reformatMoney(s string) string {
	if s == "" {
		return s
	}
	if v := money.Parse(s); v != 0 {
		return money.Format(v)
	}
	return s
}
