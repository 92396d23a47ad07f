package extractor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func backendResponse(t *testing.T, payload map[string]string) []byte {
	t.Helper()
	inner, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}
	outer := map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]string{{"text": string(inner)}}}},
		},
	}
	body, err := json.Marshal(outer)
	if err != nil {
		t.Fatal(err)
	}
	return body
}

func TestExtractParsesAndNormalizes(t *testing.T) {
	var gotPath string
	var gotBody generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write(backendResponse(t, map[string]string{
			"nome_cliente":      "joão silva",
			"descricao_servico": "12 metros de instalação de calhas",
			"valor_total":       "R$ 800,00",
		}))
	}))
	defer srv.Close()

	g := NewGeminiExtractor("test-key", "gemini-3-flash-preview", srv.URL)
	c := g.Extract(context.Background(), "doze metros de calhas oitocentos reais")
	if c == nil {
		t.Fatal("expected candidate")
	}
	if c.ClientName != "JOÃO SILVA" {
		t.Errorf("client name = %q", c.ClientName)
	}
	if c.ServiceDescription != "12M² INSTALAÇÃO DE CALHAS" {
		t.Errorf("description = %q", c.ServiceDescription)
	}
	if c.TotalValue != "R$ 800,00" {
		t.Errorf("total = %q", c.TotalValue)
	}

	if gotPath != "/v1beta/models/gemini-3-flash-preview:generateContent" {
		t.Errorf("path = %q", gotPath)
	}
	if gotBody.GenerationConfig.ResponseMIMEType != "application/json" {
		t.Errorf("mime = %q", gotBody.GenerationConfig.ResponseMIMEType)
	}
	if gotBody.GenerationConfig.ThinkingConfig.ThinkingBudget != 0 {
		t.Errorf("thinking budget = %d", gotBody.GenerationConfig.ThinkingConfig.ThinkingBudget)
	}
	if len(gotBody.Contents) != 1 || !strings.Contains(gotBody.Contents[0].Parts[0].Text, "doze metros de calhas") {
		t.Error("transcript missing from prompt")
	}
}

func TestExtractReturnsNilOnBackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	g := NewGeminiExtractor("test-key", "gemini-3-flash-preview", srv.URL)
	if c := g.Extract(context.Background(), "pintura"); c != nil {
		t.Fatalf("expected nil on backend error, got %+v", c)
	}
}

func TestExtractReturnsNilOnMalformedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		outer := map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]string{{"text": "not json at all"}}}},
			},
		}
		json.NewEncoder(w).Encode(outer)
	}))
	defer srv.Close()

	g := NewGeminiExtractor("test-key", "gemini-3-flash-preview", srv.URL)
	if c := g.Extract(context.Background(), "pintura"); c != nil {
		t.Fatalf("expected nil on malformed payload, got %+v", c)
	}
}

func TestExtractReturnsNilWithoutAPIKey(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))
	defer srv.Close()

	g := NewGeminiExtractor("", "gemini-3-flash-preview", srv.URL)
	if c := g.Extract(context.Background(), "pintura"); c != nil {
		t.Fatal("expected nil without api key")
	}
	if called {
		t.Fatal("backend called without api key")
	}
}

func TestExtractReformatsMonetaryFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write(backendResponse(t, map[string]string{
			"valor_total":       "500",
			"valor_mao_de_obra": "1.200,50",
			"valor_material":    "a combinar",
		}))
	}))
	defer srv.Close()

	g := NewGeminiExtractor("test-key", "gemini-3-flash-preview", srv.URL)
	c := g.Extract(context.Background(), "quinhentos reais")
	if c == nil {
		t.Fatal("expected candidate")
	}
	if c.TotalValue != "R$ 500,00" {
		t.Errorf("total = %q", c.TotalValue)
	}
	if c.LaborValue != "R$ 1.200,50" {
		t.Errorf("labor = %q", c.LaborValue)
	}
	if c.MaterialValue != "a combinar" {
		t.Errorf("unparseable material value rewritten: %q", c.MaterialValue)
	}
}

func TestExtractTrimsWhitespaceFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write(backendResponse(t, map[string]string{
			"nome_cliente": "   ",
			"valor_total":  " R$ 100,00 ",
		}))
	}))
	defer srv.Close()

	g := NewGeminiExtractor("test-key", "gemini-3-flash-preview", srv.URL)
	c := g.Extract(context.Background(), "cem reais")
	if c == nil {
		t.Fatal("expected candidate")
	}
	if c.ClientName != "" {
		t.Errorf("whitespace-only name not treated as absent: %q", c.ClientName)
	}
	if c.TotalValue != "R$ 100,00" {
		t.Errorf("total = %q", c.TotalValue)
	}
}
