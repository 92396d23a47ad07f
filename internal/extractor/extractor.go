// Package extractor defines the contract with the schema-constrained
// extraction backend that turns a raw voice transcript into budget
// fields.
package extractor

import (
	"context"
	"strings"
)

// Candidate is the structured output of one extraction call. Every
// field is optional; the empty string means the extractor could not
// identify the field, and callers must treat it as absent.
type Candidate struct {
	ClientName         string `json:"nome_cliente"`
	ClientPhone        string `json:"telefone_cliente"`
	ClientAddress      string `json:"endereco_cliente"`
	ServiceDescription string `json:"descricao_servico"`
	TotalValue         string `json:"valor_total"`
	LaborValue         string `json:"valor_mao_de_obra"`
	MaterialValue      string `json:"valor_material"`
	ServiceNotes       string `json:"observacoes_servico"`
	PaymentMethod      string `json:"forma_pagamento"`
}

// HasServiceItem reports whether the candidate carries the minimum for
// a service line item: a description and a total value.
func (c *Candidate) HasServiceItem() bool {
	return c != nil && c.ServiceDescription != "" && c.TotalValue != ""
}

// Trim normalizes whitespace-only fields back to absent.
func (c *Candidate) Trim() {
	c.ClientName = strings.TrimSpace(c.ClientName)
	c.ClientPhone = strings.TrimSpace(c.ClientPhone)
	c.ClientAddress = strings.TrimSpace(c.ClientAddress)
	c.ServiceDescription = strings.TrimSpace(c.ServiceDescription)
	c.TotalValue = strings.TrimSpace(c.TotalValue)
	c.LaborValue = strings.TrimSpace(c.LaborValue)
	c.MaterialValue = strings.TrimSpace(c.MaterialValue)
	c.ServiceNotes = strings.TrimSpace(c.ServiceNotes)
	c.PaymentMethod = strings.TrimSpace(c.PaymentMethod)
}

// Extractor sends a transcript to the extraction backend. Extract never
// fails loudly: any backend error, malformed response or missing
// credential yields nil, and the caller falls back to the raw
// transcript. Step-specific behavior belongs to the caller.
type Extractor interface {
	Extract(ctx context.Context, transcript string) *Candidate
}
