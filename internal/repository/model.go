package repository

import "time"

// Wire names stay in Portuguese: they are the column and JSON names the
// original budgets were persisted under, and the extraction backend
// produces the same vocabulary.

type BudgetStatus string

const (
	BudgetStatusPendente BudgetStatus = "Pendente"
	BudgetStatusAprovado BudgetStatus = "Aprovado"
	BudgetStatusRecusado BudgetStatus = "Recusado"
)

func (s BudgetStatus) Valid() bool {
	switch s {
	case BudgetStatusPendente, BudgetStatusAprovado, BudgetStatusRecusado:
		return true
	}
	return false
}

// Professional is the profile snapshot embedded into every budget at
// finalize time.
type Professional struct {
	Name         string `json:"nome_profissional"`
	Phone        string `json:"telefone_profissional"`
	Email        string `json:"email_profissional"`
	TaxID        string `json:"cpf_cnpj"`
	Address      string `json:"endereco_profissional"`
	LogoURL      string `json:"logo_profissional,omitempty"`
	PixKey       string `json:"chave_pix,omitempty"`
	PaymentTerms string `json:"formas_pagamento_aceitas,omitempty"`
	Conditions   string `json:"condicoes_aceitas,omitempty"`
}

type Client struct {
	Name    string `json:"nome_cliente"`
	Phone   string `json:"telefone_cliente"`
	Address string `json:"endereco_cliente"`
	Notes   string `json:"observacoes_cliente"`
}

type ServiceItem struct {
	Description string `json:"descricao"`
	Value       string `json:"valor"`
}

type Service struct {
	Items []ServiceItem `json:"items"`
	Notes string        `json:"observacoes_servico"`
	// Description is derived at finalize: the item descriptions joined
	// by newlines.
	Description string `json:"descricao_servico"`
	Value       string `json:"valor_servico"`
}

type Values struct {
	Labor         string `json:"valor_mao_de_obra"`
	Material      string `json:"valor_material"`
	Total         string `json:"valor_total"`
	Discount      string `json:"desconto"`
	PaymentMethod string `json:"forma_pagamento"`
	// PaidToDate is the accumulated receipt ledger; present only after
	// at least one receipt has been issued.
	PaidToDate string `json:"valor_pago_acumulado,omitempty"`
}

type Legal struct {
	IssueDate string `json:"data_orcamento"`
	Validity  string `json:"validade_orcamento"`
	Warranty  string `json:"garantia_servico"`
	Signature string `json:"assinatura_profissional"`
}

// Budget is the terminal, persisted entity. After creation only status,
// values ledger and the sent flag change; id, owner and sequence number
// never do.
type Budget struct {
	ID             string       `json:"id_orcamento"`
	UserID         string       `json:"user_id"`
	SequenceNumber int          `json:"numero_sequencial"`
	Status         BudgetStatus `json:"status_orcamento"`
	CreatedAt      time.Time    `json:"data_criacao"`
	Professional   Professional `json:"profissional"`
	Client         Client       `json:"cliente"`
	Service        Service      `json:"servico"`
	Values         Values       `json:"valores"`
	Legal          Legal        `json:"legal"`
	Transcript     string       `json:"texto_transcrito,omitempty"`
	Sent           bool         `json:"enviado_whatsapp"`
}

// Profile is a stored professional account profile.
type Profile struct {
	UserID       string       `json:"id"`
	Professional Professional `json:"profissional"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}
