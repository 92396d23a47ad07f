package document

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/orcavozapp/orcavoz/internal/repository"
)

// WhatsAppLink builds the wa.me deep link carrying the budget message.
// Returns the empty string when the client has no phone number; the
// caller decides how to degrade.
func WhatsAppLink(b *repository.Budget) string {
	phone := digitsOnly(b.Client.Phone)
	if phone == "" {
		return ""
	}
	return "https://wa.me/" + phone + "?text=" + url.QueryEscape(WhatsAppMessage(b))
}

// WhatsAppMessage renders the plain-text budget summary sent over
// WhatsApp, one numbered line per service item.
func WhatsAppMessage(b *repository.Budget) string {
	prof := b.Professional
	var sb strings.Builder

	sb.WriteString("*ORÇAMENTO PROFISSIONAL*\n")
	sb.WriteString("----------------------------------\n")
	writeField(&sb, "EMPRESA", prof.Name)
	writeField(&sb, "CNPJ/CPF", prof.TaxID)
	writeField(&sb, "ENDEREÇO", prof.Address)
	writeField(&sb, "CONTATO", prof.Phone)
	sb.WriteString("----------------------------------\n\n")

	clientName := b.Client.Name
	if clientName == "" {
		clientName = "cliente"
	}
	fmt.Fprintf(&sb, "Olá *%s*,\nSeguem os detalhes do seu orçamento:\n\n", clientName)

	if len(b.Service.Items) > 0 {
		for i, item := range b.Service.Items {
			fmt.Fprintf(&sb, "%d. *%s* - %s\n", i+1, item.Description, item.Value)
		}
	} else if b.Service.Description != "" {
		fmt.Fprintf(&sb, "*SERVIÇO:* %s\n", b.Service.Description)
	}

	if prof.PaymentTerms != "" {
		fmt.Fprintf(&sb, "\n*FORMA DE PAGAMENTO:* %s\n", prof.PaymentTerms)
	}
	if prof.Conditions != "" {
		fmt.Fprintf(&sb, "*CONDIÇÕES:* %s\n", prof.Conditions)
	}
	if b.Service.Notes != "" {
		fmt.Fprintf(&sb, "\n*OBS:* %s\n", b.Service.Notes)
	}
	fmt.Fprintf(&sb, "\n*VALOR TOTAL:* _%s_\n", b.Values.Total)
	return sb.String()
}

func writeField(sb *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(sb, "*%s:* %s\n", label, value)
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
