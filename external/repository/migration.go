package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

var migrationStatements = []string{
	`CREATE TABLE IF NOT EXISTS profiles (
		id TEXT PRIMARY KEY,
		profissional JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS budgets (
		id_orcamento UUID PRIMARY KEY,
		user_id TEXT NOT NULL,
		numero_sequencial INTEGER NOT NULL,
		status_orcamento TEXT NOT NULL DEFAULT 'Pendente',
		data_criacao TIMESTAMPTZ NOT NULL,
		profissional JSONB NOT NULL,
		cliente JSONB NOT NULL,
		servico JSONB NOT NULL,
		valores JSONB NOT NULL,
		legal JSONB NOT NULL,
		texto_transcrito TEXT NOT NULL DEFAULT '',
		enviado_whatsapp BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_budgets_user ON budgets (user_id, numero_sequencial DESC)`,
}

func RunMigration(ctx context.Context, pool *pgxpool.Pool) error {
	for _, s := range migrationStatements {
		stmt := strings.TrimSpace(s)
		if stmt == "" {
			continue
		}
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
