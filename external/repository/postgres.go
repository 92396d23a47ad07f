package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/orcavozapp/orcavoz/internal/repository"
)

// PostgresRepository persists budgets and profiles. The nested budget
// blocks live in jsonb columns under their Portuguese wire names; the
// columns the service filters and mutates on are first class.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) repository.Repository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) CreateBudget(ctx context.Context, b *repository.Budget) error {
	professional, err := json.Marshal(b.Professional)
	if err != nil {
		return fmt.Errorf("encode professional: %w", err)
	}
	client, err := json.Marshal(b.Client)
	if err != nil {
		return fmt.Errorf("encode client: %w", err)
	}
	service, err := json.Marshal(b.Service)
	if err != nil {
		return fmt.Errorf("encode service: %w", err)
	}
	values, err := json.Marshal(b.Values)
	if err != nil {
		return fmt.Errorf("encode values: %w", err)
	}
	legal, err := json.Marshal(b.Legal)
	if err != nil {
		return fmt.Errorf("encode legal: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO budgets
		   (id_orcamento, user_id, numero_sequencial, status_orcamento, data_criacao,
		    profissional, cliente, servico, valores, legal,
		    texto_transcrito, enviado_whatsapp)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		b.ID, b.UserID, b.SequenceNumber, string(b.Status), b.CreatedAt,
		professional, client, service, values, legal,
		b.Transcript, b.Sent)
	return err
}

func (r *PostgresRepository) GetBudget(ctx context.Context, budgetID, userID string) (*repository.Budget, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id_orcamento, user_id, numero_sequencial, status_orcamento, data_criacao,
		        profissional, cliente, servico, valores, legal,
		        texto_transcrito, enviado_whatsapp
		 FROM budgets WHERE id_orcamento = $1 AND user_id = $2`,
		budgetID, userID)
	b, err := scanBudget(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *PostgresRepository) ListBudgetsByUser(ctx context.Context, userID string) ([]repository.Budget, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id_orcamento, user_id, numero_sequencial, status_orcamento, data_criacao,
		        profissional, cliente, servico, valores, legal,
		        texto_transcrito, enviado_whatsapp
		 FROM budgets WHERE user_id = $1 ORDER BY numero_sequencial DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []repository.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *b)
	}
	return list, rows.Err()
}

func (r *PostgresRepository) UpdateBudgetValues(ctx context.Context, budgetID, userID string, values repository.Values) error {
	encoded, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("encode values: %w", err)
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE budgets SET valores = $3 WHERE id_orcamento = $1 AND user_id = $2`,
		budgetID, userID, encoded)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) UpdateBudgetStatus(ctx context.Context, budgetID, userID string, status repository.BudgetStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE budgets SET status_orcamento = $3 WHERE id_orcamento = $1 AND user_id = $2`,
		budgetID, userID, string(status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) MarkBudgetSent(ctx context.Context, budgetID, userID string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE budgets SET enviado_whatsapp = TRUE WHERE id_orcamento = $1 AND user_id = $2`,
		budgetID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteBudget(ctx context.Context, budgetID, userID string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM budgets WHERE id_orcamento = $1 AND user_id = $2`,
		budgetID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) GetProfile(ctx context.Context, userID string) (*repository.Profile, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, profissional, created_at, updated_at FROM profiles WHERE id = $1`,
		userID)
	var p repository.Profile
	var professional []byte
	err := row.Scan(&p.UserID, &professional, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(professional, &p.Professional); err != nil {
		return nil, fmt.Errorf("decode professional: %w", err)
	}
	return &p, nil
}

func (r *PostgresRepository) SaveProfile(ctx context.Context, p *repository.Profile) error {
	professional, err := json.Marshal(p.Professional)
	if err != nil {
		return fmt.Errorf("encode professional: %w", err)
	}
	now := time.Now()
	_, err = r.pool.Exec(ctx,
		`INSERT INTO profiles (id, profissional, created_at, updated_at)
		 VALUES ($1, $2, $3, $3)
		 ON CONFLICT (id) DO UPDATE SET profissional = EXCLUDED.profissional, updated_at = $3`,
		p.UserID, professional, now)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBudget(row rowScanner) (*repository.Budget, error) {
	var b repository.Budget
	var status string
	var professional, client, service, values, legal []byte
	err := row.Scan(&b.ID, &b.UserID, &b.SequenceNumber, &status, &b.CreatedAt,
		&professional, &client, &service, &values, &legal,
		&b.Transcript, &b.Sent)
	if err != nil {
		return nil, err
	}
	b.Status = repository.BudgetStatus(status)
	for _, block := range []struct {
		raw  []byte
		dest any
	}{
		{professional, &b.Professional},
		{client, &b.Client},
		{service, &b.Service},
		{values, &b.Values},
		{legal, &b.Legal},
	} {
		if err := json.Unmarshal(block.raw, block.dest); err != nil {
			return nil, fmt.Errorf("decode budget block: %w", err)
		}
	}
	return &b, nil
}
