package mysql

import (
	"context"
	"database/sql"

	"experiences_portal/internal/domain"
)

func valF64(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

// Repo is the reseller-side order index. It records which orders this
// process placed so they can be listed without an upstream list endpoint;
// order state itself always comes from the platform.
type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) UpsertOrder(ctx context.Context, ref domain.OrderRef) error {
	_, err := r.db.ExecContext(ctx, upsertOrderSQL,
		ref.ID,
		string(ref.Status),
		ref.ExperienceName,
		ref.TravelerName,
		ref.TravelerEmail,
		valF64(ref.TotalAmount),
		valStr(ref.Currency),
	)
	return err
}

func (r *Repo) ListOrders(ctx context.Context, limit int) ([]domain.OrderRef, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx, listOrdersSQL, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.OrderRef
	for rows.Next() {
		var ref domain.OrderRef
		var status string
		var amount sql.NullFloat64
		var currency sql.NullString
		if err := rows.Scan(
			&ref.ID,
			&status,
			&ref.ExperienceName,
			&ref.TravelerName,
			&ref.TravelerEmail,
			&amount,
			&currency,
			&ref.CreatedAt,
			&ref.UpdatedAt,
		); err != nil {
			return nil, err
		}
		ref.Status = domain.OrderStatus(status)
		if amount.Valid {
			a := amount.Float64
			ref.TotalAmount = &a
		}
		if currency.Valid {
			c := currency.String
			ref.Currency = &c
		}
		out = append(out, ref)
	}
	return out, rows.Err()
}

func (r *Repo) ListOrderIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, listOrderIDsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
