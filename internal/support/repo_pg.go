package support

import (
	"context"
	"database/sql"
)

type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, ticket Ticket) error {
	const query = `
INSERT INTO support_tickets (id, user_id, name, email, subject, message, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.DB.ExecContext(ctx, query,
		ticket.ID,
		ticket.UserID,
		ticket.Name,
		ticket.Email,
		ticket.Subject,
		ticket.Message,
		ticket.Status,
		ticket.CreatedAt,
	)
	return err
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit int) ([]Ticket, error) {
	const query = `
SELECT id, user_id, name, email, subject, message, status, created_at
FROM support_tickets
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2`
	rows, err := r.DB.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := make([]Ticket, 0)
	for rows.Next() {
		var t Ticket
		if err := rows.Scan(&t.ID, &t.UserID, &t.Name, &t.Email, &t.Subject, &t.Message, &t.Status, &t.CreatedAt); err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}
