package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/digsafe/locate-ticket-service/internal/domain"
)

// ResponseRepository stores member responses. Responses are append-only;
// duplicate submissions from the same member code become separate rows.
type ResponseRepository interface {
	Create(ctx context.Context, response *domain.Response) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.Response, error)
	CountByTicket(ctx context.Context, ticketID string) (int, error)
}

type responseRepository struct {
	pool *pgxpool.Pool
}

// NewResponseRepository instantiates repository.
func NewResponseRepository(pool *pgxpool.Pool) ResponseRepository {
	return &responseRepository{pool: pool}
}

func (r *responseRepository) Create(ctx context.Context, response *domain.Response) error {
	const query = `
        INSERT INTO responses (ticket_id, member_code, member_name, status, facilities, comment, submitted_by)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, submitted_at`
	return r.pool.QueryRow(ctx, query,
		response.TicketID,
		response.MemberCode,
		response.MemberName,
		response.Status,
		response.Facilities,
		response.Comment,
		response.SubmittedBy,
	).Scan(&response.ID, &response.SubmittedAt)
}

func (r *responseRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.Response, error) {
	const query = `
        SELECT id, ticket_id, member_code, member_name, status, facilities, comment, submitted_by, submitted_at
        FROM responses WHERE ticket_id=$1 ORDER BY submitted_at ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Response
	for rows.Next() {
		var resp domain.Response
		if err := rows.Scan(
			&resp.ID,
			&resp.TicketID,
			&resp.MemberCode,
			&resp.MemberName,
			&resp.Status,
			&resp.Facilities,
			&resp.Comment,
			&resp.SubmittedBy,
			&resp.SubmittedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, resp)
	}
	return result, rows.Err()
}

func (r *responseRepository) CountByTicket(ctx context.Context, ticketID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM responses WHERE ticket_id=$1`, ticketID).Scan(&count)
	return count, err
}
