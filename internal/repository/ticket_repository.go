package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/digsafe/locate-ticket-service/internal/domain"
)

// TicketFilter captures listing parameters.
type TicketFilter struct {
	ExcavatorID *string
	Statuses    []domain.TicketStatus
	SiteCity    *string
	SiteCounty  *string
	SearchTerm  *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// TicketRepository encapsulates ticket persistence. Update replaces the
// member rows transactionally so the aggregate round-trips the registry's
// copy-on-write values as a unit.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	GetByNumber(ctx context.Context, ticketNumber string) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const query = `
        INSERT INTO tickets (ticket_number, excavator_user_id, work_type, work_description,
                             site_address, site_city, site_county, site_state, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at, updated_at`
	if err := tx.QueryRow(ctx, query,
		ticket.TicketNumber,
		ticket.ExcavatorID,
		ticket.WorkType,
		ticket.WorkDescription,
		ticket.SiteAddress,
		ticket.SiteCity,
		ticket.SiteCounty,
		ticket.SiteState,
		ticket.Status,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt); err != nil {
		return err
	}

	if err := insertMembers(ctx, tx, ticket.ID, ticket.Members); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const query = `
        UPDATE tickets SET work_type=$1, work_description=$2, site_address=$3, site_city=$4,
            site_county=$5, site_state=$6, status=$7, cancelled_at=$8, updated_at=NOW()
        WHERE id=$9`
	cmd, err := tx.Exec(ctx, query,
		ticket.WorkType,
		ticket.WorkDescription,
		ticket.SiteAddress,
		ticket.SiteCity,
		ticket.SiteCounty,
		ticket.SiteState,
		ticket.Status,
		ticket.CancelledAt,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	if _, err := tx.Exec(ctx, `DELETE FROM ticket_members WHERE ticket_id=$1`, ticket.ID); err != nil {
		return err
	}
	if err := insertMembers(ctx, tx, ticket.ID, ticket.Members); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func insertMembers(ctx context.Context, tx pgx.Tx, ticketID string, members []domain.Member) error {
	const query = `
        INSERT INTO ticket_members (ticket_id, position, member_code, member_name, contact_phone, contact_email, is_active)
        VALUES ($1,$2,$3,$4,$5,$6,$7)`
	for i, m := range members {
		if _, err := tx.Exec(ctx, query, ticketID, i, m.MemberCode, m.MemberName, m.ContactPhone, m.ContactEmail, m.IsActive); err != nil {
			return err
		}
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	const query = `
        SELECT id, ticket_number, excavator_user_id, work_type, work_description,
               site_address, site_city, site_county, site_state, status,
               created_at, updated_at, cancelled_at
        FROM tickets WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *ticketRepository) GetByNumber(ctx context.Context, ticketNumber string) (*domain.Ticket, error) {
	const query = `
        SELECT id, ticket_number, excavator_user_id, work_type, work_description,
               site_address, site_city, site_county, site_state, status,
               created_at, updated_at, cancelled_at
        FROM tickets WHERE ticket_number=$1`
	return r.fetchSingle(ctx, query, ticketNumber)
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&ticket.ID,
		&ticket.TicketNumber,
		&ticket.ExcavatorID,
		&ticket.WorkType,
		&ticket.WorkDescription,
		&ticket.SiteAddress,
		&ticket.SiteCity,
		&ticket.SiteCounty,
		&ticket.SiteState,
		&ticket.Status,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.CancelledAt,
	); err != nil {
		return nil, err
	}

	members, err := r.loadMembers(ctx, ticket.ID)
	if err != nil {
		return nil, err
	}
	ticket.Members = members
	return &ticket, nil
}

func (r *ticketRepository) loadMembers(ctx context.Context, ticketID string) ([]domain.Member, error) {
	const query = `
        SELECT member_code, member_name, contact_phone, contact_email, is_active
        FROM ticket_members WHERE ticket_id=$1 ORDER BY position`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []domain.Member
	for rows.Next() {
		var m domain.Member
		if err := rows.Scan(&m.MemberCode, &m.MemberName, &m.ContactPhone, &m.ContactEmail, &m.IsActive); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	base := `SELECT id, ticket_number, excavator_user_id, work_type, work_description,
                    site_address, site_city, site_county, site_state, status,
                    created_at, updated_at, cancelled_at
             FROM tickets`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.ExcavatorID != nil {
		args = append(args, *filter.ExcavatorID)
		clauses = append(clauses, fmt.Sprintf("excavator_user_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.SiteCity != nil {
		args = append(args, *filter.SiteCity)
		clauses = append(clauses, fmt.Sprintf("LOWER(site_city)=LOWER($%d)", len(args)))
	}
	if filter.SiteCounty != nil {
		args = append(args, *filter.SiteCounty)
		clauses = append(clauses, fmt.Sprintf("LOWER(site_county)=LOWER($%d)", len(args)))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(work_description) LIKE %s OR LOWER(site_address) LIKE %s OR ticket_number LIKE %s)", placeholder, placeholder, placeholder))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY updated_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.TicketNumber,
			&ticket.ExcavatorID,
			&ticket.WorkType,
			&ticket.WorkDescription,
			&ticket.SiteAddress,
			&ticket.SiteCity,
			&ticket.SiteCounty,
			&ticket.SiteState,
			&ticket.Status,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
			&ticket.CancelledAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Listing views do not need member lists; detail fetches load them.
	return result, nil
}
