package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fitlearn/quizlab-backend/internal/model"
)

// MemberRepository handles member data access.
type MemberRepository struct {
	pool *pgxpool.Pool
}

// NewMemberRepository creates a new MemberRepository.
func NewMemberRepository(pool *pgxpool.Pool) *MemberRepository {
	return &MemberRepository{pool: pool}
}

// GetByID retrieves a member by ID.
func (r *MemberRepository) GetByID(ctx context.Context, id int) (*model.Member, error) {
	m := &model.Member{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, email, password_hash, created_at
		 FROM members WHERE id = $1`, id,
	).Scan(&m.ID, &m.Name, &m.Email, &m.PasswordHash, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// GetByEmail retrieves a member by their unique email.
func (r *MemberRepository) GetByEmail(ctx context.Context, email string) (*model.Member, error) {
	m := &model.Member{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, email, password_hash, created_at
		 FROM members WHERE email = $1`, email,
	).Scan(&m.ID, &m.Name, &m.Email, &m.PasswordHash, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Create inserts a new member.
func (r *MemberRepository) Create(ctx context.Context, m *model.Member) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO members (name, email, password_hash)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		m.Name, m.Email, m.PasswordHash,
	).Scan(&m.ID, &m.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	return err
}

// ListPaginated retrieves members ordered by name.
func (r *MemberRepository) ListPaginated(ctx context.Context, limit, offset int) ([]model.Member, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM members`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, name, email, password_hash, created_at
		 FROM members
		 ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var members []model.Member
	for rows.Next() {
		var m model.Member
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.PasswordHash, &m.CreatedAt); err != nil {
			return nil, 0, err
		}
		members = append(members, m)
	}
	return members, total, rows.Err()
}
