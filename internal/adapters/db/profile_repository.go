// internal/adapters/db/profile_repository.go
package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/ammerola/stockpilot-be/internal/core/domain"
	"github.com/ammerola/stockpilot-be/internal/core/ports"
)

// profileRepository implements ports.ProfileRepository
type profileRepository struct {
	db     *Database
	logger *slog.Logger
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *Database, logger *slog.Logger) ports.ProfileRepository {
	return &profileRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "profile")),
	}
}

// Save creates or refreshes a profile row. Profiles mirror the identity
// provider, so a repeated save for the same id just updates the mutable
// fields.
func (r *profileRepository) Save(ctx context.Context, profile *domain.Profile) error {
	query := `
		INSERT INTO profiles (id, email, full_name, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id)
		DO UPDATE SET email = EXCLUDED.email, full_name = EXCLUDED.full_name,
			updated_at = EXCLUDED.updated_at
		RETURNING created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		profile.ID, profile.Email, profile.FullName, profile.Role,
		profile.CreatedAt, profile.UpdatedAt,
	).Scan(&profile.CreatedAt, &profile.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}

	return nil
}

// FindByID retrieves a profile by ID
func (r *profileRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	query := `
		SELECT id, email, full_name, role, created_at, updated_at
		FROM profiles
		WHERE id = $1`

	profile, err := scanProfile(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ports.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}

	return profile, nil
}

// FindByToken resolves an API token to its profile
func (r *profileRepository) FindByToken(ctx context.Context, token string) (*domain.Profile, error) {
	query := `
		SELECT p.id, p.email, p.full_name, p.role, p.created_at, p.updated_at
		FROM profiles p
		JOIN api_tokens t ON t.profile_id = p.id
		WHERE t.token = $1 AND (t.expires_at IS NULL OR t.expires_at > NOW())`

	profile, err := scanProfile(r.db.QueryRow(ctx, query, token))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ports.ErrNotFound
		}
		return nil, fmt.Errorf("failed to resolve token: %w", err)
	}

	return profile, nil
}

// FindAll retrieves profiles ordered by email with pagination
func (r *profileRepository) FindAll(ctx context.Context, page, pageSize int) ([]domain.Profile, int64, error) {
	var totalCount int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM profiles`).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count profiles: %w", err)
	}

	query := `
		SELECT id, email, full_name, role, created_at, updated_at
		FROM profiles
		ORDER BY email
		LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query profiles: %w", err)
	}
	defer rows.Close()

	var profiles []domain.Profile
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, *profile)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating rows: %w", err)
	}

	return profiles, totalCount, nil
}

// UpdateRole changes a profile's role
func (r *profileRepository) UpdateRole(ctx context.Context, id uuid.UUID, role domain.UserRole) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE profiles SET role = $2, updated_at = NOW() WHERE id = $1`,
		id, role)
	if err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ports.ErrNotFound
	}

	r.logger.InfoContext(ctx, "profile role updated",
		slog.String("profile_id", id.String()),
		slog.String("role", string(role)))

	return nil
}

func scanProfile(row pgx.Row) (*domain.Profile, error) {
	var (
		profile   domain.Profile
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)

	err := row.Scan(&profile.ID, &profile.Email, &profile.FullName,
		&profile.Role, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	profile.CreatedAt = createdAt.Time
	profile.UpdatedAt = updatedAt.Time

	return &profile, nil
}
