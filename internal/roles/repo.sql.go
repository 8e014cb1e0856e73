package roles

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hrs-suite/hrs/internal/shared"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var roleOrderColumns = map[string]string{
	"id":          "r.id",
	"name":        "r.name",
	"description": "r.description",
	"createdAt":   "r.created_at",
	"updatedAt":   "r.updated_at",
}

const roleSelect = `
	SELECT r.id, r.name, r.description, r.permissions, r.created_by_user_id,
	       r.created_at, r.updated_at,
	       u.id, u.first_name, u.last_name, u.email
	FROM roles r
	LEFT JOIN users u ON u.id = r.created_by_user_id`

// Count returns the total number of roles.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM roles`).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// CountFiltered returns the number of roles matching the filters.
func (r *Repository) CountFiltered(ctx context.Context, filters ListFilters) (int64, error) {
	where, args := roleWhere(filters)
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM roles r`+where, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// List returns roles matching the filters with their creator loaded.
func (r *Repository) List(ctx context.Context, filters ListFilters) ([]Role, error) {
	where, args := roleWhere(filters)

	orderCol, ok := roleOrderColumns[filters.OrderBy]
	if !ok {
		orderCol = "r.id"
	}
	dir := "ASC"
	if strings.EqualFold(filters.OrderDir, "desc") {
		dir = "DESC"
	}
	query := roleSelect + where + fmt.Sprintf(" ORDER BY %s %s", orderCol, dir)
	if filters.Length > 0 {
		query += fmt.Sprintf(" OFFSET $%d LIMIT $%d", len(args)+1, len(args)+2)
		args = append(args, filters.Start, filters.Length)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, role)
	}
	return out, rows.Err()
}

// Get fetches a role by id.
func (r *Repository) Get(ctx context.Context, id int64) (Role, error) {
	row := r.pool.QueryRow(ctx, roleSelect+` WHERE r.id = $1`, id)
	role, err := scanRole(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Role{}, shared.ErrNotFound
		}
		return Role{}, err
	}
	return role, nil
}

// CreateParams carries the writable role fields.
type CreateParams struct {
	Name            string
	Description     string
	Permissions     []string
	CreatedByUserID *int64
}

// Create inserts a new role.
func (r *Repository) Create(ctx context.Context, p CreateParams) (Role, error) {
	perms, err := marshalPermissions(p.Permissions)
	if err != nil {
		return Role{}, err
	}
	var id int64
	err = r.pool.QueryRow(ctx, `
		INSERT INTO roles (name, description, permissions, created_by_user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id`,
		p.Name, p.Description, perms, p.CreatedByUserID).Scan(&id)
	if err != nil {
		return Role{}, err
	}
	return r.Get(ctx, id)
}

// UpdateParams carries the mutable role fields.
type UpdateParams struct {
	Name        string
	Description string
	Permissions []string
}

// Update mutates an existing role.
func (r *Repository) Update(ctx context.Context, id int64, p UpdateParams) (Role, error) {
	perms, err := marshalPermissions(p.Permissions)
	if err != nil {
		return Role{}, err
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE roles
		SET name = $2, description = $3, permissions = $4, updated_at = NOW()
		WHERE id = $1`,
		id, p.Name, p.Description, perms)
	if err != nil {
		return Role{}, err
	}
	if tag.RowsAffected() == 0 {
		return Role{}, shared.ErrNotFound
	}
	return r.Get(ctx, id)
}

// Delete removes a role by id.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func roleWhere(filters ListFilters) (string, []any) {
	var conds []string
	var args []any
	if s := strings.TrimSpace(filters.Search); s != "" {
		args = append(args, "%"+s+"%")
		conds = append(conds, fmt.Sprintf("r.name ILIKE $%d", len(args)))
	}
	if filters.Name != "" {
		args = append(args, "%"+filters.Name+"%")
		conds = append(conds, fmt.Sprintf("r.name ILIKE $%d", len(args)))
	}
	if filters.Description != "" {
		args = append(args, "%"+filters.Description+"%")
		conds = append(conds, fmt.Sprintf("r.description ILIKE $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanRole(row pgx.Row) (Role, error) {
	var role Role
	var rawPerms []byte
	var desc *string
	var creatorID *int64
	var creatorFirst, creatorLast, creatorEmail *string
	if err := row.Scan(&role.ID, &role.Name, &desc, &rawPerms, &role.CreatedByUserID,
		&role.CreatedAt, &role.UpdatedAt,
		&creatorID, &creatorFirst, &creatorLast, &creatorEmail); err != nil {
		return Role{}, err
	}
	if desc != nil {
		role.Description = *desc
	}
	if len(rawPerms) > 0 {
		if err := json.Unmarshal(rawPerms, &role.Permissions); err != nil {
			return Role{}, fmt.Errorf("roles: decode permissions: %w", err)
		}
	}
	if creatorID != nil {
		role.CreatedBy = &Creator{ID: *creatorID}
		if creatorFirst != nil {
			role.CreatedBy.FirstName = *creatorFirst
		}
		if creatorLast != nil {
			role.CreatedBy.LastName = *creatorLast
		}
		if creatorEmail != nil {
			role.CreatedBy.Email = *creatorEmail
		}
	}
	return role, nil
}

func marshalPermissions(perms []string) ([]byte, error) {
	if perms == nil {
		perms = []string{}
	}
	data, err := json.Marshal(perms)
	if err != nil {
		return nil, fmt.Errorf("roles: encode permissions: %w", err)
	}
	return data, nil
}
