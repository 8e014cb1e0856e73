package users

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

var userOrderColumns = map[string]string{
	"id":        "u.id",
	"username":  "u.username",
	"email":     "u.email",
	"firstName": "u.first_name",
	"lastName":  "u.last_name",
	"createdAt": "u.created_at",
	"updatedAt": "u.updated_at",
}

const userSelect = `
	SELECT u.id, u.username, u.email, u.first_name, u.last_name, u.password,
	       u.role_id, u.permissions, u.created_at, u.updated_at,
	       r.id, r.name, r.permissions
	FROM users u
	LEFT JOIN roles r ON r.id = u.role_id`

// Count returns the total number of users.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// CountFiltered returns the number of users matching the filters.
func (r *Repository) CountFiltered(ctx context.Context, filters ListFilters) (int64, error) {
	where, args := userWhere(filters)
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users u`+where, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// List returns users matching the filters with their role loaded.
func (r *Repository) List(ctx context.Context, filters ListFilters) ([]User, error) {
	where, args := userWhere(filters)

	orderCol, ok := userOrderColumns[filters.OrderBy]
	if !ok {
		orderCol = "u.id"
	}
	dir := "ASC"
	if strings.EqualFold(filters.OrderDir, "desc") {
		dir = "DESC"
	}
	query := userSelect + where + fmt.Sprintf(" ORDER BY %s %s", orderCol, dir)
	if filters.Length > 0 {
		query += fmt.Sprintf(" OFFSET $%d LIMIT $%d", len(args)+1, len(args)+2)
		args = append(args, filters.Start, filters.Length)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, user)
	}
	return out, rows.Err()
}

// Get fetches a user by id with the role relation loaded.
func (r *Repository) Get(ctx context.Context, id int64) (User, error) {
	row := r.pool.QueryRow(ctx, userSelect+` WHERE u.id = $1`, id)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, shared.ErrNotFound
		}
		return User{}, err
	}
	return user, nil
}

// CreateParams carries the writable user fields. PasswordHash must already
// be encoded.
type CreateParams struct {
	Username     string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	RoleID       int64
	Permissions  []string
}

// Create inserts a new user.
func (r *Repository) Create(ctx context.Context, p CreateParams) (User, error) {
	perms, err := marshalPermissions(p.Permissions)
	if err != nil {
		return User{}, err
	}
	var id int64
	err = r.pool.QueryRow(ctx, `
		INSERT INTO users (username, email, first_name, last_name, password, role_id, permissions, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING id`,
		p.Username, p.Email, p.FirstName, p.LastName, p.PasswordHash, p.RoleID, perms).Scan(&id)
	if err != nil {
		return User{}, err
	}
	return r.Get(ctx, id)
}

// UpdateParams carries the mutable user fields. An empty PasswordHash keeps
// the stored credential.
type UpdateParams struct {
	Username     string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	RoleID       int64
	Permissions  []string
}

// Update mutates an existing user.
func (r *Repository) Update(ctx context.Context, id int64, p UpdateParams) (User, error) {
	perms, err := marshalPermissions(p.Permissions)
	if err != nil {
		return User{}, err
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE users
		SET username = $2, email = $3, first_name = $4, last_name = $5,
		    password = COALESCE(NULLIF($6, ''), password),
		    role_id = $7, permissions = $8, updated_at = NOW()
		WHERE id = $1`,
		id, p.Username, p.Email, p.FirstName, p.LastName, p.PasswordHash, p.RoleID, perms)
	if err != nil {
		return User{}, err
	}
	if tag.RowsAffected() == 0 {
		return User{}, shared.ErrNotFound
	}
	return r.Get(ctx, id)
}

// Delete removes a user by id.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func userWhere(filters ListFilters) (string, []any) {
	var conds []string
	var args []any
	if s := strings.TrimSpace(filters.Search); s != "" {
		args = append(args, "%"+s+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(u.username ILIKE $%d OR u.email ILIKE $%d OR u.first_name ILIKE $%d OR u.last_name ILIKE $%d)", n, n, n, n))
	}
	if filters.Username != "" {
		args = append(args, "%"+filters.Username+"%")
		conds = append(conds, fmt.Sprintf("u.username ILIKE $%d", len(args)))
	}
	if filters.Email != "" {
		args = append(args, "%"+filters.Email+"%")
		conds = append(conds, fmt.Sprintf("u.email ILIKE $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanUser(row pgx.Row) (User, error) {
	var user User
	var rawPerms, rawRolePerms []byte
	var roleID *int64
	var roleName *string
	if err := row.Scan(&user.ID, &user.Username, &user.Email, &user.FirstName, &user.LastName,
		&user.PasswordHash, &user.RoleID, &rawPerms, &user.CreatedAt, &user.UpdatedAt,
		&roleID, &roleName, &rawRolePerms); err != nil {
		return User{}, err
	}
	if len(rawPerms) > 0 {
		if err := json.Unmarshal(rawPerms, &user.Permissions); err != nil {
			return User{}, fmt.Errorf("users: decode permissions: %w", err)
		}
	}
	if roleID != nil {
		ref := &RoleRef{ID: *roleID}
		if roleName != nil {
			ref.Name = *roleName
		}
		if len(rawRolePerms) > 0 {
			if err := json.Unmarshal(rawRolePerms, &ref.Permissions); err != nil {
				return User{}, fmt.Errorf("users: decode role permissions: %w", err)
			}
		}
		user.Role = ref
	}
	return user, nil
}

func marshalPermissions(perms []string) ([]byte, error) {
	if perms == nil {
		perms = []string{}
	}
	data, err := json.Marshal(perms)
	if err != nil {
		return nil, fmt.Errorf("users: encode permissions: %w", err)
	}
	return data, nil
}
