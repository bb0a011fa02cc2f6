package repository

import (
	"database/sql"
	"fmt"
	"strings"

	"typeb/internal/database"
	"typeb/internal/models"
	"typeb/internal/security"
)

// inviteCodeAttempts bounds collision retries when generating invite codes
const inviteCodeAttempts = 5

// FamilyRepository handles database operations for families and categories
type FamilyRepository struct {
	db *database.DB
}

// NewFamilyRepository creates a new family repository
func NewFamilyRepository(db *database.DB) *FamilyRepository {
	return &FamilyRepository{db: db}
}

// Begin starts a transaction for multi-aggregate operations owned by the
// service layer
func (r *FamilyRepository) Begin() (*database.Tx, error) {
	return r.db.Begin()
}

// CreateFamily creates a family, assigns the creator as a parent member, and
// seeds the default categories, all in one transaction. The invite code is
// retried on the (unlikely) unique-constraint collision.
func (r *FamilyRepository) CreateFamily(name string, creatorID int64, maxMembers int, defaultCategories []models.Category) (*models.Family, error) {
	var lastErr error

	for attempt := 0; attempt < inviteCodeAttempts; attempt++ {
		code := security.GenerateInviteCode()

		family, err := r.createFamilyWithCode(name, code, creatorID, maxMembers, defaultCategories)
		if err != nil {
			if isUniqueViolation(err) {
				lastErr = err
				continue
			}
			return nil, err
		}
		return family, nil
	}

	return nil, fmt.Errorf("failed to generate unique invite code: %w", lastErr)
}

func (r *FamilyRepository) createFamilyWithCode(name, code string, creatorID int64, maxMembers int, defaultCategories []models.Category) (*models.Family, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := "INSERT INTO families (name, invite_code, max_members) VALUES (?, ?, ?)"
	familyID, err := tx.ExecReturningID(query, name, code, maxMembers)
	if err != nil {
		return nil, err
	}

	query = "UPDATE users SET family_id = ?, role = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	if _, err := tx.Exec(query, familyID, string(models.RoleParent), creatorID); err != nil {
		return nil, fmt.Errorf("failed to add creator to family: %w", err)
	}

	for _, c := range defaultCategories {
		query = "INSERT INTO categories (family_id, name, color, icon, sort_order) VALUES (?, ?, ?, ?, ?)"
		if _, err := tx.Exec(query, familyID, c.Name, c.Color, c.Icon, c.SortOrder); err != nil {
			return nil, fmt.Errorf("failed to seed category: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return r.GetFamilyByID(familyID)
}

// isUniqueViolation detects unique-constraint errors across the supported
// drivers without importing their error types
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}

// GetFamilyByID retrieves a family by id
func (r *FamilyRepository) GetFamilyByID(familyID int64) (*models.Family, error) {
	query := "SELECT id, name, invite_code, max_members, created_at, updated_at FROM families WHERE id = ?"
	return scanFamily(r.db.QueryRow(query, familyID))
}

// GetFamilyByInviteCode retrieves a family by its invite code
func (r *FamilyRepository) GetFamilyByInviteCode(code string) (*models.Family, error) {
	query := "SELECT id, name, invite_code, max_members, created_at, updated_at FROM families WHERE invite_code = ?"
	return scanFamily(r.db.QueryRow(query, strings.ToUpper(strings.TrimSpace(code))))
}

func scanFamily(row *sql.Row) (*models.Family, error) {
	family := &models.Family{}
	err := row.Scan(
		&family.ID,
		&family.Name,
		&family.InviteCode,
		&family.MaxMembers,
		&family.CreatedAt,
		&family.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan family: %w", err)
	}
	return family, nil
}

// GetFamilyMembers retrieves all users belonging to a family
func (r *FamilyRepository) GetFamilyMembers(familyID int64) ([]models.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE family_id = ? ORDER BY created_at ASC"
	rows, err := r.db.Query(query, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query family members: %w", err)
	}
	defer rows.Close()

	var members []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, *user)
	}

	return members, rows.Err()
}

// CountFamilyMembers returns the number of users in a family
func (r *FamilyRepository) CountFamilyMembers(familyID int64) (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM users WHERE family_id = ?", familyID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count family members: %w", err)
	}
	return count, nil
}

// CountFamilyParents returns the number of parent-role users in a family
func (r *FamilyRepository) CountFamilyParents(familyID int64) (int, error) {
	var count int
	query := "SELECT COUNT(*) FROM users WHERE family_id = ? AND role = ?"
	err := r.db.QueryRow(query, familyID, string(models.RoleParent)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count family parents: %w", err)
	}
	return count, nil
}

// UpdateFamily updates a family's name and member cap
func (r *FamilyRepository) UpdateFamily(familyID int64, name string, maxMembers int) error {
	query := "UPDATE families SET name = ?, max_members = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	if _, err := r.db.Exec(query, name, maxMembers, familyID); err != nil {
		return fmt.Errorf("failed to update family: %w", err)
	}
	return nil
}

// DeleteFamily deletes a family; member rows are detached via FK action
func (r *FamilyRepository) DeleteFamily(familyID int64) error {
	if _, err := r.db.Exec("DELETE FROM families WHERE id = ?", familyID); err != nil {
		return fmt.Errorf("failed to delete family: %w", err)
	}
	return nil
}

// CreateCategory adds a task category to a family
func (r *FamilyRepository) CreateCategory(familyID int64, name, color, icon string, sortOrder int) (*models.Category, error) {
	query := "INSERT INTO categories (family_id, name, color, icon, sort_order) VALUES (?, ?, ?, ?, ?)"
	id, err := r.db.ExecReturningID(query, familyID, name, color, icon, sortOrder)
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return r.GetCategoryByID(id)
}

// GetCategoryByID retrieves a category by id
func (r *FamilyRepository) GetCategoryByID(id int64) (*models.Category, error) {
	query := "SELECT id, family_id, name, color, icon, sort_order, created_at FROM categories WHERE id = ?"
	c := &models.Category{}
	err := r.db.QueryRow(query, id).Scan(&c.ID, &c.FamilyID, &c.Name, &c.Color, &c.Icon, &c.SortOrder, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return c, nil
}

// GetFamilyCategories retrieves a family's categories in display order
func (r *FamilyRepository) GetFamilyCategories(familyID int64) ([]models.Category, error) {
	query := "SELECT id, family_id, name, color, icon, sort_order, created_at FROM categories WHERE family_id = ? ORDER BY sort_order ASC, id ASC"
	rows, err := r.db.Query(query, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.FamilyID, &c.Name, &c.Color, &c.Icon, &c.SortOrder, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}

	return categories, rows.Err()
}

// UpdateCategory updates a category's display fields
func (r *FamilyRepository) UpdateCategory(id int64, name, color, icon string, sortOrder int) error {
	query := "UPDATE categories SET name = ?, color = ?, icon = ?, sort_order = ? WHERE id = ?"
	if _, err := r.db.Exec(query, name, color, icon, sortOrder, id); err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	return nil
}

// DeleteCategory removes a category; tasks keep running with a null category
func (r *FamilyRepository) DeleteCategory(id int64) error {
	if _, err := r.db.Exec("DELETE FROM categories WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}
