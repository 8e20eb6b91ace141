package directory

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/asaniustaz/Campusconnect-sub000/internal/model"
	"github.com/asaniustaz/Campusconnect-sub000/pkg/errors"
)

// Repository is the Directory Store boundary: users, classes and subjects.
// The aggregation engine and the registry only ever read it; writes come
// from the admin CRUD surface.
type Repository interface {
	GetUser(ctx context.Context, id string) (*model.User, error)
	ListUsers(ctx context.Context, role model.Role) ([]model.User, error)
	ListStudentsInClass(ctx context.Context, classID string) ([]model.User, error)
	CreateUser(ctx context.Context, u *model.User) error
	UpdateUser(ctx context.Context, u *model.User) error
	DeleteUser(ctx context.Context, id string) error

	GetClass(ctx context.Context, id string) (*model.SchoolClass, error)
	ListClasses(ctx context.Context) ([]model.SchoolClass, error)
	ListClassesInSection(ctx context.Context, section string) ([]model.SchoolClass, error)
	CreateClass(ctx context.Context, c *model.SchoolClass) error
	UpdateClass(ctx context.Context, c *model.SchoolClass) error
	DeleteClass(ctx context.Context, id string) error

	ListSubjects(ctx context.Context) ([]model.Subject, error)
	ListSubjectsForSection(ctx context.Context, section string) ([]model.Subject, error)
	CreateSubject(ctx context.Context, s *model.Subject) error
	UpdateSubject(ctx context.Context, s *model.Subject) error
	DeleteSubject(ctx context.Context, id string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const userColumns = `id, first_name, surname, middle_name, email, password_hash, role,
	school_section, class_id, roll_number, department, title, section, created_at, updated_at`

func (r *repository) scanUser(row interface{ Scan(...interface{}) error }) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID, &u.FirstName, &u.Surname, &u.MiddleName, &u.Email, &u.PasswordHash, &u.Role,
		&u.SchoolSection, &u.ClassID, &u.RollNumber, &u.Department, &u.Title, &u.Section,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) loadAssignedClasses(ctx context.Context, u *model.User) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT class_id FROM staff_classes WHERE user_id = ? ORDER BY class_id`, u.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var classID string
		if err := rows.Scan(&classID); err != nil {
			return err
		}
		u.AssignedClasses = append(u.AssignedClasses, classID)
	}
	return rows.Err()
}

func (r *repository) GetUser(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	u, err := r.scanUser(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.ErrRequesterNotFound
	}
	if err != nil {
		return nil, err
	}
	if u.Role == model.RoleStaff || u.Role == model.RoleHeadOfSection {
		if err := r.loadAssignedClasses(ctx, u); err != nil {
			return nil, err
		}
	}
	return u, nil
}

func (r *repository) ListUsers(ctx context.Context, role model.Role) ([]model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users`
	args := []interface{}{}
	if role != "" {
		query += ` WHERE role = ?`
		args = append(args, role)
	}
	query += ` ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := r.scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range users {
		u := &users[i]
		if u.Role == model.RoleStaff || u.Role == model.RoleHeadOfSection {
			if err := r.loadAssignedClasses(ctx, u); err != nil {
				return nil, err
			}
		}
	}
	return users, nil
}

func (r *repository) ListStudentsInClass(ctx context.Context, classID string) ([]model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE role = ? AND class_id = ? ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, model.RoleStudent, classID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []model.User
	for rows.Next() {
		u, err := r.scanUser(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, *u)
	}
	return students, rows.Err()
}

// validateUser enforces the head_of_section invariant before any write.
func validateUser(u *model.User) error {
	if u.Role == model.RoleHeadOfSection && (u.Section == nil || *u.Section == "") {
		return errors.ValidationError{
			Field:   "section",
			Value:   u.Section,
			Message: "head_of_section requires a section",
		}
	}
	return nil
}

func (r *repository) CreateUser(ctx context.Context, u *model.User) error {
	if err := validateUser(u); err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `INSERT INTO users (` + userColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NOW(), NOW())`
	_, err = tx.ExecContext(ctx, query,
		u.ID, u.FirstName, u.Surname, u.MiddleName, u.Email, u.PasswordHash, u.Role,
		u.SchoolSection, u.ClassID, u.RollNumber, u.Department, u.Title, u.Section)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	if err := replaceAssignedClasses(ctx, tx, u); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *repository) UpdateUser(ctx context.Context, u *model.User) error {
	if err := validateUser(u); err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `UPDATE users SET first_name = ?, surname = ?, middle_name = ?, email = ?,
		password_hash = ?, role = ?, school_section = ?, class_id = ?, roll_number = ?,
		department = ?, title = ?, section = ?, updated_at = NOW() WHERE id = ?`
	_, err = tx.ExecContext(ctx, query,
		u.FirstName, u.Surname, u.MiddleName, u.Email, u.PasswordHash, u.Role,
		u.SchoolSection, u.ClassID, u.RollNumber, u.Department, u.Title, u.Section, u.ID)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	if err := replaceAssignedClasses(ctx, tx, u); err != nil {
		return err
	}
	return tx.Commit()
}

func replaceAssignedClasses(ctx context.Context, tx *sql.Tx, u *model.User) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM staff_classes WHERE user_id = ?`, u.ID); err != nil {
		return err
	}
	for _, classID := range u.AssignedClasses {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO staff_classes (user_id, class_id) VALUES (?, ?)`, u.ID, classID)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *repository) DeleteUser(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM staff_classes WHERE user_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *repository) GetClass(ctx context.Context, id string) (*model.SchoolClass, error) {
	query := `SELECT id, name, display_level, section, created_at, updated_at FROM classes WHERE id = ?`

	var c model.SchoolClass
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.Name, &c.DisplayLevel, &c.Section, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, errors.ErrClassNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repository) listClasses(ctx context.Context, query string, args ...interface{}) ([]model.SchoolClass, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var classes []model.SchoolClass
	for rows.Next() {
		var c model.SchoolClass
		err := rows.Scan(&c.ID, &c.Name, &c.DisplayLevel, &c.Section, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return nil, err
		}
		classes = append(classes, c)
	}
	return classes, rows.Err()
}

func (r *repository) ListClasses(ctx context.Context) ([]model.SchoolClass, error) {
	return r.listClasses(ctx,
		`SELECT id, name, display_level, section, created_at, updated_at FROM classes ORDER BY created_at`)
}

func (r *repository) ListClassesInSection(ctx context.Context, section string) ([]model.SchoolClass, error) {
	return r.listClasses(ctx,
		`SELECT id, name, display_level, section, created_at, updated_at FROM classes WHERE section = ? ORDER BY created_at`,
		section)
}

func (r *repository) CreateClass(ctx context.Context, c *model.SchoolClass) error {
	query := `INSERT INTO classes (id, name, display_level, section, created_at, updated_at)
		VALUES (?, ?, ?, ?, NOW(), NOW())`
	_, err := r.db.ExecContext(ctx, query, c.ID, c.Name, c.DisplayLevel, c.Section)
	return err
}

func (r *repository) UpdateClass(ctx context.Context, c *model.SchoolClass) error {
	query := `UPDATE classes SET name = ?, display_level = ?, section = ?, updated_at = NOW() WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, c.Name, c.DisplayLevel, c.Section, c.ID)
	return err
}

func (r *repository) DeleteClass(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM classes WHERE id = ?`, id)
	return err
}

func (r *repository) listSubjects(ctx context.Context, query string, args ...interface{}) ([]model.Subject, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subjects []model.Subject
	for rows.Next() {
		var s model.Subject
		err := rows.Scan(&s.ID, &s.Title, &s.Code, &s.SchoolSection, &s.CreatedAt, &s.UpdatedAt)
		if err != nil {
			return nil, err
		}
		subjects = append(subjects, s)
	}
	return subjects, rows.Err()
}

func (r *repository) ListSubjects(ctx context.Context) ([]model.Subject, error) {
	return r.listSubjects(ctx,
		`SELECT id, title, code, school_section, created_at, updated_at FROM subjects ORDER BY created_at`)
}

func (r *repository) ListSubjectsForSection(ctx context.Context, section string) ([]model.Subject, error) {
	return r.listSubjects(ctx,
		`SELECT id, title, code, school_section, created_at, updated_at FROM subjects WHERE school_section = ? ORDER BY created_at`,
		section)
}

func (r *repository) CreateSubject(ctx context.Context, s *model.Subject) error {
	query := `INSERT INTO subjects (id, title, code, school_section, created_at, updated_at)
		VALUES (?, ?, ?, ?, NOW(), NOW())`
	_, err := r.db.ExecContext(ctx, query, s.ID, s.Title, s.Code, s.SchoolSection)
	return err
}

func (r *repository) UpdateSubject(ctx context.Context, s *model.Subject) error {
	query := `UPDATE subjects SET title = ?, code = ?, school_section = ?, updated_at = NOW() WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, s.Title, s.Code, s.SchoolSection, s.ID)
	return err
}

func (r *repository) DeleteSubject(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM subjects WHERE id = ?`, id)
	return err
}
