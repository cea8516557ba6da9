package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/trezcool/darasa/core/user"
)

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...user.User) error {
	excludedIDs := make([]int, 0, len(excludedUsers))
	for _, usr := range excludedUsers {
		excludedIDs = append(excludedIDs, usr.ID)
	}

	taken, err := repo.columnTaken(ctx, "username", username, excludedIDs)
	if err != nil {
		return err
	}
	if taken {
		return user.ErrUsernameExists
	}

	if email != "" {
		taken, err = repo.columnTaken(ctx, "email", email, excludedIDs)
		if err != nil {
			return err
		}
		if taken {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo *userRepository) columnTaken(ctx context.Context, column, value string, excludedIDs []int) (bool, error) {
	q := `SELECT EXISTS (SELECT 1 FROM users WHERE ` + column + ` = ?`
	args := []interface{}{value}
	if len(excludedIDs) > 0 {
		q += ` AND id NOT IN (?)`
		args = append(args, excludedIDs)
	}
	q += `)`

	q, args, err := sqlx.In(q, args...)
	if err != nil {
		return false, err
	}

	var taken bool
	err = repo.db.GetContext(ctx, &taken, repo.db.Rebind(q), args...)
	return taken, err
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	err := repo.db.GetContext(ctx, &usr.ID,
		`INSERT INTO users (username, email, role, student_id, password_hash, created_at, updated_at, last_login)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		usr.Username, usr.Email, usr.Role, usr.StudentID, usr.PasswordHash, usr.CreatedAt, usr.UpdatedAt, usr.LastLogin,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
			return user.User{}, user.ErrUsernameExists
		}
		return user.User{}, err
	}
	return usr, nil
}

func (repo *userRepository) QueryAllUsers(ctx context.Context) ([]user.User, error) {
	users := make([]user.User, 0)
	err := repo.db.SelectContext(ctx, &users, `SELECT * FROM users ORDER BY id`)
	return users, err
}

func (repo *userRepository) GetUserByID(ctx context.Context, id int) (user.User, error) {
	var usr user.User
	err := repo.db.GetContext(ctx, &usr, `SELECT * FROM users WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return user.User{}, user.ErrNotFound
	}
	return usr, err
}

func (repo *userRepository) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	var usr user.User
	err := repo.db.GetContext(ctx, &usr, `SELECT * FROM users WHERE username = $1`, username)
	if err == sql.ErrNoRows {
		return user.User{}, user.ErrNotFound
	}
	return usr, err
}

func (repo *userRepository) GetUserByUsernameOrEmail(ctx context.Context, username string) (user.User, error) {
	var usr user.User
	err := repo.db.GetContext(ctx, &usr,
		`SELECT * FROM users WHERE username = $1 OR (email <> '' AND email = $1) ORDER BY id LIMIT 1`, username)
	if err == sql.ErrNoRows {
		return user.User{}, user.ErrNotFound
	}
	return usr, err
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE users
		 SET username = $1, email = $2, role = $3, student_id = $4, password_hash = $5, updated_at = $6, last_login = $7
		 WHERE id = $8`,
		usr.Username, usr.Email, usr.Role, usr.StudentID, usr.PasswordHash, usr.UpdatedAt, usr.LastLogin, usr.ID,
	)
	if err != nil {
		return user.User{}, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return user.User{}, err
	} else if n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}

func (repo *userRepository) AssignClass(ctx context.Context, teacherUserID int, class string) error {
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO teacher_classes (teacher_user_id, class) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		teacherUserID, class,
	)
	return err
}

func (repo *userRepository) UnassignClass(ctx context.Context, teacherUserID int, class string) error {
	_, err := repo.db.ExecContext(ctx,
		`DELETE FROM teacher_classes WHERE teacher_user_id = $1 AND class = $2`, teacherUserID, class)
	return err
}

func (repo *userRepository) QueryTeacherClasses(ctx context.Context, teacherUserID int) ([]string, error) {
	classes := make([]string, 0)
	err := repo.db.SelectContext(ctx, &classes,
		`SELECT class FROM teacher_classes WHERE teacher_user_id = $1 ORDER BY class`, teacherUserID)
	return classes, err
}

func (repo *userRepository) TeacherOwnsClass(ctx context.Context, teacherUserID int, class string) (bool, error) {
	var owns bool
	err := repo.db.GetContext(ctx, &owns,
		`SELECT EXISTS (SELECT 1 FROM teacher_classes WHERE teacher_user_id = $1 AND class = $2)`,
		teacherUserID, class,
	)
	return owns, err
}
