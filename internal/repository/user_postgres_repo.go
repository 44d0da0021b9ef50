package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jj-tech-ranger/alx-project-nexus/internal/domain"

	"github.com/sirupsen/logrus"
)

type postgresUserRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresUserRepository(db *sql.DB, logger *logrus.Logger) domain.UserRepository {
	return &postgresUserRepository{
		db:  db,
		log: logger,
	}
}

const userSelect = `
	SELECT u.id, u.username, u.email, u.first_name, u.last_name, u.password_hash, u.is_staff, u.date_joined,
	       p.avatar, p.bio, p.location
	FROM users u
	JOIN profiles p ON p.user_id = u.id`

func scanUser(row rowScanner) (*domain.User, error) {
	user := &domain.User{}
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.PasswordHash,
		&user.IsStaff,
		&user.DateJoined,
		&user.Profile.Avatar,
		&user.Profile.Bio,
		&user.Profile.Location,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// CreateUserWithProfile writes the account and its empty profile together so
// a user never exists without a profile.
func (r *postgresUserRepository) CreateUserWithProfile(ctx context.Context, user *domain.User) (*domain.User, error) {
	r.log.Debugf("Repository: Attempting to create user: %s", user.Username)

	err := withTx(ctx, r.db, r.log, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `
			INSERT INTO users (username, email, first_name, last_name, password_hash, is_staff)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, date_joined`,
			user.Username, user.Email, user.FirstName, user.LastName, user.PasswordHash, user.IsStaff,
		).Scan(&user.ID, &user.DateJoined)
		if err != nil {
			if pqCode(err) == pqUniqueViolation {
				field := "username"
				if strings.Contains(pqConstraint(err), "email") {
					field = "email"
				}
				r.log.Warnf("Repository: Attempted to create user with duplicate %s: %s", field, user.Username)
				return fmt.Errorf("%w: a user with that %s already exists", domain.ErrConflict, field)
			}
			r.log.Errorf("Repository: Failed to create user '%s': %v", user.Username, err)
			return fmt.Errorf("could not create user: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO profiles (user_id, avatar, bio, location)
			VALUES ($1, $2, $3, $4)`,
			user.ID, user.Profile.Avatar, user.Profile.Bio, user.Profile.Location)
		if err != nil {
			r.log.Errorf("Repository: Failed to create profile for user %d: %v", user.ID, err)
			return fmt.Errorf("could not create profile: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.log.Infof("Repository: User created successfully with ID: %d, Username: %s", user.ID, user.Username)
	return user, nil
}

func (r *postgresUserRepository) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, userSelect+` WHERE u.username = $1`, username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Repository: User with username %s not found", username)
			return nil, fmt.Errorf("%w: user %s", domain.ErrNotFound, username)
		}
		r.log.Errorf("Repository: Failed to get user by username %s: %v", username, err)
		return nil, fmt.Errorf("could not get user by username: %w", err)
	}
	return user, nil
}

func (r *postgresUserRepository) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, userSelect+` WHERE u.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Repository: User with ID %d not found", id)
			return nil, fmt.Errorf("%w: user with id %d", domain.ErrNotFound, id)
		}
		r.log.Errorf("Repository: Failed to get user by ID %d: %v", id, err)
		return nil, fmt.Errorf("could not get user by id: %w", err)
	}
	return user, nil
}

func (r *postgresUserRepository) UpdateProfile(ctx context.Context, userID int64, patch domain.ProfilePatch) (*domain.User, error) {
	err := withTx(ctx, r.db, r.log, func(tx *sql.Tx) error {
		userArgs := []interface{}{}
		userSets := []string{}
		if patch.FirstName != nil {
			userArgs = append(userArgs, *patch.FirstName)
			userSets = append(userSets, fmt.Sprintf("first_name = $%d", len(userArgs)))
		}
		if patch.LastName != nil {
			userArgs = append(userArgs, *patch.LastName)
			userSets = append(userSets, fmt.Sprintf("last_name = $%d", len(userArgs)))
		}
		if patch.Email != nil {
			userArgs = append(userArgs, *patch.Email)
			userSets = append(userSets, fmt.Sprintf("email = $%d", len(userArgs)))
		}
		if len(userSets) > 0 {
			userArgs = append(userArgs, userID)
			query := "UPDATE users SET " + strings.Join(userSets, ", ") + fmt.Sprintf(" WHERE id = $%d", len(userArgs))
			result, err := tx.ExecContext(ctx, query, userArgs...)
			if err != nil {
				if pqCode(err) == pqUniqueViolation {
					return fmt.Errorf("%w: a user with that email already exists", domain.ErrConflict)
				}
				r.log.Errorf("Repository: Failed to update user %d: %v", userID, err)
				return fmt.Errorf("could not update user: %w", err)
			}
			if n, _ := result.RowsAffected(); n == 0 {
				return fmt.Errorf("%w: user with id %d", domain.ErrNotFound, userID)
			}
		}

		profileArgs := []interface{}{}
		profileSets := []string{}
		if patch.Bio != nil {
			profileArgs = append(profileArgs, *patch.Bio)
			profileSets = append(profileSets, fmt.Sprintf("bio = $%d", len(profileArgs)))
		}
		if patch.Location != nil {
			profileArgs = append(profileArgs, *patch.Location)
			profileSets = append(profileSets, fmt.Sprintf("location = $%d", len(profileArgs)))
		}
		if patch.Avatar != nil {
			profileArgs = append(profileArgs, *patch.Avatar)
			profileSets = append(profileSets, fmt.Sprintf("avatar = $%d", len(profileArgs)))
		}
		if len(profileSets) > 0 {
			profileArgs = append(profileArgs, userID)
			query := "UPDATE profiles SET " + strings.Join(profileSets, ", ") + fmt.Sprintf(" WHERE user_id = $%d", len(profileArgs))
			if _, err := tx.ExecContext(ctx, query, profileArgs...); err != nil {
				r.log.Errorf("Repository: Failed to update profile of user %d: %v", userID, err)
				return fmt.Errorf("could not update profile: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.log.Infof("Repository: Profile updated for user ID %d", userID)
	return r.GetUserByID(ctx, userID)
}

func (r *postgresUserRepository) ListCustomers(ctx context.Context, limit, offset int) ([]domain.User, error) {
	limit, offset = clampPage(limit, offset)
	rows, err := r.db.QueryContext(ctx, userSelect+` WHERE NOT u.is_staff ORDER BY u.date_joined DESC, u.id DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		r.log.Errorf("Repository: Failed to list customers: %v", err)
		return nil, fmt.Errorf("could not list customers: %w", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			r.log.Errorf("Repository: Failed to scan user row: %v", err)
			return nil, fmt.Errorf("error scanning user data: %w", err)
		}
		users = append(users, *user)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return users, nil
}
