package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jj-tech-ranger/alx-project-nexus/internal/domain"

	"github.com/sirupsen/logrus"
)

type postgresAddressRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresAddressRepository(db *sql.DB, logger *logrus.Logger) domain.AddressRepository {
	return &postgresAddressRepository{
		db:  db,
		log: logger,
	}
}

const addressColumns = `id, user_id, full_name, label, street, city, postal_code, country, phone, is_default, created_at`

func scanAddress(row rowScanner) (*domain.Address, error) {
	a := &domain.Address{}
	err := row.Scan(&a.ID, &a.UserID, &a.FullName, &a.Label, &a.Street, &a.City, &a.PostalCode, &a.Country, &a.Phone, &a.IsDefault, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// lockUserAddresses serialises writers of one user's address set by locking
// the owning user row, then clears the default flag on every address except keepID.
func (r *postgresAddressRepository) lockUserAddresses(ctx context.Context, tx *sql.Tx, userID, keepID int64) error {
	var lockedID int64
	err := tx.QueryRowContext(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&lockedID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: user with id %d", domain.ErrNotFound, userID)
	}
	if err != nil {
		r.log.Errorf("Repository: Failed to lock user %d: %v", userID, err)
		return fmt.Errorf("could not lock user: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE addresses
		SET is_default = FALSE
		WHERE user_id = $1 AND id <> $2 AND is_default`, userID, keepID)
	if err != nil {
		r.log.Errorf("Repository: Failed to clear default address for user %d: %v", userID, err)
		return fmt.Errorf("could not clear default address: %w", err)
	}
	return nil
}

func (r *postgresAddressRepository) SaveAddress(ctx context.Context, address *domain.Address) (*domain.Address, error) {
	var saved *domain.Address
	err := withTx(ctx, r.db, r.log, func(tx *sql.Tx) error {
		if address.IsDefault {
			if err := r.lockUserAddresses(ctx, tx, address.UserID, address.ID); err != nil {
				return err
			}
		}

		var row *sql.Row
		if address.ID == 0 {
			row = tx.QueryRowContext(ctx, `
				INSERT INTO addresses (user_id, full_name, label, street, city, postal_code, country, phone, is_default)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
				RETURNING `+addressColumns,
				address.UserID, address.FullName, address.Label, address.Street, address.City,
				address.PostalCode, address.Country, address.Phone, address.IsDefault)
		} else {
			row = tx.QueryRowContext(ctx, `
				UPDATE addresses
				SET full_name = $1, label = $2, street = $3, city = $4, postal_code = $5,
				    country = $6, phone = $7, is_default = $8
				WHERE id = $9 AND user_id = $10
				RETURNING `+addressColumns,
				address.FullName, address.Label, address.Street, address.City, address.PostalCode,
				address.Country, address.Phone, address.IsDefault, address.ID, address.UserID)
		}

		var err error
		saved, err = scanAddress(row)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: address with id %d", domain.ErrNotFound, address.ID)
			}
			switch pqCode(err) {
			case pqCheckViolation:
				return fmt.Errorf("%w: invalid address label '%s'", domain.ErrValidation, address.Label)
			case pqForeignKeyViolation:
				return fmt.Errorf("%w: user with id %d", domain.ErrNotFound, address.UserID)
			case pqUniqueViolation:
				return fmt.Errorf("%w: another default address was set concurrently", domain.ErrConflict)
			}
			r.log.Errorf("Repository: Failed to save address for user %d: %v", address.UserID, err)
			return fmt.Errorf("could not save address: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.log.Infof("Repository: Address %d saved for user %d (default: %t)", saved.ID, saved.UserID, saved.IsDefault)
	return saved, nil
}

func (r *postgresAddressRepository) GetAddress(ctx context.Context, userID, id int64) (*domain.Address, error) {
	address, err := scanAddress(r.db.QueryRowContext(ctx,
		`SELECT `+addressColumns+` FROM addresses WHERE id = $1 AND user_id = $2`, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Repository: Address %d not found for user %d", id, userID)
			return nil, fmt.Errorf("%w: address with id %d", domain.ErrNotFound, id)
		}
		r.log.Errorf("Repository: Failed to get address %d: %v", id, err)
		return nil, fmt.Errorf("could not get address: %w", err)
	}
	return address, nil
}

func (r *postgresAddressRepository) ListAddresses(ctx context.Context, userID int64) ([]domain.Address, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+addressColumns+`
		FROM addresses
		WHERE user_id = $1
		ORDER BY is_default DESC, created_at DESC, id DESC`, userID)
	if err != nil {
		r.log.Errorf("Repository: Failed to list addresses for user %d: %v", userID, err)
		return nil, fmt.Errorf("could not list addresses: %w", err)
	}
	defer rows.Close()

	addresses := []domain.Address{}
	for rows.Next() {
		address, err := scanAddress(rows)
		if err != nil {
			r.log.Errorf("Repository: Failed to scan address row: %v", err)
			return nil, fmt.Errorf("error scanning address data: %w", err)
		}
		addresses = append(addresses, *address)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating addresses: %w", err)
	}
	return addresses, nil
}

func (r *postgresAddressRepository) DeleteAddress(ctx context.Context, userID, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM addresses WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		r.log.Errorf("Repository: Failed to delete address %d: %v", id, err)
		return fmt.Errorf("could not delete address: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not confirm address deletion: %w", err)
	}
	if rowsAffected == 0 {
		r.log.Warnf("Repository: Attempted to delete non-existent address %d for user %d", id, userID)
		return fmt.Errorf("%w: address with id %d", domain.ErrNotFound, id)
	}
	r.log.Infof("Repository: Address %d deleted for user %d", id, userID)
	return nil
}

func (r *postgresAddressRepository) SetDefaultAddress(ctx context.Context, userID, id int64) (*domain.Address, error) {
	var address *domain.Address
	err := withTx(ctx, r.db, r.log, func(tx *sql.Tx) error {
		if err := r.lockUserAddresses(ctx, tx, userID, id); err != nil {
			return err
		}
		var err error
		address, err = scanAddress(tx.QueryRowContext(ctx, `
			UPDATE addresses
			SET is_default = TRUE
			WHERE id = $1 AND user_id = $2
			RETURNING `+addressColumns, id, userID))
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: address with id %d", domain.ErrNotFound, id)
		}
		if err != nil {
			r.log.Errorf("Repository: Failed to mark address %d default: %v", id, err)
			return fmt.Errorf("could not set default address: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.log.Infof("Repository: Address %d is now the default for user %d", id, userID)
	return address, nil
}
