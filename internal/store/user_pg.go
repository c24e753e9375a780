package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prospectly/billing-service/pkg/pg"
)

// PgUserStore implements UserStore on PostgreSQL.
type PgUserStore struct {
	db *pgxpool.Pool
}

func NewPgUserStore(db *pgxpool.Pool) *PgUserStore {
	return &PgUserStore{db: db}
}

const userColumns = `
	id, email, auth_id, first_name, last_name, phone, status,
	billing_customer_id, billing_subscription_id, billing_schedule_id, checkout_session_id,
	plan, subscription_status, subscription_type, founding_member,
	promo_active, promo_type, promo_expires_at,
	billing_name, billing_email, billing_phone, billing_address,
	current_period_start, current_period_end, cancel_at_period_end, trial_end,
	created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.Email, &u.AuthID, &u.FirstName, &u.LastName, &u.Phone, &u.Status,
		&u.BillingCustomerID, &u.BillingSubscriptionID, &u.BillingScheduleID, &u.CheckoutSessionID,
		&u.Plan, &u.SubscriptionStatus, &u.SubscriptionType, &u.FoundingMember,
		&u.PromoActive, &u.PromoType, &u.PromoExpiresAt,
		&u.BillingName, &u.BillingEmail, &u.BillingPhone, &u.BillingAddress,
		&u.CurrentPeriodStart, &u.CurrentPeriodEnd, &u.CancelAtPeriodEnd, &u.TrialEnd,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &u, nil
}

func (s *PgUserStore) findBy(ctx context.Context, column string, value any) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s = $1`, userColumns, column)
	return scanUser(s.db.QueryRow(ctx, query, value))
}

func (s *PgUserStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	return s.findBy(ctx, "email", email)
}

func (s *PgUserStore) FindByCustomerID(ctx context.Context, customerID string) (*User, error) {
	return s.findBy(ctx, "billing_customer_id", customerID)
}

func (s *PgUserStore) FindBySubscriptionID(ctx context.Context, subscriptionID string) (*User, error) {
	return s.findBy(ctx, "billing_subscription_id", subscriptionID)
}

func (s *PgUserStore) FindByScheduleID(ctx context.Context, scheduleID string) (*User, error) {
	return s.findBy(ctx, "billing_schedule_id", scheduleID)
}

func (s *PgUserStore) Create(ctx context.Context, u *User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}

	query := `
		INSERT INTO users (
			id, email, auth_id, first_name, last_name, phone, status,
			billing_customer_id, billing_subscription_id, billing_schedule_id, checkout_session_id,
			plan, subscription_status, subscription_type, founding_member,
			promo_active, promo_type, promo_expires_at,
			billing_name, billing_email, billing_phone, billing_address,
			current_period_start, current_period_end, cancel_at_period_end, trial_end
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			$8, $9, $10, $11,
			$12, $13, $14, $15,
			$16, $17, $18,
			$19, $20, $21, $22,
			$23, $24, $25, $26
		)
		RETURNING created_at, updated_at
	`

	err := s.db.QueryRow(
		ctx, query,
		u.ID, u.Email, u.AuthID, u.FirstName, u.LastName, u.Phone, u.Status,
		u.BillingCustomerID, u.BillingSubscriptionID, u.BillingScheduleID, u.CheckoutSessionID,
		u.Plan, u.SubscriptionStatus, u.SubscriptionType, u.FoundingMember,
		u.PromoActive, u.PromoType, u.PromoExpiresAt,
		u.BillingName, u.BillingEmail, u.BillingPhone, u.BillingAddress,
		u.CurrentPeriodStart, u.CurrentPeriodEnd, u.CancelAtPeriodEnd, u.TrialEnd,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (s *PgUserStore) Update(ctx context.Context, u *User) error {
	query := `
		UPDATE users SET
			email = $2, auth_id = $3, first_name = $4, last_name = $5, phone = $6, status = $7,
			billing_customer_id = $8, billing_subscription_id = $9, billing_schedule_id = $10, checkout_session_id = $11,
			plan = $12, subscription_status = $13, subscription_type = $14, founding_member = $15,
			promo_active = $16, promo_type = $17, promo_expires_at = $18,
			billing_name = $19, billing_email = $20, billing_phone = $21, billing_address = $22,
			current_period_start = $23, current_period_end = $24, cancel_at_period_end = $25, trial_end = $26,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := s.db.QueryRow(
		ctx, query,
		u.ID, u.Email, u.AuthID, u.FirstName, u.LastName, u.Phone, u.Status,
		u.BillingCustomerID, u.BillingSubscriptionID, u.BillingScheduleID, u.CheckoutSessionID,
		u.Plan, u.SubscriptionStatus, u.SubscriptionType, u.FoundingMember,
		u.PromoActive, u.PromoType, u.PromoExpiresAt,
		u.BillingName, u.BillingEmail, u.BillingPhone, u.BillingAddress,
		u.CurrentPeriodStart, u.CurrentPeriodEnd, u.CancelAtPeriodEnd, u.TrialEnd,
	).Scan(&u.UpdatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to update user: %w", err)
	}

	return nil
}

// UpdateBillingContact touches only billing-contact columns; account-contact
// fields (first_name/last_name/phone) are left untouched.
func (s *PgUserStore) UpdateBillingContact(ctx context.Context, customerID string, contact BillingContact) (int64, error) {
	query := `
		UPDATE users SET
			billing_name = COALESCE($2, billing_name),
			billing_email = COALESCE($3, billing_email),
			billing_phone = COALESCE($4, billing_phone),
			billing_address = COALESCE($5, billing_address),
			updated_at = NOW()
		WHERE billing_customer_id = $1
	`

	tag, err := s.db.Exec(ctx, query, customerID, contact.Name, contact.Email, contact.Phone, contact.Address)
	if err != nil {
		return 0, fmt.Errorf("failed to update billing contact: %w", err)
	}

	return tag.RowsAffected(), nil
}
