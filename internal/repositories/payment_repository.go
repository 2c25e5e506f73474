package repositories

import (
	"context"
	"database/sql"
	"errors"

	"rutabus/internal/domain"
	"rutabus/internal/domain/models"
)

type PaymentRepository struct {
	DB *sql.DB
}

const methodColumns = `id, user_id, kind, card_last_four, card_holder, card_brand, card_expiry, phone_number, account_name, is_default, created_at`

func scanMethod(row interface{ Scan(...any) error }) (models.PaymentMethod, error) {
	var m models.PaymentMethod
	err := row.Scan(
		&m.ID,
		&m.UserID,
		&m.Kind,
		&m.CardLastFour,
		&m.CardHolder,
		&m.CardBrand,
		&m.CardExpiry,
		&m.PhoneNumber,
		&m.AccountName,
		&m.IsDefault,
		&m.CreatedAt,
	)
	return m, err
}

func (r PaymentRepository) SaveMethod(ctx context.Context, method models.PaymentMethod) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	// A method saved as default displaces any existing default.
	if method.IsDefault {
		if _, err := tx.ExecContext(ctx, `UPDATE payment_methods SET is_default=0 WHERE user_id=?`, method.UserID); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO payment_methods (id, user_id, kind, card_last_four, card_holder, card_brand, card_expiry, phone_number, account_name, is_default)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		method.ID, method.UserID, method.Kind,
		method.CardLastFour, method.CardHolder, method.CardBrand, method.CardExpiry,
		method.PhoneNumber, method.AccountName, method.IsDefault); err != nil {
		return err
	}
	return tx.Commit()
}

func (r PaymentRepository) MethodsByUser(ctx context.Context, userID string) ([]models.PaymentMethod, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+methodColumns+` FROM payment_methods WHERE user_id=? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.PaymentMethod{}
	for rows.Next() {
		m, err := scanMethod(rows)
		if err != nil {
			return out, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r PaymentRepository) MethodByID(ctx context.Context, id string) (models.PaymentMethod, error) {
	m, err := scanMethod(r.DB.QueryRowContext(ctx, `SELECT `+methodColumns+` FROM payment_methods WHERE id=?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.PaymentMethod{}, domain.NotFoundError{Resource: "método de pago", Err: err}
		}
		return models.PaymentMethod{}, err
	}
	return m, nil
}

func (r PaymentRepository) DeleteMethod(ctx context.Context, userID, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM payment_methods WHERE id=? AND user_id=?`, id, userID)
	if err != nil {
		return err
	}
	return requireRowAffected(res, "método de pago")
}

// SetDefault clears the user's previous default and flags the given method
// in one transaction so the at-most-one-default invariant always holds.
func (r PaymentRepository) SetDefault(ctx context.Context, userID, id string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `UPDATE payment_methods SET is_default=0 WHERE user_id=? AND id<>?`, userID, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `UPDATE payment_methods SET is_default=1 WHERE id=? AND user_id=?`, id, userID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// Either the method does not exist or it was already default;
		// disambiguate before reporting.
		var exists int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM payment_methods WHERE id=? AND user_id=?`, id, userID).Scan(&exists); err != nil {
			return err
		}
		if exists == 0 {
			return domain.NotFoundError{Resource: "método de pago"}
		}
	}
	return tx.Commit()
}

const transactionColumns = `id, user_id, user_name, ticket_id, method_id, method_kind, method_display, amount_cents, status, origin, destination, description, error_message, created_at`

func scanTransaction(row interface{ Scan(...any) error }) (models.Transaction, error) {
	var t models.Transaction
	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.UserName,
		&t.TicketID,
		&t.MethodID,
		&t.MethodKind,
		&t.MethodDisplay,
		&t.AmountCents,
		&t.Status,
		&t.Origin,
		&t.Destination,
		&t.Description,
		&t.ErrorMessage,
		&t.CreatedAt,
	)
	return t, err
}

func (r PaymentRepository) CreateTransaction(ctx context.Context, tx models.Transaction) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO transactions (id, user_id, user_name, ticket_id, method_id, method_kind, method_display, amount_cents, status, origin, destination, description, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.UserID, tx.UserName, tx.TicketID,
		tx.MethodID, tx.MethodKind, tx.MethodDisplay,
		tx.AmountCents, tx.Status, tx.Origin, tx.Destination,
		tx.Description, tx.ErrorMessage)
	return err
}

func (r PaymentRepository) UpdateTransactionStatus(ctx context.Context, id string, status models.TransactionStatus, errorMessage string) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE transactions SET status=?, error_message=? WHERE id=?`, status, errorMessage, id)
	if err != nil {
		return err
	}
	return requireRowAffected(res, "transacción")
}

func (r PaymentRepository) SetTransactionTicket(ctx context.Context, id, ticketID string) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE transactions SET ticket_id=? WHERE id=?`, ticketID, id)
	if err != nil {
		return err
	}
	return requireRowAffected(res, "transacción")
}

func (r PaymentRepository) TransactionsByUser(ctx context.Context, userID string) ([]models.Transaction, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE user_id=? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTransactions(rows)
}

func (r PaymentRepository) AllTransactions(ctx context.Context) ([]models.Transaction, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+transactionColumns+` FROM transactions ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTransactions(rows)
}

func collectTransactions(rows *sql.Rows) ([]models.Transaction, error) {
	out := []models.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return out, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r PaymentRepository) TransactionByID(ctx context.Context, id string) (models.Transaction, error) {
	t, err := scanTransaction(r.DB.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id=?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Transaction{}, domain.NotFoundError{Resource: "transacción", Err: err}
		}
		return models.Transaction{}, err
	}
	return t, nil
}
