package repositories

import (
	"context"
	"testing"

	"rutabus/internal/domain"
	"rutabus/internal/domain/models"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestSaveMethodDefaultDisplacesPrevious(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE payment_methods SET is_default=0 WHERE user_id=\\?").
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO payment_methods").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo := PaymentRepository{DB: db}
	method := models.PaymentMethod{
		ID:           "pm1",
		UserID:       "u1",
		Kind:         models.PaymentCard,
		CardLastFour: "1111",
		IsDefault:    true,
	}
	if err := repo.SaveMethod(context.Background(), method); err != nil {
		t.Fatalf("save error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSaveMethodNonDefaultSkipsDisplacement(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO payment_methods").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo := PaymentRepository{DB: db}
	method := models.PaymentMethod{ID: "pm2", UserID: "u1", Kind: models.PaymentYape, PhoneNumber: "987654321"}
	if err := repo.SaveMethod(context.Background(), method); err != nil {
		t.Fatalf("save error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSetDefaultClearsOthersFirst(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE payment_methods SET is_default=0 WHERE user_id=\\? AND id<>\\?").
		WithArgs("u1", "pm2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE payment_methods SET is_default=1 WHERE id=\\? AND user_id=\\?").
		WithArgs("pm2", "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo := PaymentRepository{DB: db}
	if err := repo.SetDefault(context.Background(), "u1", "pm2"); err != nil {
		t.Fatalf("set default error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSetDefaultMissingMethod(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE payment_methods SET is_default=0 WHERE user_id=\\? AND id<>\\?").
		WithArgs("u1", "ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("UPDATE payment_methods SET is_default=1 WHERE id=\\? AND user_id=\\?").
		WithArgs("ghost", "u1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM payment_methods WHERE id=\\? AND user_id=\\?").
		WithArgs("ghost", "u1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectRollback()

	repo := PaymentRepository{DB: db}
	if err := repo.SetDefault(context.Background(), "u1", "ghost"); !domain.IsNotFound(err) {
		t.Fatalf("got %v, want not found", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSetDefaultAlreadyDefaultIsIdempotent(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE payment_methods SET is_default=0 WHERE user_id=\\? AND id<>\\?").
		WithArgs("u1", "pm1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("UPDATE payment_methods SET is_default=1 WHERE id=\\? AND user_id=\\?").
		WithArgs("pm1", "u1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM payment_methods WHERE id=\\? AND user_id=\\?").
		WithArgs("pm1", "u1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectCommit()

	repo := PaymentRepository{DB: db}
	if err := repo.SetDefault(context.Background(), "u1", "pm1"); err != nil {
		t.Fatalf("set default error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateTransactionStatusMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("UPDATE transactions SET status=\\?, error_message=\\? WHERE id=\\?").
		WithArgs("FAILED", "rechazado", "ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := PaymentRepository{DB: db}
	if err := repo.UpdateTransactionStatus(context.Background(), "ghost", models.TxFailed, "rechazado"); !domain.IsNotFound(err) {
		t.Fatalf("got %v, want not found", err)
	}
}
