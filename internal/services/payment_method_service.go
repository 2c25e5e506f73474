package services

import (
	"context"
	"strings"
	"time"

	"rutabus/internal/domain"
	"rutabus/internal/domain/models"
	"rutabus/internal/repositories"
	"rutabus/internal/validate"

	"github.com/google/uuid"
)

type PaymentMethodService struct {
	Payments repositories.PaymentStore
}

// CardInput carries the raw card form; only the masked projection is ever
// persisted.
type CardInput struct {
	Number string
	Holder string
	Expiry string
	CVV    string
}

type WalletInput struct {
	Kind        models.PaymentKind
	PhoneNumber string
	AccountName string
}

func (s PaymentMethodService) SaveCard(ctx context.Context, userID string, in CardInput, isDefault bool) (models.PaymentMethod, error) {
	if err := validate.CardNumber(in.Number); err != nil {
		return models.PaymentMethod{}, err
	}
	if err := validate.CardHolderName(in.Holder); err != nil {
		return models.PaymentMethod{}, err
	}
	if err := validate.ExpiryDate(in.Expiry); err != nil {
		return models.PaymentMethod{}, err
	}
	brand := validate.CardBrandFromNumber(in.Number)
	if err := validate.CVV(in.CVV, brand); err != nil {
		return models.PaymentMethod{}, err
	}

	method := models.PaymentMethod{
		ID:           uuid.NewString(),
		UserID:       userID,
		Kind:         models.PaymentCard,
		CardLastFour: validate.LastFourDigits(in.Number),
		CardHolder:   strings.TrimSpace(in.Holder),
		CardBrand:    string(brand),
		CardExpiry:   validate.FormatExpiryDate(in.Expiry),
		IsDefault:    isDefault,
		CreatedAt:    time.Now(),
	}
	if err := s.Payments.SaveMethod(ctx, method); err != nil {
		return models.PaymentMethod{}, err
	}
	return method, nil
}

func (s PaymentMethodService) SaveWallet(ctx context.Context, userID string, in WalletInput, isDefault bool) (models.PaymentMethod, error) {
	if in.Kind != models.PaymentYape && in.Kind != models.PaymentPlin {
		return models.PaymentMethod{}, domain.ValidationError{Field: "kind", Msg: "tipo de billetera inválido"}
	}
	if err := validate.PhoneNumber(in.PhoneNumber); err != nil {
		return models.PaymentMethod{}, err
	}
	if err := validate.Name(in.AccountName); err != nil {
		return models.PaymentMethod{}, err
	}

	method := models.PaymentMethod{
		ID:          uuid.NewString(),
		UserID:      userID,
		Kind:        in.Kind,
		PhoneNumber: strings.TrimSpace(in.PhoneNumber),
		AccountName: strings.TrimSpace(in.AccountName),
		IsDefault:   isDefault,
		CreatedAt:   time.Now(),
	}
	if err := s.Payments.SaveMethod(ctx, method); err != nil {
		return models.PaymentMethod{}, err
	}
	return method, nil
}

func (s PaymentMethodService) MethodsByUser(ctx context.Context, userID string) ([]models.PaymentMethod, error) {
	return s.Payments.MethodsByUser(ctx, userID)
}

func (s PaymentMethodService) Delete(ctx context.Context, userID, id string) error {
	return s.Payments.DeleteMethod(ctx, userID, id)
}

func (s PaymentMethodService) SetDefault(ctx context.Context, userID, id string) error {
	return s.Payments.SetDefault(ctx, userID, id)
}
