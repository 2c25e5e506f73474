package models

import (
	"fmt"
	"time"
)

type PaymentKind string

const (
	PaymentCard PaymentKind = "CARD"
	PaymentYape PaymentKind = "YAPE"
	PaymentPlin PaymentKind = "PLIN"
)

// PaymentMethod is a saved payment instrument. Card fields apply only to
// CARD; phone fields only to YAPE/PLIN.
type PaymentMethod struct {
	ID           string      `json:"id"`
	UserID       string      `json:"user_id"`
	Kind         PaymentKind `json:"kind"`
	CardLastFour string      `json:"card_last_four,omitempty"`
	CardHolder   string      `json:"card_holder,omitempty"`
	CardBrand    string      `json:"card_brand,omitempty"`
	CardExpiry   string      `json:"card_expiry,omitempty"`
	PhoneNumber  string      `json:"phone_number,omitempty"`
	AccountName  string      `json:"account_name,omitempty"`
	IsDefault    bool        `json:"is_default"`
	CreatedAt    time.Time   `json:"created_at"`
}

// Display renders the method the way the app shows it in lists and on the
// transaction record.
func (m PaymentMethod) Display() string {
	switch m.Kind {
	case PaymentCard:
		brand := m.CardBrand
		if brand == "" {
			brand = "Tarjeta"
		}
		return fmt.Sprintf("%s •••• %s", brand, m.CardLastFour)
	case PaymentYape:
		return fmt.Sprintf("Yape %s", maskedPhone(m.PhoneNumber))
	case PaymentPlin:
		return fmt.Sprintf("Plin %s", maskedPhone(m.PhoneNumber))
	default:
		return string(m.Kind)
	}
}

func maskedPhone(phone string) string {
	if len(phone) < 3 {
		return phone
	}
	return "••• ••• " + phone[len(phone)-3:]
}

type TransactionStatus string

const (
	TxPending   TransactionStatus = "PENDING"
	TxCompleted TransactionStatus = "COMPLETED"
	TxFailed    TransactionStatus = "FAILED"
)

// Transaction records one attempted charge. TicketID stays empty until a
// ticket is issued; ErrorMessage carries the decline reason or a
// post-payment reconciliation note.
type Transaction struct {
	ID            string            `json:"id"`
	UserID        string            `json:"user_id"`
	UserName      string            `json:"user_name"`
	TicketID      string            `json:"ticket_id,omitempty"`
	MethodID      string            `json:"method_id"`
	MethodKind    PaymentKind       `json:"method_kind"`
	MethodDisplay string            `json:"method_display"`
	AmountCents   int64             `json:"amount_cents"`
	Status        TransactionStatus `json:"status"`
	Origin        string            `json:"origin"`
	Destination   string            `json:"destination"`
	Description   string            `json:"description"`
	ErrorMessage  string            `json:"error_message,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
}
