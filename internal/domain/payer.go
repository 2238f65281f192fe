package domain

import (
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// PayerKind tags which of the two account stores a resolved payer came from.
type PayerKind string

const (
	PayerKindHolder          PayerKind = "holder"
	PayerKindSecondaryHolder PayerKind = "secondary_holder"
)

// Payer is an account resolved from a proximity card. The two account kinds
// are stored in separate tables but share this capability surface, so callers
// never branch on Kind except where persistence requires it.
type Payer struct {
	ID          string
	Kind        PayerKind
	CardID      string
	DisplayName string
	Balance     decimal.Decimal
	PINHash     string
	IsActive    bool
}

// ValidatePIN checks the shape of an operator-entered PIN: exactly four
// decimal digits. Shape is validated before any account lookup happens.
func ValidatePIN(pin string) error {
	if len(pin) != 4 {
		return ErrInvalidPIN
	}
	for _, c := range pin {
		if c < '0' || c > '9' {
			return ErrInvalidPIN
		}
	}
	return nil
}

// VerifyPIN compares a well-formed PIN against the stored hash.
func (p Payer) VerifyPIN(pin string) bool {
	return bcrypt.CompareHashAndPassword([]byte(p.PINHash), []byte(pin)) == nil
}

// CanPay reports whether the balance covers amount.
func (p Payer) CanPay(amount decimal.Decimal) bool {
	return p.Balance.GreaterThanOrEqual(amount)
}
