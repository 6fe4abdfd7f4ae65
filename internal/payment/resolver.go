package payment

import (
	"errors"

	"github.com/google/uuid"

	"vehicle-ticket-service/internal/domain/ticket"
)

var ErrAccountNotFound = errors.New("payment account not found")

// ResolvedAccount is what the operator is shown when collecting an
// electronic transfer.
type ResolvedAccount struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"display_name"`
	Identifier  string    `json:"identifier"`
	QRAssetRef  string    `json:"qr_asset_ref,omitempty"`
}

// Resolve looks ref up among the active accounts. It never picks a default.
func Resolve(ref *uuid.UUID, accounts []ticket.PaymentAccount) (ResolvedAccount, error) {
	if ref == nil || *ref == uuid.Nil {
		return ResolvedAccount{}, ErrAccountNotFound
	}
	for _, a := range accounts {
		if a.ID != *ref || !a.Active {
			continue
		}
		return ResolvedAccount{
			ID:          a.ID,
			DisplayName: a.AccountName,
			Identifier:  a.Identifier,
			QRAssetRef:  a.QRAssetRef,
		}, nil
	}
	return ResolvedAccount{}, ErrAccountNotFound
}

// RequireForMode fails closed: an electronic transfer without a resolvable
// account is a validation error. Other modes resolve to nothing.
func RequireForMode(mode ticket.PaymentMode, ref *uuid.UUID, accounts []ticket.PaymentAccount) (*ResolvedAccount, error) {
	if mode != ticket.PaymentElectronicTransfer {
		return nil, nil
	}
	if len(accounts) == 0 {
		return nil, ticket.NewValidationError("no payment account available for electronic transfer", "payment_account_ref")
	}
	acc, err := Resolve(ref, accounts)
	if err != nil {
		return nil, ticket.NewValidationError("select a valid payment account", "payment_account_ref")
	}
	return &acc, nil
}
