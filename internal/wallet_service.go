package internal

import (
	"evgate/models"
	"evgate/utility"
)

// ErrInsufficientBalance is surfaced distinctly from a generic authorization
// failure so the station reply and the operator UI can message it.
var ErrInsufficientBalance = utility.Err("insufficient balance")

type WalletAuth struct {
	UserId   string `json:"user_id"`
	Username string `json:"username"`
	Balance  int64  `json:"balance"`
}

// WalletService authorizes a credential and reserves the estimated session
// cost against the user's balance. EstimatedCost is in minor currency units.
type WalletService interface {
	AuthorizeAndReserve(idTag string, estimatedCost int64) (*WalletAuth, error)
}

// PricingService resolves a station's tariff at transaction-start time.
// The returned tariff is pinned for the transaction's lifetime.
type PricingService interface {
	GetTariff(stationId string) (*models.Tariff, error)
}
