package domain

import "github.com/shopspring/decimal"

// MoneyPlaces is the number of decimal places balances are kept at.
const MoneyPlaces = 2

// DefaultInitialGrant is credited to every wallet on registration.
var DefaultInitialGrant = decimal.RequireFromString("100.00")

// RoundMoney rounds an amount to MoneyPlaces.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// Receipt reports the outcome of a balance mutation: the user as it stands
// afterwards and the ledger entry that recorded the change.
type Receipt struct {
	User        User
	Transaction Transaction
}
