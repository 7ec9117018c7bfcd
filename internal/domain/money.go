package domain

import "github.com/shopspring/decimal"

// MoneyScale is the number of decimal places stored for every amount.
const MoneyScale = 2

// maxMoney is the first value that no longer fits NUMERIC(12,2).
var maxMoney = decimal.New(1, 12-MoneyScale)

// CheckMoney rejects amounts the ledger cannot store exactly: more than two
// decimal places, or ten or more integer digits. Sign is checked by callers.
func CheckMoney(field string, amount decimal.Decimal) error {
	if !amount.Equal(amount.Truncate(MoneyScale)) {
		return Invalid(field, "must have at most 2 decimal places")
	}
	if amount.Abs().GreaterThanOrEqual(maxMoney) {
		return Invalid(field, "must be less than 10000000000")
	}
	return nil
}
