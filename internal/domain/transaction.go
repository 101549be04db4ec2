package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// checkClearingDelay is how long after deposit a check's funds become
// available. The flat next-calendar-day rule is used; the business-hours
// variant that existed in older revisions of this domain is intentionally
// not implemented.
const checkClearingDelay = 24 * time.Hour

// TransactionKind tags a ledger entry.
type TransactionKind string

const (
	KindDepositCash  TransactionKind = "deposit_cash"
	KindDepositCheck TransactionKind = "deposit_check"
	KindWithdrawCash TransactionKind = "withdraw_cash"
	KindTransferCash TransactionKind = "transfer_cash"
)

// Transaction is one entry of the account ledger, derived from a credit or
// debit event during replay. Entries are append-only and keep the order the
// events were produced in; the blocking scan and the daily transfer total
// both depend on that order.
type Transaction struct {
	Kind       TransactionKind
	Amount     decimal.Decimal
	When       time.Time
	Successful bool

	// DepositedOn is set for check deposits and drives clearing.
	DepositedOn time.Time
	// TransferredOn is set for wire transfers and drives the daily total.
	TransferredOn Date
}

// IsCredit reports whether the entry adds funds to the account.
func (t Transaction) IsCredit() bool {
	return t.Kind == KindDepositCash || t.Kind == KindDepositCheck
}

// IsDebit reports whether the entry removes funds from the account.
func (t Transaction) IsDebit() bool {
	return t.Kind == KindWithdrawCash || t.Kind == KindTransferCash
}

// HasCleared reports whether a check deposit's funds are available at the
// given instant. Non-check entries are always cleared.
func (t Transaction) HasCleared(at time.Time) bool {
	if t.Kind != KindDepositCheck {
		return true
	}
	return !at.Before(t.DepositedOn.Add(checkClearingDelay))
}

// AppliedAmount is the portion of the entry counted toward the available
// balance at the given instant. Uncleared checks contribute nothing.
func (t Transaction) AppliedAmount(at time.Time) decimal.Decimal {
	if t.Kind == KindDepositCheck && !t.HasCleared(at) {
		return decimal.Zero
	}
	return t.Amount
}

// availableBalance folds the ledger into the funds usable at the given
// instant: applied amounts of successful credits less amounts of successful
// debits.
func availableBalance(transactions []Transaction, at time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range transactions {
		if !tx.Successful {
			continue
		}
		switch {
		case tx.IsCredit():
			total = total.Add(tx.AppliedAmount(at))
		case tx.IsDebit():
			total = total.Sub(tx.Amount)
		}
	}
	return total
}

// transferredTotalOn sums the successful wire transfers booked on the given
// calendar date.
func transferredTotalOn(transactions []Transaction, day Date) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range transactions {
		if tx.Kind != KindTransferCash || !tx.Successful {
			continue
		}
		if tx.TransferredOn == day {
			total = total.Add(tx.Amount)
		}
	}
	return total
}
