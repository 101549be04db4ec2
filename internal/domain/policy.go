package domain

import "time"

// DebitApproval is the outcome of the debit authorization policy.
type DebitApproval int

const (
	Approved DebitApproval = iota
	AccountBlocked
	InsufficientFunds
	OverdraftExceeded
	DailyTransferExceeded
)

// Rejection reasons recorded on rejection events. Derived 1:1 from the
// approval outcome; the exact strings are part of the account history and
// must stay stable.
const (
	ReasonAccountBlocked        = "Account is blocked due to previous rejected transactions."
	ReasonInsufficientFunds     = "Account does not have sufficient funds."
	ReasonOverdraftExceeded     = "Amount exceeds the account overdraft limit."
	ReasonDailyTransferExceeded = "Amount exceeds the daily wire transfer limit."
)

func (d DebitApproval) String() string {
	switch d {
	case Approved:
		return "Approved"
	case AccountBlocked:
		return "AccountBlocked"
	case InsufficientFunds:
		return "InsufficientFunds"
	case OverdraftExceeded:
		return "OverdraftExceeded"
	case DailyTransferExceeded:
		return "DailyTransferExceeded"
	}
	return "Unknown"
}

// Reason returns the rejection text recorded for this outcome, or "" when the
// debit was approved.
func (d DebitApproval) Reason() string {
	switch d {
	case AccountBlocked:
		return ReasonAccountBlocked
	case InsufficientFunds:
		return ReasonInsufficientFunds
	case OverdraftExceeded:
		return ReasonOverdraftExceeded
	case DailyTransferExceeded:
		return ReasonDailyTransferExceeded
	}
	return ""
}

// debitPolicy decides whether a debit against the current ledger is allowed.
// All inputs are plain values; the policy performs no I/O.
type debitPolicy struct {
	transactions           []Transaction
	overdraftLimit         Money
	dailyWireTransferLimit Money
}

// approveWithdrawal runs the plain debit algorithm: blocked check first, then
// available funds, then the overdraft ceiling.
func (p debitPolicy) approveWithdrawal(amount Money, at time.Time) DebitApproval {
	if isBlocked(p.transactions, at) {
		return AccountBlocked
	}

	available := availableBalance(p.transactions, at)
	if available.GreaterThanOrEqual(amount.Amount) {
		return Approved
	}
	if p.overdraftLimit.Amount.IsZero() {
		return InsufficientFunds
	}
	if available.Add(p.overdraftLimit.Amount).LessThan(amount.Amount) {
		return OverdraftExceeded
	}
	return Approved
}

// approveTransfer runs the withdrawal algorithm and, when that approves,
// additionally enforces the daily wire transfer ceiling for the given date.
func (p debitPolicy) approveTransfer(amount Money, at time.Time, day Date) DebitApproval {
	if outcome := p.approveWithdrawal(amount, at); outcome != Approved {
		return outcome
	}
	total := transferredTotalOn(p.transactions, day)
	if p.dailyWireTransferLimit.Amount.LessThan(total.Add(amount.Amount)) {
		return DailyTransferExceeded
	}
	return Approved
}

// isBlocked scans the ledger in append order. A rejected debit blocks the
// account; a later successful cash deposit, or a check deposit that has
// cleared by the evaluation instant, lifts the block.
func isBlocked(transactions []Transaction, at time.Time) bool {
	blocked := false
	for _, tx := range transactions {
		switch {
		case tx.Kind == KindDepositCash && tx.Successful:
			blocked = false
		case tx.Kind == KindDepositCheck && tx.Successful && tx.HasCleared(at):
			blocked = false
		case tx.IsDebit() && !tx.Successful:
			blocked = true
		}
	}
	return blocked
}
