package models

import (
	"time"

	"github.com/punchamoorthee/bankstream/internal/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest is the payload for opening an account. ID is optional;
// one is generated when absent.
type CreateAccountRequest struct {
	ID           string `json:"id,omitempty"`
	CustomerName string `json:"customer_name"`
	Currency     string `json:"currency"`
}

// AmountRequest is the payload for limit changes, deposits, withdrawals and
// transfers. The currency must match the account's.
type AmountRequest struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// TransactionView is one ledger entry in an account response.
type TransactionView struct {
	Kind       string          `json:"kind"`
	Amount     decimal.Decimal `json:"amount"`
	When       time.Time       `json:"when"`
	Successful bool            `json:"successful"`
	Cleared    *bool           `json:"cleared,omitempty"`
}

// AccountResponse is the reconstructed account state returned by queries and
// echoed after commands.
type AccountResponse struct {
	ID                     string            `json:"id"`
	CustomerName           string            `json:"customer_name"`
	Currency               string            `json:"currency"`
	Balance                decimal.Decimal   `json:"balance"`
	OverdraftLimit         decimal.Decimal   `json:"overdraft_limit"`
	DailyWireTransferLimit decimal.Decimal   `json:"daily_wire_transfer_limit"`
	Blocked                bool              `json:"blocked"`
	Transactions           []TransactionView `json:"transactions"`
}

// DebitResponse reports the outcome of a withdrawal or transfer. A rejected
// debit is a processed command, not a transport error.
type DebitResponse struct {
	Status  string          `json:"status"`
	Reason  string          `json:"reason,omitempty"`
	Account AccountResponse `json:"account"`
}

// NewAccountResponse maps the aggregate to its wire view.
func NewAccountResponse(a *domain.Account) AccountResponse {
	now := time.Now().UTC()
	ledger := a.Transactions()
	transactions := make([]TransactionView, 0, len(ledger))
	for _, tx := range ledger {
		view := TransactionView{
			Kind:       string(tx.Kind),
			Amount:     tx.Amount,
			When:       tx.When,
			Successful: tx.Successful,
		}
		if tx.Kind == domain.KindDepositCheck {
			cleared := tx.HasCleared(now)
			view.Cleared = &cleared
		}
		transactions = append(transactions, view)
	}
	return AccountResponse{
		ID:                     a.ID().String(),
		CustomerName:           a.CustomerName(),
		Currency:               a.Currency(),
		Balance:                a.Balance().Amount,
		OverdraftLimit:         a.OverdraftLimit().Amount,
		DailyWireTransferLimit: a.DailyWireTransferLimit().Amount,
		Blocked:                a.IsBlocked(),
		Transactions:           transactions,
	}
}
