package domain

import (
	"time"

	"github.com/google/uuid"
)

// Event type names as persisted in the event store. The loader selects the
// decoder by this name, so the values are part of the wire contract.
const (
	TypeAccountCreated                = "accountcreated"
	TypeOverdraftLimitChanged         = "overdraftlimitchanged"
	TypeDailyWireTransferLimitChanged = "dailywiretransferlimitchanged"
	TypeCashDeposited                 = "cashdeposited"
	TypeCheckDeposited                = "checkdeposited"
	TypeCashWithdrawn                 = "cashwithdrawn"
	TypeCashWithdrawalRejected        = "cashwithdrawalrejected"
	TypeCashTransferred               = "cashtransferred"
	TypeCashTransferRejected          = "cashtransferrejected"
)

// Event is one immutable fact about an account. The set of variants is
// closed; the replay engine dispatches on the concrete type and fails on
// anything it does not recognize.
type Event interface {
	// EventID is the unique identifier used for idempotent replay.
	EventID() uuid.UUID
	// AggregateID is the owning account.
	AggregateID() uuid.UUID
	// OccurredAt is the UTC instant the event was produced.
	OccurredAt() time.Time
	// EventType is the stable lower-cased wire name.
	EventType() string
}

// EventBase carries the fields common to every variant.
type EventBase struct {
	ID        uuid.UUID `json:"id"`
	AccountID uuid.UUID `json:"account_id"`
	Timestamp time.Time `json:"timestamp_utc"`
}

func (e EventBase) EventID() uuid.UUID     { return e.ID }
func (e EventBase) AggregateID() uuid.UUID { return e.AccountID }
func (e EventBase) OccurredAt() time.Time  { return e.Timestamp }

func newEventBase(accountID uuid.UUID, at time.Time) EventBase {
	return EventBase{
		ID:        uuid.New(),
		AccountID: accountID,
		Timestamp: at.UTC(),
	}
}

// AccountCreated records the opening of an account.
type AccountCreated struct {
	EventBase
	CustomerName string `json:"customer_name"`
	Currency     string `json:"currency"`
}

func (AccountCreated) EventType() string { return TypeAccountCreated }

// OverdraftLimitChanged records a new overdraft ceiling.
type OverdraftLimitChanged struct {
	EventBase
	Limit Money `json:"limit"`
}

func (OverdraftLimitChanged) EventType() string { return TypeOverdraftLimitChanged }

// DailyWireTransferLimitChanged records a new daily transfer ceiling.
type DailyWireTransferLimitChanged struct {
	EventBase
	Limit Money `json:"limit"`
}

func (DailyWireTransferLimitChanged) EventType() string { return TypeDailyWireTransferLimitChanged }

// CashDeposited records an immediately available credit.
type CashDeposited struct {
	EventBase
	Amount Money `json:"amount"`
}

func (CashDeposited) EventType() string { return TypeCashDeposited }

// CheckDeposited records a credit that becomes available after the clearing
// delay.
type CheckDeposited struct {
	EventBase
	Amount      Money     `json:"amount"`
	DepositedOn time.Time `json:"deposited_on"`
}

func (CheckDeposited) EventType() string { return TypeCheckDeposited }

// CashWithdrawn records a successful debit.
type CashWithdrawn struct {
	EventBase
	Amount Money `json:"amount"`
}

func (CashWithdrawn) EventType() string { return TypeCashWithdrawn }

// CashWithdrawalRejected records a debit that was refused. Rejections are
// facts: they stay in the history and feed the blocking determination.
type CashWithdrawalRejected struct {
	EventBase
	Amount Money  `json:"amount"`
	Reason string `json:"reason"`
}

func (CashWithdrawalRejected) EventType() string { return TypeCashWithdrawalRejected }

// CashTransferred records a successful wire transfer debit.
type CashTransferred struct {
	EventBase
	Amount        Money `json:"amount"`
	TransferredOn Date  `json:"transferred_on"`
}

func (CashTransferred) EventType() string { return TypeCashTransferred }

// CashTransferRejected records a wire transfer that was refused.
type CashTransferRejected struct {
	EventBase
	Amount Money  `json:"amount"`
	Reason string `json:"reason"`
}

func (CashTransferRejected) EventType() string { return TypeCashTransferRejected }
