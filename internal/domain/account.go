package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const maxCustomerNameLength = 30

// Account is the event-sourced aggregate. State is derived entirely from the
// event history; commands validate input, consult the debit policy, raise
// exactly one event and fold it immediately so later commands in the same
// session observe the update. The aggregate performs no I/O.
type Account struct {
	id                     uuid.UUID
	customerName           string
	currency               string
	overdraftLimit         Money
	dailyWireTransferLimit Money
	transactions           []Transaction

	applied     map[uuid.UUID]struct{}
	uncommitted []Event
	created     bool

	now func() time.Time
}

// NewAccount opens an account, raising AccountCreated. Name and currency are
// validated up front; creation failures are input errors, never events.
func NewAccount(id uuid.UUID, customerName, currency string) (*Account, error) {
	name := strings.TrimSpace(customerName)
	if name == "" {
		return nil, ErrBlankCustomerName
	}
	if len(name) > maxCustomerNameLength {
		return nil, ErrCustomerNameTooLong
	}
	code, err := normalizeCurrency(currency)
	if err != nil {
		return nil, err
	}

	a := newEmptyAccount()
	evt := AccountCreated{
		EventBase:    newEventBase(id, a.now()),
		CustomerName: name,
		Currency:     code,
	}
	if err := a.raise(evt); err != nil {
		return nil, err
	}
	return a, nil
}

// Replay folds an ordered event history into an Account. Events are applied
// strictly in input order, duplicates (by event identifier) are skipped, and
// the first event must be AccountCreated.
func Replay(events []Event) (*Account, error) {
	if len(events) == 0 {
		return nil, ErrNotInitialized
	}
	a := newEmptyAccount()
	for _, evt := range events {
		if err := a.apply(evt); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func newEmptyAccount() *Account {
	return &Account{
		applied: make(map[uuid.UUID]struct{}),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// raise applies the event to local state and adds it to the uncommitted
// buffer. Both happen together; a command never leaves the two out of sync.
func (a *Account) raise(evt Event) error {
	if err := a.apply(evt); err != nil {
		return err
	}
	a.uncommitted = append(a.uncommitted, evt)
	return nil
}

// apply dispatches an event to its state transition. The switch is
// exhaustive over the closed variant set; anything else is a fatal schema
// mismatch.
func (a *Account) apply(evt Event) error {
	if _, ok := a.applied[evt.EventID()]; ok {
		return nil
	}

	switch evt.(type) {
	case AccountCreated, OverdraftLimitChanged, DailyWireTransferLimitChanged,
		CashDeposited, CheckDeposited, CashWithdrawn, CashWithdrawalRejected,
		CashTransferred, CashTransferRejected:
	default:
		return &UnsupportedEventError{Type: evt.EventType()}
	}

	if !a.created {
		if _, ok := evt.(AccountCreated); !ok {
			return ErrNotInitialized
		}
	}

	switch e := evt.(type) {
	case AccountCreated:
		if a.created {
			return ErrAlreadyInitialized
		}
		a.id = e.AccountID
		a.customerName = e.CustomerName
		a.currency = e.Currency
		a.overdraftLimit = Money{Currency: e.Currency}
		a.dailyWireTransferLimit = Money{Currency: e.Currency}
		a.created = true
	case OverdraftLimitChanged:
		a.overdraftLimit = e.Limit
	case DailyWireTransferLimitChanged:
		a.dailyWireTransferLimit = e.Limit
	case CashDeposited:
		a.transactions = append(a.transactions, Transaction{
			Kind:       KindDepositCash,
			Amount:     e.Amount.Amount,
			When:       e.Timestamp,
			Successful: true,
		})
	case CheckDeposited:
		a.transactions = append(a.transactions, Transaction{
			Kind:        KindDepositCheck,
			Amount:      e.Amount.Amount,
			When:        e.Timestamp,
			Successful:  true,
			DepositedOn: e.DepositedOn,
		})
	case CashWithdrawn:
		a.transactions = append(a.transactions, Transaction{
			Kind:       KindWithdrawCash,
			Amount:     e.Amount.Amount,
			When:       e.Timestamp,
			Successful: true,
		})
	case CashWithdrawalRejected:
		a.transactions = append(a.transactions, Transaction{
			Kind:       KindWithdrawCash,
			Amount:     e.Amount.Amount,
			When:       e.Timestamp,
			Successful: false,
		})
	case CashTransferred:
		a.transactions = append(a.transactions, Transaction{
			Kind:          KindTransferCash,
			Amount:        e.Amount.Amount,
			When:          e.Timestamp,
			Successful:    true,
			TransferredOn: e.TransferredOn,
		})
	case CashTransferRejected:
		a.transactions = append(a.transactions, Transaction{
			Kind:       KindTransferCash,
			Amount:     e.Amount.Amount,
			When:       e.Timestamp,
			Successful: false,
		})
	}

	a.applied[evt.EventID()] = struct{}{}
	return nil
}

// checkLimit validates a limit change: non-negative and in the account
// currency.
func (a *Account) checkLimit(limit Money) error {
	if !a.created {
		return ErrNotInitialized
	}
	if limit.IsNegative() {
		return ErrNegativeLimit
	}
	if limit.Currency != a.currency {
		return ErrCurrencyMismatch
	}
	return nil
}

// checkAmount validates a transaction amount: non-negative and in the
// account currency.
func (a *Account) checkAmount(amount Money) error {
	if !a.created {
		return ErrNotInitialized
	}
	if amount.IsNegative() {
		return ErrNegativeAmount
	}
	if amount.Currency != a.currency {
		return ErrCurrencyMismatch
	}
	return nil
}

// SetOverdraftLimit changes the overdraft ceiling.
func (a *Account) SetOverdraftLimit(limit Money) error {
	if err := a.checkLimit(limit); err != nil {
		return err
	}
	return a.raise(OverdraftLimitChanged{
		EventBase: newEventBase(a.id, a.now()),
		Limit:     limit,
	})
}

// SetDailyWireTransferLimit changes the daily wire transfer ceiling.
func (a *Account) SetDailyWireTransferLimit(limit Money) error {
	if err := a.checkLimit(limit); err != nil {
		return err
	}
	return a.raise(DailyWireTransferLimitChanged{
		EventBase: newEventBase(a.id, a.now()),
		Limit:     limit,
	})
}

// DepositCash credits the account immediately.
func (a *Account) DepositCash(amount Money) error {
	if err := a.checkAmount(amount); err != nil {
		return err
	}
	return a.raise(CashDeposited{
		EventBase: newEventBase(a.id, a.now()),
		Amount:    amount,
	})
}

// DepositCheck credits the account once the clearing delay has elapsed.
func (a *Account) DepositCheck(amount Money) error {
	if err := a.checkAmount(amount); err != nil {
		return err
	}
	at := a.now()
	return a.raise(CheckDeposited{
		EventBase:   newEventBase(a.id, at),
		Amount:      amount,
		DepositedOn: at.UTC(),
	})
}

// WithdrawCash debits the account if the policy approves. A refused debit is
// not an error: the rejection is raised as an event and becomes part of the
// history. The approval value is meaningful only when the returned error is
// nil.
func (a *Account) WithdrawCash(amount Money) (DebitApproval, error) {
	if err := a.checkAmount(amount); err != nil {
		return 0, err
	}

	at := a.now()
	outcome := a.policy().approveWithdrawal(amount, at)
	if outcome != Approved {
		return outcome, a.raise(CashWithdrawalRejected{
			EventBase: newEventBase(a.id, at),
			Amount:    amount,
			Reason:    outcome.Reason(),
		})
	}
	return Approved, a.raise(CashWithdrawn{
		EventBase: newEventBase(a.id, at),
		Amount:    amount,
	})
}

// TransferCash wires funds out of the account if the policy approves,
// including the daily transfer ceiling for today's date. The approval value
// is meaningful only when the returned error is nil.
func (a *Account) TransferCash(amount Money) (DebitApproval, error) {
	if err := a.checkAmount(amount); err != nil {
		return 0, err
	}

	at := a.now()
	today := DateOf(at)
	outcome := a.policy().approveTransfer(amount, at, today)
	if outcome != Approved {
		return outcome, a.raise(CashTransferRejected{
			EventBase: newEventBase(a.id, at),
			Amount:    amount,
			Reason:    outcome.Reason(),
		})
	}
	return Approved, a.raise(CashTransferred{
		EventBase:     newEventBase(a.id, at),
		Amount:        amount,
		TransferredOn: today,
	})
}

func (a *Account) policy() debitPolicy {
	return debitPolicy{
		transactions:           a.transactions,
		overdraftLimit:         a.overdraftLimit,
		dailyWireTransferLimit: a.dailyWireTransferLimit,
	}
}

// UncommittedEvents returns the events raised since the last clear, in order.
// The caller persists them and then calls ClearUncommittedEvents.
func (a *Account) UncommittedEvents() []Event {
	out := make([]Event, len(a.uncommitted))
	copy(out, a.uncommitted)
	return out
}

// ClearUncommittedEvents empties the uncommitted buffer after persistence.
func (a *Account) ClearUncommittedEvents() {
	a.uncommitted = nil
}

func (a *Account) ID() uuid.UUID        { return a.id }
func (a *Account) CustomerName() string { return a.customerName }
func (a *Account) Currency() string     { return a.currency }

// OverdraftLimit is the current overdraft ceiling.
func (a *Account) OverdraftLimit() Money { return a.overdraftLimit }

// DailyWireTransferLimit is the current daily transfer ceiling.
func (a *Account) DailyWireTransferLimit() Money { return a.dailyWireTransferLimit }

// Transactions returns a copy of the ledger in append order.
func (a *Account) Transactions() []Transaction {
	out := make([]Transaction, len(a.transactions))
	copy(out, a.transactions)
	return out
}

// Balance is the currently available balance, with uncleared checks counted
// as zero.
func (a *Account) Balance() Money {
	return Money{Amount: availableBalance(a.transactions, a.now()), Currency: a.currency}
}

// IsBlocked reports whether debits are currently refused because of a prior
// rejection that no qualifying credit has cleared.
func (a *Account) IsBlocked() bool {
	return isBlocked(a.transactions, a.now())
}
