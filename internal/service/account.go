package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/punchamoorthee/bankstream/internal/domain"
)

var (
	// ErrAccountNotFound indicates a command or query against an account
	// whose stream has no events.
	ErrAccountNotFound = errors.New("account not found")
	// ErrAccountExists indicates a creation against a non-empty stream.
	ErrAccountExists = errors.New("account already exists")
)

// Metrics
var commandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "bank_commands_total",
	Help: "Account commands processed, labeled by command and outcome",
}, []string{"command", "outcome"})

const (
	outcomeAccepted = "accepted"
	outcomeRejected = "rejected"
	outcomeInvalid  = "invalid"
	outcomeError    = "error"
)

// EventStore is the persistence contract the dispatch layer consumes. The
// Postgres store implements it; tests use the in-memory one.
type EventStore interface {
	Load(ctx context.Context, accountID uuid.UUID) ([]domain.Event, int64, error)
	Append(ctx context.Context, accountID uuid.UUID, events []domain.Event, expectedRevision int64) error
}

// AccountService routes commands to the account aggregate: load the stream,
// replay it, invoke the command, append the produced events at the expected
// revision. Concurrency conflicts from the store are returned to the caller
// unretried; the caller reloads and reissues the command.
type AccountService struct {
	store EventStore
}

func NewAccountService(store EventStore) *AccountService {
	return &AccountService{store: store}
}

// DebitResult reports the outcome of a withdrawal or transfer command. A
// rejected debit is a successfully processed command whose rejection is now
// part of the account history.
type DebitResult struct {
	Account  *domain.Account
	Approval domain.DebitApproval
}

// Rejected reports whether the debit was refused by policy.
func (r DebitResult) Rejected() bool {
	return r.Approval != domain.Approved
}

// CreateAccount opens a new account stream.
func (s *AccountService) CreateAccount(ctx context.Context, id uuid.UUID, customerName, currency string) (*domain.Account, error) {
	const command = "create_account"

	existing, revision, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, s.fail(command, err)
	}
	if len(existing) > 0 {
		commandsTotal.WithLabelValues(command, outcomeInvalid).Inc()
		return nil, ErrAccountExists
	}

	account, err := domain.NewAccount(id, customerName, currency)
	if err != nil {
		commandsTotal.WithLabelValues(command, outcomeInvalid).Inc()
		return nil, err
	}
	if err := s.commit(ctx, account, revision); err != nil {
		return nil, s.fail(command, err)
	}
	commandsTotal.WithLabelValues(command, outcomeAccepted).Inc()
	return account, nil
}

// GetAccount replays the account's history into its current state.
func (s *AccountService) GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	account, _, err := s.load(ctx, id)
	return account, err
}

// SetOverdraftLimit changes the overdraft ceiling.
func (s *AccountService) SetOverdraftLimit(ctx context.Context, id uuid.UUID, limit domain.Money) (*domain.Account, error) {
	return s.execute(ctx, "set_overdraft_limit", id, func(a *domain.Account) error {
		return a.SetOverdraftLimit(limit)
	})
}

// SetDailyWireTransferLimit changes the daily wire transfer ceiling.
func (s *AccountService) SetDailyWireTransferLimit(ctx context.Context, id uuid.UUID, limit domain.Money) (*domain.Account, error) {
	return s.execute(ctx, "set_daily_wire_transfer_limit", id, func(a *domain.Account) error {
		return a.SetDailyWireTransferLimit(limit)
	})
}

// DepositCash credits the account immediately.
func (s *AccountService) DepositCash(ctx context.Context, id uuid.UUID, amount domain.Money) (*domain.Account, error) {
	return s.execute(ctx, "deposit_cash", id, func(a *domain.Account) error {
		return a.DepositCash(amount)
	})
}

// DepositCheck credits the account after the clearing delay.
func (s *AccountService) DepositCheck(ctx context.Context, id uuid.UUID, amount domain.Money) (*domain.Account, error) {
	return s.execute(ctx, "deposit_check", id, func(a *domain.Account) error {
		return a.DepositCheck(amount)
	})
}

// WithdrawCash debits the account, persisting either the withdrawal or its
// rejection.
func (s *AccountService) WithdrawCash(ctx context.Context, id uuid.UUID, amount domain.Money) (DebitResult, error) {
	return s.executeDebit(ctx, "withdraw_cash", id, func(a *domain.Account) (domain.DebitApproval, error) {
		return a.WithdrawCash(amount)
	})
}

// TransferCash wires funds out of the account, persisting either the
// transfer or its rejection.
func (s *AccountService) TransferCash(ctx context.Context, id uuid.UUID, amount domain.Money) (DebitResult, error) {
	return s.executeDebit(ctx, "transfer_cash", id, func(a *domain.Account) (domain.DebitApproval, error) {
		return a.TransferCash(amount)
	})
}

func (s *AccountService) execute(ctx context.Context, command string, id uuid.UUID, run func(*domain.Account) error) (*domain.Account, error) {
	account, revision, err := s.load(ctx, id)
	if err != nil {
		return nil, s.fail(command, err)
	}
	if err := run(account); err != nil {
		commandsTotal.WithLabelValues(command, outcomeInvalid).Inc()
		return nil, err
	}
	if err := s.commit(ctx, account, revision); err != nil {
		return nil, s.fail(command, err)
	}
	commandsTotal.WithLabelValues(command, outcomeAccepted).Inc()
	return account, nil
}

func (s *AccountService) executeDebit(ctx context.Context, command string, id uuid.UUID, run func(*domain.Account) (domain.DebitApproval, error)) (DebitResult, error) {
	account, revision, err := s.load(ctx, id)
	if err != nil {
		return DebitResult{}, s.fail(command, err)
	}
	approval, err := run(account)
	if err != nil {
		commandsTotal.WithLabelValues(command, outcomeInvalid).Inc()
		return DebitResult{}, err
	}
	if err := s.commit(ctx, account, revision); err != nil {
		return DebitResult{}, s.fail(command, err)
	}
	if approval == domain.Approved {
		commandsTotal.WithLabelValues(command, outcomeAccepted).Inc()
	} else {
		commandsTotal.WithLabelValues(command, outcomeRejected).Inc()
	}
	return DebitResult{Account: account, Approval: approval}, nil
}

func (s *AccountService) load(ctx context.Context, id uuid.UUID) (*domain.Account, int64, error) {
	events, revision, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, 0, fmt.Errorf("load stream: %w", err)
	}
	if len(events) == 0 {
		return nil, 0, ErrAccountNotFound
	}
	account, err := domain.Replay(events)
	if err != nil {
		return nil, 0, fmt.Errorf("replay stream: %w", err)
	}
	return account, revision, nil
}

func (s *AccountService) commit(ctx context.Context, account *domain.Account, expectedRevision int64) error {
	if err := s.store.Append(ctx, account.ID(), account.UncommittedEvents(), expectedRevision); err != nil {
		return err
	}
	account.ClearUncommittedEvents()
	return nil
}

func (s *AccountService) fail(command string, err error) error {
	if errors.Is(err, ErrAccountNotFound) {
		commandsTotal.WithLabelValues(command, outcomeInvalid).Inc()
	} else {
		commandsTotal.WithLabelValues(command, outcomeError).Inc()
	}
	return err
}
