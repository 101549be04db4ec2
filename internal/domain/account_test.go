package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// dec parses a decimal or fails the test setup.
func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func usd(s string) Money {
	return Money{Amount: dec(s), Currency: "USD"}
}

var testClock = time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)

// newTestAccount opens a USD account pinned to testClock.
func newTestAccount(t *testing.T) *Account {
	t.Helper()
	account, err := NewAccount(uuid.New(), "Joe Dirt", "USD")
	if err != nil {
		t.Fatalf("new account: %v", err)
	}
	account.now = func() time.Time { return testClock }
	return account
}

func TestNewAccountRaisesCreatedEvent(t *testing.T) {
	id := uuid.New()
	account, err := NewAccount(id, "  Joe Dirt  ", "usd")
	if err != nil {
		t.Fatalf("new account: %v", err)
	}

	events := account.UncommittedEvents()
	if len(events) != 1 {
		t.Fatalf("expected 1 uncommitted event, got %d", len(events))
	}
	created, ok := events[0].(AccountCreated)
	if !ok {
		t.Fatalf("expected AccountCreated, got %T", events[0])
	}
	if created.AccountID != id {
		t.Fatalf("expected account id %s, got %s", id, created.AccountID)
	}
	if created.CustomerName != "Joe Dirt" {
		t.Fatalf("expected trimmed name, got %q", created.CustomerName)
	}
	if created.Currency != "USD" {
		t.Fatalf("expected normalized currency USD, got %q", created.Currency)
	}
	if created.ID == uuid.Nil {
		t.Fatalf("expected a generated event id")
	}

	if account.CustomerName() != "Joe Dirt" || account.Currency() != "USD" {
		t.Fatalf("state not folded from creation event: %q %q", account.CustomerName(), account.Currency())
	}
	if !account.OverdraftLimit().Amount.IsZero() || !account.DailyWireTransferLimit().Amount.IsZero() {
		t.Fatalf("expected zero initial limits")
	}
}

func TestNewAccountValidation(t *testing.T) {
	tests := []struct {
		name         string
		customerName string
		currency     string
		err          error
	}{
		{name: "blank name", customerName: "   ", currency: "USD", err: ErrBlankCustomerName},
		{name: "name too long", customerName: "Joe Dirt with a name that is too long to fit", currency: "USD", err: ErrCustomerNameTooLong},
		{name: "currency too short", customerName: "Joe Dirt", currency: "US", err: ErrInvalidCurrencyCode},
		{name: "currency too long", customerName: "Joe Dirt", currency: "USDX", err: ErrInvalidCurrencyCode},
		{name: "currency not letters", customerName: "Joe Dirt", currency: "U1D", err: ErrInvalidCurrencyCode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAccount(uuid.New(), tt.customerName, tt.currency)
			if !errors.Is(err, tt.err) {
				t.Fatalf("expected %v, got %v", tt.err, err)
			}
			if !IsValidation(err) {
				t.Fatalf("expected a validation error, got %v", err)
			}
		})
	}
}

func TestSetLimitsValidation(t *testing.T) {
	account := newTestAccount(t)

	if err := account.SetOverdraftLimit(usd("-250")); !errors.Is(err, ErrNegativeLimit) {
		t.Fatalf("expected ErrNegativeLimit, got %v", err)
	}
	if err := account.SetOverdraftLimit(Money{Amount: dec("200"), Currency: "EUR"}); !errors.Is(err, ErrCurrencyMismatch) {
		t.Fatalf("expected ErrCurrencyMismatch, got %v", err)
	}
	if err := account.SetDailyWireTransferLimit(usd("-1")); !errors.Is(err, ErrNegativeLimit) {
		t.Fatalf("expected ErrNegativeLimit, got %v", err)
	}

	// Validation failures never become events.
	if got := len(account.UncommittedEvents()); got != 1 {
		t.Fatalf("expected only the creation event, got %d", got)
	}

	if err := account.SetOverdraftLimit(usd("300")); err != nil {
		t.Fatalf("set overdraft limit: %v", err)
	}
	if err := account.SetDailyWireTransferLimit(usd("0")); err != nil {
		t.Fatalf("set daily limit to zero: %v", err)
	}
	if !account.OverdraftLimit().Equal(usd("300")) {
		t.Fatalf("overdraft limit not folded, got %s", account.OverdraftLimit())
	}
}

func TestDepositValidation(t *testing.T) {
	account := newTestAccount(t)

	if err := account.DepositCash(usd("-5")); !errors.Is(err, ErrNegativeAmount) {
		t.Fatalf("expected ErrNegativeAmount, got %v", err)
	}
	if err := account.DepositCash(Money{Amount: dec("5"), Currency: "GBP"}); !errors.Is(err, ErrCurrencyMismatch) {
		t.Fatalf("expected ErrCurrencyMismatch, got %v", err)
	}
	if _, err := account.WithdrawCash(Money{Amount: dec("5"), Currency: "GBP"}); !errors.Is(err, ErrCurrencyMismatch) {
		t.Fatalf("expected ErrCurrencyMismatch, got %v", err)
	}
	if got := len(account.UncommittedEvents()); got != 1 {
		t.Fatalf("expected only the creation event, got %d", got)
	}
}

func TestWithdrawWithSufficientBalance(t *testing.T) {
	account := newTestAccount(t)
	mustDeposit(t, account, "200")
	if err := account.SetOverdraftLimit(usd("0")); err != nil {
		t.Fatalf("set overdraft limit: %v", err)
	}

	outcome, err := account.WithdrawCash(usd("100"))
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if outcome != Approved {
		t.Fatalf("expected Approved, got %v", outcome)
	}
	if got := account.Balance(); !got.Equal(usd("100")) {
		t.Fatalf("expected balance 100, got %s", got)
	}
	assertLastEvent[CashWithdrawn](t, account)
}

func TestWithdrawIntoOverdraft(t *testing.T) {
	account := newTestAccount(t)
	mustDeposit(t, account, "75")
	if err := account.SetOverdraftLimit(usd("100")); err != nil {
		t.Fatalf("set overdraft limit: %v", err)
	}

	outcome, err := account.WithdrawCash(usd("100"))
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if outcome != Approved {
		t.Fatalf("expected Approved via overdraft, got %v", outcome)
	}
	if got := account.Balance(); !got.Equal(usd("-25")) {
		t.Fatalf("expected balance -25, got %s", got)
	}
}

func TestWithdrawInsufficientFunds(t *testing.T) {
	account := newTestAccount(t)

	outcome, err := account.WithdrawCash(usd("100"))
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if outcome != InsufficientFunds {
		t.Fatalf("expected InsufficientFunds, got %v", outcome)
	}

	rejected := assertLastEvent[CashWithdrawalRejected](t, account)
	if rejected.Reason != ReasonInsufficientFunds {
		t.Fatalf("expected reason %q, got %q", ReasonInsufficientFunds, rejected.Reason)
	}
	if got := account.Balance(); !got.Amount.IsZero() {
		t.Fatalf("rejection must not change the balance, got %s", got)
	}
}

func TestWithdrawOverdraftExceeded(t *testing.T) {
	account := newTestAccount(t)
	mustDeposit(t, account, "25")
	if err := account.SetOverdraftLimit(usd("50")); err != nil {
		t.Fatalf("set overdraft limit: %v", err)
	}

	outcome, err := account.WithdrawCash(usd("100"))
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if outcome != OverdraftExceeded {
		t.Fatalf("expected OverdraftExceeded, got %v", outcome)
	}
	rejected := assertLastEvent[CashWithdrawalRejected](t, account)
	if rejected.Reason != ReasonOverdraftExceeded {
		t.Fatalf("expected reason %q, got %q", ReasonOverdraftExceeded, rejected.Reason)
	}
}

func TestRejectedWithdrawalBlocksFurtherDebits(t *testing.T) {
	account := newTestAccount(t)
	mustDeposit(t, account, "100")

	// 500 exceeds the available 100 with no overdraft: rejected and blocking.
	outcome, err := account.WithdrawCash(usd("500"))
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if outcome != InsufficientFunds {
		t.Fatalf("expected InsufficientFunds, got %v", outcome)
	}
	if !account.IsBlocked() {
		t.Fatalf("expected account to be blocked after rejection")
	}

	// Funds are sufficient for 50, but the block takes precedence.
	outcome, err = account.WithdrawCash(usd("50"))
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if outcome != AccountBlocked {
		t.Fatalf("expected AccountBlocked, got %v", outcome)
	}

	// A successful cash deposit lifts the block.
	mustDeposit(t, account, "10")
	if account.IsBlocked() {
		t.Fatalf("expected deposit to clear the block")
	}
	outcome, err = account.WithdrawCash(usd("50"))
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if outcome != Approved {
		t.Fatalf("expected Approved after block cleared, got %v", outcome)
	}
}

func TestCheckDepositLiftsBlockOnceCleared(t *testing.T) {
	account := newTestAccount(t)

	outcome, err := account.WithdrawCash(usd("100"))
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if outcome != InsufficientFunds {
		t.Fatalf("expected InsufficientFunds, got %v", outcome)
	}
	if !account.IsBlocked() {
		t.Fatalf("expected account to be blocked after rejection")
	}

	if err := account.DepositCheck(usd("500")); err != nil {
		t.Fatalf("deposit check: %v", err)
	}
	if !account.IsBlocked() {
		t.Fatalf("an uncleared check must not lift the block")
	}

	account.now = func() time.Time { return testClock.Add(24 * time.Hour) }
	if account.IsBlocked() {
		t.Fatalf("expected the cleared check to lift the block")
	}

	outcome, err = account.WithdrawCash(usd("100"))
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if outcome != Approved {
		t.Fatalf("expected Approved after block cleared, got %v", outcome)
	}
}

func TestCheckDepositedBeforeRejectionDoesNotUnblock(t *testing.T) {
	account := newTestAccount(t)

	if err := account.DepositCheck(usd("500")); err != nil {
		t.Fatalf("deposit check: %v", err)
	}
	outcome, err := account.WithdrawCash(usd("100"))
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if outcome != InsufficientFunds {
		t.Fatalf("expected InsufficientFunds, got %v", outcome)
	}

	// The ledger is scanned in append order: a credit only lifts the block
	// when it comes after the rejection, even once the check has cleared.
	account.now = func() time.Time { return testClock.Add(24 * time.Hour) }
	if !account.IsBlocked() {
		t.Fatalf("expected the earlier check to leave the block in place")
	}
}

func TestCheckDepositClearsNextDay(t *testing.T) {
	account := newTestAccount(t)
	if err := account.DepositCheck(usd("500")); err != nil {
		t.Fatalf("deposit check: %v", err)
	}

	if got := account.Balance(); !got.Amount.IsZero() {
		t.Fatalf("uncleared check must not count, got %s", got)
	}

	account.now = func() time.Time { return testClock.Add(24 * time.Hour) }
	if got := account.Balance(); !got.Equal(usd("500")) {
		t.Fatalf("expected cleared check to count, got %s", got)
	}

	outcome, err := account.WithdrawCash(usd("100"))
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if outcome != Approved {
		t.Fatalf("expected Approved against cleared check, got %v", outcome)
	}
}

func TestWithdrawAgainstUnclearedCheckIsRejected(t *testing.T) {
	account := newTestAccount(t)
	if err := account.DepositCheck(usd("500")); err != nil {
		t.Fatalf("deposit check: %v", err)
	}

	outcome, err := account.WithdrawCash(usd("100"))
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if outcome != InsufficientFunds {
		t.Fatalf("expected InsufficientFunds, got %v", outcome)
	}
}

func TestTransferDailyLimit(t *testing.T) {
	account := newTestAccount(t)
	mustDeposit(t, account, "1000")
	if err := account.SetDailyWireTransferLimit(usd("100")); err != nil {
		t.Fatalf("set daily limit: %v", err)
	}

	outcome, err := account.TransferCash(usd("50"))
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if outcome != Approved {
		t.Fatalf("expected first transfer approved, got %v", outcome)
	}

	outcome, err = account.TransferCash(usd("75"))
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if outcome != DailyTransferExceeded {
		t.Fatalf("expected DailyTransferExceeded, got %v", outcome)
	}
	rejected := assertLastEvent[CashTransferRejected](t, account)
	if rejected.Reason != ReasonDailyTransferExceeded {
		t.Fatalf("expected reason %q, got %q", ReasonDailyTransferExceeded, rejected.Reason)
	}
}

func TestTransfersOnDifferentDaysBothSucceed(t *testing.T) {
	account := newTestAccount(t)
	mustDeposit(t, account, "1000")
	if err := account.SetDailyWireTransferLimit(usd("100")); err != nil {
		t.Fatalf("set daily limit: %v", err)
	}

	outcome, err := account.TransferCash(usd("50"))
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if outcome != Approved {
		t.Fatalf("expected first transfer approved, got %v", outcome)
	}

	account.now = func() time.Time { return testClock.Add(24 * time.Hour) }
	outcome, err = account.TransferCash(usd("75"))
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if outcome != Approved {
		t.Fatalf("expected next-day transfer approved, got %v", outcome)
	}
	if got := account.Balance(); !got.Equal(usd("875")) {
		t.Fatalf("expected balance 875, got %s", got)
	}
}

func mustDeposit(t *testing.T, account *Account, amount string) {
	t.Helper()
	if err := account.DepositCash(usd(amount)); err != nil {
		t.Fatalf("deposit %s: %v", amount, err)
	}
}

// assertLastEvent asserts the newest uncommitted event has the given type.
func assertLastEvent[E Event](t *testing.T, account *Account) E {
	t.Helper()
	events := account.UncommittedEvents()
	if len(events) == 0 {
		t.Fatalf("no uncommitted events")
	}
	last, ok := events[len(events)-1].(E)
	if !ok {
		t.Fatalf("expected event type %T, got %T", *new(E), events[len(events)-1])
	}
	return last
}
