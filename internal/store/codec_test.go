package store

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/punchamoorthee/bankstream/internal/domain"
)

func usd(s string) domain.Money {
	amount, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return domain.Money{Amount: amount, Currency: "USD"}
}

func testBase(t *testing.T) domain.EventBase {
	t.Helper()
	return domain.EventBase{
		ID:        uuid.New(),
		AccountID: uuid.New(),
		Timestamp: time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC),
	}
}

func TestCodecRoundTrip(t *testing.T) {
	base := testBase(t)
	day := domain.Date{Year: 2026, Month: time.March, Day: 10}

	events := []domain.Event{
		domain.AccountCreated{EventBase: base, CustomerName: "Joe Dirt", Currency: "USD"},
		domain.OverdraftLimitChanged{EventBase: base, Limit: usd("250")},
		domain.DailyWireTransferLimitChanged{EventBase: base, Limit: usd("100")},
		domain.CashDeposited{EventBase: base, Amount: usd("10.50")},
		domain.CheckDeposited{EventBase: base, Amount: usd("500"), DepositedOn: base.Timestamp},
		domain.CashWithdrawn{EventBase: base, Amount: usd("25")},
		domain.CashWithdrawalRejected{EventBase: base, Amount: usd("25"), Reason: domain.ReasonInsufficientFunds},
		domain.CashTransferred{EventBase: base, Amount: usd("75"), TransferredOn: day},
		domain.CashTransferRejected{EventBase: base, Amount: usd("75"), Reason: domain.ReasonDailyTransferExceeded},
	}

	for _, evt := range events {
		t.Run(evt.EventType(), func(t *testing.T) {
			payload, err := encodeEvent(evt)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			decoded, err := decodeEvent(evt.EventType(), payload)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if decoded.EventID() != evt.EventID() {
				t.Fatalf("event id changed: %s vs %s", decoded.EventID(), evt.EventID())
			}
			if decoded.EventType() != evt.EventType() {
				t.Fatalf("event type changed: %s vs %s", decoded.EventType(), evt.EventType())
			}
			if !decoded.OccurredAt().Equal(evt.OccurredAt()) {
				t.Fatalf("timestamp changed: %s vs %s", decoded.OccurredAt(), evt.OccurredAt())
			}
		})
	}
}

func TestCodecPreservesAmounts(t *testing.T) {
	evt := domain.CashDeposited{EventBase: testBase(t), Amount: usd("10.50")}

	payload, err := encodeEvent(evt)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := decodeEvent(evt.EventType(), payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	deposited, ok := decoded.(domain.CashDeposited)
	if !ok {
		t.Fatalf("expected CashDeposited, got %T", decoded)
	}
	if !deposited.Amount.Equal(evt.Amount) {
		t.Fatalf("amount changed: %s vs %s", deposited.Amount, evt.Amount)
	}
}

func TestDecodeUnknownType(t *testing.T) {
	_, err := decodeEvent("somethingelse", []byte(`{}`))
	var unsupported *domain.UnsupportedEventError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected UnsupportedEventError, got %v", err)
	}
	if unsupported.Type != "somethingelse" {
		t.Fatalf("expected offending type in error, got %q", unsupported.Type)
	}
}

func TestDecodeMalformedPayload(t *testing.T) {
	if _, err := decodeEvent(domain.TypeCashDeposited, []byte(`{`)); err == nil {
		t.Fatalf("expected an error for a malformed payload")
	}
}

func TestStreamName(t *testing.T) {
	id := uuid.MustParse("D8B1C383-5B60-4B1E-9D7B-3C6F2A1E0F45")
	want := "account-d8b1c383-5b60-4b1e-9d7b-3c6f2a1e0f45"
	if got := StreamName(id); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}
