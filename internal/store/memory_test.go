package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/punchamoorthee/bankstream/internal/domain"
)

func TestMemoryAppendAndLoad(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	accountID := uuid.New()
	at := time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)

	created := domain.AccountCreated{
		EventBase:    domain.EventBase{ID: uuid.New(), AccountID: accountID, Timestamp: at},
		CustomerName: "Joe Dirt",
		Currency:     "USD",
	}
	deposited := domain.CashDeposited{
		EventBase: domain.EventBase{ID: uuid.New(), AccountID: accountID, Timestamp: at},
		Amount:    usd("100"),
	}

	if err := mem.Append(ctx, accountID, []domain.Event{created}, 0); err != nil {
		t.Fatalf("append at 0: %v", err)
	}
	if err := mem.Append(ctx, accountID, []domain.Event{deposited}, 1); err != nil {
		t.Fatalf("append at 1: %v", err)
	}

	events, revision, err := mem.Load(ctx, accountID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if revision != 2 {
		t.Fatalf("expected revision 2, got %d", revision)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].EventID() != created.ID || events[1].EventID() != deposited.ID {
		t.Fatalf("events out of order")
	}
}

func TestMemoryAppendAtStaleRevision(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	accountID := uuid.New()
	at := time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)

	created := domain.AccountCreated{
		EventBase:    domain.EventBase{ID: uuid.New(), AccountID: accountID, Timestamp: at},
		CustomerName: "Joe Dirt",
		Currency:     "USD",
	}
	if err := mem.Append(ctx, accountID, []domain.Event{created}, 0); err != nil {
		t.Fatalf("append at 0: %v", err)
	}

	deposited := domain.CashDeposited{
		EventBase: domain.EventBase{ID: uuid.New(), AccountID: accountID, Timestamp: at},
		Amount:    usd("100"),
	}
	if err := mem.Append(ctx, accountID, []domain.Event{deposited}, 0); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	_, revision, err := mem.Load(ctx, accountID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if revision != 1 {
		t.Fatalf("conflicting append must not change the stream, got revision %d", revision)
	}
}

func TestMemoryLoadUnknownStream(t *testing.T) {
	events, revision, err := NewMemory().Load(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if revision != 0 || len(events) != 0 {
		t.Fatalf("expected an empty stream, got revision %d with %d events", revision, len(events))
	}
}
