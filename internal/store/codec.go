package store

import (
	"encoding/json"
	"fmt"

	"github.com/punchamoorthee/bankstream/internal/domain"
)

// encodeEvent serializes an event for persistence. The payload is the full
// event document, self-describing alongside the indexed columns.
func encodeEvent(evt domain.Event) ([]byte, error) {
	payload, err := json.Marshal(evt)
	if err != nil {
		return nil, fmt.Errorf("encode %s event: %w", evt.EventType(), err)
	}
	return payload, nil
}

// decodeEvent selects the variant decoder by the persisted type name. An
// unrecognized name means the producer wrote a schema this consumer does not
// know; that is fatal, never skipped.
func decodeEvent(eventType string, payload []byte) (domain.Event, error) {
	var (
		evt domain.Event
		err error
	)
	switch eventType {
	case domain.TypeAccountCreated:
		evt, err = unmarshalEvent[domain.AccountCreated](payload)
	case domain.TypeOverdraftLimitChanged:
		evt, err = unmarshalEvent[domain.OverdraftLimitChanged](payload)
	case domain.TypeDailyWireTransferLimitChanged:
		evt, err = unmarshalEvent[domain.DailyWireTransferLimitChanged](payload)
	case domain.TypeCashDeposited:
		evt, err = unmarshalEvent[domain.CashDeposited](payload)
	case domain.TypeCheckDeposited:
		evt, err = unmarshalEvent[domain.CheckDeposited](payload)
	case domain.TypeCashWithdrawn:
		evt, err = unmarshalEvent[domain.CashWithdrawn](payload)
	case domain.TypeCashWithdrawalRejected:
		evt, err = unmarshalEvent[domain.CashWithdrawalRejected](payload)
	case domain.TypeCashTransferred:
		evt, err = unmarshalEvent[domain.CashTransferred](payload)
	case domain.TypeCashTransferRejected:
		evt, err = unmarshalEvent[domain.CashTransferRejected](payload)
	default:
		return nil, &domain.UnsupportedEventError{Type: eventType}
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s event: %w", eventType, err)
	}
	return evt, nil
}

func unmarshalEvent[E domain.Event](payload []byte) (domain.Event, error) {
	var evt E
	if err := json.Unmarshal(payload, &evt); err != nil {
		return nil, err
	}
	return evt, nil
}
