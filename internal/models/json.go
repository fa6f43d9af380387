package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// Meta is the per-type payload attached to a transaction.
type Meta interface {
	Kind() TransactionType
}

type DepositMeta struct {
	PayerAccount string `json:"payerAccount,omitempty"`
	IPAddress    string `json:"ipAddress,omitempty"`
}

func (DepositMeta) Kind() TransactionType { return TransactionTypeDeposit }

type WithdrawalMeta struct {
	PayeeAccount string `json:"payeeAccount,omitempty"`
	IPAddress    string `json:"ipAddress,omitempty"`
}

func (WithdrawalMeta) Kind() TransactionType { return TransactionTypeWithdrawal }

type PrizeMeta struct {
	TournamentID string `json:"tournamentId"`
	MatchID      string `json:"matchId,omitempty"`
	Placement    int    `json:"placement,omitempty"`
}

func (PrizeMeta) Kind() TransactionType { return TransactionTypePrizeWin }

type FeeMeta struct {
	TournamentID string `json:"tournamentId"`
}

func (FeeMeta) Kind() TransactionType { return TransactionTypeTournamentFee }

type RefundMeta struct {
	OriginalTransactionID string `json:"originalTransactionId"`
}

func (RefundMeta) Kind() TransactionType { return TransactionTypeRefund }

// Adjustment directions.
const (
	AdjustmentCredit = "CREDIT"
	AdjustmentDebit  = "DEBIT"
)

type AdjustmentMeta struct {
	AdminID   string `json:"adminId"`
	Reason    string `json:"reason"`
	Direction string `json:"direction"`
}

func (AdjustmentMeta) Kind() TransactionType { return TransactionTypeAdminAdjustment }

// TransactionMeta is a tagged union over the Meta payloads. It is stored
// as {"kind": ..., "data": ...}.
type TransactionMeta struct {
	Meta
}

type metaEnvelope struct {
	Kind TransactionType `json:"kind"`
	Data json.RawMessage `json:"data"`
}

func (m TransactionMeta) MarshalJSON() ([]byte, error) {
	if m.Meta == nil {
		return []byte("null"), nil
	}
	data, err := json.Marshal(m.Meta)
	if err != nil {
		return nil, err
	}
	return json.Marshal(metaEnvelope{Kind: m.Meta.Kind(), Data: data})
}

func (m *TransactionMeta) UnmarshalJSON(b []byte) error {
	if m == nil {
		return errors.New("nil pointer")
	}
	if string(b) == "null" {
		m.Meta = nil
		return nil
	}
	var env metaEnvelope
	if err := json.Unmarshal(b, &env); err != nil {
		return err
	}

	var meta Meta
	switch env.Kind {
	case TransactionTypeDeposit:
		var v DepositMeta
		if err := json.Unmarshal(env.Data, &v); err != nil {
			return err
		}
		meta = v
	case TransactionTypeWithdrawal:
		var v WithdrawalMeta
		if err := json.Unmarshal(env.Data, &v); err != nil {
			return err
		}
		meta = v
	case TransactionTypePrizeWin:
		var v PrizeMeta
		if err := json.Unmarshal(env.Data, &v); err != nil {
			return err
		}
		meta = v
	case TransactionTypeTournamentFee:
		var v FeeMeta
		if err := json.Unmarshal(env.Data, &v); err != nil {
			return err
		}
		meta = v
	case TransactionTypeRefund:
		var v RefundMeta
		if err := json.Unmarshal(env.Data, &v); err != nil {
			return err
		}
		meta = v
	case TransactionTypeAdminAdjustment:
		var v AdjustmentMeta
		if err := json.Unmarshal(env.Data, &v); err != nil {
			return err
		}
		meta = v
	default:
		return fmt.Errorf("unknown meta kind %q", env.Kind)
	}
	m.Meta = meta
	return nil
}

// Value implements the driver.Valuer interface
func (m TransactionMeta) Value() (driver.Value, error) {
	if m.Meta == nil {
		return nil, nil
	}
	return m.MarshalJSON()
}

// Scan implements the sql.Scanner interface
func (m *TransactionMeta) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		m.Meta = nil
		return nil
	case []byte:
		return m.UnmarshalJSON(v)
	case string:
		return m.UnmarshalJSON([]byte(v))
	default:
		return fmt.Errorf("unsupported meta column type %T", value)
	}
}

// GatewayResponse is the provider payload kept for audit on DEPOSIT and
// WITHDRAWAL transactions.
type GatewayResponse struct {
	Provider      string                 `json:"provider"`
	Success       bool                   `json:"success"`
	TransactionID string                 `json:"transactionId,omitempty"`
	Error         string                 `json:"error,omitempty"`
	Raw           map[string]interface{} `json:"raw,omitempty"`
}

// Value implements the driver.Valuer interface
func (r GatewayResponse) Value() (driver.Value, error) {
	return json.Marshal(r)
}

// Scan implements the sql.Scanner interface
func (r *GatewayResponse) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, r)
	case string:
		return json.Unmarshal([]byte(v), r)
	default:
		return fmt.Errorf("unsupported gateway response column type %T", value)
	}
}
