package models

// Intent is a single side-effect request emitted by the decision layer.
// Intents describe work for the surrounding harness; nothing in the core
// executes them. The interface is sealed so the executor's type switch is
// exhaustive.
type Intent interface {
	intent()
}

// PersistRecordIntent asks the harness to append a token record to storage.
type PersistRecordIntent struct {
	Record TokenRecord
}

// SendAlertIntent asks the harness to deliver a human-readable notification.
type SendAlertIntent struct {
	Text string
}

// ExecuteTradeIntent asks the harness to place an order with the trade venue.
type ExecuteTradeIntent struct {
	TokenAddress string
	Action       TradeAction
}

// UpdateBlacklistIntent asks the harness to add a token and its developer to
// the blacklist and persist both entries. It is the only side effect a
// rejection can request.
type UpdateBlacklistIntent struct {
	TokenAddress string
	DevAddress   string
	Reason       string
}

func (PersistRecordIntent) intent()   {}
func (SendAlertIntent) intent()       {}
func (ExecuteTradeIntent) intent()    {}
func (UpdateBlacklistIntent) intent() {}

// TradeDecision is the decision engine's output for one evaluated snapshot:
// what position to take plus the ordered side effects the harness must run.
type TradeDecision struct {
	Action       TradeAction `json:"action"`
	TokenAddress string      `json:"token_address,omitempty"`
	Intents      []Intent    `json:"-"`
}
