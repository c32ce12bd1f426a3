package tools

import "encoding/json"

// Failure kinds. Every kind is recoverable: a failure ends the tool call,
// not the turn or the process.
const (
	KindBlockedQuery         = "blocked-query"
	KindQueryError           = "query-error"
	KindTicketCreationFailed = "ticket-creation-failed"
)

// Result is the structured outcome of a tool execution, fed back to the
// model as a tool-role message.
type Result struct {
	OK      bool   `json:"ok"`
	Kind    string `json:"kind,omitempty"`    // failure kind when !OK
	Message string `json:"message,omitempty"` // failure reason when !OK
	Data    any    `json:"data,omitempty"`    // success payload
}

// Success wraps a payload in a successful result.
func Success(data any) Result {
	return Result{OK: true, Data: data}
}

// Failure builds a structured failure of the given kind.
func Failure(kind, message string) Result {
	return Result{OK: false, Kind: kind, Message: message}
}

// JSON renders the result for the model.
func (r Result) JSON() string {
	data, err := json.Marshal(r)
	if err != nil {
		return `{"ok":false,"kind":"internal","message":"result encoding failed"}`
	}
	return string(data)
}
