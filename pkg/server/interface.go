/*
Package server implements the msgpack IPC transport for dictionary sessions.

The server speaks length-prefixed binary msgpack over stdin/stdout: every
message is a 4-byte little-endian payload length followed by one encoded
map. stdout carries frames only; all logging goes to stderr.

# IPC

Clients send one Request per frame. Messages with an id are requests and
always get exactly one response frame with the same id; messages without
an id are notifications and get none. Document notifications are applied
in arrival order before any later frame is read, so a completion sent
after a didChange always sees the new text.

A completion request and its response look like:

	{"id": 7, "m": "textDocument/completion", "uri": "file:///notes.md", "ln": 2, "ch": 14}
	{"id": 7, "s": [{"w": "passing", "r": 1, "d": "prefix"}, {"w": "passion", "r": 2, "d": "prefix"}], "c": 2, "t": 180}

Requests run concurrently on their own goroutines; an in-flight request
can be abandoned with a cancel notification naming its id:

	{"m": "$/cancelRequest", "cid": 7}

which makes the request answer with a distinct cancelled error instead of
a result. Responses carry elapsed server time in microseconds.

Failures are reported per request and never kill the session:

	{"id": 7, "e": "shutdown not allowed in state uninitialized", "c": 2}
*/
package server

// Request is the single decoded shape of every inbound frame. Which
// fields matter depends on Method; a zero ID marks a notification.
type Request struct {
	ID        uint32 `msgpack:"id,omitempty"`
	Method    string `msgpack:"m"`
	URI       string `msgpack:"uri,omitempty"`
	Text      string `msgpack:"tx,omitempty"`
	Version   int    `msgpack:"v,omitempty"`
	Line      int    `msgpack:"ln,omitempty"`
	Character int    `msgpack:"ch,omitempty"`
	Command   string `msgpack:"cmd,omitempty"`
	Enabled   *bool  `msgpack:"on,omitempty"`
	CancelID  uint32 `msgpack:"cid,omitempty"`
}

// InitializeResponse reports session readiness and vocabulary size.
type InitializeResponse struct {
	ID           uint32 `msgpack:"id"`
	Words        int    `msgpack:"wc"`
	CompletionOn bool   `msgpack:"on"`
	TimeTaken    int64  `msgpack:"t"`
}

// HoverResponse carries rendered markdown for hover and signature help.
// Empty content means the cursor was not on a word.
type HoverResponse struct {
	ID        uint32 `msgpack:"id"`
	Content   string `msgpack:"md,omitempty"`
	TimeTaken int64  `msgpack:"t"`
}

// CompletionSuggestion - one ranked suggestion
type CompletionSuggestion struct {
	Word   string `msgpack:"w"`
	Rank   uint16 `msgpack:"r"`
	Detail string `msgpack:"d,omitempty"`
}

// CompletionResponse - suggestions for one completion request
type CompletionResponse struct {
	ID          uint32                 `msgpack:"id"`
	Suggestions []CompletionSuggestion `msgpack:"s"`
	Count       int                    `msgpack:"c"`
	TimeTaken   int64                  `msgpack:"t"`
}

// CommandResponse reports the completion-serving state after a
// workspace command.
type CommandResponse struct {
	ID        uint32 `msgpack:"id"`
	Enabled   bool   `msgpack:"on"`
	TimeTaken int64  `msgpack:"t"`
}

// Ack answers requests that carry no payload, like shutdown.
type Ack struct {
	ID     uint32 `msgpack:"id"`
	Status string `msgpack:"status"`
}

// ErrorResponse holds the failure for one request.
type ErrorResponse struct {
	ID    uint32 `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}
