/*
Package server implements msgpack IPC for dictionary query services.

The server package provides a minimal interface for querying the loaded word
graph, word store and ambiguity tables using msgpack serialization over
stdin/stdout.

The protocol uses binary msgpack encoding. Messages are processed
synchronously with timing info included in responses.

# IPC

The server operates on a request response model where clients send structured
messages via stdin and receive responses through stdout. Each message
contains an ID field, a command, and other fields based on the operation
type.

Lookup requests validate one word against the word graph:

	{"id": "req_001", "cmd": "lookup", "w": "segment"}

The server answers with the validity and prefix flags:

	{"id": "req_001", "w": "segment", "v": true, "pf": true, "t": 0}

Prefix requests return ranked completions from the raw word store:

	{"id": "req_002", "cmd": "prefix", "p": "seg", "l": 10}

Ambiguity requests dump the rules whose wrong ngram starts with a character:

	{"id": "req_003", "cmd": "ambigs", "ch": "r"}

Response structures include status information and error details when an op
fails; a malformed request never terminates the loop.

msgpack encoding has ~30 to 50% smaller message sizes compared to JSON.
binary format enables faster parsing and generation, less errors and reducing
latency by ~40 to 70% in most cases.
*/
package server

// Request is the single incoming message shape; Cmd selects the operation
// and the remaining fields are per-command.
type Request struct {
	ID     string `msgpack:"id"`
	Cmd    string `msgpack:"cmd"`
	Word   string `msgpack:"w,omitempty"`  // "lookup"
	Prefix string `msgpack:"p,omitempty"`  // "prefix"
	Limit  int    `msgpack:"l,omitempty"`  // "prefix"
	Char   string `msgpack:"ch,omitempty"` // "ambigs"
}

// LookupResponse answers a word validity query.
type LookupResponse struct {
	ID        string `msgpack:"id"`
	Word      string `msgpack:"w"`
	Valid     bool   `msgpack:"v"`
	IsPrefix  bool   `msgpack:"pf"`
	TimeTaken int64  `msgpack:"t"`
}

// PrefixSuggestion - minimal suggestion entry
type PrefixSuggestion struct {
	Word string `msgpack:"w"`
	Rank int    `msgpack:"r"`
}

// PrefixResponse - ranked completions for a prefix
type PrefixResponse struct {
	ID          string             `msgpack:"id"`
	Suggestions []PrefixSuggestion `msgpack:"s"`
	Count       int                `msgpack:"c"`
	TimeTaken   int64              `msgpack:"t"`
}

// AmbigEntry is one ambiguity rule rendered back to strings.
type AmbigEntry struct {
	Wrong   string `msgpack:"wr"`
	Correct string `msgpack:"co"`
	Type    string `msgpack:"ty"`
}

// AmbigResponse lists the rules for one first character.
type AmbigResponse struct {
	ID        string       `msgpack:"id"`
	Entries   []AmbigEntry `msgpack:"a"`
	Count     int          `msgpack:"c"`
	TimeTaken int64        `msgpack:"t"`
}

// StatusResponse reports server health and loaded dictionary stats.
type StatusResponse struct {
	ID     string `msgpack:"id,omitempty"`
	Status string `msgpack:"status"`
	Words  int    `msgpack:"words,omitempty"`
	Edges  int    `msgpack:"edges,omitempty"`
}

// ErrorResponse holds basic error information for failed requests
type ErrorResponse struct {
	ID    string `msgpack:"id,omitempty"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}
