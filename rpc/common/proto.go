package common

import (
	"strings"
)

// --------------------------------------------------------------------------
// Text protocol
// --------------------------------------------------------------------------

// A request is a single text message: the command name followed by its arguments, separated
// by single spaces. Keys and values may contain any byte except the space character.
// Every request is answered by exactly one response message, in request order.

const (
	// CmdPut stores a value and answers with the previous value (or NullValue)
	CmdPut = "put"
	// CmdGet answers with the stored value (or NullValue)
	CmdGet = "get"
	// CmdRemove removes a key and answers with the removed value (or NullValue)
	CmdRemove = "rm"
	// CmdSize answers with the number of stored keys
	CmdSize = "size"
	// CmdClear removes all keys and answers with the number of removed keys
	CmdClear = "clear"

	// NullValue is the response text that stands for "no value"
	NullValue = "null"
	// ErrPrefix starts every response that reports a protocol violation
	ErrPrefix = "ERR "
	// AckMessage is sent by the server to complete the handshake
	AckMessage = "OK"
)

// CommandSeparator separates command name and arguments
const CommandSeparator = " "

// NewPutCommand creates the request text of a put
func NewPutCommand(key, value string) string {
	return joinCommand(CmdPut, key, value)
}

// NewGetCommand creates the request text of a get
func NewGetCommand(key string) string {
	return joinCommand(CmdGet, key)
}

// NewRemoveCommand creates the request text of a remove
func NewRemoveCommand(key string) string {
	return joinCommand(CmdRemove, key)
}

// NewSizeCommand creates the request text of a size query
func NewSizeCommand() string {
	return CmdSize
}

// NewClearCommand creates the request text of a clear
func NewClearCommand() string {
	return CmdClear
}

// ParseCommand splits a request text into command name and arguments
func ParseCommand(msg string) (cmd string, args []string) {
	parts := strings.Split(msg, CommandSeparator)
	return parts[0], parts[1:]
}

// NewErrorResponse creates the response text for a protocol violation
func NewErrorResponse(reason string) string {
	return ErrPrefix + reason
}

// ParseResponse converts a response text into its value.
// ok is false for NullValue; err is a *ProtocolError for error responses.
func ParseResponse(request, msg string) (value string, ok bool, err error) {
	if msg == NullValue {
		return "", false, nil
	}
	if strings.HasPrefix(msg, ErrPrefix) {
		return "", false, &ProtocolError{Command: request, Msg: strings.TrimPrefix(msg, ErrPrefix)}
	}
	return msg, true, nil
}

func joinCommand(parts ...string) string {
	return strings.Join(parts, CommandSeparator)
}
