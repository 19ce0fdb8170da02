// Package protocol implements pedis's wire framing: parsing inbound
// INLINE/BULK command lines into argument vectors (Codec) and building
// outbound reply byte chunks (this file), per spec.md §4.2 and §6.
package protocol

import (
	"fmt"
	"strconv"

	"github.com/ehrlich-b/pedis/internal/constants"
)

var crlf = []byte(constants.CRLF)

// Byte-exact sentinel replies, per spec.md §6.
var (
	OK                    = []byte("+OK\r\n")
	Pong                  = []byte("+PONG\r\n")
	Nil                   = []byte("nil\r\n")
	One                   = []byte("1\r\n")
	Zero                  = []byte("0\r\n")
	ErrGeneric            = []byte("-ERR\r\n")
	ErrUnknownCommand     = []byte("-ERR unknown command\r\n")
	ErrWrongArity         = []byte("-ERR wrong number of arguments\r\n")
	ErrInvalidDBIndex     = []byte("-ERR invalid DB index\r\n")
	ErrIndexOutOfRange    = []byte("-ERR index out of range\r\n")
	ErrWrongType          = []byte("-ERR Operation against a key holding the wrong kind of value\r\n")
	ErrBgsaveInProgress   = []byte("-ERR background save already in progress\r\n")
	ErrShutdownSaveFailed = []byte("-ERR can't quit, problems saving the DB\r\n")
)

// Bool renders the 1\r\n / 0\r\n convention used throughout the command
// set for boolean-shaped replies.
func Bool(b bool) []byte {
	if b {
		return One
	}
	return Zero
}

// Integer renders a decimal integer reply, e.g. for llen or incr.
func Integer(n int64) []byte {
	return append([]byte(strconv.FormatInt(n, 10)), crlf...)
}

// Raw appends a CRLF to an already-formed reply body — used by commands
// whose spec contract is "the value followed by CRLF" without bulk
// length-prefixing (get, keys).
func Raw(body []byte) []byte {
	out := make([]byte, 0, len(body)+2)
	out = append(out, body...)
	return append(out, crlf...)
}

// Bulk renders a length-prefixed bulk reply: $<len>\r\n<bytes>\r\n. Only
// echo uses this per spec.md §4.3; most string-valued replies in this
// protocol are Raw instead.
func Bulk(body []byte) []byte {
	out := make([]byte, 0, len(body)+16)
	out = append(out, '$')
	out = append(out, []byte(strconv.Itoa(len(body)))...)
	out = append(out, crlf...)
	out = append(out, body...)
	return append(out, crlf...)
}

// Err renders an ad hoc -ERR reply with a custom message.
func Err(msg string) []byte {
	return []byte(fmt.Sprintf("-ERR %s\r\n", msg))
}
