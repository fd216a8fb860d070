package parser

import (
	"fmt"

	"github.com/hearthlang/hearth/lexer"
)

// Error is a SyntaxError: an unexpected token, a stray "otherwise", or a
// malformed expression, carrying the position and the offending token.
type Error struct {
	Pos     lexer.Position
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: syntax error: %s", e.Pos, e.Message)
}

func newError(pos lexer.Position, format string, args ...interface{}) *Error {
	return &Error{Pos: pos, Message: fmt.Sprintf(format, args...)}
}
