package query

import (
	"fmt"
	"strings"
)

// Code identifies a client input error. Codes are stable and part of the
// HTTP error body.
type Code string

const (
	CodeInvalidFilterSyntax      Code = "InvalidFilterSyntax"
	CodeUnknownFilterField       Code = "UnknownFilterField"
	CodeFieldNotFilterable       Code = "FieldNotFilterable"
	CodeFilterPathCollision      Code = "FilterPathCollision"
	CodeUnknownFilterOperator    Code = "UnknownFilterOperator"
	CodeLikeOperatorTypeMismatch Code = "LikeOperatorTypeMismatch"
	CodeFilterTypeMismatch       Code = "FilterTypeMismatch"
	CodeInvalidOrderSyntax       Code = "InvalidOrderSyntax"
	CodeUnknownOrderField        Code = "UnknownOrderField"
	CodeInvalidOrderDirection    Code = "InvalidOrderDirection"
	CodeInvalidQueryParameter    Code = "InvalidQueryParameter"
)

var messages = map[Code]string{
	CodeInvalidFilterSyntax:      "Filter not valid",
	CodeUnknownFilterField:       "Filter could not be applied to field",
	CodeFieldNotFilterable:       "Filter could not be applied to field",
	CodeFilterPathCollision:      "Filter cannot be in the path, too",
	CodeUnknownFilterOperator:    "Filter-operator not known",
	CodeLikeOperatorTypeMismatch: "Filter-Like operator can only be applied to strings",
	CodeFilterTypeMismatch:       "Filter value does not match the field type",
	CodeInvalidOrderSyntax:       "Order not valid",
	CodeUnknownOrderField:        "Order could not be applied to field",
	CodeInvalidOrderDirection:    "Order direction not valid",
	CodeInvalidQueryParameter:    "Fieldmissmatch",
}

// Error is a client input error raised while compiling a list request.
// Field holds the client supplied key the error refers to, if any.
type Error struct {
	Code      Code
	Field     string
	Operators []string
	Message   string
}

// Sentinels for errors.Is. Matching compares codes only.
var (
	ErrInvalidFilterSyntax      = &Error{Code: CodeInvalidFilterSyntax}
	ErrUnknownFilterField       = &Error{Code: CodeUnknownFilterField}
	ErrFieldNotFilterable       = &Error{Code: CodeFieldNotFilterable}
	ErrFilterPathCollision      = &Error{Code: CodeFilterPathCollision}
	ErrUnknownFilterOperator    = &Error{Code: CodeUnknownFilterOperator}
	ErrLikeOperatorTypeMismatch = &Error{Code: CodeLikeOperatorTypeMismatch}
	ErrFilterTypeMismatch       = &Error{Code: CodeFilterTypeMismatch}
	ErrInvalidOrderSyntax       = &Error{Code: CodeInvalidOrderSyntax}
	ErrUnknownOrderField        = &Error{Code: CodeUnknownOrderField}
	ErrInvalidOrderDirection    = &Error{Code: CodeInvalidOrderDirection}
	ErrInvalidQueryParameter    = &Error{Code: CodeInvalidQueryParameter}
)

// Message returns the client facing message of a code
func Message(code Code) string {
	return messages[code]
}

func newError(code Code, field string) *Error {
	return &Error{Code: code, Field: field, Message: messages[code]}
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = messages[e.Code]
	}

	var b strings.Builder
	b.WriteString(string(e.Code))
	b.WriteString(": ")
	b.WriteString(msg)
	if e.Field != "" {
		fmt.Fprintf(&b, " (field %q", e.Field)
		if len(e.Operators) > 0 {
			fmt.Fprintf(&b, ", operators %s", strings.Join(e.Operators, ", "))
		}
		b.WriteString(")")
	}
	return b.String()
}

// Is reports whether target is an *Error with the same code
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// Details returns the structured part of the error for HTTP responses
func (e *Error) Details() map[string]interface{} {
	details := map[string]interface{}{"code": string(e.Code)}
	if e.Field != "" {
		details["field"] = e.Field
	}
	if e.Operators != nil {
		details["operators"] = e.Operators
	}
	return details
}
