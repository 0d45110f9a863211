package kerror

import (
	"encoding/hex"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
)

type Keypair struct {
	K string
	V interface{}
}

// Kerror is a typed error with ordered details and an optional cause.
type Kerror struct {
	Type      string
	Msg       string
	Details   []Keypair // slice keeps insertion order
	Stack     string    // optional, only the inner most kerror needs it
	CausedBy  error     // optional, a *Kerror or any error
	ErrorCode ErrorCode // default EC_UNKNOWN
}

func Create(errType string, msg string) *Kerror {
	return &Kerror{
		Stack:     GetCallStack(1),
		Type:      errType,
		Msg:       msg,
		ErrorCode: EC_UNKNOWN,
	}
}

func (ke *Kerror) Error() string {
	return ke.ShortString()
}

func (ke *Kerror) String() string {
	return ke.FullString()
}

func (ke *Kerror) With(key string, val interface{}) *Kerror {
	ke.Details = append(ke.Details, Keypair{K: key, V: val})
	return ke
}

func (ke *Kerror) WithErrorCode(code ErrorCode) *Kerror {
	ke.ErrorCode = code
	return ke
}

// Unwrap lets errors.Is / errors.As walk the cause chain.
func (ke *Kerror) Unwrap() error {
	return ke.CausedBy
}

func (ke *Kerror) WithoutStack() *Kerror {
	ke.Stack = ""
	return ke
}

func (ke *Kerror) GetType() string {
	return ke.Type
}

// GetDetail returns the first detail value recorded under key.
func (ke *Kerror) GetDetail(key string) (interface{}, bool) {
	for _, item := range ke.Details {
		if item.K == key {
			return item.V, true
		}
	}
	return nil, false
}

func (ke *Kerror) ShortString() string {
	var b strings.Builder
	b.Grow(256)
	ke.ToFullString(&b, false /*withStack*/, false /*withCause*/)
	return b.String()
}

func (ke *Kerror) FullString() string {
	var b strings.Builder
	b.Grow(1000)
	ke.ToFullString(&b, true /*withStack*/, true /*withCause*/)
	return b.String()
}

func (ke *Kerror) CausedByString() string {
	var b strings.Builder
	ke.buildCausedByString(&b, false /*withStack*/, true /*withCause*/)
	return b.String()
}

func (ke *Kerror) ToFullString(b *strings.Builder, withStack, withCause bool) {
	fmt.Fprintf(b, "%s: %s", ke.Type, ke.Msg)
	for _, item := range ke.Details {
		fmt.Fprintf(b, ", %s=%v", item.K, formatVal(item.V))
	}
	if withStack && ke.Stack != "" {
		fmt.Fprintf(b, ", stack=%s", ke.Stack)
	}
	if withCause && ke.CausedBy != nil {
		fmt.Fprintf(b, ";\n Caused by: ")
		ke.buildCausedByString(b, withStack, withCause)
		fmt.Fprintf(b, "\n")
	}
}

func (ke *Kerror) buildCausedByString(b *strings.Builder, withStack, withCause bool) {
	if ke.CausedBy == nil {
		return
	}
	if cause, ok := ke.CausedBy.(*Kerror); ok {
		cause.ToFullString(b, withStack, withCause)
	} else {
		fmt.Fprintf(b, "%s", ke.CausedBy.Error())
	}
}

func (ke *Kerror) GetExitCode() int {
	return ke.ErrorCode.ToExitCode()
}

func formatVal(val interface{}) interface{} {
	if val == nil {
		return nil
	} else if bytes, ok := val.([]byte); ok {
		return hex.EncodeToString(bytes)
	}
	return val
}

func GetCallStack(removeTop int) string {
	stack := string(debug.Stack())
	// skip the debug.Stack/GetCallStack frames, last element is everything else
	split := strings.SplitAfterN(stack, "\n", 6+2*removeTop)
	return split[len(split)-1]
}

// Wrap attaches a type and message to err. Stack capture is expensive, only ask for it when needed.
func Wrap(err error, errType, msg string, needStack bool) *Kerror {
	ke := &Kerror{
		Type:      errType,
		Msg:       msg,
		CausedBy:  err,
		ErrorCode: EC_UNKNOWN,
	}
	var inner *Kerror
	if errors.As(err, &inner) {
		ke.ErrorCode = inner.ErrorCode
	} else if needStack {
		ke.Stack = GetCallStack(1)
	}
	return ke
}

// IsType reports whether err, or anything in its cause chain, is a *Kerror of the given type.
func IsType(err error, errType string) bool {
	for err != nil {
		if ke, ok := err.(*Kerror); ok && ke.Type == errType {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}
