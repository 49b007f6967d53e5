package errors

import "fmt"

type Op string

type Code uint

type Error struct {
	Op   Op
	Kind Code
	Err  error
	Msg  string
}

const (
	KindUnexpected Code = iota // zero type is purposefully KindUnexpected
	KindNotImplemented
	KindNotFound
	KindConcurrencyProblem
	KindDatabaseError
	KindJWTError
	KindAuthError
	KindServiceUnavailable
	KindUnauthenticated
	KindUnauthorized
	KindBadRequest
	KindConflict
	// KindSchemaAbsent marks a "relation/column does not exist" failure
	// from the store.  It downgrades the contest feature to read-only
	// rather than being treated as fatal.
	KindSchemaAbsent
)

func (e Error) Error() string {
	if e.Msg != "" {
		if e.Err == nil {
			return e.Msg
		}
		return fmt.Sprintf("%s: %s", e.Msg, e.Err.Error())
	}

	if e.Err == nil {
		return fmt.Sprintf("op %s: error kind %d", e.Op, e.Kind)
	}

	return e.Err.Error()
}

func Kind(err error) Code {
	e, ok := err.(*Error)
	if !ok {
		return KindUnexpected
	}

	if e.Kind != 0 {
		return e.Kind
	}

	return Kind(e.Err)
}

func E(args ...interface{}) error {
	e := Error{}
	for _, arg := range args {
		switch arg := arg.(type) {
		case Op:
			e.Op = arg
		case Code:
			e.Kind = arg
		case error:
			e.Err = arg
		case string:
			e.Msg = arg
		default:
			panic("bad call to E")
		}
	}

	return &e
}

func Ops(err error) []Op {
	e, ok := err.(*Error)
	if !ok {
		return []Op{}
	}

	res := []Op{e.Op}

	subErr, ok := e.Err.(*Error)
	if !ok {
		return res
	}

	res = append(res, Ops(subErr)...)

	return res
}
