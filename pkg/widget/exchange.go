package widget

import (
	"context"

	"github.com/pkg/errors"
)

var errNoBackend = errors.New("no chat backend configured")

type exchangeKind int

const (
	exchangeSend exchangeKind = iota + 1
	exchangeClear
)

// Exchange is a network request started by the controller whose result has
// not been applied yet.
type Exchange struct {
	kind exchangeKind
	text string
	run  func(ctx context.Context) Outcome
}

// Text is the user message being sent, empty for a clear.
func (e *Exchange) Text() string {
	return e.text
}

func (e *Exchange) IsClear() bool {
	return e.kind == exchangeClear
}

// Do performs the request. It never touches the bindings.
func (e *Exchange) Do(ctx context.Context) Outcome {
	return e.run(ctx)
}

// Outcome is the result of an Exchange: either the success payload or the
// error that ended it.
type Outcome struct {
	kind exchangeKind

	Reply string
	Data  any
	Err   error
}

func (o Outcome) OK() bool {
	return o.Err == nil
}
