// Package pipeline runs an ordered chain of stages over a request, a
// response and a caller-defined context value.
//
// Every stage receives the current triple and either hands it on with
// Continue, possibly modified, or ends the chain with Terminate. The
// executor threads exactly one live triple through the chain and stops at
// the first stage that terminates:
//
//	chain := pipeline.New[[]string](logStage, staticStage)
//	x, ok := chain.Run(r, pipeline.NewResponse(w), nil)
//	if !ok {
//		// a stage answered the request
//		return
//	}
//	// nobody answered: x holds the final request, response and context
//
// Stages of one chain never run concurrently with each other. Separate
// requests run separate chains and share nothing but the stages
// themselves, which must therefore be safe for concurrent use.
package pipeline

import (
	"fmt"
	"net/http"
)

// Stage is one unit of a chain.
type Stage[C any] interface {
	Process(r *http.Request, w *Response, ctx C) Outcome[C]
}

// StageFunc allows a plain function to be used as a Stage.
type StageFunc[C any] func(r *http.Request, w *Response, ctx C) Outcome[C]

// Process calls f(r, w, ctx).
func (f StageFunc[C]) Process(r *http.Request, w *Response, ctx C) Outcome[C] {
	return f(r, w, ctx)
}

// Exchange is the triple owned by the live stage.
type Exchange[C any] struct {
	Request  *http.Request
	Response *Response
	Context  C
}

// Outcome is the result of a single stage: either the triple to hand to the
// next stage, or the end of the chain.
type Outcome[C any] struct {
	exchange   Exchange[C]
	terminated bool
}

// Continue hands the triple on to the next stage.
func Continue[C any](r *http.Request, w *Response, ctx C) Outcome[C] {
	return Outcome[C]{exchange: Exchange[C]{Request: r, Response: w, Context: ctx}}
}

// Terminate ends the chain. No further stage runs.
func Terminate[C any]() Outcome[C] {
	return Outcome[C]{terminated: true}
}

// Terminated reports whether the stage ended the chain.
func (o Outcome[C]) Terminated() bool {
	return o.terminated
}

// Exchange returns the triple carried by a Continue outcome. ok is false
// for Terminate.
func (o Outcome[C]) Exchange() (x Exchange[C], ok bool) {
	if o.terminated {
		return Exchange[C]{}, false
	}

	return o.exchange, true
}

// Run passes the triple through stages in order. It returns the final
// triple and true when every stage continued, or a zero Exchange and false
// as soon as one stage terminates. The response handed to a terminating
// stage is sealed: later writes to it fail with ErrResponseClosed.
//
// An empty stage list returns the input unchanged.
func Run[C any](stages []Stage[C], r *http.Request, w *Response, ctx C) (Exchange[C], bool) {
	x := Exchange[C]{Request: r, Response: w, Context: ctx}

	for i, stage := range stages {
		if stage == nil {
			continue
		}

		out := stage.Process(x.Request, x.Response, x.Context)
		if out.terminated {
			x.Response.seal()
			return Exchange[C]{}, false
		}

		if out.exchange.Request == nil || out.exchange.Response == nil {
			panic(fmt.Sprintf("pipeline: stage %d (%T) continued without a request or response", i, stage))
		}

		x = out.exchange
	}

	return x, true
}

// Chain is an immutable, ordered list of stages.
type Chain[C any] struct {
	stages []Stage[C]
}

// New builds a chain from stages. Nil stages are dropped. The chain keeps
// its own copy, so later changes to the argument slice do not affect it.
func New[C any](stages ...Stage[C]) Chain[C] {
	return Chain[C]{stages: appendNonNil(nil, stages)}
}

// With returns a new chain with more stages appended. The receiver is not
// modified.
func (c Chain[C]) With(more ...Stage[C]) Chain[C] {
	out := make([]Stage[C], 0, len(c.stages)+len(more))
	out = append(out, c.stages...)

	return Chain[C]{stages: appendNonNil(out, more)}
}

// Len returns the number of stages.
func (c Chain[C]) Len() int {
	return len(c.stages)
}

// Run runs the chain. See Run.
func (c Chain[C]) Run(r *http.Request, w *Response, ctx C) (Exchange[C], bool) {
	return Run(c.stages, r, w, ctx)
}

func appendNonNil[C any](dst, src []Stage[C]) []Stage[C] {
	for _, s := range src {
		if s != nil {
			dst = append(dst, s)
		}
	}

	return dst
}
