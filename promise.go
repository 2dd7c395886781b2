package jsvm

import "github.com/jsvm-project/jsvm/internal/value"

// Promise is a settled completion handle returned by Module.LoadLinkEvaluate
// (spec.md §6). It is a host-side (Go) completion record, not the
// JS-visible Promise exotic object described in spec.md §3.1/§4.4 — this
// engine's realm does not yet install a Promise constructor/prototype with
// .then/.catch reachable from script (internal/realm.Realm.PromiseProto
// exists but has no installed methods; see DESIGN.md). Module evaluation
// is synchronous, so by the time LoadLinkEvaluate returns the Promise is
// always already settled.
type Promise struct {
	fulfilled bool
	value     value.Value
	err       error
}

func fulfilledPromise(v value.Value) *Promise { return &Promise{fulfilled: true, value: v} }
func rejectedPromise(err error) *Promise      { return &Promise{err: err} }

// Fulfilled reports whether the promise settled successfully.
func (p *Promise) Fulfilled() bool { return p.fulfilled }

// Value is the fulfillment value; zero Value if the promise was rejected.
func (p *Promise) Value() value.Value { return p.value }

// Err is the rejection reason; nil if the promise was fulfilled.
func (p *Promise) Err() error { return p.err }
