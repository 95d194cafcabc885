// Package forwarder implements the dynamic binding engine: it routes an
// object's signals and events to callable adapters with runtime type
// checking at bind time, recycles dispatch slot ids from a bounded pool,
// and tears bindings down automatically when a bound sender or context
// object is destroyed.
//
// The engine is single-threaded by contract: Bind, Unbind, Emit-driven
// dispatch and Destroy must all run on one goroutine. No internal locking
// is performed for the binding tables; calling the API from multiple
// goroutines concurrently is undefined behavior. The only guarded shared
// state is the process-wide per-sender forwarder cache used by the
// package-level Connect functions, the metrics recorder, and the
// cancellation state of deferred calls.
package forwarder

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/bindkit/bindkit/pkg/callback"
	"github.com/bindkit/bindkit/pkg/logger"
	"github.com/bindkit/bindkit/pkg/object"
)

// ErrBindRejected is the root of every bind-time failure. Bind reports
// rejection as a false return; the wrapped cause goes to the diagnostic
// log. The per-cause sentinels below all wrap it, so errors.Is against
// ErrBindRejected matches any of them.
var (
	ErrBindRejected = errors.New("forwarder: bind rejected")

	errNilSender      = fmt.Errorf("%w: nil sender", ErrBindRejected)
	errNilCallback    = fmt.Errorf("%w: nil callback", ErrBindRejected)
	errDestroyed      = fmt.Errorf("%w: object destroyed", ErrBindRejected)
	errUnknownSignal  = fmt.Errorf("%w: unknown signal", ErrBindRejected)
	errEmptyEventKind = fmt.Errorf("%w: empty event kind", ErrBindRejected)
	errTypeMismatch   = fmt.Errorf("%w: type mismatch", ErrBindRejected)
	errPoolExhausted  = fmt.Errorf("%w: binding table full", ErrBindRejected)
)

// DefaultMaxSignalBindings bounds the slot-id pool of a forwarder that was
// not configured otherwise, mirroring a fixed dispatch-table size.
const DefaultMaxSignalBindings = 1024

// defaultDiagnosticInterval throttles dispatch-failure logging so a hot
// signal cannot flood the log.
const defaultDiagnosticInterval = time.Second

// binding is one installed signal binding, keyed by its slot id.
type binding struct {
	sender      *object.Object
	context     *object.Object
	signalIndex int
	paramTypes  []string
	cb          *callback.Callback
	passSender  bool
	slot        int
}

// Forwarder owns the binding table, the event binding store, the slot-id
// pool and the lifetime watches for one dispatcher instance.
type Forwarder struct {
	log         logger.Logger
	maxBindings int

	bindings map[int]*binding
	// senderSlots preserves registration order per sender; dispatch picks
	// the earliest live binding for a (sender, signal index) pair from it.
	senderSlots  map[string][]int
	contextSlots map[string][]int
	events       map[string]*eventBinding
	pool         *slotPool
	watches      map[string]*destroyWatch

	diag *rate.Limiter
}

// Option configures a Forwarder.
type Option func(*Forwarder)

// WithLogger sets the diagnostic logger. Defaults to the global logger.
func WithLogger(l logger.Logger) Option {
	return func(f *Forwarder) {
		if l != nil {
			f.log = l
		}
	}
}

// WithMaxSignalBindings sets the slot-id pool size. Values below 1 keep
// the default.
func WithMaxSignalBindings(n int) Option {
	return func(f *Forwarder) {
		if n >= 1 {
			f.maxBindings = n
		}
	}
}

// WithDiagnosticInterval sets the minimum interval between dispatch-time
// failure log lines.
func WithDiagnosticInterval(d time.Duration) Option {
	return func(f *Forwarder) {
		if d > 0 {
			f.diag = rate.NewLimiter(rate.Every(d), 1)
		}
	}
}

// New creates a forwarder instance.
func New(opts ...Option) *Forwarder {
	f := &Forwarder{
		log:          logger.Global(),
		maxBindings:  DefaultMaxSignalBindings,
		bindings:     make(map[int]*binding),
		senderSlots:  make(map[string][]int),
		contextSlots: make(map[string][]int),
		events:       make(map[string]*eventBinding),
		watches:      make(map[string]*destroyWatch),
		diag:         rate.NewLimiter(rate.Every(defaultDiagnosticInterval), 1),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.pool = newSlotPool(f.maxBindings)
	return f
}

// CanAddSignalBindings reports whether the slot-id pool has capacity for
// another signal binding.
func (f *Forwarder) CanAddSignalBindings() bool {
	return f.pool.available()
}

// Bind installs a signal binding: when sender emits the signal identified
// by signature, cb is invoked with the leading signal arguments, truncated
// to the callback's arity. If context is non-nil, destroying it removes
// the binding just like destroying the sender does.
//
// Bind returns false, installing nothing, if the signature is unknown on
// sender, the callback's parameter types cannot be matched against the
// signal's, or the slot-id pool is exhausted. The cause is reported
// through the diagnostic log.
func (f *Forwarder) Bind(sender *object.Object, signature string, context *object.Object, cb *callback.Callback) bool {
	return f.bind(sender, signature, context, cb, false)
}

func (f *Forwarder) bind(sender *object.Object, signature string, context *object.Object, cb *callback.Callback, passSender bool) bool {
	if err := f.tryBind(sender, signature, context, cb, passSender); err != nil {
		metricsRecorder().RecordBindRejected("signal", rejectReason(err))
		f.log.Warn("signal bind rejected",
			"signal", signature,
			"sender", senderName(sender),
			"error", err)
		return false
	}
	metricsRecorder().RecordBindingInstalled("signal")
	return true
}

func (f *Forwarder) tryBind(sender *object.Object, signature string, context *object.Object, cb *callback.Callback, passSender bool) error {
	if sender == nil {
		return errNilSender
	}
	if sender.Destroyed() {
		return fmt.Errorf("%w: sender %q", errDestroyed, sender.Name())
	}
	if context != nil && context.Destroyed() {
		return fmt.Errorf("%w: context %q", errDestroyed, context.Name())
	}
	if cb == nil {
		return errNilCallback
	}
	index, params, ok := sender.ResolveSignal(signature)
	if !ok {
		return fmt.Errorf("%w %q on %q", errUnknownSignal, signature, sender.Name())
	}
	if err := checkTypeMatch(cb, params, passSender); err != nil {
		return err
	}
	if !f.CanAddSignalBindings() {
		return fmt.Errorf("%w (%d slots)", errPoolExhausted, f.maxBindings)
	}

	slot, _ := f.pool.acquire()
	b := &binding{
		sender:      sender,
		context:     context,
		signalIndex: index,
		paramTypes:  params,
		cb:          cb,
		passSender:  passSender,
		slot:        slot,
	}
	if err := sender.ConnectSignal(index, slot, f); err != nil {
		f.pool.release(slot)
		return fmt.Errorf("%w: %v", ErrBindRejected, err)
	}

	f.bindings[slot] = b
	f.senderSlots[sender.ID()] = append(f.senderSlots[sender.ID()], slot)
	if context != nil {
		f.contextSlots[context.ID()] = append(f.contextSlots[context.ID()], slot)
	}
	f.refWatch(sender)
	if context != nil && context.ID() != sender.ID() {
		f.refWatch(context)
	}
	f.log.Debug("signal binding installed",
		"signal", signature,
		"sender", sender.Name(),
		"slot", slot,
		"callback", cb.Name())
	return nil
}

// checkTypeMatch compares the callback's expected parameter types against
// the signal's declared ones. The callback may declare fewer parameters
// than the signal supplies; extra trailing signal arguments are dropped at
// dispatch. With passSender, the callback's first parameter receives the
// sender and the remaining parameters are matched positionally.
func checkTypeMatch(cb *callback.Callback, signalParams []string, passSender bool) error {
	cbTypes := cb.ParamTypes()
	if passSender {
		if len(cbTypes) == 0 {
			return fmt.Errorf("%w: callback %s takes no parameters, sender-passing needs at least one",
				errTypeMismatch, cb.Name())
		}
		if !object.PointerLike(cbTypes[0]) {
			return fmt.Errorf("%w: callback %s parameter 0 is %s, want an object pointer for the sender",
				errTypeMismatch, cb.Name(), cbTypes[0])
		}
		cbTypes = cbTypes[1:]
	}
	if len(cbTypes) > len(signalParams) {
		return fmt.Errorf("%w: callback %s expects %d args, signal supplies %d",
			errTypeMismatch, cb.Name(), len(cbTypes), len(signalParams))
	}
	for i, ct := range cbTypes {
		if !object.TypesCompatible(ct, signalParams[i]) {
			return fmt.Errorf("%w: callback %s arg %d: have %s, signal supplies %s",
				errTypeMismatch, cb.Name(), i, ct, signalParams[i])
		}
	}
	return nil
}

// DeliverSignal implements object.Listener. Every live binding holds one
// registration on the sender, but only the earliest-installed binding for
// the emitted signal dispatches; deliveries for later bindings of the same
// (sender, signal) pair are suppressed until the earlier ones are removed.
func (f *Forwarder) DeliverSignal(sender *object.Object, signalIndex int, slot int, args []any) {
	b, ok := f.bindings[slot]
	if !ok {
		f.failInvoke(fmt.Sprintf("no binding for dispatched slot %d on %q", slot, senderName(sender)))
		return
	}
	first := f.firstBinding(sender, signalIndex)
	if first == nil {
		f.failInvoke(fmt.Sprintf("no binding matches signal %d on %q", signalIndex, senderName(sender)))
		return
	}
	if first.slot != slot {
		metricsRecorder().RecordDispatch("signal", "suppressed")
		return
	}
	f.invokeBinding(b, args)
}

// firstBinding returns the earliest-registered live binding for the given
// sender and signal index.
func (f *Forwarder) firstBinding(sender *object.Object, signalIndex int) *binding {
	for _, slot := range f.senderSlots[sender.ID()] {
		if b := f.bindings[slot]; b != nil && b.signalIndex == signalIndex {
			return b
		}
	}
	return nil
}

// invokeBinding marshals the signal arguments, truncates them to the
// callback's declared arity and invokes it. A dispatch-time failure is a
// logic error since bind-time checks should have caught it; it is logged
// and the dispatch is skipped rather than propagated.
func (f *Forwarder) invokeBinding(b *binding, args []any) {
	supplied := args
	if b.passSender {
		supplied = make([]any, 0, len(args)+1)
		supplied = append(supplied, b.sender)
		supplied = append(supplied, args...)
	}
	arity := b.cb.Arity()
	if len(supplied) > arity {
		supplied = supplied[:arity]
	}
	if err := b.cb.Invoke(supplied...); err != nil {
		metricsRecorder().RecordDispatch("signal", "error")
		f.failInvoke(fmt.Sprintf("invoke %s for %q slot %d: %v",
			b.cb.Name(), b.sender.Name(), b.slot, err))
		return
	}
	metricsRecorder().RecordDispatch("signal", "invoked")
}

// failInvoke reports a dispatch-time failure through the diagnostic
// channel, rate-limited.
func (f *Forwarder) failInvoke(msg string) {
	if f.diag.Allow() {
		f.log.Error("signal dispatch failed", "error", msg)
	}
}

// Unbind removes every binding on sender for the resolved signal and
// releases their slot ids for reuse. Unknown signatures remove nothing.
func (f *Forwarder) Unbind(sender *object.Object, signature string) {
	if sender == nil {
		return
	}
	index, _, ok := sender.ResolveSignal(signature)
	if !ok {
		return
	}
	slots := append([]int(nil), f.senderSlots[sender.ID()]...)
	for _, slot := range slots {
		if b := f.bindings[slot]; b != nil && b.signalIndex == index {
			f.removeBinding(b, "unbind")
		}
	}
}

// UnbindAll removes all signal and event bindings for sender.
func (f *Forwarder) UnbindAll(sender *object.Object) {
	if sender == nil {
		return
	}
	slots := append([]int(nil), f.senderSlots[sender.ID()]...)
	for _, slot := range slots {
		if b := f.bindings[slot]; b != nil {
			f.removeBinding(b, "unbind")
		}
	}
	f.removeEventBinding(sender.ID(), "unbind")
}

// removeBinding drops a binding from every table, releases its slot id and
// unreferences the lifetime watches it held.
func (f *Forwarder) removeBinding(b *binding, reason string) {
	if _, ok := f.bindings[b.slot]; !ok {
		return
	}
	delete(f.bindings, b.slot)
	f.senderSlots[b.sender.ID()] = removeSlot(f.senderSlots[b.sender.ID()], b.slot)
	if len(f.senderSlots[b.sender.ID()]) == 0 {
		delete(f.senderSlots, b.sender.ID())
	}
	if b.context != nil {
		f.contextSlots[b.context.ID()] = removeSlot(f.contextSlots[b.context.ID()], b.slot)
		if len(f.contextSlots[b.context.ID()]) == 0 {
			delete(f.contextSlots, b.context.ID())
		}
	}
	f.pool.release(b.slot)
	b.sender.DisconnectSignal(b.slot)
	f.unrefWatch(b.sender)
	if b.context != nil && b.context.ID() != b.sender.ID() {
		f.unrefWatch(b.context)
	}
	metricsRecorder().RecordBindingRemoved("signal", reason)
}

// BindingCount returns the number of live signal bindings. Event bindings
// are not counted.
func (f *Forwarder) BindingCount() int {
	return len(f.bindings)
}

// IsConnected reports whether at least one signal or event binding exists
// for sender.
func (f *Forwarder) IsConnected(sender *object.Object) bool {
	if sender == nil {
		return false
	}
	if len(f.senderSlots[sender.ID()]) > 0 {
		return true
	}
	_, ok := f.events[sender.ID()]
	return ok
}

func removeSlot(slots []int, slot int) []int {
	for i, s := range slots {
		if s == slot {
			return append(slots[:i:i], slots[i+1:]...)
		}
	}
	return slots
}

func senderName(o *object.Object) string {
	if o == nil {
		return "<nil>"
	}
	return o.Name()
}

// rejectReason maps a bind error to a short metrics label.
func rejectReason(err error) string {
	switch {
	case errors.Is(err, errUnknownSignal):
		return "unknown_signal"
	case errors.Is(err, errPoolExhausted):
		return "pool_exhausted"
	case errors.Is(err, errDestroyed):
		return "destroyed"
	case errors.Is(err, errNilSender), errors.Is(err, errNilCallback):
		return "nil_argument"
	case errors.Is(err, errEmptyEventKind):
		return "empty_kind"
	case errors.Is(err, errTypeMismatch):
		return "type_mismatch"
	default:
		return "rejected"
	}
}
