package forwarder

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bindkit/bindkit/pkg/callback"
)

// countingRecorder tallies recorder calls by label for assertions.
type countingRecorder struct {
	installed map[string]int
	removed   map[string]int
	rejected  map[string]int
	dispatch  map[string]int
	deferred  map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{
		installed: make(map[string]int),
		removed:   make(map[string]int),
		rejected:  make(map[string]int),
		dispatch:  make(map[string]int),
		deferred:  make(map[string]int),
	}
}

func (r *countingRecorder) RecordBindingInstalled(kind string) { r.installed[kind]++ }
func (r *countingRecorder) RecordBindingRemoved(kind string, reason string) { r.removed[kind+"/"+reason]++ }
func (r *countingRecorder) RecordBindRejected(kind string, reason string) { r.rejected[kind+"/"+reason]++ }
func (r *countingRecorder) RecordDispatch(kind string, status string) { r.dispatch[kind+"/"+status]++ }
func (r *countingRecorder) RecordDeferredCall(status string) { r.deferred[status]++ }

func TestMetricsRecorderHooks(t *testing.T) {
	rec := newCountingRecorder()
	SetMetricsRecorder(rec)
	defer SetMetricsRecorder(nil)

	f := New(WithMaxSignalBindings(1))
	sender := newButton(t)

	require.True(t, f.Bind(sender, "clicked(bool)", nil, callback.MustNew(func(bool) {})))
	assert.Equal(t, 1, rec.installed["signal"])

	assert.False(t, f.Bind(sender, "clicked(bool)", nil, callback.MustNew(func(bool) {})))
	assert.Equal(t, 1, rec.rejected["signal/pool_exhausted"])

	assert.False(t, f.Bind(sender, "never()", nil, callback.MustNew(func() {})))
	assert.Equal(t, 1, rec.rejected["signal/unknown_signal"])

	require.NoError(t, sender.Emit("clicked(bool)", true))
	assert.Equal(t, 1, rec.dispatch["signal/invoked"])

	f.Unbind(sender, "clicked(bool)")
	assert.Equal(t, 1, rec.removed["signal/unbind"])

	sender2 := newButton(t)
	require.True(t, f.Bind(sender2, "clicked(bool)", nil, callback.MustNew(func(bool) {})))
	sender2.Destroy()
	assert.Equal(t, 1, rec.removed["signal/sender_destroyed"])
}

func TestRejectReason(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("%w %q on %q", errUnknownSignal, "never()", "button"), "unknown_signal"},
		{fmt.Errorf("%w (2 slots)", errPoolExhausted), "pool_exhausted"},
		{fmt.Errorf("%w: sender %q", errDestroyed, "button"), "destroyed"},
		{errNilSender, "nil_argument"},
		{errNilCallback, "nil_argument"},
		{errEmptyEventKind, "empty_kind"},
		{fmt.Errorf("%w: callback func arg 0: have string, signal supplies bool", errTypeMismatch), "type_mismatch"},
		{fmt.Errorf("%w: connect failed", ErrBindRejected), "rejected"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, rejectReason(tt.err), "error: %v", tt.err)
		assert.True(t, errors.Is(tt.err, ErrBindRejected), "every cause wraps the root: %v", tt.err)
	}
}
