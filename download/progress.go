package download

import (
	"math"
	"sync/atomic"

	"protonup-go/types"
	"protonup-go/util"
)

// ProgressState is shared between the task running an install and any
// number of observers. The task is the only writer; observers read without
// locking and must tolerate slightly stale values.
type ProgressState struct {
	bytesDone atomic.Int64
	done      atomic.Bool
	state     atomic.Int32
	total     int64
}

func newProgressState(total uint64) *ProgressState {
	p := &ProgressState{total: clampSize(total)}
	p.state.Store(int32(types.StatePending))
	return p
}

func clampSize(size uint64) int64 {
	if size > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(size)
}

// BytesDone returns how many archive bytes have been written to scratch storage.
func (p *ProgressState) BytesDone() int64 {
	return p.bytesDone.Load()
}

// Done reports whether the task has reached a terminal state.
func (p *ProgressState) Done() bool {
	return p.done.Load()
}

// State returns the current pipeline stage.
func (p *ProgressState) State() types.InstallState {
	return types.InstallState(p.state.Load())
}

// Total returns the expected archive size published with the release.
func (p *ProgressState) Total() int64 {
	return p.total
}

// Percent returns BytesDone/Total in [0, 1].
func (p *ProgressState) Percent() float64 {
	return util.Percent(p.BytesDone(), p.total)
}

func (p *ProgressState) add(n int64) {
	if n > 0 {
		p.bytesDone.Add(n)
	}
}

// reconcile sets the counter to the exact number of bytes on disk.
func (p *ProgressState) reconcile(n int64) {
	p.bytesDone.Store(n)
}

func (p *ProgressState) setState(s types.InstallState) {
	p.state.Store(int32(s))
}

// finish publishes the terminal state before flipping done, so an observer
// that sees Done() also sees the final counter and state.
func (p *ProgressState) finish(s types.InstallState) {
	p.setState(s)
	p.done.Store(true)
}
