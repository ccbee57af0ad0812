// Package worker implements the background sealing of pending transactions
// into blocks on a fixed cadence and on demand when a block's worth of
// transactions has accumulated.
package worker

import (
	"errors"
	"sync"
	"time"

	"github.com/cedichain/cedichain/foundation/ledger/state"
)

// Worker manages the sealing workflow for the ledger engine.
type Worker struct {
	state      *state.State
	wg         sync.WaitGroup
	ticker     *time.Ticker
	shut       chan struct{}
	sealSignal chan bool
	evHandler  state.EventHandler
}

// Run creates a worker, registers the worker with the state package, and
// starts the sealing goroutine.
func Run(st *state.State, evHandler state.EventHandler) {
	w := Worker{
		state:      st,
		ticker:     time.NewTicker(st.Genesis().SealInterval()),
		shut:       make(chan struct{}),
		sealSignal: make(chan bool, 1),
		evHandler:  evHandler,
	}

	// Register this worker with the state package.
	st.Worker = &w

	// We don't want to return until we know the G is up and running.
	hasStarted := make(chan bool)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		hasStarted <- true
		w.sealingOperations()
	}()

	<-hasStarted
}

// =============================================================================
// These methods implement the state.Worker interface.

// Shutdown terminates the goroutine performing work.
func (w *Worker) Shutdown() {
	w.evHandler("worker: shutdown: started")
	defer w.evHandler("worker: shutdown: completed")

	w.ticker.Stop()

	close(w.shut)
	w.wg.Wait()
}

// SignalSealing requests an immediate sealing run. If a signal is already
// pending, just return since a sealing operation will start.
func (w *Worker) SignalSealing() {
	select {
	case w.sealSignal <- true:
	default:
	}
	w.evHandler("worker: SignalSealing: sealing signaled")
}

// =============================================================================

// sealingOperations runs sealing on the configured interval and whenever a
// block's worth of transactions accumulates.
func (w *Worker) sealingOperations() {
	w.evHandler("worker: sealingOperations: G started")
	defer w.evHandler("worker: sealingOperations: G completed")

	for {
		select {
		case <-w.ticker.C:
			if !w.isShutdown() {
				w.runSealingOperation()
			}
		case <-w.sealSignal:
			if !w.isShutdown() {
				w.runSealingOperation()
			}
		case <-w.shut:
			w.evHandler("worker: sealingOperations: received shut signal")
			return
		}
	}
}

// runSealingOperation seals blocks until the pending set drops below a full
// block, then seals whatever remains.
func (w *Worker) runSealingOperation() {
	w.evHandler("worker: runSealingOperation: SEALING: started")
	defer w.evHandler("worker: runSealingOperation: SEALING: completed")

	for {
		block, err := w.state.SealBlock()
		if err != nil {
			if errors.Is(err, state.ErrNoPendingTransactions) {
				return
			}
			w.evHandler("worker: runSealingOperation: SEALING: ERROR: %s", err)
			return
		}

		w.evHandler("worker: runSealingOperation: SEALING: sealed block[%d] txs[%d]", block.Header.Number, block.Header.TxCount)

		if w.state.PendingCount() == 0 {
			return
		}
	}
}

// isShutdown is used to test if a shutdown has been signaled.
func (w *Worker) isShutdown() bool {
	select {
	case <-w.shut:
		return true
	default:
		return false
	}
}
