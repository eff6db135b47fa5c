// Package chainmgr owns chain state exclusively: one Manager serializes
// every mutation to the UTXO pool, DR pool, reputation engine, stakes
// tracker and superblock state behind a single goroutine, per spec.md
// §5's "logically single-threaded per chain-state" model. Everything
// else — network session, peer manager, RPC server — talks to it by
// sending typed requests over channels rather than calling it directly.
package chainmgr

import (
	"fmt"
	"time"

	"github.com/rawblock/witnet-core/internal/chaintypes"
	"github.com/rawblock/witnet-core/internal/consolidator"
	"github.com/rawblock/witnet-core/internal/drpool"
	"github.com/rawblock/witnet-core/internal/mempool"
	"github.com/rawblock/witnet-core/internal/notify"
	"github.com/rawblock/witnet-core/internal/obslog"
	"github.com/rawblock/witnet-core/internal/reputation"
	"github.com/rawblock/witnet-core/internal/stakes"
	"github.com/rawblock/witnet-core/internal/storage"
	"github.com/rawblock/witnet-core/internal/superblock"
	"github.com/rawblock/witnet-core/internal/utxo"
	"github.com/rawblock/witnet-core/internal/validator"
	"github.com/rawblock/witnet-core/pkg/consensusconsts"
)

// submitBlockRequest is a dispatched mutation: try to consolidate a
// candidate block, report back over reply.
type submitBlockRequest struct {
	block chaintypes.Block
	reply chan error
}

// snapshotRequest is a read: run fn against the current state and return
// whatever it computes. It is served on the same goroutine as mutations,
// so it waits for any mutation already in progress.
type snapshotRequest struct {
	fn    func(*Manager) any
	reply chan any
}

// submitTxRequest is a dispatched mempool admission.
type submitTxRequest struct {
	tx    chaintypes.Transaction
	reply chan error
}

// Manager is the chain state's single owner. Every field it holds is
// mutated only from Run's loop, on the goroutine that called Run —
// never from SubmitBlock or Snapshot, which only enqueue work.
type Manager struct {
	Constants consensusconsts.ConsensusConstants

	UTXO       *utxo.Pool
	ByPKH      *utxo.OwnIndex
	Stakes     *stakes.Tracker
	Reputation *reputation.Engine
	DRPool     *drpool.Pool
	Superblock *superblock.State
	Mempool    *mempool.Pool

	ChainTipHash chaintypes.Hash
	CurrentEpoch chaintypes.Epoch
	BlockNumber  uint64

	bootstrapCommittee []chaintypes.PublicKeyHash

	store storage.ChainStateStore
	hub   *notify.Hub
	log   *obslog.Logger

	submitCh   chan submitBlockRequest
	snapshotCh chan snapshotRequest
	submitTxCh chan submitTxRequest
}

// New constructs a Manager from chain state recovered at startup (or
// zero values for a fresh chain) plus its dependencies. Callers start
// the owning goroutine with Run.
func New(constants consensusconsts.ConsensusConstants, bootstrapCommittee []chaintypes.PublicKeyHash, store storage.ChainStateStore, hub *notify.Hub) *Manager {
	return &Manager{
		Constants:          constants,
		UTXO:               utxo.New(),
		ByPKH:              utxo.NewOwnIndex(),
		Stakes:             stakes.New(constants.MinimumStake),
		Reputation:         reputation.NewEngine(constants),
		DRPool:             drpool.New(constants.ExtraCommitRounds, constants.ExtraRevealRounds),
		Superblock:         superblock.NewState(),
		Mempool:            mempool.New(),
		ChainTipHash:       chaintypes.ZeroHash,
		bootstrapCommittee: bootstrapCommittee,
		store:              store,
		hub:                hub,
		log:                obslog.New("chainmgr"),
		submitCh:           make(chan submitBlockRequest),
		snapshotCh:         make(chan snapshotRequest),
		submitTxCh:         make(chan submitTxRequest),
	}
}

// Recover loads the persisted chain tip, if any, before Run starts. It's
// separate from New so a caller can decide genesis-vs-resume before
// wiring the rest of the process to this Manager.
func (m *Manager) Recover() error {
	if m.store == nil {
		return nil
	}
	hash, epoch, blockNumber, found, err := m.store.LoadTip()
	if err != nil {
		return fmt.Errorf("chainmgr: recover tip: %w", err)
	}
	if !found {
		m.log.Infof("no persisted chain tip found, starting from genesis")
		return nil
	}
	m.ChainTipHash = hash
	m.CurrentEpoch = epoch
	m.BlockNumber = blockNumber
	m.log.Infof("recovered chain tip %s at epoch %d (height %d)", hash, epoch, blockNumber)
	return nil
}

// Run processes dispatched requests until ctxDone is closed. It must run
// on exactly one goroutine — that's what makes every field access above
// safe without a mutex.
func (m *Manager) Run(ctxDone <-chan struct{}) {
	for {
		select {
		case <-ctxDone:
			return
		case req := <-m.submitCh:
			req.reply <- m.consolidate(req.block)
		case req := <-m.snapshotCh:
			req.reply <- req.fn(m)
		case req := <-m.submitTxCh:
			req.reply <- m.Mempool.Admit(req.tx, m.UTXO)
		}
	}
}

// SubmitBlock dispatches block to the owning goroutine and blocks for
// the result. Safe to call from any goroutine.
func (m *Manager) SubmitBlock(block chaintypes.Block) error {
	reply := make(chan error, 1)
	m.submitCh <- submitBlockRequest{block: block, reply: reply}
	return <-reply
}

// SubmitTransaction queues tx for mempool admission on the owning
// goroutine, re-validating its inputs against the current UTXO
// snapshot. Safe to call from any goroutine.
func (m *Manager) SubmitTransaction(tx chaintypes.Transaction) error {
	reply := make(chan error, 1)
	m.submitTxCh <- submitTxRequest{tx: tx, reply: reply}
	return <-reply
}

// Snapshot runs fn against the current state on the owning goroutine and
// returns its result. Use for reads (CLI surface queries) that need a
// consistent view without taking a lock themselves.
func (m *Manager) Snapshot(fn func(*Manager) any) any {
	reply := make(chan any, 1)
	m.snapshotCh <- snapshotRequest{fn: fn, reply: reply}
	return <-reply
}

// consolidate validates then consolidates block against current state,
// emitting a notify.Event on success. It only ever runs on Run's
// goroutine.
func (m *Manager) consolidate(block chaintypes.Block) error {
	wallClockEpoch, _ := m.Constants.EpochAt(time.Now().Unix())
	vctx := &validator.Context{
		Constants:          m.Constants,
		ChainTipHash:       m.ChainTipHash,
		CurrentEpoch:       wallClockEpoch,
		BlockNumber:        m.BlockNumber,
		UTXO:               m.UTXO,
		Stakes:             m.Stakes,
		Reputation:         m.Reputation,
		DRPool:             m.DRPool,
		BootstrapCommittee: m.bootstrapCommittee,
	}
	result, err := validator.Validate(block, vctx)
	if err != nil {
		return fmt.Errorf("chainmgr: validate: %w", err)
	}

	var persistence consolidator.Persister
	if m.store != nil {
		persistence = persisterFunc(m.store.PersistBlock)
	}
	cctx := &consolidator.Context{
		Constants:    m.Constants,
		UTXO:         m.UTXO,
		ByPKH:        m.ByPKH,
		Stakes:       m.Stakes,
		Reputation:   m.Reputation,
		DRPool:       m.DRPool,
		Superblock:   m.Superblock,
		Mempool:      m.Mempool,
		Persistence:  persistence,
		ChainTipHash: &m.ChainTipHash,
		CurrentEpoch: &m.CurrentEpoch,
		BlockNumber:  &m.BlockNumber,
	}
	if err := cctx.Consolidate(block, result); err != nil {
		return fmt.Errorf("chainmgr: consolidate: %w", err)
	}

	if m.hub != nil {
		m.hub.Publish(notify.Event{Kind: notify.KindBlock, Data: m.ChainTipHash})
	}
	return nil
}

// persisterFunc adapts a plain function to consolidator.Persister.
type persisterFunc func(chaintypes.Block) error

func (f persisterFunc) PersistBlock(block chaintypes.Block) error { return f(block) }
