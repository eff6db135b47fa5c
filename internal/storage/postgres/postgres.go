// Package postgres is the pgx-backed ChainStateStore, adapted from the
// teacher's internal/db.PostgresStore: same pool-setup and
// schema-from-file pattern, repointed at block/chain-tip persistence
// instead of forensics heuristics.
package postgres

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rawblock/witnet-core/internal/chaintypes"
)

type Store struct {
	pool                 *pgxpool.Pool
	v2ActivationEpoch    chaintypes.Epoch
}

// Connect initializes the connection pool to PostgreSQL using pgx.
func Connect(connStr string, v2ActivationEpoch chaintypes.Epoch) (*Store, error) {
	pool, err := pgxpool.New(context.Background(), connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("ping failed: %w", err)
	}

	log.Println("Successfully connected to PostgreSQL for chain-state storage")
	return &Store{pool: pool, v2ActivationEpoch: v2ActivationEpoch}, nil
}

// Close gracefully closes the connection pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// InitSchema loads and executes the schema.sql file.
func (s *Store) InitSchema() error {
	schemaBytes, err := os.ReadFile("internal/storage/postgres/schema.sql")
	if err != nil {
		return fmt.Errorf("failed to read schema file: %w", err)
	}

	if _, err := s.pool.Exec(context.Background(), string(schemaBytes)); err != nil {
		return fmt.Errorf("failed to execute schema migrations: %w", err)
	}

	log.Println("Chain-state schema initialized")
	return nil
}

// PersistBlock stores the block's header and every transaction, then
// advances the chain-tip row, all in one transaction so a mid-write
// failure never leaves a partially-written block behind.
func (s *Store) PersistBlock(block chaintypes.Block) error {
	ctx := context.Background()
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	canonical := block.IsCanonicalShape(s.v2ActivationEpoch)
	headerBytes, err := block.Header.MarshalWire(canonical)
	if err != nil {
		return fmt.Errorf("marshal header: %w", err)
	}
	blockHash, err := block.Hash(s.v2ActivationEpoch)
	if err != nil {
		return fmt.Errorf("hash block: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO blocks (hash, epoch, prev_hash, canonical, header_bytes)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (hash) DO NOTHING`,
		blockHash[:], block.Header.Beacon.CheckpointEpoch, block.Header.Beacon.HashPrevBlock[:], canonical, headerBytes)
	if err != nil {
		return fmt.Errorf("insert block: %w", err)
	}

	for kind, group := range groupsOf(block.Body) {
		for idx, txn := range group {
			txBytes, err := txn.MarshalWire()
			if err != nil {
				return fmt.Errorf("marshal %s[%d]: %w", chaintypes.TransactionKind(kind), idx, err)
			}
			_, err = tx.Exec(ctx, `
				INSERT INTO block_transactions (block_hash, kind, idx, tx_bytes)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (block_hash, kind, idx) DO NOTHING`,
				blockHash[:], kind, idx, txBytes)
			if err != nil {
				return fmt.Errorf("insert tx %s[%d]: %w", chaintypes.TransactionKind(kind), idx, err)
			}
		}
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO chain_tip (id, hash, epoch, block_number)
		VALUES (1, $1, $2, COALESCE((SELECT block_number FROM chain_tip WHERE id = 1), -1) + 1)
		ON CONFLICT (id) DO UPDATE
		SET hash = EXCLUDED.hash, epoch = EXCLUDED.epoch, block_number = chain_tip.block_number + 1`,
		blockHash[:], block.Header.Beacon.CheckpointEpoch)
	if err != nil {
		return fmt.Errorf("advance chain tip: %w", err)
	}

	return tx.Commit(ctx)
}

// LoadTip returns the last-persisted chain tip, if any.
func (s *Store) LoadTip() (chaintypes.Hash, chaintypes.Epoch, uint64, bool, error) {
	ctx := context.Background()
	var hashBytes []byte
	var epoch uint32
	var blockNumber int64
	err := s.pool.QueryRow(ctx, `SELECT hash, epoch, block_number FROM chain_tip WHERE id = 1`).
		Scan(&hashBytes, &epoch, &blockNumber)
	if err != nil {
		if err.Error() == "no rows in result set" {
			return chaintypes.Hash{}, 0, 0, false, nil
		}
		return chaintypes.Hash{}, 0, 0, false, err
	}
	var hash chaintypes.Hash
	if len(hashBytes) != chaintypes.HashSize {
		return chaintypes.Hash{}, 0, 0, false, fmt.Errorf("chain_tip: expected %d-byte hash, got %d", chaintypes.HashSize, len(hashBytes))
	}
	copy(hash[:], hashBytes)
	return hash, chaintypes.Epoch(epoch), uint64(blockNumber), true, nil
}

// LoadBlock reconstructs a block from its persisted header and
// transaction rows.
func (s *Store) LoadBlock(hash chaintypes.Hash) (chaintypes.Block, bool, error) {
	ctx := context.Background()
	var headerBytes []byte
	var canonical bool
	err := s.pool.QueryRow(ctx, `SELECT header_bytes, canonical FROM blocks WHERE hash = $1`, hash[:]).
		Scan(&headerBytes, &canonical)
	if err != nil {
		if err.Error() == "no rows in result set" {
			return chaintypes.Block{}, false, nil
		}
		return chaintypes.Block{}, false, err
	}

	header, err := chaintypes.ParseBlockHeader(headerBytes)
	if err != nil {
		return chaintypes.Block{}, false, fmt.Errorf("parse header: %w", err)
	}

	rows, err := s.pool.Query(ctx, `SELECT kind, idx, tx_bytes FROM block_transactions WHERE block_hash = $1 ORDER BY kind, idx`, hash[:])
	if err != nil {
		return chaintypes.Block{}, false, err
	}
	defer rows.Close()

	body := chaintypes.BlockBody{}
	for rows.Next() {
		var kind, idx int
		var txBytes []byte
		if err := rows.Scan(&kind, &idx, &txBytes); err != nil {
			return chaintypes.Block{}, false, err
		}
		txn, err := chaintypes.ParseTransaction(txBytes)
		if err != nil {
			return chaintypes.Block{}, false, fmt.Errorf("parse tx kind=%d idx=%d: %w", kind, idx, err)
		}
		appendToGroup(&body, chaintypes.TransactionKind(kind), *txn)
	}

	return chaintypes.Block{Header: header, Body: body}, true, nil
}

// groupsOf maps every non-mint transaction kind to its body slice, plus
// the mint transaction as a single-element group under TxMint, so
// PersistBlock can walk them uniformly.
func groupsOf(body chaintypes.BlockBody) map[int][]chaintypes.Transaction {
	groups := map[int][]chaintypes.Transaction{
		int(chaintypes.TxValueTransfer): body.ValueTransfer,
		int(chaintypes.TxDataRequest):   body.DataRequest,
		int(chaintypes.TxCommit):        body.Commit,
		int(chaintypes.TxReveal):        body.Reveal,
		int(chaintypes.TxTally):         body.Tally,
		int(chaintypes.TxStake):         body.Stake,
		int(chaintypes.TxUnstake):       body.Unstake,
	}
	if body.Mint != nil {
		groups[int(chaintypes.TxMint)] = []chaintypes.Transaction{*body.Mint}
	}
	return groups
}

func appendToGroup(body *chaintypes.BlockBody, kind chaintypes.TransactionKind, txn chaintypes.Transaction) {
	switch kind {
	case chaintypes.TxMint:
		body.Mint = &txn
	case chaintypes.TxValueTransfer:
		body.ValueTransfer = append(body.ValueTransfer, txn)
	case chaintypes.TxDataRequest:
		body.DataRequest = append(body.DataRequest, txn)
	case chaintypes.TxCommit:
		body.Commit = append(body.Commit, txn)
	case chaintypes.TxReveal:
		body.Reveal = append(body.Reveal, txn)
	case chaintypes.TxTally:
		body.Tally = append(body.Tally, txn)
	case chaintypes.TxStake:
		body.Stake = append(body.Stake, txn)
	case chaintypes.TxUnstake:
		body.Unstake = append(body.Unstake, txn)
	}
}
