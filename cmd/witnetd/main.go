package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/rawblock/witnet-core/internal/chainmgr"
	"github.com/rawblock/witnet-core/internal/chaintypes"
	"github.com/rawblock/witnet-core/internal/config"
	"github.com/rawblock/witnet-core/internal/notify"
	"github.com/rawblock/witnet-core/internal/rpcsurface"
	"github.com/rawblock/witnet-core/internal/storage"
	"github.com/rawblock/witnet-core/internal/storage/memstore"
	"github.com/rawblock/witnet-core/internal/storage/postgres"
	"github.com/rawblock/witnet-core/pkg/consensusconsts"
)

func main() {
	log.Println("Starting witnetd (consensus core node)...")

	cfg := config.Load()

	constants, err := constantsFor(cfg.NetworkName)
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}

	var store storage.ChainStateStore
	pgStore, err := postgres.Connect(cfg.DatabaseURL, constants.V2ActivationEpoch)
	if err != nil {
		log.Printf("Warning: failed to connect to PostgreSQL, falling back to in-memory chain state. Error: %v", err)
		store = memstore.New(constants.V2ActivationEpoch)
	} else {
		defer pgStore.Close()
		if err := pgStore.InitSchema(); err != nil {
			log.Printf("Warning: chain-state schema init failed, falling back to in-memory chain state: %v", err)
			store = memstore.New(constants.V2ActivationEpoch)
		} else {
			store = pgStore
		}
	}

	hub := notify.NewHub()
	go hub.Run()

	committee := bootstrapCommitteeFrom(getEnvOrDefault("WITNET_BOOTSTRAP_COMMITTEE", ""))

	mgr := chainmgr.New(constants, committee, store, hub)
	if err := mgr.Recover(); err != nil {
		log.Fatalf("FATAL: failed to recover chain state: %v", err)
	}

	done := make(chan struct{})
	defer close(done)
	go mgr.Run(done)

	r := rpcsurface.SetupRouter(mgr)

	log.Printf("witnetd running on :%s (network: %s)\n", cfg.RPCPort, cfg.NetworkName)
	if err := r.Run(":" + cfg.RPCPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// constantsFor resolves a named network to its ConsensusConstants
// profile. Unknown names fail fast rather than silently falling back to
// mainnet's economic parameters.
func constantsFor(name string) (consensusconsts.ConsensusConstants, error) {
	switch strings.ToLower(name) {
	case "mainnet", "":
		return consensusconsts.Mainnet(), nil
	default:
		return consensusconsts.ConsensusConstants{}, fmt.Errorf("unknown WITNET_NETWORK %q", name)
	}
}

// bootstrapCommitteeFrom parses a comma-separated list of hex-encoded
// PKHs. An empty or unparseable entry is skipped with a warning rather
// than aborting startup: a node can still sync/serve reads without a
// bootstrap committee configured, it just can't validate genesis-epoch
// blocks against one.
func bootstrapCommitteeFrom(raw string) []chaintypes.PublicKeyHash {
	if raw == "" {
		return nil
	}
	var committee []chaintypes.PublicKeyHash
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		pkh, err := chaintypes.PKHFromHex(entry)
		if err != nil {
			log.Printf("Warning: skipping invalid bootstrap committee entry %q: %v", entry, err)
			continue
		}
		committee = append(committee, pkh)
	}
	return committee
}

// getEnvOrDefault returns the env var value or a safe default for
// non-secret settings.
func getEnvOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
