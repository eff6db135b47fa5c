// Package rpcsurface exposes the read-only subset of spec.md §6's CLI
// surface over HTTP/JSON, adapted from the teacher's gin router pattern
// (internal/api/routes.go): a single SetupRouter building grouped routes
// off a handler struct bundling its dependencies.
package rpcsurface

import (
	"encoding/hex"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rawblock/witnet-core/internal/chainmgr"
	"github.com/rawblock/witnet-core/internal/chaintypes"
	"github.com/rawblock/witnet-core/internal/utxo"
)

// requestIDMiddleware tags every request with a correlation ID, echoed
// back in the response so a caller can match a request to the node's
// logs. Generated fresh per request rather than trusting a
// caller-supplied header.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.New().String()
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

type Handler struct {
	mgr *chainmgr.Manager
}

// SetupRouter wires the stable read-only CLI subset spec.md §6 names —
// getBlockChain, getBlock, getTransaction, getBalance, getReputation,
// getUtxoInfo — onto gin routes; getBlock and getTransaction answer 501.
// sendValue/sendRequest/peers/
// knownPeers/masterKeyExport need a wallet/network layer this core
// doesn't own and are left to whatever process embeds this surface.
func SetupRouter(mgr *chainmgr.Manager) *gin.Engine {
	r := gin.Default()
	h := &Handler{mgr: mgr}

	limiter := NewRateLimiter(120, 30)

	v1 := r.Group("/api/v1")
	v1.Use(requestIDMiddleware(), limiter.Middleware(), AuthMiddleware())
	{
		v1.GET("/health", h.handleHealth)
		v1.GET("/blockchain", h.handleGetBlockChain)
		v1.GET("/block/:hash", h.handleGetBlock)
		v1.GET("/transaction/:hash", h.handleGetTransaction)
		v1.GET("/balance/:pkh", h.handleGetBalance)
		v1.GET("/reputation/:pkh", h.handleGetReputation)
		v1.GET("/reputation", h.handleGetAllReputation)
		v1.GET("/utxo/:pkh", h.handleGetUtxoInfo)
		v1.POST("/transaction", h.handleSubmitTransaction)
	}
	return r
}

func (h *Handler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) handleGetBlockChain(c *gin.Context) {
	result := h.mgr.Snapshot(func(m *chainmgr.Manager) any {
		return gin.H{
			"tip_hash":     m.ChainTipHash.Hex(),
			"epoch":        m.CurrentEpoch,
			"block_number": m.BlockNumber,
		}
	})
	c.JSON(http.StatusOK, result)
}

func (h *Handler) handleGetBlock(c *gin.Context) {
	if _, err := chaintypes.HashFromHex(c.Param("hash")); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	// Block-by-hash lookup is a query surface over storage, not the
	// in-memory chain state this package has direct access to; wiring
	// it needs storage.ChainStateStore plumbed in here, same as
	// handleGetTransaction below.
	c.JSON(http.StatusNotImplemented, gin.H{"error": "block lookup requires a storage-backed index"})
}

func (h *Handler) handleGetTransaction(c *gin.Context) {
	// A node's transaction index is a query surface over storage, not
	// over the in-memory chain state this package has direct access to;
	// wiring this fully needs storage.ChainStateStore plumbed in here,
	// which the embedding process (cmd/witnetd) is responsible for.
	c.JSON(http.StatusNotImplemented, gin.H{"error": "transaction lookup requires a storage-backed index"})
}

// handleSubmitTransaction accepts an already-built, already-signed
// transaction's hex-encoded wire bytes and queues it for mempool
// admission. Building and signing the transaction itself is a wallet
// concern this core doesn't own (see sendValue/sendRequest above).
func (h *Handler) handleSubmitTransaction(c *gin.Context) {
	var body struct {
		Hex string `json:"hex" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	raw, err := hex.DecodeString(body.Hex)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "hex: " + err.Error()})
		return
	}
	tx, err := chaintypes.ParseTransaction(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.mgr.SubmitTransaction(*tx); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	hash, _ := tx.Hash()
	c.JSON(http.StatusOK, gin.H{"hash": hash.Hex()})
}

func (h *Handler) handleGetBalance(c *gin.Context) {
	pkh, err := chaintypes.PKHFromHex(c.Param("pkh"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	balance := h.mgr.Snapshot(func(m *chainmgr.Manager) any {
		var total chaintypes.Nanowits
		for _, ptr := range m.ByPKH.Select(pkh, utxo.BigFirst) {
			entry, ok := m.UTXO.Get(ptr)
			if ok {
				total += entry.Output.Value
			}
		}
		return total
	})
	c.JSON(http.StatusOK, gin.H{"pkh": pkh.Hex(), "balance": balance})
}

func (h *Handler) handleGetReputation(c *gin.Context) {
	pkh, err := chaintypes.PKHFromHex(c.Param("pkh"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rep := h.mgr.Snapshot(func(m *chainmgr.Manager) any {
		return uint64(m.Reputation.TRS.Total(pkh))
	})
	c.JSON(http.StatusOK, gin.H{"pkh": pkh.Hex(), "reputation": rep})
}

func (h *Handler) handleGetAllReputation(c *gin.Context) {
	all := h.mgr.Snapshot(func(m *chainmgr.Manager) any {
		members := m.Reputation.ARS.Members()
		out := make(map[string]uint64, len(members))
		for _, pkh := range members {
			out[pkh.Hex()] = uint64(m.Reputation.TRS.Total(pkh))
		}
		return out
	})
	c.JSON(http.StatusOK, all)
}

func (h *Handler) handleGetUtxoInfo(c *gin.Context) {
	pkh, err := chaintypes.PKHFromHex(c.Param("pkh"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	_, long := c.GetQuery("long")
	info := h.mgr.Snapshot(func(m *chainmgr.Manager) any {
		ptrs := m.ByPKH.Select(pkh, utxo.BigFirst)
		if !long {
			return len(ptrs)
		}
		out := make([]gin.H, 0, len(ptrs))
		for _, ptr := range ptrs {
			entry, ok := m.UTXO.Get(ptr)
			if !ok {
				continue
			}
			out = append(out, gin.H{
				"pointer": ptr.String(),
				"value":   entry.Output.Value,
			})
		}
		return out
	})
	c.JSON(http.StatusOK, info)
}
