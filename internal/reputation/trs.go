package reputation

import "github.com/rawblock/witnet-core/internal/chaintypes"

// Reputation is a raw reputation point count. Penalization subtracts from
// it but never takes it below zero.
type Reputation uint64

type trsPacket struct {
	expiration chaintypes.Alpha
	amounts    map[chaintypes.PublicKeyHash]Reputation
}

// TRS is the Total Reputation Set: a queue of (expiration_alpha,
// per-identity amount) packets ordered by expiration, plus a cached total
// per identity kept in lockstep so callers never have to walk the queue to
// answer "how much reputation does PKH have right now".
type TRS struct {
	queue []trsPacket
	cache map[chaintypes.PublicKeyHash]Reputation
}

// NewTRS constructs an empty TRS.
func NewTRS() *TRS {
	return &TRS{cache: make(map[chaintypes.PublicKeyHash]Reputation)}
}

// Total returns pkh's current cached reputation.
func (t *TRS) Total(pkh chaintypes.PublicKeyHash) Reputation {
	return t.cache[pkh]
}

// Gain appends a new packet expiring at `expiration`, crediting each PKH in
// diffs. To keep the queue ordered by expiration, an expiration earlier
// than the last packet's is raised to the last packet's expiration (the
// engine never calls it out of order in practice, since alpha only
// increases).
func (t *TRS) Gain(expiration chaintypes.Alpha, diffs map[chaintypes.PublicKeyHash]Reputation) {
	if len(t.queue) > 0 && expiration < t.queue[len(t.queue)-1].expiration {
		expiration = t.queue[len(t.queue)-1].expiration
	}
	packet := trsPacket{expiration: expiration, amounts: make(map[chaintypes.PublicKeyHash]Reputation, len(diffs))}
	for pkh, amount := range diffs {
		if amount == 0 {
			continue
		}
		packet.amounts[pkh] = amount
		t.cache[pkh] += amount
	}
	t.queue = append(t.queue, packet)
}

// Expire pops every packet with expiration <= alpha and returns the total
// reputation that expired, summed across all identities. Idempotent: a
// second call at the same alpha finds nothing left to pop and returns 0.
func (t *TRS) Expire(alpha chaintypes.Alpha) uint64 {
	var expiredTotal uint64
	i := 0
	for ; i < len(t.queue); i++ {
		if t.queue[i].expiration > alpha {
			break
		}
		for pkh, amount := range t.queue[i].amounts {
			expiredTotal += uint64(amount)
			if t.cache[pkh] <= amount {
				delete(t.cache, pkh)
			} else {
				t.cache[pkh] -= amount
			}
		}
	}
	t.queue = t.queue[i:]
	return expiredTotal
}

// Penalize subtracts up to `amount` reputation from pkh, walking its
// packets most-recent-first (LIFO) until amount is consumed or pkh's
// packets run out. Returns the amount actually subtracted (never takes an
// identity negative, so it caps at pkh's current total).
func (t *TRS) Penalize(pkh chaintypes.PublicKeyHash, amount uint64) uint64 {
	if amount == 0 {
		return 0
	}
	current := uint64(t.cache[pkh])
	if amount > current {
		amount = current
	}
	remaining := amount
	for i := len(t.queue) - 1; i >= 0 && remaining > 0; i-- {
		have, ok := t.queue[i].amounts[pkh]
		if !ok || have == 0 {
			continue
		}
		take := uint64(have)
		if take > remaining {
			take = remaining
		}
		t.queue[i].amounts[pkh] = have - Reputation(take)
		if t.queue[i].amounts[pkh] == 0 {
			delete(t.queue[i].amounts, pkh)
		}
		remaining -= take
	}
	subtracted := amount - remaining
	if t.cache[pkh] <= Reputation(subtracted) {
		delete(t.cache, pkh)
	} else {
		t.cache[pkh] -= Reputation(subtracted)
	}
	return subtracted
}
