package reputation

import "github.com/rawblock/witnet-core/internal/chaintypes"

// ARS is the Active Reputation Set: a sliding window of the last K epochs'
// revealer sets. Membership means "revealed in any of the last K epochs".
type ARS struct {
	window   []map[chaintypes.PublicKeyHash]struct{}
	capacity int
}

// NewARS constructs an ARS with a window of `capacity` epochs.
func NewARS(capacity uint32) *ARS {
	if capacity == 0 {
		capacity = 1
	}
	return &ARS{capacity: int(capacity)}
}

// Push adds this epoch's activity set to the window, evicting the oldest
// epoch once the window exceeds its capacity.
func (a *ARS) Push(activity map[chaintypes.PublicKeyHash]struct{}) {
	cp := make(map[chaintypes.PublicKeyHash]struct{}, len(activity))
	for pkh := range activity {
		cp[pkh] = struct{}{}
	}
	a.window = append(a.window, cp)
	if len(a.window) > a.capacity {
		a.window = a.window[len(a.window)-a.capacity:]
	}
}

// IsMember reports whether pkh appears in any epoch currently in the
// window.
func (a *ARS) IsMember(pkh chaintypes.PublicKeyHash) bool {
	for _, epoch := range a.window {
		if _, ok := epoch[pkh]; ok {
			return true
		}
	}
	return false
}

// Members returns the deduplicated union of every identity currently in
// the window.
func (a *ARS) Members() []chaintypes.PublicKeyHash {
	seen := make(map[chaintypes.PublicKeyHash]struct{})
	for _, epoch := range a.window {
		for pkh := range epoch {
			seen[pkh] = struct{}{}
		}
	}
	out := make([]chaintypes.PublicKeyHash, 0, len(seen))
	for pkh := range seen {
		out = append(out, pkh)
	}
	return out
}

// Size reports how many identities are currently members.
func (a *ARS) Size() int {
	return len(a.Members())
}
