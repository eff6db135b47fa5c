package stakes

import (
	"fmt"

	"github.com/rawblock/witnet-core/internal/chaintypes"
)

func errBelowMinimum(coins, minimum chaintypes.Nanowits) error {
	return fmt.Errorf("stakes: %d below minimum stake %d", coins, minimum)
}

func errResidueBelowMinimum(residue, minimum chaintypes.Nanowits) error {
	return fmt.Errorf("stakes: residue %d below minimum stake %d (must reach zero)", residue, minimum)
}

func errNotFound(key StakeKey) error {
	return fmt.Errorf("stakes: no entry for validator=%s withdrawer=%s", key.Validator, key.Withdrawer)
}
