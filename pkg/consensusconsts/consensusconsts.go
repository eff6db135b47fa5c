// Package consensusconsts holds the tunable constants every other package
// reads instead of hardcoding a magic number: activation epochs, fees,
// weights, minimums. A single ConsensusConstants value is threaded through
// chainmgr and handed down to whichever component needs it.
package consensusconsts

import "github.com/rawblock/witnet-core/internal/chaintypes"

// ConsensusConstants bundles every magic number referenced by more than one
// package. Components take the whole struct (or the one field they need)
// rather than a bag of individual arguments — matching the teacher's
// bitcoin.NetworkParams threading pattern.
type ConsensusConstants struct {
	CollateralMinimum chaintypes.Nanowits
	CollateralAge     uint32 // blocks a collateral input must have aged before it's usable again
	MinimumStake      chaintypes.Nanowits
	NanowitsPerWit    uint64

	MiningReplicationFactor uint32 // multiplier in the VRF eligibility target, capped at the ARS size

	ActivityPeriod uint32 // ARS sliding-window size K, in epochs

	ReputationIssuance           uint64 // reputation points minted per unit of alpha advance, pre-issuance-stop
	ReputationIssuanceStop       uint64 // total reputation issued after which issuance stops
	ReputationPenalizationFactor float64
	ReputationExpireAlphaDiff    chaintypes.Alpha // TRS expiry window, in alpha units

	MaxCoinAge uint32 // cap on coin-age weighting for stakes/collateral

	ExtraCommitRounds uint32
	ExtraRevealRounds uint32

	InitialBlockReward       chaintypes.Nanowits
	BlockRewardHalvingPeriod chaintypes.Epoch // epochs between reward halvings, 0 disables halving

	ValueTransferWeightLimit uint32 // max summed wire-byte weight per block, by transaction group
	DataRequestWeightLimit   uint32
	StakeWeightLimit         uint32
	UnstakeWeightLimit       uint32

	SuperblockPeriod        uint32 // epochs between superblocks
	CheckpointZeroTimestamp int64
	CheckpointsPeriod       int64 // seconds per epoch

	WIP0017ActivationEpoch chaintypes.Epoch // median reducer
	WIP0019ActivationEpoch chaintypes.Epoch // hash-concatenate reducer
	WIP0024ActivationEpoch chaintypes.Epoch // localized number-separator args
	Bn256ActivationEpoch   chaintypes.Epoch // reputation-based mining bootstrap cutover
	V2ActivationEpoch      chaintypes.Epoch // stake/unstake transactions + canonical block shape
}

// Mainnet returns the constant set used by the production network. Values
// mirror the source implementation's mainnet defaults; epochs convert
// 45-second mainnet checkpoints.
func Mainnet() ConsensusConstants {
	return ConsensusConstants{
		CollateralMinimum:            20_000_000_000,
		CollateralAge:                2_000,
		MinimumStake:                 10_000_000_000_000,
		NanowitsPerWit:               1_000_000_000,
		MiningReplicationFactor:      3,
		ActivityPeriod:               2_000,
		ReputationIssuance:           1,
		ReputationIssuanceStop:       2_477_200,
		ReputationPenalizationFactor: 0.5,
		ReputationExpireAlphaDiff:    20_000,
		MaxCoinAge:                  100_000,
		ExtraCommitRounds:           2,
		ExtraRevealRounds:           2,
		InitialBlockReward:          250_000_000_000,
		BlockRewardHalvingPeriod:    1_750_000,
		ValueTransferWeightLimit:    20_000_000,
		DataRequestWeightLimit:      80_000_000,
		StakeWeightLimit:            10_000_000,
		UnstakeWeightLimit:          10_000_000,
		SuperblockPeriod:            10,
		CheckpointZeroTimestamp:     1_602_666_000,
		CheckpointsPeriod:           45,
		WIP0017ActivationEpoch:      889_000,
		WIP0019ActivationEpoch:      889_000,
		WIP0024ActivationEpoch:      1_059_200,
		Bn256ActivationEpoch:        1_400_000,
		V2ActivationEpoch:           1_500_000,
	}
}

// EpochAt returns the epoch containing unixTimestamp, or ok=false if the
// timestamp precedes genesis.
func (c ConsensusConstants) EpochAt(unixTimestamp int64) (epoch chaintypes.Epoch, ok bool) {
	if unixTimestamp < c.CheckpointZeroTimestamp {
		return 0, false
	}
	if c.CheckpointsPeriod <= 0 {
		return 0, false
	}
	return chaintypes.Epoch((unixTimestamp - c.CheckpointZeroTimestamp) / c.CheckpointsPeriod), true
}

// EpochTimestamp returns the unix timestamp at which epoch begins.
func (c ConsensusConstants) EpochTimestamp(epoch chaintypes.Epoch) int64 {
	return c.CheckpointZeroTimestamp + int64(epoch)*c.CheckpointsPeriod
}

// BlockReward returns the mint-eligible reward for epoch, halving every
// BlockRewardHalvingPeriod epochs (0 disables halving — the reward is
// constant). Saturates to zero rather than wrapping once halved past 63
// times, mirroring Bitcoin's own halving schedule ground-out-to-zero tail.
func (c ConsensusConstants) BlockReward(epoch chaintypes.Epoch) chaintypes.Nanowits {
	if c.BlockRewardHalvingPeriod == 0 {
		return c.InitialBlockReward
	}
	halvings := uint64(epoch) / uint64(c.BlockRewardHalvingPeriod)
	if halvings >= 64 {
		return 0
	}
	return c.InitialBlockReward >> halvings
}
