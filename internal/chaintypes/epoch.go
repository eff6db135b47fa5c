package chaintypes

// Epoch is a monotonically increasing checkpoint counter. One epoch is
// approximately one checkpoint period (ConsensusConstants.CheckpointsPeriod
// seconds of wall-clock time).
type Epoch uint32

// Alpha is the global witnessing-act counter: it increases by the number of
// reveals included in each consolidated tally. Reputation packets are
// indexed by the Alpha value at which they expire.
type Alpha uint64
