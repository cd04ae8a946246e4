package types

import "github.com/ccoin/txbuilder/pkg/amount"

// UnsignedTransaction is the transaction skeleton after bundle
// finalization (phase 3) but before the digest has been computed (phase
// 5) or any signature/Orchard proof applied (phase 6). The digest engine
// consumes exactly this shape; no field below may change after it runs.
type UnsignedTransaction struct {
	Version  uint32
	Branch   BranchId
	LockTime uint32
	Expiry   uint32
	Fee      amount.Amount

	Transparent *TransparentBundle // nil if the pool is unused
	Sapling     *SaplingBundle     // nil if the pool is unused
	Orchard     *OrchardBundle     // nil if the pool is unused
	Tze         *TzeBundle         // nil if the pool is unused
}

// Transaction is the authorized transaction skeleton emitted by a
// successful Build: every bundle present has had its signatures (and, for
// Orchard, its proof) applied, and TxId has been frozen.
type Transaction struct {
	TxId TxId

	Version  uint32
	Branch   BranchId
	LockTime uint32
	Expiry   uint32
	Fee      amount.Amount

	Transparent *TransparentBundle
	Sapling     *SaplingBundle
	Orchard     *OrchardBundle
	Tze         *TzeBundle
}

// SaplingMetadata records where each logical Sapling output the caller
// added ended up in the bundle. This core preserves insertion order (no
// ZIP-212-style shuffling), so OutputIndex(i) == i, but the type is kept
// so callers written against a shuffling builder still compile.
type SaplingMetadata struct {
	outputPositions []int
}

// NewSaplingMetadata builds identity-mapped metadata for n outputs.
func NewSaplingMetadata(n int) *SaplingMetadata {
	positions := make([]int, n)
	for i := range positions {
		positions[i] = i
	}
	return &SaplingMetadata{outputPositions: positions}
}

// OutputIndex returns the bundle position of the i-th logical output
// added via AddSaplingOutput.
func (m *SaplingMetadata) OutputIndex(i int) int {
	return m.outputPositions[i]
}

// ProgressEvent reports build progress: completed steps so far, and the
// total expected (unknown, i.e. 0, until Sapling bundle finalization
// begins — callers must treat total==0 as "not yet known", matching the
// Option<u32> of the reference implementation).
type ProgressEvent struct {
	Completed uint32
	Total     uint32 // 0 means "unknown"
}
