// Package lotbook reconstructs equity positions from a brokerage's trade
// execution log.
//
// The log is a stream of normalized TradeRecord values: cash buys and sells,
// margin opens and closes, deposits in kind and KENIN settlements that turn a
// margin position into a cash holding. From it the engine derives, per
// security and per lot class (cash or margin), the remaining quantity and a
// moving-average cost basis:
//   - Lot aggregation: Aggregate walks a chronological lot sub-stream and
//     blends every buy into a running average. A lot that returns to zero
//     forgets its cost, so a later buy starts a fresh average.
//   - Position summary: Summarizer partitions the log by security, computes
//     each lot quantity by plain arithmetic and asks the aggregator for its
//     average cost.
//   - Manual overrides: Merge lets the trader replace, delete or add positions
//     to reconcile broker feed gaps.
//
// The engine is stateless. Positions are recomputed from the full log on every
// read, and malformed input degrades to a best-effort answer instead of an
// error: numbers coerce to zero, header rows and records without a security
// are dropped, records that belong to no lot are ignored.
//
// The package also carries the JSONL encoding of records, overrides and
// annotations used by the `lotbook` command line tool.
package lotbook
