// Package ledger holds the two mailboxes that feed the residency controller.
//
// Producers on any goroutine report asset costs and asset usage without
// touching the registry lock. The controller drains both mailboxes at the
// start of a pass, while it holds the registry lock.
//
//   - CostLedger: mutex-guarded append, swap-and-clear drain, arrival order.
//   - UsageLog: lock-free multi-producer stack, atomic swap drain. Push never
//     blocks and every Push that returned before a Drain is seen by it.
package ledger
