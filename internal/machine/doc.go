// Package machine is the vending machine state engine.
//
// A Machine owns the drink catalog, the ingredient inventory and unit costs,
// the cash and profit ledger, the sales journal and the drink image paths. All
// operations are synchronous and serialized by one mutex. Every mutation is
// validated up front and then persisted through a Persister before the call
// returns; a failed persist is reported as a *PersistError while the in-memory
// change stands.
//
// Open loads the last saved state. When nothing usable is found (no document,
// an empty one, or one that does not decode) the machine starts from Defaults
// and says so in the log.
package machine
