// Package model defines the plain data records of the vending machine: drinks
// and their recipes, completed sales, and the Snapshot aggregate that is handed
// to the persistence codec.
//
// Records here carry no behavior beyond validation and copying. The mutation
// rules live in package machine; the on-disk layout lives in package codec.
//
// Naming rules (see ValidateName) exist because the persisted document is read
// back by a heuristic scanner. Any name accepted here is guaranteed to survive
// an encode/decode round trip unchanged.
package model
