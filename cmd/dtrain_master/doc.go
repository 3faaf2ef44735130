// Package main provides dtrain_master, the downpour master. It listens for
// one dtrain_net -worker -dial per address, hands the corpus out round-robin
// and averages the updates the workers send back into its weights.
//
// Example:
//
//	dtrain_master -input corpus -workers tcp://127.0.0.1:60666,tcp://127.0.0.1:60667 -epochs 3
package main
