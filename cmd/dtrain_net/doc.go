// Package main provides dtrain_net, the networked trainer. It answers the
// commands of one peer over a nanomsg pair socket: translate, learn from a
// source with references, tune learning rates and inspect weights. With
// -worker it instead serves a dtrain_master as downpour worker.
package main
