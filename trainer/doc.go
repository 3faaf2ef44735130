// Package trainer runs the epoch loop of online pairwise-ranking training.
// Every sentence of the corpus is decoded into a k-best list, the list is
// scored against the references, sampled into pairs and the weights are
// updated from the pairs. At the end the weights of the last, the best or
// the averaged epoch are selected.
package trainer
