// Package main provides dtrain, the batch trainer. It reads a bitext corpus,
// decodes every source sentence into a k-best list with the lexicon decoder,
// scores the list with per-sentence BLEU against the references and learns
// the weights from pairs of hypotheses.
//
// Example:
//
//	dtrain -bitext corpus.gz -decoder_conf lexicon.txt -k 100 -epochs 10 -output weights.gz
package main
