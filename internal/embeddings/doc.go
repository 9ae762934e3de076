// Package embeddings provides embedding generation and caching.
//
// The Service talks to a TEI-compatible HTTP endpoint. The Cache memoizes
// text-to-vector lookups in front of any Embedder and guarantees at most
// one in-flight computation per distinct text, even under concurrent
// requests for the same text.
package embeddings
