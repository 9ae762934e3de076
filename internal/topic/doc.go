// Package topic models a conversational segment: an ordered message history
// with index-aligned embeddings, a file index keyed by path, a folder
// structure tree, and a description embedding used for routing.
//
// A Topic is created unnamed and acquires its name and description later,
// once enough history has accumulated for the summarizer to characterize it.
// Topics are never destroyed; they accumulate history and files for the
// lifetime of the router that owns them.
package topic
