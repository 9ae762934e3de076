// Package summarizer provides the generative service used to name topic
// segments. A Client turns a message history into free-form text; this
// package also parses that text into the (name, description) pair the
// router needs. Retry policy for malformed responses lives with the
// caller, since the trigger for re-attempting is conversational.
package summarizer
