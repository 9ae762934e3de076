// Package router implements the conversational topic router: it owns the
// topic collection and the current-topic pointer, routes incoming messages
// and files to the best-matching topic, detects mid-conversation subject
// drift, and assembles retrieval-augmented prompts from the active topic,
// its indexed files, and registered project folder structures.
//
// Drift analysis runs on a single background worker fed by a bounded queue,
// so all topic splitting and migration is serialized while RouteMessage
// stays non-blocking. Callers that need up-to-date topic state after a
// routed message can call Wait.
package router
