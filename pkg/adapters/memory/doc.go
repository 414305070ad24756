// Package memory provides the in-process edge implementation.
//
// Edges exchange data through a Store owned by whoever builds the factory,
// usually one per graph. Delivered entries are removed from the store, so
// two consumers of the same stream compete for its payloads.
package memory
