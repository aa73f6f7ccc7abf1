// Package dom is a headless document model over golang.org/x/net/html.
//
// A Document owns one parsed tree and is the only way to mutate it: every
// insertion, removal and attribute write goes through Document methods so
// that registered MutationObservers see elements connect and disconnect in
// tree order. Events bubble from their target through the parent chain.
//
// Nothing in this package is safe for concurrent use. The browser package
// serializes access behind its main-thread lock.
package dom
