// Package route implements nested partial navigation for documents made of
// <cc-route> segments.
//
// Every connected <cc-route path="..."> registers itself with its nearest
// ancestor segment, the document body being the permanent root with pattern
// "/". Navigating to a same-origin URL walks that tree to find what is
// already on screen, fetches one layout document per missing level plus a
// final part document, and swaps them in level by level:
//
//	/blog?cc-layout&          layout for the first missing level
//	/blog/42?cc-layout&       ...one per level below it
//	/blog/42?cc-part&q=1      the routed content itself
//
// Each layout response is expected to have a <cc-route path="component">
// as its first body element, with an empty <cc-route> inside marking where
// the next level goes.
//
// Overlapping navigations are resolved with a generation counter checked
// before every document mutation; a superseded navigation discards its
// results without cancelling its requests.
package route
