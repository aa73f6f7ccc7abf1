package route

import (
	"net/url"
	"strings"
)

// Resolution is what a navigation still has to fetch, and where the first
// fetched document goes.
type Resolution struct {
	// URLs are path-absolute, ordered root to leaf; the last one is the part.
	URLs   []string
	Target *Segment
}

// resolve walks the segment tree from root along path.
//
// A component is already on screen when the current segment has a child
// matching it (literal first, then "*") and that child hosts a slot of its
// own. The walk stops at the first component that is not; from there every
// non-empty component needs its layout, and the target is the matched leaf
// child or else the current segment's slot.
func resolve(root *Segment, path, rawQuery, layoutParam, partParam string) *Resolution {
	if root == nil || root.Slot() == nil {
		return nil
	}
	if path == "" {
		path = "/"
	}

	var (
		urls     []string
		target   *Segment
		cur      = root
		matching = true
		prefix   strings.Builder
	)
	for _, part := range strings.Split(strings.TrimPrefix(path, "/"), "/") {
		prefix.WriteByte('/')
		prefix.WriteString(part)

		if matching {
			var child *Segment
			if part != "" {
				child = cur.childFor(part)
			}
			if child != nil && child.Slot() != nil {
				cur = child
				continue
			}
			matching = false
			target = child
			if target == nil {
				target = cur.Slot()
			}
		}
		if part != "" {
			urls = append(urls, prefix.String()+"?"+layoutParam+"&")
		}
	}
	if target == nil {
		target = cur.Slot()
	}

	partPath := path
	if partPath == "/" {
		partPath = ""
	}
	urls = append(urls, partPath+"?"+partParam+"&"+rawQuery)

	return &Resolution{URLs: urls, Target: target}
}

// stripMarkers drops the layout and part parameters from a redirect target,
// leaving the other pairs in the order the server sent them.
func stripMarkers(u *url.URL, layoutParam, partParam string) *url.URL {
	out := *u
	if out.RawQuery == "" {
		return &out
	}
	pairs := strings.Split(out.RawQuery, "&")
	kept := pairs[:0]
	for _, pair := range pairs {
		key, _, _ := strings.Cut(pair, "=")
		if k, err := url.QueryUnescape(key); err == nil {
			key = k
		}
		if key == layoutParam || key == partParam {
			continue
		}
		kept = append(kept, pair)
	}
	out.RawQuery = strings.Join(kept, "&")
	return &out
}
