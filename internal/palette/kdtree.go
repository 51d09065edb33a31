package palette

import (
	"math"
	"sort"

	"github.com/ironsheep/emoji-art-mcp/internal/colorspace"
)

// node is one palette entry in the tree. Children are owned exclusively.
type node struct {
	entry       Entry
	axis        int
	left, right *node
}

// Tree is a static k-d tree over palette entries in Lab space.
//
// A Tree is never modified after Build and is safe for concurrent reads.
type Tree struct {
	root *node
	size int
}

// Build constructs a balanced k-d tree containing one node per entry.
//
// At depth d the entries are stably sorted on Lab axis d mod 3 and the entry
// at index n/2 becomes the node. Equal axis values keep their input order, so
// the shape of the tree depends only on the input. entries is not modified.
func Build(entries []Entry) *Tree {
	points := make([]Entry, len(entries))
	copy(points, entries)
	return &Tree{
		root: buildNode(points, 0),
		size: len(points),
	}
}

func buildNode(points []Entry, depth int) *node {
	if len(points) == 0 {
		return nil
	}

	axis := depth % 3
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Lab.Axis(axis) < points[j].Lab.Axis(axis)
	})

	median := len(points) / 2
	return &node{
		entry: points[median],
		axis:  axis,
		left:  buildNode(points[:median], depth+1),
		right: buildNode(points[median+1:], depth+1),
	}
}

// Len returns the number of entries in the tree.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return t.size
}

// Depth returns the number of nodes on the longest root-to-leaf path.
func (t *Tree) Depth() int {
	if t == nil {
		return 0
	}
	return depthOf(t.root)
}

func depthOf(n *node) int {
	if n == nil {
		return 0
	}
	return 1 + max(depthOf(n.left), depthOf(n.right))
}

// nearest tracks the best candidate during a search.
type nearest struct {
	node *node
	dist float64
}

// Nearest returns the entry whose Lab color is closest to target.
//
// The second result is false when the tree is empty. When several entries are
// equally close, the first one visited wins.
func (t *Tree) Nearest(target colorspace.Lab) (Entry, bool) {
	if t == nil || t.root == nil {
		return Entry{}, false
	}

	best := nearest{dist: math.Inf(1)}
	search(t.root, target, &best)
	if best.node == nil {
		return Entry{}, false
	}
	return best.node.entry, true
}

// Symbol returns the symbol nearest to target, or Blank for an empty tree.
func (t *Tree) Symbol(target colorspace.Lab) string {
	entry, ok := t.Nearest(target)
	if !ok {
		return Blank
	}
	return entry.Symbol
}

func search(n *node, target colorspace.Lab, best *nearest) {
	if n == nil {
		return
	}

	if d := colorspace.Distance(target, n.entry.Lab); d < best.dist {
		best.node = n
		best.dist = d
	}

	diff := target.Axis(n.axis) - n.entry.Lab.Axis(n.axis)
	first, second := n.right, n.left
	if diff < 0 {
		first, second = n.left, n.right
	}

	search(first, target, best)

	// The far side can only hold a closer entry if the splitting plane is
	// nearer than the current best.
	if math.Abs(diff) < best.dist {
		search(second, target, best)
	}
}
