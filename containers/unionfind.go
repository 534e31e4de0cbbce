package containers

// UnionFind is a disjoint-set forest with path-compressed find and
// union-by-size, ported from collections/union_find.rs.
type UnionFind struct {
	parent []int
	size   []int
}

// NewUnionFind constructs an empty forest.
func NewUnionFind() *UnionFind {
	return &UnionFind{}
}

// MakeSet adds a new singleton set and returns its id.
func (u *UnionFind) MakeSet() int {
	i := len(u.parent)
	u.parent = append(u.parent, i)
	u.size = append(u.size, 1)
	return i
}

// Find returns the representative (root) of x's set, without path
// compression.
func (u *UnionFind) Find(x int) int {
	root := x
	for u.parent[root] != root {
		root = u.parent[root]
	}
	return root
}

// findCompress returns the representative of x's set, compressing every
// node visited along the way to point directly at the root.
func (u *UnionFind) findCompress(x int) int {
	root := x
	for u.parent[root] != root {
		root = u.parent[root]
	}
	for x != root {
		next := u.parent[x]
		u.parent[x] = root
		x = next
	}
	return root
}

// Union merges the sets containing x and y, attaching the smaller set's
// root under the larger set's root (ties attach x under y).
func (u *UnionFind) Union(x, y int) {
	x = u.findCompress(x)
	y = u.findCompress(y)
	if x == y {
		return
	}

	xSize, ySize := u.size[x], u.size[y]
	if xSize > ySize {
		u.parent[y] = x
		u.size[x] += ySize
	} else {
		u.parent[x] = y
		u.size[y] += xSize
	}
}

// Size returns the number of ids in x's component.
func (u *UnionFind) Size(x int) int {
	return u.size[u.Find(x)]
}

// Largest returns the root of the largest component, or false if the
// forest is empty.
func (u *UnionFind) Largest() (int, bool) {
	best := -1
	bestSize := -1
	for i, p := range u.parent {
		if p != i {
			continue // not a root
		}
		if u.size[i] > bestSize {
			best, bestSize = i, u.size[i]
		}
	}
	return best, best >= 0
}

// Sizes returns the size of every component, one entry per root, in an
// unspecified order (matching the Rust original's Iterator<Item = usize>).
func (u *UnionFind) Sizes() []int {
	var sizes []int
	for i, p := range u.parent {
		if p == i {
			sizes = append(sizes, u.size[i])
		}
	}
	return sizes
}

// UnionFindIndex wraps a UnionFind with a lazily-assigned dense id space
// keyed by arbitrary byte-string labels, the way callers that union graph
// edges identified by column values need. Grounded on the lazily-grown id
// assignment in menu/fuzzy/recordidset.go.
type UnionFindIndex struct {
	inner *UnionFind
	ids   map[string]int
	nodes []string
}

// NewUnionFindIndex constructs an empty indexed union-find.
func NewUnionFindIndex() *UnionFindIndex {
	return &UnionFindIndex{inner: NewUnionFind(), ids: make(map[string]int)}
}

// idFor returns the dense id for label, assigning a new one on first sight.
func (u *UnionFindIndex) idFor(label string) int {
	if id, ok := u.ids[label]; ok {
		return id
	}
	id := u.inner.MakeSet()
	u.ids[label] = id
	u.nodes = append(u.nodes, label)
	return id
}

// Union merges the components containing the two labels.
func (u *UnionFindIndex) Union(a, b string) {
	u.inner.Union(u.idFor(a), u.idFor(b))
}

// Find returns the representative label of the component containing label,
// i.e. an arbitrary member used consistently as that component's tag.
func (u *UnionFindIndex) Find(label string) (string, bool) {
	id, ok := u.ids[label]
	if !ok {
		return "", false
	}
	return u.nodes[u.inner.Find(id)], true
}

// Size returns the size of the component containing label.
func (u *UnionFindIndex) Size(label string) int {
	id, ok := u.ids[label]
	if !ok {
		return 0
	}
	return u.inner.Size(id)
}

// LargestComponentLabels returns every label belonging to the largest
// component.
func (u *UnionFindIndex) LargestComponentLabels() []string {
	root, ok := u.inner.Largest()
	if !ok {
		return nil
	}
	var out []string
	for _, label := range u.nodes {
		if u.inner.Find(u.ids[label]) == root {
			out = append(out, label)
		}
	}
	return out
}

// Sizes returns the size of every component, one entry per root, in an
// unspecified order.
func (u *UnionFindIndex) Sizes() []int {
	return u.inner.Sizes()
}
