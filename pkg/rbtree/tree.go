package rbtree

type color bool

const (
	red   color = true
	black color = false
)

type node[V any] struct {
	key    uint64
	val    V
	color  color
	left   *node[V]
	right  *node[V]
	parent *node[V]
}

// Tree is an ordered index from uint64 keys to values of type V.
// The zero value is an empty, ready-to-use tree.
type Tree[V any] struct {
	root *node[V]
	size int
}

// Len returns the number of entries in the tree.
func (t *Tree[V]) Len() int {
	return t.size
}

// Get returns the value stored under key, if any.
func (t *Tree[V]) Get(key uint64) (V, bool) {
	n := t.find(key)
	if n == nil {
		var zero V
		return zero, false
	}
	return n.val, true
}

func (t *Tree[V]) find(key uint64) *node[V] {
	n := t.root
	for n != nil {
		switch {
		case key == n.key:
			return n
		case key < n.key:
			n = n.left
		default:
			n = n.right
		}
	}
	return nil
}

// Insert adds key/val to the tree. It rejects duplicates: if key is
// already present, Insert leaves the tree unmodified and returns false.
func (t *Tree[V]) Insert(key uint64, val V) bool {
	var parent *node[V]
	cur := t.root
	for cur != nil {
		parent = cur
		switch {
		case key == cur.key:
			return false
		case key < cur.key:
			cur = cur.left
		default:
			cur = cur.right
		}
	}

	n := &node[V]{key: key, val: val, color: red, parent: parent}
	switch {
	case parent == nil:
		t.root = n
	case key < parent.key:
		parent.left = n
	default:
		parent.right = n
	}
	t.size++
	t.insertFixup(n)
	return true
}

func (t *Tree[V]) insertFixup(n *node[V]) {
	for n.parent != nil && n.parent.color == red {
		parent := n.parent
		grandparent := parent.parent
		if grandparent == nil {
			break
		}
		if parent == grandparent.left {
			uncle := grandparent.right
			if isRed(uncle) {
				parent.color = black
				uncle.color = black
				grandparent.color = red
				n = grandparent
				continue
			}
			if n == parent.right {
				n = parent
				t.rotateLeft(n)
				parent = n.parent
			}
			parent.color = black
			grandparent.color = red
			t.rotateRight(grandparent)
		} else {
			uncle := grandparent.left
			if isRed(uncle) {
				parent.color = black
				uncle.color = black
				grandparent.color = red
				n = grandparent
				continue
			}
			if n == parent.left {
				n = parent
				t.rotateRight(n)
				parent = n.parent
			}
			parent.color = black
			grandparent.color = red
			t.rotateLeft(grandparent)
		}
	}
	t.root.color = black
}

// Delete removes key from the tree, if present, and reports whether it
// was found.
func (t *Tree[V]) Delete(key uint64) bool {
	n := t.find(key)
	if n == nil {
		return false
	}
	t.deleteNode(n)
	t.size--
	return true
}

func (t *Tree[V]) deleteNode(z *node[V]) {
	y := z
	yOriginalColor := y.color
	var x *node[V]
	var xParent *node[V]

	switch {
	case z.left == nil:
		x = z.right
		xParent = z.parent
		t.transplant(z, z.right)
	case z.right == nil:
		x = z.left
		xParent = z.parent
		t.transplant(z, z.left)
	default:
		y = minimum(z.right)
		yOriginalColor = y.color
		x = y.right
		if y.parent == z {
			xParent = y
		} else {
			xParent = y.parent
			t.transplant(y, y.right)
			y.right = z.right
			y.right.parent = y
		}
		t.transplant(z, y)
		y.left = z.left
		y.left.parent = y
		y.color = z.color
	}

	if yOriginalColor == black {
		t.deleteFixup(x, xParent)
	}
}

func (t *Tree[V]) transplant(u, v *node[V]) {
	switch {
	case u.parent == nil:
		t.root = v
	case u == u.parent.left:
		u.parent.left = v
	default:
		u.parent.right = v
	}
	if v != nil {
		v.parent = u.parent
	}
}

func (t *Tree[V]) deleteFixup(x, parent *node[V]) {
	for x != t.root && !isRed(x) {
		if x == nil && parent == nil {
			break
		}
		if x == parent.left {
			sibling := parent.right
			if isRed(sibling) {
				sibling.color = black
				parent.color = red
				t.rotateLeft(parent)
				sibling = parent.right
			}
			if !isRed(leftOf(sibling)) && !isRed(rightOf(sibling)) {
				if sibling != nil {
					sibling.color = red
				}
				x = parent
				parent = x.parent
				continue
			}
			if !isRed(rightOf(sibling)) {
				if sibling.left != nil {
					sibling.left.color = black
				}
				sibling.color = red
				t.rotateRight(sibling)
				sibling = parent.right
			}
			sibling.color = parent.color
			parent.color = black
			if sibling.right != nil {
				sibling.right.color = black
			}
			t.rotateLeft(parent)
			x = t.root
			parent = nil
		} else {
			sibling := parent.left
			if isRed(sibling) {
				sibling.color = black
				parent.color = red
				t.rotateRight(parent)
				sibling = parent.left
			}
			if !isRed(leftOf(sibling)) && !isRed(rightOf(sibling)) {
				if sibling != nil {
					sibling.color = red
				}
				x = parent
				parent = x.parent
				continue
			}
			if !isRed(leftOf(sibling)) {
				if sibling.right != nil {
					sibling.right.color = black
				}
				sibling.color = red
				t.rotateLeft(sibling)
				sibling = parent.left
			}
			sibling.color = parent.color
			parent.color = black
			if sibling.left != nil {
				sibling.left.color = black
			}
			t.rotateRight(parent)
			x = t.root
			parent = nil
		}
	}
	if x != nil {
		x.color = black
	}
}

func leftOf[V any](n *node[V]) *node[V] {
	if n == nil {
		return nil
	}
	return n.left
}

func rightOf[V any](n *node[V]) *node[V] {
	if n == nil {
		return nil
	}
	return n.right
}

func isRed[V any](n *node[V]) bool {
	return n != nil && n.color == red
}

func minimum[V any](n *node[V]) *node[V] {
	for n.left != nil {
		n = n.left
	}
	return n
}

func maximum[V any](n *node[V]) *node[V] {
	for n.right != nil {
		n = n.right
	}
	return n
}

func (t *Tree[V]) rotateLeft(x *node[V]) {
	y := x.right
	x.right = y.left
	if y.left != nil {
		y.left.parent = x
	}
	y.parent = x.parent
	switch {
	case x.parent == nil:
		t.root = y
	case x == x.parent.left:
		x.parent.left = y
	default:
		x.parent.right = y
	}
	y.left = x
	x.parent = y
}

func (t *Tree[V]) rotateRight(x *node[V]) {
	y := x.left
	x.left = y.right
	if y.right != nil {
		y.right.parent = x
	}
	y.parent = x.parent
	switch {
	case x.parent == nil:
		t.root = y
	case x == x.parent.right:
		x.parent.right = y
	default:
		x.parent.left = y
	}
	y.right = x
	x.parent = y
}

// First returns the smallest key in the tree.
func (t *Tree[V]) First() (uint64, V, bool) {
	if t.root == nil {
		var zero V
		return 0, zero, false
	}
	n := minimum(t.root)
	return n.key, n.val, true
}

// Last returns the largest key in the tree.
func (t *Tree[V]) Last() (uint64, V, bool) {
	if t.root == nil {
		var zero V
		return 0, zero, false
	}
	n := maximum(t.root)
	return n.key, n.val, true
}

// ClosestSmaller returns the greatest key <= query, the primitive that
// resolves an arbitrary address to its owning allocation.
func (t *Tree[V]) ClosestSmaller(query uint64) (uint64, V, bool) {
	var best *node[V]
	n := t.root
	for n != nil {
		switch {
		case n.key == query:
			return n.key, n.val, true
		case n.key < query:
			best = n
			n = n.right
		default:
			n = n.left
		}
	}
	if best == nil {
		var zero V
		return 0, zero, false
	}
	return best.key, best.val, true
}

// ClosestLarger returns the smallest key >= query.
func (t *Tree[V]) ClosestLarger(query uint64) (uint64, V, bool) {
	var best *node[V]
	n := t.root
	for n != nil {
		switch {
		case n.key == query:
			return n.key, n.val, true
		case n.key > query:
			best = n
			n = n.left
		default:
			n = n.right
		}
	}
	if best == nil {
		var zero V
		return 0, zero, false
	}
	return best.key, best.val, true
}

// Each walks the tree in ascending key order, calling fn for every entry.
// Iteration stops early if fn returns false.
func (t *Tree[V]) Each(fn func(key uint64, val V) bool) {
	each(t.root, fn)
}

func each[V any](n *node[V], fn func(uint64, V) bool) bool {
	if n == nil {
		return true
	}
	if !each(n.left, fn) {
		return false
	}
	if !fn(n.key, n.val) {
		return false
	}
	return each(n.right, fn)
}

// EachReverse walks the tree in descending key order.
func (t *Tree[V]) EachReverse(fn func(key uint64, val V) bool) {
	eachReverse(t.root, fn)
}

func eachReverse[V any](n *node[V], fn func(uint64, V) bool) bool {
	if n == nil {
		return true
	}
	if !eachReverse(n.right, fn) {
		return false
	}
	if !fn(n.key, n.val) {
		return false
	}
	return eachReverse(n.left, fn)
}

// Move transfers ownership of every node to a freshly returned tree and
// empties the receiver. It mirrors the destructive "move" operation the
// foreign-function boundary exposes on the source map: the caller hands
// the index to a new container without walking or copying nodes.
func (t *Tree[V]) Move() *Tree[V] {
	moved := &Tree[V]{root: t.root, size: t.size}
	t.root = nil
	t.size = 0
	return moved
}
