// Package deque provides a slice-backed queue that drops from the front.
package deque

// Deque is a slice-backed queue. Elements are appended at the end and
// dropped from the front.
type Deque[Elem any] struct {
	el []Elem
	// left is the position of the leftmost valid element in el.
	// left >= len(el) implies the deque is empty.
	left int
}

// Len returns the number of elements in the deque.
func (d Deque[Elem]) Len() int {
	return len(d.el) - d.left
}

// Append adds elements to the end of the deque.
// If more than half of the backing slice is dropped space, the live elements
// are first moved to the start so that the deque doesn't grow without bound.
func (d Deque[Elem]) Append(ee ...Elem) Deque[Elem] {
	if d.left > 0 && d.left >= len(d.el)/2 {
		n := copy(d.el, d.el[d.left:])
		clear(d.el[n:])
		d.el = d.el[:n]
		d.left = 0
	}
	d.el = append(d.el, ee...)
	return d
}

// Front returns the first element of the deque.
// The second result is false if the deque is empty.
func (d Deque[Elem]) Front() (Elem, bool) {
	if d.left >= len(d.el) {
		var zero Elem
		return zero, false
	}
	return d.el[d.left], true
}

// DropFront removes n elements from the front of the deque.
// If n is negative, there is no change.
// If n is larger than the deque's size, the result is empty.
func (d Deque[Elem]) DropFront(n int) Deque[Elem] {
	if n <= 0 {
		return d
	}
	if n >= d.Len() {
		return d.Reset()
	}
	var zero Elem
	for i := d.left; i < d.left+n; i++ {
		d.el[i] = zero
	}
	d.left += n
	return d
}

// DropFrontWhile removes elements from the front of the deque until the
// predicate returns false.
func (d Deque[Elem]) DropFrontWhile(pred func(Elem) bool) Deque[Elem] {
	var zero Elem
	for d.left < len(d.el) {
		if !pred(d.el[d.left]) {
			break
		}
		d.el[d.left] = zero
		d.left++
	}
	return d
}

// Reset removes all elements from the deque.
func (d Deque[Elem]) Reset() Deque[Elem] {
	clear(d.el)
	d.el = d.el[:0]
	d.left = 0
	return d
}

// Slice returns a view into the deque's memory, oldest first.
func (d Deque[Elem]) Slice() []Elem {
	return d.el[d.left:]
}
