package core

import (
	"fmt"
	"iter"
	"time"
)

// node owns its event and both subtrees. Every event in the left subtree ends
// at or before this event starts; every event in the right subtree starts at
// or after it ends.
type node struct {
	event *Event
	left  *node
	right *node
}

// EventStore is an unbalanced binary search tree of events keyed by start
// time. No two stored events overlap. It is not safe for concurrent use.
type EventStore struct {
	root *node
	size int
}

func NewEventStore() *EventStore {
	return &EventStore{}
}

func (s *EventStore) Len() int {
	return s.size
}

// Insert attaches event as a new leaf. If its interval overlaps any stored
// event the tree is left untouched and ErrEventOverlap is returned.
func (s *EventStore) Insert(event *Event) error {
	if event == nil {
		return fmt.Errorf("%w: nil event", ErrInvalidEvent)
	}

	root, err := insert(s.root, event)
	if err != nil {
		return err
	}

	s.root = root
	s.size++

	return nil
}

func insert(n *node, event *Event) (*node, error) {
	if n == nil {
		return &node{event: event}, nil
	}

	switch {
	case !event.End().After(n.event.Start()):
		left, err := insert(n.left, event)
		if err != nil {
			return n, err
		}

		n.left = left
	case !event.Start().Before(n.event.End()):
		right, err := insert(n.right, event)
		if err != nil {
			return n, err
		}

		n.right = right
	default:
		return n, overlapError(event, n.event)
	}

	return n, nil
}

// FindByID searches the whole tree; identifiers are not the sort key.
func (s *EventStore) FindByID(id int) (*Event, error) {
	n := findNode(s.root, id)
	if n == nil {
		return nil, notFoundError(id)
	}

	return n.event, nil
}

func findNode(n *node, id int) *node {
	if n == nil {
		return nil
	}

	if n.event.ID == id {
		return n
	}

	if found := findNode(n.left, id); found != nil {
		return found
	}

	return findNode(n.right, id)
}

// findPath returns the nodes from n down to the node holding id, or nil.
func findPath(n *node, id int, path []*node) []*node {
	if n == nil {
		return nil
	}

	path = append(path, n)
	if n.event.ID == id {
		return path
	}

	if found := findPath(n.left, id, path); found != nil {
		return found
	}

	return findPath(n.right, id, path)
}

// Delete removes the event with the given id and returns it.
func (s *EventStore) Delete(id int) (*Event, error) {
	root, removed := remove(s.root, id)
	if removed == nil {
		return nil, notFoundError(id)
	}

	s.root = root
	s.size--

	return removed, nil
}

func remove(n *node, id int) (*node, *Event) {
	if n == nil {
		return nil, nil
	}

	if n.event.ID != id {
		left, removed := remove(n.left, id)
		n.left = left

		if removed != nil {
			return n, removed
		}

		right, removed := remove(n.right, id)
		n.right = right

		return n, removed
	}

	removed := n.event

	switch {
	case n.left == nil:
		child := n.right
		release(n)

		return child, removed
	case n.right == nil:
		child := n.left
		release(n)

		return child, removed
	}

	successor := findMin(n.right)
	n.event = successor.event
	n.right = removeMin(n.right)

	return n, removed
}

func findMin(n *node) *node {
	for n != nil && n.left != nil {
		n = n.left
	}

	return n
}

func findMax(n *node) *node {
	for n != nil && n.right != nil {
		n = n.right
	}

	return n
}

// removeMin unlinks the leftmost node of n. Its event has already been moved
// into the deleted node, so only the node itself is released.
func removeMin(n *node) *node {
	if n.left == nil {
		right := n.right
		n.event, n.right = nil, nil

		return right
	}

	n.left = removeMin(n.left)

	return n
}

func release(n *node) {
	n.event, n.left, n.right = nil, nil, nil
}

// All yields the stored events in ascending start order. Each call starts a
// fresh traversal. The store must not be mutated while iterating.
func (s *EventStore) All() iter.Seq[*Event] {
	return func(yield func(*Event) bool) {
		var stack []*node

		n := s.root
		for n != nil || len(stack) > 0 {
			for n != nil {
				stack = append(stack, n)
				n = n.left
			}

			n = stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if !yield(n.event) {
				return
			}

			n = n.right
		}
	}
}

// Overlapping returns, in start order, the events intersecting [from, to).
// With inclusive set, events that merely touch the window also match.
// Subtrees that cannot reach the window are skipped.
func (s *EventStore) Overlapping(from time.Time, to time.Time, inclusive bool) []*Event {
	var out []*Event

	collectOverlapping(s.root, from, to, inclusive, &out)

	return out
}

func collectOverlapping(n *node, from time.Time, to time.Time, inclusive bool, out *[]*Event) {
	if n == nil {
		return
	}

	start, end := n.event.Start(), n.event.End()

	if start.After(from) || (inclusive && start.Equal(from)) {
		collectOverlapping(n.left, from, to, inclusive, out)
	}

	if intersects(start, end, from, to, inclusive) {
		*out = append(*out, n.event)
	}

	if end.Before(to) || (inclusive && end.Equal(to)) {
		collectOverlapping(n.right, from, to, inclusive, out)
	}
}

func intersects(start time.Time, end time.Time, from time.Time, to time.Time, inclusive bool) bool {
	if inclusive {
		return !start.After(to) && !end.Before(from)
	}

	return start.Before(to) && end.After(from)
}

// Reschedule applies mutate to the stored event in place. The identifier and
// the *Event value are kept. If mutate fails, or the new interval overlaps
// another event, the fields are restored and the error is returned. The node
// is re-seated only when the new start breaks its ordering.
func (s *EventStore) Reschedule(id int, mutate func(*Event) error) (*Event, error) {
	path := findPath(s.root, id, nil)
	if path == nil {
		return nil, notFoundError(id)
	}

	target := path[len(path)-1]
	event := target.event
	previous := *event

	err := mutate(event)
	if err != nil {
		*event = previous
		return nil, err
	}

	event.ID = previous.ID

	for other := range s.All() {
		if other != event && event.Overlaps(other) {
			conflict := overlapError(event, other)
			*event = previous

			return nil, conflict
		}
	}

	if seated(path) {
		return event, nil
	}

	s.root, _ = remove(s.root, id)

	// Cannot overlap: every other event was checked above.
	root, err := insert(s.root, event)
	if err != nil {
		return nil, err
	}

	s.root = root

	return event, nil
}

// seated reports whether the last node of path still respects the ordering
// against its ancestors and both subtrees.
func seated(path []*node) bool {
	target := path[len(path)-1]
	start, end := target.event.Start(), target.event.End()

	for i := 0; i < len(path)-1; i++ {
		ancestor, child := path[i], path[i+1]

		if child == ancestor.left && end.After(ancestor.event.Start()) {
			return false
		}

		if child == ancestor.right && start.Before(ancestor.event.End()) {
			return false
		}
	}

	if prev := findMax(target.left); prev != nil && prev.event.End().After(start) {
		return false
	}

	if next := findMin(target.right); next != nil && next.event.Start().Before(end) {
		return false
	}

	return true
}

// Clear tears the tree down in post-order and reports how many nodes were
// released.
func (s *EventStore) Clear() int {
	released := teardown(s.root)
	s.root = nil
	s.size = 0

	return released
}

func teardown(n *node) int {
	if n == nil {
		return 0
	}

	released := teardown(n.left) + teardown(n.right)
	release(n)

	return released + 1
}
