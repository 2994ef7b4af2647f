package session

import fractal "github.com/marben/fractal_explorer"

// History keeps the drawings left behind by navigation: Previous is the
// undo stack and Next the redo stack. The top of each stack is its last
// element.
type History struct {
	previous []*fractal.Drawing
	next     []*fractal.Drawing
}

func (h *History) HasPrevious() bool { return len(h.previous) > 0 }
func (h *History) HasNext() bool     { return len(h.next) > 0 }
func (h *History) Empty() bool       { return !h.HasPrevious() && !h.HasNext() }
func (h *History) Len() int          { return len(h.previous) + len(h.next) }

func (h *History) PushPrevious(d *fractal.Drawing) { h.previous = append(h.previous, d) }
func (h *History) PushNext(d *fractal.Drawing)     { h.next = append(h.next, d) }

func (h *History) PopPrevious() (*fractal.Drawing, bool) { return pop(&h.previous) }
func (h *History) PopNext() (*fractal.Drawing, bool)     { return pop(&h.next) }

func pop(stack *[]*fractal.Drawing) (*fractal.Drawing, bool) {
	s := *stack
	if len(s) == 0 {
		return nil, false
	}
	d := s[len(s)-1]
	s[len(s)-1] = nil
	*stack = s[:len(s)-1]
	return d, true
}

// RemoveKind removes the first drawing of kind k, looking at the Next stack
// before the Previous one.
func (h *History) RemoveKind(k fractal.Kind) (*fractal.Drawing, bool) {
	if d, ok := removeKind(&h.next, k); ok {
		return d, true
	}
	return removeKind(&h.previous, k)
}

func removeKind(stack *[]*fractal.Drawing, k fractal.Kind) (*fractal.Drawing, bool) {
	s := *stack
	for i, d := range s {
		if d.Kind() == k {
			copy(s[i:], s[i+1:])
			s[len(s)-1] = nil
			*stack = s[:len(s)-1]
			return d, true
		}
	}
	return nil, false
}

// Count returns how many drawings of kind k are stored.
func (h *History) Count(k fractal.Kind) int {
	n := 0
	for _, s := range [][]*fractal.Drawing{h.previous, h.next} {
		for _, d := range s {
			if d.Kind() == k {
				n++
			}
		}
	}
	return n
}
