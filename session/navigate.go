package session

import fractal "github.com/marben/fractal_explorer"

// Previous makes the top of the Previous stack current. The current drawing
// moves to the Next stack together with its zoom rectangle.
func (s *Session) Previous() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.history.HasPrevious() || s.current == nil {
		return ErrNoPrevious
	}
	s.captureZoom(s.current)
	s.history.PushNext(s.current)
	d, _ := s.history.PopPrevious()
	s.navigateTo(d)
	return nil
}

// Next is the inverse of Previous.
func (s *Session) Next() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.history.HasNext() || s.current == nil {
		return ErrNoNext
	}
	s.captureZoom(s.current)
	s.history.PushPrevious(s.current)
	d, _ := s.history.PopNext()
	s.navigateTo(d)
	return nil
}

func (s *Session) navigateTo(d *fractal.Drawing) {
	s.setCurrent(d)
	s.status, s.status2 = "", ""
	s.paramsChanged = false
	fractal.Logger().Debug("navigated", "drawing", d.String())
}

// Delete discards the current drawing and frees its memory. The replacement
// comes from the Next stack, or from Previous when Next is empty. Deleting
// leaves out-of-memory mode.
func (s *Session) Delete() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.history.Empty() || s.current == nil {
		return ErrNothingToDelete
	}
	old := s.current
	d, ok := s.history.PopNext()
	if !ok {
		d, _ = s.history.PopPrevious()
	}
	s.setCurrent(d)
	s.release(old)

	s.outOfMemory = false
	s.status, s.status2 = "", "Deleted."
	s.paramsChanged = false
	fractal.Logger().Info("drawing deleted", "drawing", old.String(), "memory", s.budget.Used())
	return nil
}

// ShowHelp makes the help screen current. The help drawing is built on first
// use and exists at most once in the session.
func (s *Session) ShowHelp() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil && s.current.IsHelp() {
		return nil
	}
	if s.help == nil {
		img, err := s.cfg.RenderHelp(s.cfg.Width, s.cfg.Height, s.cfg.Welcome)
		if err != nil {
			return err
		}
		h, err := fractal.NewHelp(s.initialRect, InitialIterations, s.cfg.Scheme, img, s.budget)
		if err != nil {
			s.enterOutOfMemory()
			return err
		}
		s.help = h
	}

	if s.current != nil {
		s.captureZoom(s.current)
		s.history.PushNext(s.current)
		s.status, s.status2 = "", ""
	}
	s.history.RemoveKind(fractal.KindHelp)
	s.setCurrent(s.help)
	s.paramsChanged = false
	return nil
}
