package session

import (
	"fmt"

	fractal "github.com/marben/fractal_explorer"
)

// Apply performs a client command. OpState and OpImage change nothing; the
// caller answers them from a Snapshot.
func (s *Session) Apply(c fractal.Command) error {
	switch c.Op {
	case fractal.OpState, fractal.OpImage:
		return nil
	case fractal.OpDraw:
		return s.RequestDraw()
	case fractal.OpStop:
		s.Stop()
		return nil
	case fractal.OpPrevious:
		return s.Previous()
	case fractal.OpNext:
		return s.Next()
	case fractal.OpDelete:
		return s.Delete()
	case fractal.OpHelp:
		return s.ShowHelp()
	case fractal.OpFields:
		if c.Fields == nil {
			return invalid("fields", "missing")
		}
		s.SetFields(*c.Fields)
		return nil
	case fractal.OpZoom:
		if c.Zoom == nil {
			return invalid("zoom", "missing")
		}
		return s.SetZoom(*c.Zoom)
	case fractal.OpClearZoom:
		s.ClearZoom()
		return nil
	case fractal.OpScheme:
		return s.SetScheme(c.Scheme)
	case fractal.OpJulia:
		s.SetJulia(c.Julia)
		return nil
	case fractal.OpPick:
		return s.PickJuliaPoint(c.X, c.Y)
	case fractal.OpLandmark:
		return s.GotoLandmark(c.Landmark)
	}
	return fmt.Errorf("unknown op %q", c.Op)
}
