package datasource

// Sentinel is the "end of list became visible" signal. The rendering layer
// owns one per list and calls Visible when the user scrolls the tail row
// into view; the controller decides whether that means anything.
type Sentinel struct {
	onVisible func()
}

// Visible reports that the sentinel row is on screen. A no-op unless a
// controller is bound.
func (s *Sentinel) Visible() {
	if s.onVisible != nil {
		s.onVisible()
	}
}

func (s *Sentinel) disconnect() {
	s.onVisible = nil
}
