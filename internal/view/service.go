package view

// Service is the slice of the reactive-signal system the construction walk
// needs: effect registration with a hydrating and a live variant.
//
// While hydrating, effects are queued rather than executed, and released
// only after the island's walk completes successfully. A component
// therefore never takes a real effect (a subscription, a network call)
// twice when hydration has to fall back and re-render.
type Service struct {
	hydrating bool
	queued    []func()
}

// NewLive returns a service that runs effects immediately.
func NewLive() *Service {
	return &Service{}
}

// NewHydrating returns a service that queues effects until Release.
func NewHydrating() *Service {
	return &Service{hydrating: true}
}

// Hydrating reports whether effects are currently being queued.
func (s *Service) Hydrating() bool { return s.hydrating }

// Effect registers a side effect. Live services run it immediately;
// hydrating services queue it.
func (s *Service) Effect(fn func()) {
	if s.hydrating {
		s.queued = append(s.queued, fn)
		return
	}
	fn()
}

// Release runs every queued effect in registration order and switches the
// service to live behavior.
func (s *Service) Release() {
	queued := s.queued
	s.queued = nil
	s.hydrating = false
	for _, fn := range queued {
		fn()
	}
}

// Discard drops every queued effect without running it and switches the
// service to live behavior. The fallback path discards before it
// re-renders, so effects registered during the failed walk never fire.
func (s *Service) Discard() {
	s.queued = nil
	s.hydrating = false
}

// Pending returns the number of queued effects.
func (s *Service) Pending() int { return len(s.queued) }
