package app

import (
	"sync"

	"github.com/jkcapital/autoanalyst/internal/models"
)

// Session holds the analysis currently shown to the user. Setting a new
// analysis replaces the previous one.
type Session struct {
	mu      sync.RWMutex
	current *models.Analysis
}

// NewSession creates an empty session.
func NewSession() *Session {
	return &Session{}
}

// Set replaces the current analysis.
func (s *Session) Set(a *models.Analysis) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = a
}

// Current returns the current analysis, or nil when none is loaded.
func (s *Session) Current() *models.Analysis {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Clear drops the current analysis.
func (s *Session) Clear() {
	s.Set(nil)
}
