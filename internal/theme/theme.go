// Package theme persists the dark/light display preference.
package theme

import (
	"sync"

	"recolector/internal/files"
)

type Theme string

const (
	Dark  Theme = "dark"
	Light Theme = "light"
)

// Service reads and flips the stored theme. Dark is the default.
type Service struct {
	storage files.Storage
	mu      sync.Mutex
}

func NewService(storage files.Storage) *Service {
	return &Service{storage: storage}
}

func (s *Service) Current() Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current()
}

func (s *Service) current() Theme {
	v, ok, err := s.storage.Get(files.ThemeKey)
	if err != nil || !ok {
		return Dark
	}
	if Theme(v) == Light {
		return Light
	}
	return Dark
}

// Set persists t. Anything other than Light is stored as Dark.
func (s *Service) Set(t Theme) error {
	if t != Light {
		t = Dark
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.storage.Set(map[string]string{files.ThemeKey: string(t)})
}

// Toggle flips the theme, persists it and returns the new value.
func (s *Service) Toggle() (Theme, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := Light
	if s.current() == Light {
		next = Dark
	}
	if err := s.storage.Set(map[string]string{files.ThemeKey: string(next)}); err != nil {
		return s.current(), err
	}
	return next, nil
}
