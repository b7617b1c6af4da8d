package api

import (
	"errors"
	"sync/atomic"

	zlog "github.com/rs/zerolog/log"
)

// ErrSaveInFlight is returned when a save or reset is requested while another
// one has not finished.
var ErrSaveInFlight = errors.New("a save is already in progress")

// ConfigBackend is the part of the client a Saver drives.
type ConfigBackend interface {
	UpdateConfig(payload []byte) error
	ResetConfig() ([]byte, error)
	StartScheduler() error
	StopScheduler() error
}

// Saver writes configuration changes while the backend scheduler is paused.
// Only one save or reset runs at a time.
type Saver struct {
	backend  ConfigBackend
	inFlight atomic.Bool
}

// NewSaver creates a Saver for backend.
func NewSaver(backend ConfigBackend) *Saver {
	return &Saver{backend: backend}
}

// InFlight reports whether a save or reset is running.
func (s *Saver) InFlight() bool {
	return s.inFlight.Load()
}

// Save stops the scheduler, writes payload and restarts the scheduler. The
// restart is attempted even when the write fails. Scheduler failures are
// logged only; the returned error is the write's.
func (s *Saver) Save(payload []byte) error {
	if !s.inFlight.CompareAndSwap(false, true) {
		return ErrSaveInFlight
	}
	defer s.inFlight.Store(false)

	s.stopScheduler()
	err := s.backend.UpdateConfig(payload)
	s.startScheduler()
	return err
}

// Reset stops the scheduler, resets the configuration and restarts the
// scheduler, returning the reset document.
func (s *Saver) Reset() ([]byte, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return nil, ErrSaveInFlight
	}
	defer s.inFlight.Store(false)

	s.stopScheduler()
	doc, err := s.backend.ResetConfig()
	s.startScheduler()
	return doc, err
}

func (s *Saver) stopScheduler() {
	if err := s.backend.StopScheduler(); err != nil {
		zlog.Warn().Err(err).Msg("scheduler stop failed")
	}
}

func (s *Saver) startScheduler() {
	if err := s.backend.StartScheduler(); err != nil {
		zlog.Warn().Err(err).Msg("scheduler start failed")
	}
}
