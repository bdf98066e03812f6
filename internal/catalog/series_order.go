package catalog

import (
	"fmt"
	"log/slog"

	"manga-progress/internal/jsonfile"
)

// SeriesOrderStore persists the user's series display order in series_order.json.
type SeriesOrderStore struct {
	file   *jsonfile.File
	logger *slog.Logger
}

// NewSeriesOrderStore creates a store for the series order at path.
func NewSeriesOrderStore(path string, logger *slog.Logger) *SeriesOrderStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SeriesOrderStore{file: jsonfile.New(path), logger: logger}
}

// Load returns the stored order, or an empty list when the file is absent or
// cannot be decoded.
func (s *SeriesOrderStore) Load() ([]string, error) {
	var order []string
	err := s.file.WithLock(func() error {
		order = s.read()
		return nil
	})
	return order, err
}

// Save replaces the stored order. An empty order is rejected.
func (s *SeriesOrderStore) Save(order []string) error {
	if len(order) == 0 {
		return ErrEmptyOrder
	}
	err := s.file.WithLock(func() error {
		return s.file.Write(order)
	})
	if err != nil {
		return fmt.Errorf("save series order: %w", err)
	}
	s.logger.Info("series order saved", "series", len(order))
	return nil
}

// Reconcile aligns the stored order with the series currently on disk and saves it.
func (s *SeriesOrderStore) Reconcile(current []string) ([]string, error) {
	var order []string
	err := s.file.WithLock(func() error {
		order = ReconcileSeriesOrder(s.read(), current)
		return s.file.Write(order)
	})
	if err != nil {
		return order, fmt.Errorf("save series order: %w", err)
	}
	return order, nil
}

func (s *SeriesOrderStore) read() []string {
	var order []string
	if _, err := s.file.Read(&order); err != nil {
		s.logger.Error("cannot read series order, treating as empty", "file", s.file.Path(), "error", err)
		return []string{}
	}
	if order == nil {
		order = []string{}
	}
	return order
}
