// Package memory is an in-process digest sink used in tests and in
// deployments without Google credentials.
package memory

import (
	"context"
	"fmt"
	"sync"

	"hearth/internal/sheets"
)

type Store struct {
	mu   sync.Mutex
	rows []sheets.DigestRow
}

var _ sheets.DigestWriter = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// AppendDigest stores the row and returns a synthetic row reference.
func (s *Store) AppendDigest(_ context.Context, row sheets.DigestRow) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, row)
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

// Rows returns a copy of everything appended so far.
func (s *Store) Rows() []sheets.DigestRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sheets.DigestRow(nil), s.rows...)
}
