package portfolio

import (
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"newsquant/pkg/errors"
	"newsquant/pkg/logger"
)

// Store persists the portfolio as a single human-inspectable JSON document,
// rewritten wholesale on every mutation. There is no in-process cache: every
// Load re-reads durable storage, so sequential executor invocations observe
// each other's committed effects.
//
// The mutex serializes Load and Save within this process. Concurrent
// multi-process use of the same file requires external locking; this system
// assumes single-writer sequential execution per run.
type Store struct {
	path        string
	initialCash float64
	mu          sync.Mutex
	log         *logger.Logger
}

// NewStore creates a store backed by the given file path. initialCash is
// the endowment used when no persisted state exists yet.
func NewStore(path string, initialCash float64) *Store {
	return &Store{
		path:        path,
		initialCash: initialCash,
		log:         logger.Get().With("component", "portfolio_store"),
	}
}

// InitialCash returns the configured starting endowment.
func (s *Store) InitialCash() float64 {
	return s.initialCash
}

// Load reads the persisted portfolio. If no state exists it initializes to
// the starting endowment and persists that before returning, so a second
// Load observes the same state.
func (s *Store) Load() (*Portfolio, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Save overwrites the persisted state wholesale, atomically with respect to
// concurrent readers (write to temp file, then rename).
func (s *Store) Save(p *Portfolio) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(p)
}

func (s *Store) load() (*Portfolio, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			p := New(s.initialCash)
			if err := s.save(p); err != nil {
				return nil, err
			}
			s.log.Infow("initialized portfolio", "path", s.path, "cash", s.initialCash)
			return p, nil
		}
		return nil, errors.Wrapf(errors.ErrStorage, "read %s: %v", s.path, err)
	}

	var p Portfolio
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, errors.Wrapf(errors.ErrStorage, "decode %s: %v", s.path, err)
	}
	if p.Holdings == nil {
		p.Holdings = make(map[string]float64)
	}

	return &p, nil
}

func (s *Store) save(p *Portfolio) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return errors.Wrapf(errors.ErrStorage, "encode portfolio: %v", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".portfolio-*.json")
	if err != nil {
		return errors.Wrapf(errors.ErrStorage, "create temp file in %s: %v", dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrapf(errors.ErrStorage, "write %s: %v", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrapf(errors.ErrStorage, "close %s: %v", tmpName, err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return errors.Wrapf(errors.ErrStorage, "replace %s: %v", s.path, err)
	}

	return nil
}
