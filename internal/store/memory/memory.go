// Package memory is the zero-dependency backend used for development and for
// handler tests. Properties are held as encoded wire documents, so reads hand
// out independent copies and the codec path is exercised the same way the
// database backends exercise it.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"predial/internal/core"
	"predial/internal/store"
)

type Store struct {
	mu    sync.RWMutex
	docs  map[string][]byte
	order []string // insertion order, for stable List output
}

func New() *Store {
	return &Store{docs: make(map[string][]byte)}
}

// NewFromDirectory seeds a store from every *.json file under dir. A file may
// hold a single property document or an array of them. A missing directory is
// not an error: the store just starts empty.
func NewFromDirectory(dir string) (*Store, error) {
	s := New()
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read data directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read seed file %s: %w", name, err)
		}
		if err := s.seed(data); err != nil {
			return nil, fmt.Errorf("seed from %s: %w", name, err)
		}
	}
	return s, nil
}

func (s *Store) seed(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	var docs []json.RawMessage
	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal(data, &docs); err != nil {
			return err
		}
	} else {
		docs = []json.RawMessage{json.RawMessage(data)}
	}
	for _, doc := range docs {
		p, err := store.DecodeProperty(doc)
		if err != nil {
			return err
		}
		if _, err := s.Save(context.Background(), p); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (core.Property, error) {
	s.mu.RLock()
	doc, ok := s.docs[id]
	s.mu.RUnlock()
	if !ok {
		return core.Property{}, store.ErrNotFound
	}
	return store.DecodeProperty(doc)
}

func (s *Store) List(ctx context.Context) ([]core.Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []core.Property
	for _, id := range s.order {
		p, err := store.DecodeProperty(s.docs[id])
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *Store) Save(ctx context.Context, p core.Property) (string, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	doc, err := store.EncodeProperty(p)
	if err != nil {
		return "", fmt.Errorf("encode property: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.docs[p.ID]; !exists {
		s.order = append(s.order, p.ID)
	}
	s.docs[p.ID] = doc
	return p.ID, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.docs, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}
