package vectorstore

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
)

var collectionNameRe = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// FileStore — векторный индекс с полным перебором по косинусному
// расстоянию. Каждая коллекция хранится JSON-снапшотом в файле
// <root>/<collection>.json и целиком держится в памяти после загрузки.
type FileStore struct {
	root string

	mu          sync.RWMutex
	collections map[string][]Record
}

// NewFileStore создает хранилище с корневой директорией root.
func NewFileStore(root string) (*FileStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create vector index root %s: %w", root, err)
	}
	return &FileStore{
		root:        root,
		collections: make(map[string][]Record),
	}, nil
}

func (s *FileStore) snapshotPath(collection string) string {
	return filepath.Join(s.root, collection+".json")
}

// load возвращает записи коллекции, подгружая снапшот с диска при
// первом обращении. Вызывается под s.mu.
func (s *FileStore) load(collection string) ([]Record, error) {
	if records, ok := s.collections[collection]; ok {
		return records, nil
	}

	data, err := os.ReadFile(s.snapshotPath(collection))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrCollectionNotFound
		}
		return nil, fmt.Errorf("failed to read collection snapshot %s: %w", collection, err)
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode collection snapshot %s: %w", collection, err)
	}
	s.collections[collection] = records
	return records, nil
}

// persist записывает снапшот коллекции атомарно (через временный файл).
// Вызывается под s.mu.
func (s *FileStore) persist(collection string, records []Record) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode collection %s: %w", collection, err)
	}

	tmp := s.snapshotPath(collection) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write collection snapshot %s: %w", collection, err)
	}
	if err := os.Rename(tmp, s.snapshotPath(collection)); err != nil {
		return fmt.Errorf("failed to replace collection snapshot %s: %w", collection, err)
	}
	return nil
}

func validateCollection(collection string) error {
	if !collectionNameRe.MatchString(collection) {
		return fmt.Errorf("invalid collection name %q", collection)
	}
	return nil
}

// Upsert добавляет записи, создавая коллекцию при необходимости.
// Совпадение id перезаписывает прежнюю запись.
func (s *FileStore) Upsert(ctx context.Context, collection string, records []Record) error {
	if err := validateCollection(collection); err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}
	for _, r := range records {
		if r.ID == "" {
			return fmt.Errorf("record with empty id in collection %s", collection)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.load(collection)
	if err != nil && err != ErrCollectionNotFound {
		return err
	}

	byID := make(map[string]int, len(existing))
	for i, r := range existing {
		byID[r.ID] = i
	}

	// Новое состояние собирается в отдельном срезе: загруженная коллекция
	// не меняется, пока снапшот не записан на диск.
	next := make([]Record, len(existing), len(existing)+len(records))
	copy(next, existing)
	for _, r := range records {
		if i, ok := byID[r.ID]; ok {
			next[i] = r
		} else {
			byID[r.ID] = len(next)
			next = append(next, r)
		}
	}

	if err := s.persist(collection, next); err != nil {
		return err
	}
	s.collections[collection] = next
	return nil
}

// Query возвращает не более k ближайших записей по возрастанию
// косинусного расстояния.
func (s *FileStore) Query(ctx context.Context, collection string, vector []float32, k int) ([]Result, error) {
	if err := validateCollection(collection); err != nil {
		return nil, err
	}
	if k <= 0 {
		k = 5
	}

	s.mu.Lock()
	records, err := s.load(collection)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(records))
	for _, r := range records {
		results = append(results, Result{
			Document: r.Document,
			Distance: cosineDistance(vector, r.Vector),
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})

	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// DeleteByPrefix удаляет записи с данным префиксом id.
func (s *FileStore) DeleteByPrefix(ctx context.Context, collection string, prefix string) error {
	if err := validateCollection(collection); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(collection)
	if err != nil {
		if err == ErrCollectionNotFound {
			return nil
		}
		return err
	}

	kept := make([]Record, 0, len(records))
	for _, r := range records {
		if !strings.HasPrefix(r.ID, prefix) {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(records) {
		return nil
	}

	if err := s.persist(collection, kept); err != nil {
		return err
	}
	s.collections[collection] = kept
	return nil
}

// DeleteCollection удаляет коллекцию вместе со снапшотом.
func (s *FileStore) DeleteCollection(ctx context.Context, collection string) error {
	if err := validateCollection(collection); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.collections, collection)
	if err := os.Remove(s.snapshotPath(collection)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove collection snapshot %s: %w", collection, err)
	}
	return nil
}

// cosineDistance = 1 - косинусное сходство. Нулевые векторы считаются
// максимально далекими.
func cosineDistance(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}
