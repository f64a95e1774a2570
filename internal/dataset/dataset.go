// Package dataset loads rated entities from a CSV file.
package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/playperu/ratingquiz/internal/ratingquiz"
)

var ErrSourceNotFound = errors.New("dataset source not found")

// Load reads the CSV file at path. A missing file yields ErrSourceNotFound.
func Load(path string) ([]ratingquiz.Entity, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()

	entities, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return entities, nil
}

// Parse reads name,rating records after a header row. Rows without a name
// or a finite numeric rating are skipped; only I/O errors are returned.
func Parse(r io.Reader) ([]ratingquiz.Entity, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	var entities []ratingquiz.Entity
	header := true
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			header = false
			continue
		}
		if err != nil {
			return nil, err
		}
		if header {
			header = false
			continue
		}

		e, ok := parseRow(row)
		if !ok {
			continue
		}
		entities = append(entities, e)
	}
	return entities, nil
}

func parseRow(row []string) (ratingquiz.Entity, bool) {
	if len(row) < 2 {
		return ratingquiz.Entity{}, false
	}
	name := strings.TrimSpace(row[0])
	if name == "" {
		return ratingquiz.Entity{}, false
	}
	rating, err := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
	if err != nil || math.IsNaN(rating) || math.IsInf(rating, 0) {
		return ratingquiz.Entity{}, false
	}
	return ratingquiz.Entity{Name: name, Rating: rating}, true
}

// Catalog holds the current dataset and can reload it from disk.
type Catalog struct {
	path     string
	mu       sync.RWMutex
	entities []ratingquiz.Entity
}

// Open loads path into a new Catalog.
func Open(path string) (*Catalog, error) {
	c := &Catalog{path: path}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// NewCatalog wraps already loaded entities; Reload is then a no-op.
func NewCatalog(entities []ratingquiz.Entity) *Catalog {
	return &Catalog{entities: entities}
}

func (c *Catalog) Path() string { return c.path }

// Entities returns the current dataset. Callers must not modify it.
func (c *Catalog) Entities() []ratingquiz.Entity {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entities
}

func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entities)
}

// Reload re-reads the file. On error the previous entities stay in place.
func (c *Catalog) Reload() error {
	if c.path == "" {
		return nil
	}
	entities, err := Load(c.path)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.entities = entities
	c.mu.Unlock()
	return nil
}

// Check reports an error when the catalog holds no entities.
func (c *Catalog) Check(_ context.Context) error {
	if c.Len() == 0 {
		return errors.New("dataset is empty")
	}
	return nil
}
