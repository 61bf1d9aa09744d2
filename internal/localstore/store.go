// Package localstore persists the guest cart and the bearer token under a
// fixed key each, the way a browser keeps them in localStorage. Reads
// tolerate missing or corrupt data by degrading to empty; writes are
// best-effort and must never fail the in-memory operation that triggered
// them.
package localstore

import (
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
)

const (
	tokenKey     = "token"
	guestCartKey = "guest_cart"
)

// GuestLine is the persisted shape of one guest cart line. Server line
// identifiers never appear here: a guest line has not been synced.
type GuestLine struct {
	ProductID      int64   `json:"product_id"`
	Name           string  `json:"name"`
	PriceShmeckles float64 `json:"price_shmeckles"`
	PriceFlurbos   float64 `json:"price_flurbos"`
	Quantity       int     `json:"quantity"`
}

// Store is a file-per-key JSON store rooted at a state directory.
type Store struct {
	dir    string
	logger *log.Logger
}

func New(dir string, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Store{dir: dir, logger: logger}
}

// Token returns the persisted bearer token, or "" when absent.
func (s *Store) Token() string {
	raw, err := os.ReadFile(s.path(tokenKey))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(raw))
}

func (s *Store) SetToken(token string) {
	s.write(tokenKey, []byte(token))
}

func (s *Store) ClearToken() {
	s.remove(tokenKey)
}

// GuestCart reads the persisted guest cart. Missing or corrupt data is an
// empty cart, never an error.
func (s *Store) GuestCart() []GuestLine {
	raw, err := os.ReadFile(s.path(guestCartKey))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Printf("localstore: read %s: %v", guestCartKey, err)
		}
		return nil
	}
	var lines []GuestLine
	if err := json.Unmarshal(raw, &lines); err != nil {
		s.logger.Printf("localstore: corrupt %s entry, treating as empty: %v", guestCartKey, err)
		return nil
	}
	return lines
}

func (s *Store) SaveGuestCart(lines []GuestLine) {
	raw, err := json.Marshal(lines)
	if err != nil {
		s.logger.Printf("localstore: marshal %s: %v", guestCartKey, err)
		return
	}
	s.write(guestCartKey, raw)
}

func (s *Store) ClearGuestCart() {
	s.remove(guestCartKey)
}

// HasGuestCart reports whether a guest cart entry exists on disk, corrupt
// or not. Used by tests and by the merge flow's post-conditions.
func (s *Store) HasGuestCart() bool {
	_, err := os.Stat(s.path(guestCartKey))
	return err == nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *Store) write(key string, raw []byte) {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		s.logger.Printf("localstore: mkdir %s: %v", s.dir, err)
		return
	}
	if err := os.WriteFile(s.path(key), raw, 0o600); err != nil {
		s.logger.Printf("localstore: write %s: %v", key, err)
	}
}

func (s *Store) remove(key string) {
	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.logger.Printf("localstore: remove %s: %v", key, err)
	}
}
