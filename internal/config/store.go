package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"outage-checker/internal/models"
)

const defaultAddressKey = "default_address"

// Store persists user settings in a JSON file. A missing or unreadable file
// behaves like an empty one.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) load() *koanf.Koanf {
	k := koanf.New(".")
	if err := k.Load(file.Provider(s.path), json.Parser()); err != nil {
		return koanf.New(".")
	}
	return k
}

func (s *Store) save(k *koanf.Koanf) error {
	data, err := k.Marshal(json.Parser())
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// DefaultAddress returns the saved address. ok is false when none is saved or
// the saved one is incomplete.
func (s *Store) DefaultAddress() (addr models.Address, ok bool) {
	k := s.load()
	addr = models.Address{
		City:   k.String(defaultAddressKey + ".city"),
		Street: k.String(defaultAddressKey + ".street"),
		House:  k.String(defaultAddressKey + ".house"),
	}
	if !addr.IsComplete() {
		return models.Address{}, false
	}
	return addr, true
}

// SetDefaultAddress saves addr, keeping any other settings in the file.
func (s *Store) SetDefaultAddress(addr models.Address) error {
	k := s.load()
	k.Delete(defaultAddressKey)
	if err := k.Set(defaultAddressKey, map[string]any{
		"city":   addr.City,
		"street": addr.Street,
		"house":  addr.House,
	}); err != nil {
		return fmt.Errorf("set default address: %w", err)
	}
	return s.save(k)
}

// ClearDefaultAddress removes the saved address. It is a no-op when none is saved.
func (s *Store) ClearDefaultAddress() error {
	k := s.load()
	if !k.Exists(defaultAddressKey) {
		return nil
	}
	k.Delete(defaultAddressKey)
	return s.save(k)
}
