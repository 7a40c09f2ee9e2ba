package loader

import (
	"encoding/hex"
	"sync"

	"golang.org/x/crypto/blake2b"

	"postfix/pkg/module"
)

// Cache parses each module file once and fingerprints its source with
// blake2b-256, so a program whose CALL instructions re-enter the same
// function module many times (typically from a loop) pays the
// declaration/code parse cost only on first load. Cloning a fresh Frame
// from the cached Template is the caller's job (pkg/vm) — Templates
// themselves are immutable once parsed, so concurrent reads are safe.
type cacheEntry struct {
	tpl    *module.Template
	digest [32]byte
}

type Cache struct {
	fs             FileSource
	symbolicLabels bool

	mu     sync.Mutex
	byName map[string]*cacheEntry
}

func NewCache(fs FileSource, symbolicLabels bool) *Cache {
	return &Cache{
		fs:             fs,
		symbolicLabels: symbolicLabels,
		byName:         make(map[string]*cacheEntry),
	}
}

func (c *Cache) Load(name string) (*module.Template, error) {
	c.mu.Lock()
	if e, ok := c.byName[name]; ok {
		c.mu.Unlock()
		return e.tpl, nil
	}
	c.mu.Unlock()

	src, err := c.fs.Read(name)
	if err != nil {
		return nil, err
	}
	tpl, err := Parse(name, src, c.symbolicLabels)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.byName[name] = &cacheEntry{tpl: tpl, digest: blake2b.Sum256([]byte(src))}
	c.mu.Unlock()
	return tpl, nil
}

func (c *Cache) Exists(name string) bool {
	return c.fs.Exists(name)
}

// Digest returns the hex blake2b-256 fingerprint of a previously loaded
// module's source text, for inclusion in trace/attestation output.
func (c *Cache) Digest(name string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.byName[name]
	if !ok {
		return "", false
	}
	return hex.EncodeToString(e.digest[:]), true
}
