package models

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"time"

	"github.com/wingmate-ai/wingmate/src/cache"
)

// CachedEngine wraps an Engine and caches answers by prompt (and attachment
// content) hash. With a FilePath set, the cache survives restarts.
type CachedEngine struct {
	Engine   Engine
	Cache    *cache.AnswerCache
	FilePath string
}

// NewCachedEngine creates a caching wrapper around engine.
func NewCachedEngine(engine Engine, size int, ttl time.Duration, filePath string) *CachedEngine {
	c := &CachedEngine{
		Engine:   engine,
		Cache:    cache.New(size, ttl),
		FilePath: filePath,
	}
	if filePath != "" {
		c.load()
	}
	return c
}

func (c *CachedEngine) Name() string { return c.Engine.Name() }

func (c *CachedEngine) Capabilities() Capability { return c.Engine.Capabilities() }

func (c *CachedEngine) load() {
	f, err := os.Open(c.FilePath)
	if err != nil {
		return // no cache file yet
	}
	defer f.Close()

	var dump map[string]cache.Entry
	if err := json.NewDecoder(f).Decode(&dump); err == nil {
		c.Cache.Restore(dump)
	}
}

func (c *CachedEngine) save() {
	if c.FilePath == "" {
		return
	}
	dump := c.Cache.Dump()

	// Atomic write: temp file, then rename.
	tmp := c.FilePath + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return
	}
	if err := json.NewEncoder(f).Encode(dump); err != nil {
		f.Close()
		os.Remove(tmp)
		return
	}
	f.Close()
	os.Rename(tmp, c.FilePath)
}

func (c *CachedEngine) Generate(ctx context.Context, prompt string) (string, error) {
	key := cache.Key(prompt)
	if text, ok := c.Cache.Get(key); ok {
		return text, nil
	}

	text, err := c.Engine.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	c.Cache.Set(key, text)
	c.save()
	return text, nil
}

func (c *CachedEngine) GenerateWithFiles(ctx context.Context, prompt string, files []File) (string, error) {
	h := sha256.New()
	h.Write([]byte(prompt))
	for _, f := range files {
		h.Write([]byte(f.Name))
		h.Write([]byte(f.MIME))
		h.Write(f.Data)
	}
	key := hex.EncodeToString(h.Sum(nil))

	if text, ok := c.Cache.Get(key); ok {
		return text, nil
	}

	text, err := c.Engine.GenerateWithFiles(ctx, prompt, files)
	if err != nil {
		return "", err
	}
	c.Cache.Set(key, text)
	c.save()
	return text, nil
}

var _ Engine = (*CachedEngine)(nil)
