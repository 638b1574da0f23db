// fonts.go - Font loading with a bounded, path-keyed LRU cache.
// Raw bytes and the parsed forms each backend needs are memoized on a Source,
// so auto-fit can measure the same font many times without re-reading it.
package fonts

import (
	"container/list"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/gurbanicard/gurbanicard/pkg/logging"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// DefaultCapacity is the number of font files a Cache keeps resident.
// A render batch touches two fonts, so eight leaves room for uploads.
const DefaultCapacity = 8

// EmbeddedPrefix marks a font path that names a font compiled into the binary.
const EmbeddedPrefix = "embedded:"

var embedded = map[string][]byte{
	"goregular": goregular.TTF,
	"gobold":    gobold.TTF,
}

// Source is one loaded font file. It stays valid after being evicted from
// the cache, so a render that holds it is never disturbed by eviction.
type Source struct {
	Path string

	data []byte
	font *opentype.Font

	mu     sync.Mutex
	parsed map[string]any
}

// Data returns the raw font bytes. Callers must not modify them.
func (s *Source) Data() []byte { return s.data }

// Font returns the x/image parse of the font.
func (s *Source) Font() *opentype.Font { return s.font }

// FamilyName returns the font's family name, or "" when the name table has none.
func (s *Source) FamilyName() string {
	var buf sfnt.Buffer
	name, err := s.font.Name(&buf, sfnt.NameIDFamily)
	if err != nil {
		return ""
	}
	return name
}

// Memo returns the value stored under key, building it on first use.
// Backends use it to keep their own parsed form of the font next to the bytes.
// Failed builds are not stored.
func (s *Source) Memo(key string, build func(data []byte) (any, error)) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.parsed[key]; ok {
		return v, nil
	}
	v, err := build(s.data)
	if err != nil {
		return nil, err
	}
	if s.parsed == nil {
		s.parsed = make(map[string]any)
	}
	s.parsed[key] = v
	return v, nil
}

func newSource(path string, data []byte) (*Source, error) {
	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, &FontLoadError{Path: path, Err: fmt.Errorf("parse: %w", err)}
	}
	return &Source{Path: path, data: data, font: parsed}, nil
}

// Cache memoizes Sources by path with least-recently-used eviction.
// It is safe for concurrent use.
type Cache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List // front is most recently used; values are *Source
	entries  map[string]*list.Element
}

// NewCache creates a cache holding at most capacity fonts.
// A capacity below one uses DefaultCapacity.
func NewCache(capacity int) *Cache {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Cache{
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[string]*list.Element),
	}
}

// Load returns the font at path, reading and parsing it on a miss.
// Paths starting with EmbeddedPrefix select a compiled-in font.
func (c *Cache) Load(path string) (*Source, error) {
	if src, ok := c.get(path); ok {
		return src, nil
	}

	data, err := readFont(path)
	if err != nil {
		return nil, err
	}
	src, err := newSource(path, data)
	if err != nil {
		return nil, err
	}
	return c.put(src), nil
}

// LoadBytes registers an in-memory font under name, replacing any font
// previously cached under that name.
func (c *Cache) LoadBytes(name string, data []byte) (*Source, error) {
	src, err := newSource(name, data)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if el, ok := c.entries[name]; ok {
		c.order.Remove(el)
		delete(c.entries, name)
	}
	c.mu.Unlock()

	return c.put(src), nil
}

// Len returns the number of resident fonts.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *Cache) get(path string) (*Source, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[path]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*Source), true
}

// put inserts src unless another goroutine won the race, in which case the
// resident Source is returned.
func (c *Cache) put(src *Source) *Source {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[src.Path]; ok {
		c.order.MoveToFront(el)
		return el.Value.(*Source)
	}
	c.entries[src.Path] = c.order.PushFront(src)

	for c.order.Len() > c.capacity {
		oldest := c.order.Back()
		evicted := c.order.Remove(oldest).(*Source)
		delete(c.entries, evicted.Path)
		logging.Logger().Debug("font evicted", "path", evicted.Path)
	}
	return src
}

func readFont(path string) ([]byte, error) {
	if name, ok := strings.CutPrefix(path, EmbeddedPrefix); ok {
		data, ok := embedded[name]
		if !ok {
			return nil, &FontLoadError{Path: path, Err: fmt.Errorf("unknown embedded font %q", name)}
		}
		return data, nil
	}
	if path == "" {
		return nil, &FontLoadError{Path: path, Err: fmt.Errorf("empty font path")}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &FontLoadError{Path: path, Err: err}
	}
	return data, nil
}
