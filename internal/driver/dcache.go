package driver

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"multrait/internal/diag"
	"multrait/internal/resolver"
	"multrait/internal/rules"
	"multrait/internal/source"
	"multrait/internal/typeexpr"
	"multrait/internal/types"
)

// Поднимать при изменении формата DiskPayload.
const diskCacheSchemaVersion uint16 = 1

// DiskCache хранит разрешённые результаты файлов на диске, по ключу
// контент+таблица. Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// DiskPayload stores the outcome of one cleanly resolved query file.
// Types are stored as canonical labels: rehydration re-parses them into
// the target session's interner, so TypeIDs never cross processes.
type DiskPayload struct {
	// Schema version for safe invalidation when format changes
	Schema uint16

	Path        string
	ContentHash Digest
	Fingerprint Digest

	Queries []QueryPayload
}

// QueryPayload is one resolved query. Spans keep byte offsets only: the
// file id is remapped on rehydration.
type QueryPayload struct {
	Left   string
	Right  string
	Result string
	Rule   string
	Rank   uint8

	Span      SpanPayload
	LeftSpan  SpanPayload
	RightSpan SpanPayload
}

// SpanPayload is a file-independent byte range.
type SpanPayload struct {
	Start uint32
	End   uint32
}

// OpenDiskCache initializes and returns a disk cache at the standard location.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, app)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// OpenDiskCacheAt initializes a disk cache rooted at an explicit
// directory, bypassing the XDG lookup.
func OpenDiskCacheAt(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) pathFor(key Digest) string {
	hexKey := hex.EncodeToString(key[:])
	// Для удобства читаемости/очистки — подкаталог "queries".
	return filepath.Join(c.dir, "queries", hexKey+".mp")
}

// Put serializes and writes a payload to the disk cache.
func (c *DiskCache) Put(key Digest, payload *DiskPayload) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		_ = os.Remove(f.Name())
	}()

	enc := msgpack.NewEncoder(f)
	if err := enc.Encode(payload); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(f.Name(), p)
}

// Get reads and deserializes a payload from the disk cache.
func (c *DiskCache) Get(key Digest, out *DiskPayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	p := c.pathFor(key)
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer func() {
		_ = f.Close()
	}()
	dec := msgpack.NewDecoder(f)
	if err := dec.Decode(out); err != nil {
		return false, err
	}
	return true, nil
}

// DropAll invalidates the cache, useful after format changes.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// тривиально: переименуем каталог и удалим целиком
	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return os.RemoveAll(old)
}

// cacheKey связывает содержимое файла с отпечатком собранной таблицы.
func cacheKey(file *source.File, session *Session) Digest {
	return Combine(Digest(file.Hash), Fingerprint(session))
}

// toPayload сериализует чистый (без диагностик) результат файла.
func toPayload(file *source.File, session *Session, result FileResult) *DiskPayload {
	payload := &DiskPayload{
		Schema:      diskCacheSchemaVersion,
		Path:        file.Path,
		ContentHash: Digest(file.Hash),
		Fingerprint: Fingerprint(session),
		Queries:     make([]QueryPayload, len(result.Resolutions)),
	}
	for i, res := range result.Resolutions {
		payload.Queries[i] = QueryPayload{
			Left:      types.Label(session.Types, res.Query.Left),
			Right:     types.Label(session.Types, res.Query.Right),
			Result:    types.Label(session.Types, res.Result),
			Rule:      res.Rule,
			Rank:      uint8(res.Rank),
			Span:      spanPayload(res.Query.Span),
			LeftSpan:  spanPayload(res.Query.LeftSpan),
			RightSpan: spanPayload(res.Query.RightSpan),
		}
	}
	return payload
}

func spanPayload(sp source.Span) SpanPayload {
	return SpanPayload{Start: sp.Start, End: sp.End}
}

func payloadSpan(sp SpanPayload, fileID source.FileID) source.Span {
	return source.Span{File: fileID, Start: sp.Start, End: sp.End}
}

// rehydrate восстанавливает результат файла из полезной нагрузки.
// Любая несостыковка трактуется как промах кеша.
func rehydrate(file *source.File, fileID source.FileID, payload *DiskPayload, session *Session, bag *diag.Bag) (FileResult, bool) {
	if payload.Schema != diskCacheSchemaVersion {
		return FileResult{}, false
	}
	if payload.ContentHash != Digest(file.Hash) {
		return FileResult{}, false
	}

	// Метки разбираются в локальный FileSet: общий набор файлов не
	// должен мутировать из параллельных горутин.
	labels := source.NewFileSet()
	resolutions := make([]resolver.Resolution, len(payload.Queries))
	for i, q := range payload.Queries {
		left, okL := typeexpr.ParseTypeLabel(labels, fmt.Sprintf("<cache:%d:left>", i), q.Left, session.Types, nil)
		right, okR := typeexpr.ParseTypeLabel(labels, fmt.Sprintf("<cache:%d:right>", i), q.Right, session.Types, nil)
		result, okRes := typeexpr.ParseTypeLabel(labels, fmt.Sprintf("<cache:%d:result>", i), q.Result, session.Types, nil)
		if !okL || !okR || !okRes {
			return FileResult{}, false
		}
		resolutions[i] = resolver.Resolution{
			Query: typeexpr.Query{
				Left:      left,
				Right:     right,
				LeftSpan:  payloadSpan(q.LeftSpan, fileID),
				RightSpan: payloadSpan(q.RightSpan, fileID),
				Span:      payloadSpan(q.Span, fileID),
			},
			Result: result,
			Rule:   q.Rule,
			Rank:   rules.Rank(q.Rank),
		}
	}

	return FileResult{
		Path:        file.Path,
		FileID:      fileID,
		Types:       session.Types,
		Resolutions: resolutions,
		Bag:         bag,
		FromCache:   true,
	}, true
}
