package driver

import (
	"multrait/internal/diag"
	"multrait/internal/observ"
	"multrait/internal/resolver"
	"multrait/internal/source"
	"multrait/internal/types"
)

// FileResult содержит всё, что произведено для одного файла запросов.
type FileResult struct {
	Path        string                // Путь к файлу, как его видел вызов
	FileID      source.FileID         // ID файла в FileSet
	Types       *types.Interner       // Interner сессии файла (нужен для меток)
	Resolutions []resolver.Resolution // Исходы по каждому запросу
	Bag         *diag.Bag             // Диагностики
	Timing      *observ.Report        // Тайминги фаз
	FromCache   bool                  // Результат восстановлен из дискового кеша
}

// Resolved counts queries that produced a result type.
func (r FileResult) Resolved() int {
	n := 0
	for _, res := range r.Resolutions {
		if res.Resolved() {
			n++
		}
	}
	return n
}

// Failed counts queries that produced no result type.
func (r FileResult) Failed() int {
	return len(r.Resolutions) - r.Resolved()
}
