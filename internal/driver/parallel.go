package driver

import (
	"context"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"multrait/internal/diag"
	"multrait/internal/source"
)

// listMQFiles возвращает отсортированный список всех *.mq файлов в директории.
func listMQFiles(dir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".mq") {
			files = append(files, path)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	// Сортируем для детерминированного порядка
	sort.Strings(files)
	return files, nil
}

// ResolveDir разрешает все *.mq файлы в директории параллельно. Каждый
// файл получает собственную сессию, собранную из общего манифеста, так
// что между горутинами нет разделяемого мутабельного состояния.
func ResolveDir(ctx context.Context, dir string, setup Setup, opts Options) (*source.FileSet, []FileResult, error) {
	files, err := listMQFiles(dir)
	if err != nil {
		return nil, nil, err
	}

	if len(files) == 0 {
		return source.NewFileSetWithBase(dir), nil, nil
	}

	// Создаём FileSet и предзагружаем все файлы
	fileSet := source.NewFileSetWithBase(dir)
	fileIDs := make(map[string]source.FileID, len(files))
	loadErrors := make(map[string]error, len(files))

	for _, path := range files {
		fileID, err := fileSet.Load(path)
		if err != nil {
			// Сохраняем ошибку загрузки для последующей обработки
			loadErrors[path] = err
			continue
		}
		fileIDs[path] = fileID
	}

	for _, path := range files {
		notify(opts.Sink, Event{File: displayPath(fileSet, fileIDs, path), Stage: StageParse, Status: StatusQueued})
	}

	// Настраиваем параллелизм
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// Результаты (индексы уникальны для каждой горутины, мьютекс не нужен)
	results := make([]FileResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))

	for i, path := range files {
		g.Go(func(i int, path string) func() error {
			return func() error {
				// Проверка отмены
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}

				// Проверяем ошибку загрузки
				if loadErr, hadError := loadErrors[path]; hadError {
					bag := diag.NewBag(opts.MaxDiagnostics)
					bag.Add(diag.NewError(diag.IOLoadFileError, source.Span{}, "failed to load file: "+loadErr.Error()))
					results[i] = FileResult{Path: path, Bag: bag}
					notify(opts.Sink, Event{File: path, Stage: StageParse, Status: StatusError, Err: loadErr})
					return nil
				}

				// Сохраняем результат (мьютекс не нужен — индекс i уникален)
				results[i] = ResolveFile(fileSet, fileIDs[path], setup, opts)
				return nil
			}
		}(i, path))
	}

	// Ждём завершения всех горутин
	if err := g.Wait(); err != nil {
		return fileSet, results, err
	}

	return fileSet, results, nil
}

// displayPath согласует имя файла в событиях с тем, что пишет
// ResolveFile (нормализованный путь из FileSet).
func displayPath(fileSet *source.FileSet, fileIDs map[string]source.FileID, path string) string {
	if id, ok := fileIDs[path]; ok {
		return fileSet.Get(id).Path
	}
	return path
}
