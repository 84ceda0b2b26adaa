package main

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// listQueryFiles собирает все *.mq файлы под dir в отсортированном порядке.
// Обход совпадает с обходом драйвера, чтобы список для прогресс-модели
// соответствовал событиям.
func listQueryFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(d.Name(), ".mq") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// displayFileList нормализует пути так же, как FileSet нормализует их при
// загрузке: имена элементов списка совпадают с именами в событиях.
func displayFileList(files []string) []string {
	normalized := make([]string, 0, len(files))
	for _, file := range files {
		normalized = append(normalized, filepath.ToSlash(filepath.Clean(file)))
	}
	return normalized
}
