package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

const (
	maxSeedBytes = 64 << 10 // 64 KiB — ограничение для тестового корпуса
)

func addCorpusSeeds(f *testing.F) {
	addTestdataSeeds(f)
	addQuerySeeds(f)
}

func addTestdataSeeds(f *testing.F) {
	root := filepath.Join("..", "..", "testdata")
	if _, err := os.Stat(root); err != nil {
		return
	}
	// проходим по дереву testdata, добавляем все *.mq файлы
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if filepath.Ext(path) != ".mq" {
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		f.Add(clampSeed(src))
		return nil
	})
	if err != nil {
		return
	}
}

// addQuerySeeds добавляет минимальный набор запросов на случай пустого testdata.
func addQuerySeeds(f *testing.F) {
	f.Add([]byte{})
	f.Add([]byte("f32 * f64;\n"))
	f.Add([]byte("complex<f32> * i64;\n"))
	f.Add([]byte("const vec<f64, 3>& * f64;\n"))
	f.Add([]byte("volatile mat<f32, 2, 2>& * vec<f32, 2>;\n"))
	f.Add([]byte("// комментарий\nf32 * f32; f64 * f64;\n"))
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}
