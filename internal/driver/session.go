package driver

import (
	"multrait/internal/manifest"
	"multrait/internal/resolver"
	"multrait/internal/rules"
	"multrait/internal/source"
	"multrait/internal/types"
)

// Setup описывает, как собирать окружение разрешения для каждого файла.
type Setup struct {
	// Manifest — валидированный манифест расширений, nil означает
	// только встроенную таблицу.
	Manifest *manifest.Manifest
}

// Session is one assembled resolution environment: a fresh interner plus
// a frozen registry built from the builtin table and the manifest.
// Parallel file resolution gives every file its own session, so no
// cross-goroutine mutation of the interner exists.
type Session struct {
	Types    *types.Interner
	Registry *rules.Registry
	Resolver *resolver.Resolver
}

// NewSession builds and freezes a resolution environment. The manifest
// is assumed validated: entries that fail to apply are skipped silently.
func (s Setup) NewSession() *Session {
	in := types.NewInterner()
	reg := rules.Standard(in)
	if s.Manifest != nil {
		// Локальный FileSet: метки манифеста не должны попадать в
		// общий набор файлов из параллельных горутин.
		s.Manifest.Apply(source.NewFileSet(), in, reg, nil)
	}
	reg.Freeze()
	return &Session{
		Types:    in,
		Registry: reg,
		Resolver: resolver.New(in, reg),
	}
}
