// Package scanner discovers template files under the configured scan
// paths and registers their metadata in the template registry.
package scanner

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/isidrok/templao/internal/config"
	"github.com/isidrok/templao/internal/logging"
	"github.com/isidrok/templao/internal/registry"
)

// TemplateScanner walks scan paths and feeds the registry.
type TemplateScanner struct {
	registry *registry.TemplateRegistry
	config   *config.TemplatesConfig
	logger   logging.Logger
}

// NewTemplateScanner creates a scanner over the given registry.
func NewTemplateScanner(reg *registry.TemplateRegistry, cfg *config.TemplatesConfig, logger logging.Logger) *TemplateScanner {
	return &TemplateScanner{
		registry: reg,
		config:   cfg,
		logger:   logger.WithComponent("scanner"),
	}
}

// ScanAll walks every configured scan path. Missing directories are
// skipped with a warning rather than failing the whole scan.
func (s *TemplateScanner) ScanAll(ctx context.Context) error {
	for _, root := range s.config.ScanPaths {
		if _, err := os.Stat(root); os.IsNotExist(err) {
			s.logger.Warn(ctx, nil, "Scan path does not exist", "path", root)
			continue
		}
		if err := s.ScanDirectory(ctx, root); err != nil {
			return fmt.Errorf("scanning %s: %w", root, err)
		}
	}
	s.logger.Info(ctx, "Scan complete", "templates", s.registry.Count())
	return nil
}

// ScanDirectory walks one directory tree.
func (s *TemplateScanner) ScanDirectory(ctx context.Context, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !s.matches(path) {
			return nil
		}
		if err := s.ScanFile(ctx, path); err != nil {
			s.logger.Warn(ctx, err, "Skipping template", "path", path)
		}
		return nil
	})
}

// ScanFile reads one template file and registers its metadata.
func (s *TemplateScanner) ScanFile(ctx context.Context, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	name := TemplateName(path)
	sum := sha256.Sum256(content)

	s.registry.Register(&registry.TemplateInfo{
		Name:     name,
		FilePath: path,
		Hash:     hex.EncodeToString(sum[:8]),
		LastMod:  info.ModTime(),
	})
	s.logger.Debug(ctx, "Registered template", "name", name, "path", path)
	return nil
}

// matches reports whether a path has a template extension and is not
// excluded.
func (s *TemplateScanner) matches(path string) bool {
	base := filepath.Base(path)
	hasExt := false
	for _, ext := range s.config.Extensions {
		if strings.HasSuffix(base, ext) {
			hasExt = true
			break
		}
	}
	if !hasExt {
		return false
	}
	for _, pattern := range s.config.ExcludePatterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return false
		}
	}
	return true
}

// TemplateName derives the registry name from a file path: the base name
// with every extension stripped, so "button.tmpl.html" and "button.html"
// both register as "button".
func TemplateName(path string) string {
	base := filepath.Base(path)
	if i := strings.Index(base, "."); i > 0 {
		return base[:i]
	}
	return base
}
