package gen

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/imports"
)

// TemplateWriter renders the quarkus target with parallel execution.
type TemplateWriter struct {
	graph   *Graph
	tmpl    *Template
	outDir  string
	workers int
	log     *slog.Logger

	mu      sync.Mutex
	metrics *WriterMetrics
}

// WriterMetrics tracks generation performance.
type WriterMetrics struct {
	FilesGenerated int
	TotalBytes     int64
	TemplateTime   time.Duration
	FormatTime     time.Duration
}

// NewTemplateWriter creates a new template-based writer.
func NewTemplateWriter(g *Graph, tmpl *Template, outDir string) *TemplateWriter {
	return &TemplateWriter{
		graph:   g,
		tmpl:    tmpl,
		outDir:  outDir,
		workers: runtime.GOMAXPROCS(0),
		log:     g.Log(),
		metrics: &WriterMetrics{},
	}
}

// WithWorkers sets the number of parallel workers.
func (w *TemplateWriter) WithWorkers(n int) *TemplateWriter {
	if n > 0 {
		w.workers = n
	}
	return w
}

// Metrics returns the generation metrics.
func (w *TemplateWriter) Metrics() *WriterMetrics {
	return w.metrics
}

// fileTask represents a single file generation task.
type fileTask struct {
	name     string // output file path (relative to outDir, slash separated)
	template string // template name to execute
	data     any    // data to pass to template
}

// tasks lists the files of the graph: per-type files, project files and
// the extra templates of a template directory.
func (w *TemplateWriter) tasks() []fileTask {
	var files []fileTask
	for _, t := range w.graph.Nodes {
		for _, tmpl := range Templates {
			if tmpl.Cond != nil && !tmpl.Cond(t) {
				continue
			}
			files = append(files, fileTask{name: tmpl.Format(t), template: tmpl.Name, data: t})
		}
	}
	for _, tmpl := range GraphTemplates {
		if tmpl.Skip != nil && tmpl.Skip(w.graph) {
			continue
		}
		files = append(files, fileTask{name: tmpl.Format, template: tmpl.Name, data: w.graph})
	}
	for _, name := range w.tmpl.Extras() {
		files = append(files, fileTask{name: name, template: name, data: w.graph})
	}
	return files
}

// GenerateAll generates all files in parallel.
func (w *TemplateWriter) GenerateAll(ctx context.Context) error {
	if err := os.MkdirAll(w.outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(w.workers)
	for _, f := range w.tasks() {
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
				return w.generateFile(f)
			}
		})
	}
	return eg.Wait()
}

// generateFile generates a single file.
func (w *TemplateWriter) generateFile(f fileTask) error {
	start := time.Now()
	var buf bytes.Buffer
	if err := w.tmpl.ExecuteTemplate(&buf, f.template, f.data); err != nil {
		return NewGenerationError(TargetQuarkus, f.name, fmt.Sprintf("execute template %q", f.template), err)
	}
	rendered := time.Since(start)

	fullPath := filepath.Join(w.outDir, filepath.FromSlash(f.name))
	out := buf.Bytes()
	var formatted time.Duration
	if filepath.Ext(fullPath) == ".go" {
		// goimports removes unused imports and adds missing ones.
		fstart := time.Now()
		src, err := imports.Process(fullPath, out, nil)
		if err != nil {
			return NewGenerationError(TargetQuarkus, f.name, w.writeDebug(fullPath+".error", out), err)
		}
		out, formatted = src, time.Since(fstart)
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return NewGenerationError(TargetQuarkus, f.name, "create directory", err)
	}
	if err := os.WriteFile(fullPath, out, 0o644); err != nil {
		return NewGenerationError(TargetQuarkus, f.name, "write file", err)
	}
	w.log.Debug("generated file", "target", TargetQuarkus, "file", f.name, "bytes", len(out))

	w.mu.Lock()
	w.metrics.FilesGenerated++
	w.metrics.TotalBytes += int64(len(out))
	w.metrics.TemplateTime += rendered
	w.metrics.FormatTime += formatted
	w.mu.Unlock()
	return nil
}

// writeDebug keeps output that failed to format next to its destination
// and returns the generation phase describing where it went.
func (w *TemplateWriter) writeDebug(path string, out []byte) string {
	err := os.MkdirAll(filepath.Dir(path), 0o755)
	if err == nil {
		err = os.WriteFile(path, out, 0o644)
	}
	if err != nil {
		w.log.Warn("keep unformatted output", "file", path, "error", err)
		return "format"
	}
	return "format (unformatted written to " + path + ")"
}
