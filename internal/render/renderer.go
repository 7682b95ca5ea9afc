// Package render resolves template names to rendered HTML through the
// registry and the build pipeline's compile cache.
package render

import (
	"context"
	"strings"

	"github.com/isidrok/templao"
	"github.com/isidrok/templao/internal/build"
	"github.com/isidrok/templao/internal/logging"
	"github.com/isidrok/templao/tree"
)

// Renderer renders registered templates with context values.
type Renderer struct {
	pipeline *build.Pipeline
	logger   logging.Logger
}

// NewRenderer creates a renderer over a build pipeline.
func NewRenderer(pipeline *build.Pipeline, logger logging.Logger) *Renderer {
	return &Renderer{
		pipeline: pipeline,
		logger:   logger.WithComponent("render"),
	}
}

// Render compiles (or reuses) a template by name, instantiates it with
// the context, and serializes the result.
func (r *Renderer) Render(ctx context.Context, name string, tctx templao.Context) (string, error) {
	tpl, err := r.pipeline.Get(ctx, name)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	if err := tpl.Render(&sb, tctx); err != nil {
		return "", err
	}
	r.logger.Debug(ctx, "Rendered template", "template", name)
	return sb.String(), nil
}

// RenderTraced renders like Render but also returns the mutation log the
// update pass produced, making the engine's minimal-update behavior
// observable.
func (r *Renderer) RenderTraced(ctx context.Context, name string, tctx templao.Context) (string, []tree.Mutation, error) {
	tpl, err := r.pipeline.Get(ctx, name)
	if err != nil {
		return "", nil, err
	}

	inst, rec := tpl.CreateRecordedInstance(tctx)
	var sb strings.Builder
	if err := inst.Render(&sb); err != nil {
		return "", nil, err
	}
	return sb.String(), rec.Mutations(), nil
}

// Instantiate returns a live recorded instance for a template name, used
// by the preview server to push incremental patches.
func (r *Renderer) Instantiate(ctx context.Context, name string, tctx templao.Context) (*templao.TemplateInstance, *tree.Recorder, error) {
	tpl, err := r.pipeline.Get(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	inst, rec := tpl.CreateRecordedInstance(tctx)
	return inst, rec, nil
}
