package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/isidrok/templao"
	"github.com/isidrok/templao/internal/build"
	"github.com/isidrok/templao/internal/config"
	"github.com/isidrok/templao/internal/contexts"
	"github.com/isidrok/templao/internal/registry"
	"github.com/isidrok/templao/internal/render"
	"github.com/isidrok/templao/internal/scanner"
)

var (
	renderContextFile string
	renderOutput      string
	renderTrace       bool
)

var renderCmd = &cobra.Command{
	Use:     "render <name|path>",
	Aliases: []string{"r"},
	Short:   "Render a template with context values",
	Long: `Render a template to HTML. The argument is either a registered template
name (resolved against the configured scan paths) or a path to a
template file. Context values come from the --context YAML file, or from
the configured preview context file when present.`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().StringVarP(&renderContextFile, "context", "c", "", "YAML file with context values")
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "write output to file instead of stdout")
	renderCmd.Flags().BoolVar(&renderTrace, "trace", false, "print the mutation log to stderr")
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := newLogger(cfg, cmd.Flags().Changed("log-level"))
	ctx := cmd.Context()

	reg := registry.NewTemplateRegistry()
	scan := scanner.NewTemplateScanner(reg, &cfg.Templates, logger)
	pipeline := build.NewPipeline(0, reg, logger)
	renderer := render.NewRenderer(pipeline, logger)

	name := args[0]
	if info, statErr := os.Stat(name); statErr == nil && !info.IsDir() {
		if err := scan.ScanFile(ctx, name); err != nil {
			return err
		}
		name = scanner.TemplateName(name)
	} else if err := scan.ScanAll(ctx); err != nil {
		return err
	}

	tctx, err := loadRenderContext(cfg)
	if err != nil {
		return err
	}

	var out string
	if renderTrace {
		rendered, mutations, err := renderer.RenderTraced(ctx, name, tctx)
		if err != nil {
			return err
		}
		out = rendered
		for _, m := range mutations {
			fmt.Fprintln(cmd.ErrOrStderr(), m.String())
		}
	} else {
		out, err = renderer.Render(ctx, name, tctx)
		if err != nil {
			return err
		}
	}

	if renderOutput != "" {
		return os.WriteFile(renderOutput, []byte(out), 0o644)
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

// loadRenderContext resolves the context patch: the --context flag wins,
// then the configured preview context file when it exists, then an empty
// patch.
func loadRenderContext(cfg *config.Config) (templao.Context, error) {
	if renderContextFile != "" {
		return contexts.Load(renderContextFile)
	}
	if cfg.Preview.ContextFile != "" {
		if _, err := os.Stat(cfg.Preview.ContextFile); err == nil {
			return contexts.Load(cfg.Preview.ContextFile)
		}
	}
	return templao.Context{}, nil
}
