package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var initYes bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new templao project",
	Long: `Create a .templao.yml configuration file, a templates directory with a
starter template, and a context file. Runs an interactive wizard unless
--yes accepts all defaults.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVarP(&initYes, "yes", "y", false, "accept defaults without prompting")
}

// initAnswers holds the wizard's answers.
type initAnswers struct {
	TemplatesDir string `survey:"templates_dir"`
	ContextFile  string `survey:"context_file"`
	Port         int    `survey:"port"`
	LiveReload   bool   `survey:"live_reload"`
	Starter      bool   `survey:"starter"`
}

var initQuestions = []*survey.Question{
	{
		Name:     "templates_dir",
		Prompt:   &survey.Input{Message: "Templates directory:", Default: "templates"},
		Validate: survey.Required,
	},
	{
		Name:   "context_file",
		Prompt: &survey.Input{Message: "Context file:", Default: "context.yaml"},
	},
	{
		Name:   "port",
		Prompt: &survey.Input{Message: "Preview server port:", Default: "8120"},
	},
	{
		Name:   "live_reload",
		Prompt: &survey.Confirm{Message: "Enable live reload?", Default: true},
	},
	{
		Name:   "starter",
		Prompt: &survey.Confirm{Message: "Create a starter template?", Default: true},
	},
}

func runInit(cmd *cobra.Command, args []string) error {
	answers := initAnswers{
		TemplatesDir: "templates",
		ContextFile:  "context.yaml",
		Port:         8120,
		LiveReload:   true,
		Starter:      true,
	}
	if !initYes {
		if err := survey.Ask(initQuestions, &answers); err != nil {
			return err
		}
	}

	if _, err := os.Stat(".templao.yml"); err == nil {
		return fmt.Errorf(".templao.yml already exists, refusing to overwrite")
	}

	cfg := map[string]any{
		"server": map[string]any{
			"host": "localhost",
			"port": answers.Port,
		},
		"templates": map[string]any{
			"scan_paths": []string{answers.TemplatesDir},
			"extensions": []string{".html", ".tmpl.html"},
		},
		"preview": map[string]any{
			"context_file": answers.ContextFile,
		},
		"development": map[string]any{
			"live_reload": answers.LiveReload,
			"log_level":   "info",
		},
	}
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(".templao.yml", out, 0o644); err != nil {
		return fmt.Errorf("writing .templao.yml: %w", err)
	}

	if err := os.MkdirAll(answers.TemplatesDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", answers.TemplatesDir, err)
	}

	if answers.Starter {
		starterPath := filepath.Join(answers.TemplatesDir, "greeting.html")
		if err := writeIfAbsent(starterPath, starterTemplate); err != nil {
			return err
		}
		if answers.ContextFile != "" {
			if err := writeIfAbsent(answers.ContextFile, starterContext); err != nil {
				return err
			}
		}
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Project initialized. Run `templao serve` to start the preview server.")
	return nil
}

func writeIfAbsent(path, content string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return os.WriteFile(path, []byte(content), 0o644)
}

const starterTemplate = `<section class="{theme}">
  <h1>Hello, {name}!</h1>
  <button ?disabled="{busy}">{action}</button>
</section>
`

const starterContext = `name: world
theme: light
action: Start
busy: false
`
