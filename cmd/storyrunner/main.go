package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pranas/storyrunner"
	"github.com/pranas/storyrunner/browser"
	"github.com/pranas/storyrunner/script"
)

func main() {
	os.Exit(run())
}

func run() int {
	logger, err := zap.NewProduction()
	if err != nil {
		return 2
	}
	defer logger.Sync() //nolint:errcheck

	cfg, err := storyrunner.LoadConfig()
	if err != nil {
		logger.Error("invalid configuration", zap.Error(err))
		return 2
	}

	exitCode := 0
	cmd := newRootCmd(&cfg, logger, &exitCode)
	if err := cmd.Execute(); err != nil {
		return 2
	}
	return exitCode
}

func newRootCmd(cfg *storyrunner.Config, logger *zap.Logger, exitCode *int) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "storyrunner [code location]",
		Short:         "Run story files against a website in a browser",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				cfg.CodeLocation = args[0]
			}

			out := cmd.OutOrStdout()
			provider := browser.NewTypeProvider(cfg.Browser)
			defer provider.End()

			conf, err := storyrunner.MakeConfiguration(*cfg, afero.NewOsFs(), out, provider,
				storyrunner.NewTerminalContextView(cmd.ErrOrStderr()), logger)
			if err != nil {
				return err
			}

			steps := script.NewFinder(afero.NewOsFs(), filepath.Join(conf.CodeLocation, cfg.StepsDir))
			summary, err := storyrunner.NewRunner(conf, steps).Run()
			*exitCode = summary.ExitCode
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.StoryFilter, "storyFilter", cfg.StoryFilter, "run only stories whose file name contains this")
	flags.StringVar(&cfg.Language, "lang", cfg.Language, "story language")
	flags.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "seed for random scenario order")
	flags.BoolVar(&cfg.FailFast, "fast", cfg.FailFast, "stop on first failure")
	flags.BoolVar(&cfg.DryRun, "dry", cfg.DryRun, "match steps without running them")
	flags.StringVar(&cfg.TagExpression, "tags", cfg.TagExpression, "tag expression selecting scenarios")
	flags.StringVar(&cfg.StepsDir, "steps", cfg.StepsDir, "step script directory")
	flags.StringVar(&cfg.OutputDir, "output", cfg.OutputDir, "report directory")
	flags.StringVar(&cfg.Browser.Type, "browser", cfg.Browser.Type, "chrome-headless, chrome or remote")

	return cmd
}
