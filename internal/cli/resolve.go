package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/kolah/specmodel/internal/config"
	"github.com/kolah/specmodel/internal/parser"
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v4"
)

func ResolveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve [spec]",
		Short: "Print the document with every $ref replaced by its target",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runResolve,
	}

	config.BindCommonFlags(cmd)

	return cmd
}

func runResolve(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd, args)
	if err != nil {
		return err
	}
	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}

	tree, err := parser.Resolve(cmd.Context(), cfg.Spec, cfg.ParserOptions(logger)...)
	if err != nil {
		return err
	}

	var out []byte
	switch cfg.Output {
	case "json":
		out, err = json.MarshalIndent(tree, "", "  ")
		out = append(out, '\n')
	default:
		out, err = yaml.Marshal(tree)
	}
	if err != nil {
		return fmt.Errorf("encoding %s output: %w", cfg.Output, err)
	}

	_, err = cmd.OutOrStdout().Write(out)
	return err
}

func newLogger(cmd *cobra.Command, cfg *config.Config) (*slog.Logger, error) {
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})), nil
}
