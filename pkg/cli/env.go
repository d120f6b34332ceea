package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/secmon-lab/polyconn/pkg/cli/config"
	"github.com/secmon-lab/polyconn/pkg/domain/model"
	"github.com/secmon-lab/polyconn/pkg/repository/memory"
	"github.com/urfave/cli/v3"
)

func cmdEnv() *cli.Command {
	var providers config.Providers

	return &cli.Command{
		Name:  "env",
		Usage: "Show which providers have complete credentials in the environment",
		Flags: providers.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			var appCfg config.AppConfig
			uc, err := newUseCases(memory.New(), &appCfg, &providers)
			if err != nil {
				return err
			}

			printServices(c.Root().Writer, uc.Environment.Services())
			return nil
		},
	}
}

func printServices(w io.Writer, services map[model.Provider]bool) {
	for _, p := range model.Providers() {
		mark := color.RedString("✗ missing   ")
		if services[p] {
			mark = color.GreenString("✓ configured")
		}
		_, _ = fmt.Fprintf(w, "%s  %s\n", mark, p)
	}
}
