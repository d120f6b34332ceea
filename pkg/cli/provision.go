package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/polyconn/pkg/cli/config"
	"github.com/secmon-lab/polyconn/pkg/usecase"
	"github.com/secmon-lab/polyconn/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

func cmdProvision() *cli.Command {
	var appCfg config.AppConfig
	var repoCfg config.Repository
	var providers config.Providers

	var flags []cli.Flag
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, providers.Flags()...)

	return &cli.Command{
		Name:    "provision",
		Aliases: []string{"p"},
		Usage:   "Create connections from provider credentials in the environment and exit",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer safe.Close(ctx, repo)

			uc, err := newUseCases(repo, &appCfg, &providers)
			if err != nil {
				return err
			}

			printProvisionResults(c.Root().Writer, uc.Provisioner.Run(ctx))
			return nil
		},
	}
}

func printProvisionResults(w io.Writer, results []usecase.ProvisionResult) {
	if len(results) == 0 {
		_, _ = fmt.Fprintln(w, "No provider credentials found in the environment")
		return
	}

	for _, r := range results {
		var status string
		switch r.Status {
		case usecase.ProvisionCreated:
			status = color.GreenString("%-8s", r.Status)
		case usecase.ProvisionExisting:
			status = color.CyanString("%-8s", r.Status)
		default:
			status = color.RedString("%-8s", r.Status)
		}

		line := fmt.Sprintf("%s %-8s", status, r.Provider)
		if r.ConnectionID != 0 {
			line += fmt.Sprintf(" connection=%d", r.ConnectionID)
		}
		if r.DataSource != nil {
			line += fmt.Sprintf(" source=%s", r.DataSource.SourceID)
			if r.Fallback {
				line += color.YellowString(" (fallback)")
			}
		}
		if r.Err != nil {
			line += " " + color.RedString(r.Err.Error())
		}
		_, _ = fmt.Fprintln(w, line)
	}
}
