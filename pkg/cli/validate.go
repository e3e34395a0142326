package cli

import (
	"context"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/relaymill/towncrier/pkg/cli/config"
	"github.com/urfave/cli/v3"
)

func cmdValidate() *cli.Command {
	var notifyCfg config.Notify

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate the notification policy configuration",
		Flags:   notifyCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			policy, err := notifyCfg.Configure()
			if err != nil {
				color.New(color.FgRed).Println("Configuration validation failed")
				return goerr.Wrap(err, "configuration validation failed")
			}

			green := color.New(color.FgGreen)
			green.Println("Configuration validation passed")
			green.Printf("  show_everyone: %v\n", policy.ShowEveryone)
			green.Printf("  groups:        %v\n", policy.Groups)
			green.Printf("  username:      %s\n", policy.Username)
			if policy.MaxChars > 0 || policy.MaxLines > 0 {
				green.Printf("  truncation:    %d chars / %d lines\n", policy.MaxChars, policy.MaxLines)
			}
			return nil
		},
	}
}
