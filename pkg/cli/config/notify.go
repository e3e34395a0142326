package config

import (
	"log/slog"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	modelconfig "github.com/relaymill/towncrier/pkg/domain/model/config"
	"github.com/urfave/cli/v3"
)

// Notify holds CLI flags for the notification policy. The TOML file, when
// given, takes precedence over individual flags.
type Notify struct {
	configPath   string
	showEveryone bool
	groups       []int64
	username     string
	iconURL      string
	maxChars     int
	maxLines     int
}

// notifyTOML is the file representation of the notification policy
type notifyTOML struct {
	ShowEveryone *bool   `toml:"show_everyone"`
	Groups       []int64 `toml:"groups"`
	Username     *string `toml:"username"`
	IconURL      *string `toml:"icon_url"`
	MaxChars     *int    `toml:"max_chars"`
	MaxLines     *int    `toml:"max_lines"`
}

func (x *Notify) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "notify-config",
			Usage:       "Path to notification policy TOML file",
			Category:    "Notify",
			Sources:     cli.EnvVars("TOWNCRIER_NOTIFY_CONFIG"),
			Destination: &x.configPath,
		},
		&cli.BoolFlag{
			Name:        "notify-show-everyone",
			Usage:       "Post recordings visible to the whole CRM account",
			Category:    "Notify",
			Value:       true,
			Sources:     cli.EnvVars("TOWNCRIER_NOTIFY_SHOW_EVERYONE"),
			Destination: &x.showEveryone,
		},
		&cli.Int64SliceFlag{
			Name:        "notify-group",
			Usage:       "CRM group ID whose recordings are posted (repeatable)",
			Category:    "Notify",
			Sources:     cli.EnvVars("TOWNCRIER_NOTIFY_GROUPS"),
			Destination: &x.groups,
		},
		&cli.StringFlag{
			Name:        "notify-username",
			Usage:       "Sender name shown on posted messages",
			Category:    "Notify",
			Value:       "towncrier",
			Sources:     cli.EnvVars("TOWNCRIER_NOTIFY_USERNAME"),
			Destination: &x.username,
		},
		&cli.StringFlag{
			Name:        "notify-icon-url",
			Usage:       "Icon URL shown on posted messages",
			Category:    "Notify",
			Sources:     cli.EnvVars("TOWNCRIER_NOTIFY_ICON_URL"),
			Destination: &x.iconURL,
		},
		&cli.IntFlag{
			Name:        "notify-max-chars",
			Usage:       "Truncate message bodies to this many characters (0 = no limit)",
			Category:    "Notify",
			Sources:     cli.EnvVars("TOWNCRIER_NOTIFY_MAX_CHARS"),
			Destination: &x.maxChars,
		},
		&cli.IntFlag{
			Name:        "notify-max-lines",
			Usage:       "Truncate message bodies to this many lines (0 = no limit)",
			Category:    "Notify",
			Sources:     cli.EnvVars("TOWNCRIER_NOTIFY_MAX_LINES"),
			Destination: &x.maxLines,
		},
	}
}

func (x Notify) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("config", x.configPath),
		slog.Bool("show-everyone", x.showEveryone),
		slog.Any("groups", x.groups),
		slog.String("username", x.username),
	)
}

// Configure builds the notification policy from flags and the optional TOML file
func (x *Notify) Configure() (*modelconfig.NotifyConfig, error) {
	cfg := &modelconfig.NotifyConfig{
		ShowEveryone: x.showEveryone,
		Groups:       x.groups,
		Username:     x.username,
		IconURL:      x.iconURL,
		MaxChars:     x.maxChars,
		MaxLines:     x.maxLines,
	}

	if x.configPath != "" {
		if err := applyTOML(cfg, x.configPath); err != nil {
			return nil, err
		}
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyTOML(cfg *modelconfig.NotifyConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return goerr.Wrap(err, "failed to read notify config", goerr.V("path", path))
	}

	var file notifyTOML
	if err := toml.Unmarshal(data, &file); err != nil {
		return goerr.Wrap(err, "failed to parse notify config", goerr.V("path", path))
	}

	if file.ShowEveryone != nil {
		cfg.ShowEveryone = *file.ShowEveryone
	}
	if file.Groups != nil {
		cfg.Groups = file.Groups
	}
	if file.Username != nil {
		cfg.Username = *file.Username
	}
	if file.IconURL != nil {
		cfg.IconURL = *file.IconURL
	}
	if file.MaxChars != nil {
		cfg.MaxChars = *file.MaxChars
	}
	if file.MaxLines != nil {
		cfg.MaxLines = *file.MaxLines
	}

	return nil
}

func validate(cfg *modelconfig.NotifyConfig) error {
	if cfg.MaxChars < 0 {
		return goerr.New("notify max chars must not be negative", goerr.V("maxChars", cfg.MaxChars))
	}
	if cfg.MaxLines < 0 {
		return goerr.New("notify max lines must not be negative", goerr.V("maxLines", cfg.MaxLines))
	}
	if !cfg.ShowEveryone && len(cfg.Groups) == 0 {
		return goerr.New("notification policy matches nothing: enable show_everyone or configure groups")
	}
	return nil
}
