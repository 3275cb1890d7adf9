package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/dedene/iconfilter-cli/internal/config"
	"github.com/dedene/iconfilter-cli/internal/icons"
	"github.com/dedene/iconfilter-cli/internal/outfmt"
)

// ConfigCmd groups configuration subcommands.
type ConfigCmd struct {
	Path  ConfigPathCmd  `cmd:"" help:"Show config file path"`
	List  ConfigListCmd  `cmd:"" help:"List all config values"`
	Get   ConfigGetCmd   `cmd:"" help:"Get a config value"`
	Set   ConfigSetCmd   `cmd:"" help:"Set a config value"`
	Unset ConfigUnsetCmd `cmd:"" help:"Unset a config value"`
	Alias ConfigAliasCmd `cmd:"" help:"Add or remove a token alias"`
}

// ConfigPathCmd prints the config file path.
type ConfigPathCmd struct{}

// Run prints the config file path.
func (c *ConfigPathCmd) Run(_ context.Context) error {
	path, err := config.ConfigPath()
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stdout, path)

	return nil
}

// ConfigListCmd lists all config values.
type ConfigListCmd struct{}

// Run lists all config keys with their values, then configured aliases.
func (c *ConfigListCmd) Run(ctx context.Context) error {
	cfg := configFrom(ctx)

	if outfmt.IsJSON(ctx) {
		return outfmt.WriteJSON(os.Stdout, cfg)
	}

	for _, key := range config.KnownKeys() {
		val, ok := cfg.Get(key)
		if !ok {
			val = "(unset)"
		}

		fmt.Fprintf(os.Stdout, "%s = %s\n", key, val)
	}

	for _, a := range cfg.AliasList() {
		fmt.Fprintf(os.Stdout, "alias %s = %s\n", icons.Token(a.Token), a.Icon)
	}

	return nil
}

// ConfigGetCmd gets a single config value.
type ConfigGetCmd struct {
	Key string `arg:"" help:"Config key to get"`
}

// Run prints the value for the given key.
func (c *ConfigGetCmd) Run(ctx context.Context) error {
	val, ok := configFrom(ctx).Get(c.Key)
	if !ok {
		val = "(unset)"
	}

	fmt.Fprintln(os.Stdout, val)

	return nil
}

// ConfigSetCmd sets a config value.
type ConfigSetCmd struct {
	Key   string `arg:"" help:"Config key"`
	Value string `arg:"" help:"Config value"`
}

// Run sets a config key to a value, persisting to disk.
func (c *ConfigSetCmd) Run(_ context.Context) error {
	return updateConfig(func(cfg *config.Config) error {
		if err := cfg.Set(c.Key, c.Value); err != nil {
			return err
		}

		fmt.Fprintf(os.Stderr, "Set %s = %s\n", c.Key, c.Value)

		return nil
	})
}

// ConfigUnsetCmd removes a config value.
type ConfigUnsetCmd struct {
	Key string `arg:"" help:"Config key to unset"`
}

// Run unsets a config key, persisting to disk.
func (c *ConfigUnsetCmd) Run(_ context.Context) error {
	return updateConfig(func(cfg *config.Config) error {
		if err := cfg.Unset(c.Key); err != nil {
			return err
		}

		fmt.Fprintf(os.Stderr, "Unset %s\n", c.Key)

		return nil
	})
}

// ConfigAliasCmd maps an extra token to an existing icon, e.g.
// "config alias grin bigsmile" makes (grin) render as (bigsmile).
// Without ICON the alias is removed.
type ConfigAliasCmd struct {
	Token string `arg:"" help:"Alias token, without parentheses"`
	Icon  string `arg:"" optional:"" help:"Target icon name (omit to remove)"`
}

// Run validates the alias against the catalog and persists it.
func (c *ConfigAliasCmd) Run(_ context.Context) error {
	return updateConfig(func(cfg *config.Config) error {
		if c.Icon == "" {
			if _, ok := cfg.Aliases[c.Token]; !ok {
				return fmt.Errorf("no alias %q configured", c.Token)
			}

			delete(cfg.Aliases, c.Token)
			fmt.Fprintf(os.Stderr, "Removed alias %s\n", icons.Token(c.Token))

			return nil
		}

		if _, err := icons.Default().WithAliases([]icons.Alias{{Token: c.Token, Icon: c.Icon}}); err != nil {
			return err
		}

		if cfg.Aliases == nil {
			cfg.Aliases = make(map[string]string)
		}

		cfg.Aliases[c.Token] = c.Icon
		fmt.Fprintf(os.Stderr, "Alias %s = %s\n", icons.Token(c.Token), c.Icon)

		return nil
	})
}

// updateConfig loads the config file, applies fn and saves it.
func updateConfig(fn func(*config.Config) error) error {
	cfgPath, err := config.ConfigPath()
	if err != nil {
		return err
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	if err := fn(cfg); err != nil {
		return err
	}

	return config.Save(cfgPath, cfg)
}
