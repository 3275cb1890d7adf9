package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/dedene/iconfilter-cli/internal/config"
	"github.com/dedene/iconfilter-cli/internal/outfmt"
	"github.com/dedene/iconfilter-cli/internal/pix"
	"github.com/dedene/iconfilter-cli/internal/ui"
)

// RootFlags are global flags available to all commands.
type RootFlags struct {
	Color   string `help:"Color output: auto|always|never" default:"auto" enum:"auto,always,never"`
	JSON    bool   `help:"JSON output" default:"false"`
	Verbose bool   `help:"Verbose logging" default:"false"`
	NoInput bool   `help:"Never prompt; fail instead" name:"no-input" default:"false"`
	Force   bool   `help:"Skip confirmations" default:"false"`
}

// CLI is the top-level Kong command struct.
type CLI struct {
	RootFlags `embed:""`

	Version    kong.VersionFlag `help:"Print version and exit"`
	VersionCmd VersionCmd       `cmd:"" name:"version" help:"Print version info"`
	Filter     FilterCmd        `cmd:"" name:"filter" default:"withargs" help:"Replace icon tokens in HTML"`
	Icons      IconsCmd         `cmd:"" name:"icons" aliases:"ls" help:"List or view icon tokens"`
	Pick       PickCmd          `cmd:"" name:"pick" help:"Pick icons interactively and compose text"`
	Rules      RulesCmd         `cmd:"" name:"rules" help:"Show compiled replacement rules"`
	Config     ConfigCmd        `cmd:"" name:"config" help:"Manage configuration"`
}

// Execute parses args and runs the selected command. Usage errors and
// --help/--version come back as *ExitError.
func Execute(args []string) (err error) {
	cli := &CLI{}

	parser, err := kong.New(cli,
		kong.Name("iconfilter"),
		kong.Description("Replace emoticon tokens like (angel) in HTML with icon images"),
		kong.ConfigureHelp(helpOptions()),
		kong.Help(helpPrinter),
		kong.Vars{"version": VersionString()},
		kong.Writers(os.Stdout, os.Stderr),
		kong.Exit(func(code int) { panic(exitPanic{code: code}) }),
	)
	if err != nil {
		return err
	}

	defer recoverExit(&err)

	kctx, err := parser.Parse(args)
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)

		return &ExitError{Code: exitUsage, Err: err}
	}

	ctx, err := commandContext(cli)
	if err != nil {
		return err
	}

	kctx.BindTo(ctx, (*context.Context)(nil))
	kctx.Bind(&cli.RootFlags)

	return kctx.Run()
}

// recoverExit turns the exitPanic raised by kong.Exit into an error.
func recoverExit(err *error) {
	r := recover()
	if r == nil {
		return
	}

	ep, ok := r.(exitPanic)
	if !ok {
		panic(r)
	}

	if ep.code == exitOK {
		*err = nil

		return
	}

	*err = &ExitError{Code: ep.code, Err: errors.New("exited")}
}

// commandContext installs the logger and carries output mode, UI, config
// (file plus ICONFILTER_* environment) and the icon client for commands.
func commandContext(cli *CLI) (context.Context, error) {
	level := slog.LevelWarn
	if cli.Verbose {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx := outfmt.WithMode(context.Background(), outfmt.Mode{JSON: cli.JSON})

	// JSON output is never colored.
	color := cli.Color
	if cli.JSON {
		color = string(ui.ColorNever)
	}

	u, err := ui.New(ui.Options{Stdout: os.Stdout, Stderr: os.Stderr, Color: color})
	if err != nil {
		return nil, err
	}

	ctx = ui.WithUI(ctx, u)

	cfg := loadConfig()
	ctx = config.WithConfig(ctx, cfg)

	return pix.WithClient(ctx, pix.NewClient(pix.ClientOptions{
		SiteURL:   cfg.SiteURL,
		Verbose:   cli.Verbose,
		UserAgent: "iconfilter-cli/" + version,
		Logger:    logger,
	})), nil
}

// loadConfig never fails: a broken file or environment is logged and the
// usable part kept.
func loadConfig() *config.Config {
	path, err := config.ConfigPath()
	if err != nil {
		slog.Warn("locating config", "error", err)

		return &config.Config{}
	}

	cfg, err := config.Load(path)
	if err != nil {
		slog.Warn("loading config", "path", path, "error", err)

		cfg = &config.Config{}
	}

	if err := config.ApplyEnv(cfg); err != nil {
		slog.Warn("applying environment", "error", err)
	}

	return cfg
}
