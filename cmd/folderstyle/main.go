package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"time"

	"github.com/schollz/cli/v2"
	log "github.com/schollz/logger"
	"github.com/schollz/progressbar/v3"

	"github.com/dentalwings/folderstyle"
	"github.com/dentalwings/folderstyle/config"
	"github.com/dentalwings/folderstyle/discover"
	"github.com/dentalwings/folderstyle/iconpath"
	"github.com/dentalwings/folderstyle/resource"
	"github.com/dentalwings/folderstyle/shell"
)

// Version is set at build time.
var Version = "v0.1.0-dev"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

// env is what every command is built from.
type env struct {
	cfg    config.Config
	reader *resource.Reader
}

func (e *env) resolver() *iconpath.Resolver {
	return iconpath.NewResolver(e.reader, e.cfg.Resolver())
}

func (e *env) editor() *folderstyle.Editor {
	return folderstyle.NewEditor(e.resolver(), shell.NewNotifier())
}

func newApp() *cli.App {
	e := &env{}
	app := cli.NewApp()
	app.Name = "folderstyle"
	app.Version = Version
	app.Usage = "set a folder's icon and display name"
	app.HideHelpCommand = true
	app.Flags = []cli.Flag{
		&cli.BoolFlag{Name: "debug", Usage: "increase verbosity"},
		&cli.StringFlag{Name: "config", Usage: "path to a TOML config file", EnvVars: []string{config.EnvFile}},
		&cli.StringFlag{Name: "loader", Usage: "icon resource loader: auto, pe or native"},
	}
	app.Before = func(c *cli.Context) error {
		cfg, err := config.Load(c.String("config"))
		if err != nil {
			return err
		}
		if c.IsSet("loader") {
			cfg.Loader = c.String("loader")
		}
		if c.Bool("debug") {
			cfg.LogLevel = "debug"
		}
		log.SetLevel(cfg.LogLevel)
		opener, err := resource.NewOpener(cfg.Loader)
		if err != nil {
			return err
		}
		e.cfg = cfg
		e.reader = resource.NewReader(opener)
		return nil
	}
	app.Commands = []*cli.Command{
		{
			Name:      "groups",
			Usage:     "list the icon groups of a module",
			ArgsUsage: "MODULE",
			Action:    e.groups,
		},
		{
			Name:      "extract",
			Usage:     "rebuild an icon group as an .ico file",
			ArgsUsage: "MODULE INDEX",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output file (default MODULE_INDEX.ico)"},
			},
			Action: e.extract,
		},
		{
			Name:      "resolve",
			Usage:     "show the desktop.ini entries an icon would be stored as",
			ArgsUsage: "FOLDER ICON[,INDEX]",
			Action:    e.resolve,
		},
		{
			Name:      "apply",
			Usage:     "set a folder's icon and/or alias",
			ArgsUsage: "FOLDER",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "icon", Usage: "icon source, PATH[,INDEX]; empty removes the icon"},
				&cli.StringFlag{Name: "alias", Usage: "display name; empty removes it"},
			},
			Action: e.apply,
		},
		{
			Name:      "clear",
			Usage:     "remove a folder's custom icon",
			ArgsUsage: "FOLDER",
			Action:    e.clear,
		},
		{
			Name:      "show",
			Usage:     "print a folder's current icon and alias",
			ArgsUsage: "FOLDER",
			Action:    e.show,
		},
		{
			Name:      "scan",
			Usage:     "find icon candidates inside a folder",
			ArgsUsage: "FOLDER",
			Flags: []cli.Flag{
				&cli.StringSliceFlag{Name: "exclude", Usage: "gitignore-style pattern to skip"},
				&cli.IntFlag{Name: "depth", Usage: "maximum directory depth"},
			},
			Action: e.scan,
		},
		{
			Name:      "preview",
			Usage:     "render an icon source to a PNG thumbnail",
			ArgsUsage: "ICON[,INDEX]",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output PNG file", Value: "preview.png"},
				&cli.IntFlag{Name: "size", Usage: "thumbnail size in pixels"},
				&cli.BoolFlag{Name: "shell", Usage: "render through live shell icon handles (windows)"},
			},
			Action: e.preview,
		},
	}
	return app
}

func args(c *cli.Context, n int) error {
	if c.NArg() < n {
		return fmt.Errorf("%s: expected %s", c.Command.Name, c.Command.ArgsUsage)
	}
	return nil
}

func (e *env) groups(c *cli.Context) error {
	if err := args(c, 1); err != nil {
		return err
	}
	groups := e.reader.ListIconGroups(c.Args().First())
	if len(groups) == 0 {
		fmt.Println("no icon groups")
		return nil
	}
	for i, g := range groups {
		fmt.Printf("%3d  %s\n", i, g)
	}
	return nil
}

func (e *env) extract(c *cli.Context) error {
	if err := args(c, 2); err != nil {
		return err
	}
	module := c.Args().Get(0)
	index, err := strconv.Atoi(c.Args().Get(1))
	if err != nil {
		return fmt.Errorf("bad index %q", c.Args().Get(1))
	}
	data, err := e.reader.ExtractIconGroup(module, index)
	if err != nil {
		return err
	}
	out := c.String("out")
	if out == "" {
		base := filepath.Base(module)
		out = base[:len(base)-len(filepath.Ext(base))] + "_" + strconv.Itoa(index) + ".ico"
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d bytes)\n", out, len(data))
	return nil
}

func (e *env) resolve(c *cli.Context) error {
	if err := args(c, 2); err != nil {
		return err
	}
	folder, err := filepath.Abs(c.Args().Get(0))
	if err != nil {
		return err
	}
	ref, err := e.resolver().Resolve(folder, c.Args().Get(1))
	if err != nil {
		return err
	}
	fmt.Println("kind:", ref.Kind)
	for _, p := range ref.Pairs() {
		fmt.Printf("%s=%s\n", p.Key, p.Value)
	}
	return nil
}

func (e *env) apply(c *cli.Context) error {
	if err := args(c, 1); err != nil {
		return err
	}
	folder, err := filepath.Abs(c.Args().First())
	if err != nil {
		return err
	}
	ed := e.editor()
	s, err := ed.Load(folder)
	if err != nil {
		return err
	}
	if c.IsSet("icon") {
		s.Icon = c.String("icon")
	}
	if c.IsSet("alias") {
		s.Alias = c.String("alias")
	}
	ref, err := ed.Save(folder, s)
	if err != nil {
		return err
	}
	for _, p := range ref.Pairs() {
		fmt.Printf("%s=%s\n", p.Key, p.Value)
	}
	return nil
}

func (e *env) clear(c *cli.Context) error {
	if err := args(c, 1); err != nil {
		return err
	}
	folder, err := filepath.Abs(c.Args().First())
	if err != nil {
		return err
	}
	return e.editor().Clear(folder)
}

func (e *env) show(c *cli.Context) error {
	if err := args(c, 1); err != nil {
		return err
	}
	s, err := e.editor().Load(c.Args().First())
	if err != nil {
		return err
	}
	fmt.Printf("alias: %s\nicon:  %s\n", s.Alias, s.Icon)
	return nil
}

func (e *env) scan(c *cli.Context) error {
	if err := args(c, 1); err != nil {
		return err
	}
	root := c.Args().First()
	if err := discover.Check(root); err != nil {
		return err
	}
	depth := e.cfg.ScanMaxDepth
	if c.IsSet("depth") {
		depth = c.Int("depth")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("scanning"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
	s := discover.NewScanner(e.reader, discover.Options{
		MaxDepth: depth,
		Workers:  e.cfg.ScanWorkers,
		Exclude:  c.StringSlice("exclude"),
		Interval: 250 * time.Millisecond,
		Progress: func(found []string, done bool) {
			bar.Describe(fmt.Sprintf("scanning, %d found", len(found)))
			bar.Add(1)
		},
	})
	found, err := s.Scan(ctx, root)
	bar.Finish()
	for _, f := range found {
		fmt.Println(f)
	}
	if err != nil {
		return err
	}
	log.Infof("%d icon sources in %s", len(found), root)
	return nil
}
