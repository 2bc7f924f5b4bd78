package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/pkg/profile"
	"gopkg.in/yaml.v3"

	"fbnoi.com/mildred"
)

const (
	name        = "mildred"
	description = "Compile and render mildred templates."
)

// cli is the mildred command line.
type cli struct {
	Config   string `help:"YAML configuration file."                              short:"c" type:"existingfile"`
	LogLevel string `default:"warn" enum:"debug,info,warn,error" help:"Log level." name:"log-level"`
	Profile  string `default:"none" enum:"none,cpu,mem,block,mutex,trace" help:"Profile the run."`
	Dir      string `default:"."    help:"Profile output directory." name:"profile-dir" type:"path"`

	Render  renderCmd  `cmd:"" help:"Render a template to stdout."`
	Compile compileCmd `cmd:"" help:"Compile templates without rendering them."`
	Tokens  tokensCmd  `cmd:"" help:"List the markup tokens of a template."`
}

// app is bound into every command's Run method.
type app struct {
	engine *mildred.Engine
	config *mildred.Config
	logger *slog.Logger
	stdout io.Writer
}

func run(args []string, stdout, stderr io.Writer, exit func(int)) error {
	var c cli
	parser, err := kong.New(&c,
		kong.Name(name),
		kong.Description(description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.Writers(stdout, stderr),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true, Summary: true}),
	)
	if err != nil {
		return err
	}
	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	a, err := c.app(stdout, stderr)
	if err != nil {
		return err
	}
	defer c.startProfile()()

	return ktx.Run(a)
}

func (c *cli) app(stdout, stderr io.Writer) (*app, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	var config *mildred.Config
	if c.Config != "" {
		var err error
		if config, err = mildred.LoadConfig(c.Config); err != nil {
			return nil, err
		}
	}

	return &app{
		engine: mildred.New(mildred.WithConfig(config), mildred.WithLogger(logger)),
		config: config,
		logger: logger,
		stdout: stdout,
	}, nil
}

func (c *cli) startProfile() (stop func()) {
	var mode func(*profile.Profile)
	switch c.Profile {
	case "cpu":
		mode = profile.CPUProfile
	case "mem":
		mode = profile.MemProfile
	case "block":
		mode = profile.BlockProfile
	case "mutex":
		mode = profile.MutexProfile
	case "trace":
		mode = profile.TraceProfile
	default:
		return func() {}
	}

	return profile.Start(mode, profile.ProfilePath(c.Dir), profile.Quiet).Stop
}

// loadVariables reads a YAML mapping of template variables.
func loadVariables(path string) (mildred.Params, error) {
	vars := mildred.Params{}
	if path == "" {
		return vars, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err = yaml.Unmarshal(data, &vars); err != nil {
		return nil, err
	}

	return vars, nil
}
