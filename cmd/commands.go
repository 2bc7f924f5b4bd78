package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"fbnoi.com/mildred"
)

type renderCmd struct {
	Template        string `arg:"" help:"Template to render."`
	Vars            string `help:"YAML file of template variables." short:"v" type:"existingfile"`
	Debug           bool   `help:"Fail on undefined or invalid variables."`
	AlwaysRecompile bool   `help:"Compile even if a compiled template exists." short:"a"`
	ShowCompiled    bool   `help:"Print the compiled template before the output."`
}

func (r *renderCmd) Run(a *app) error {
	vars, err := loadVariables(r.Vars)
	if err != nil {
		return err
	}

	return a.engine.Render(a.stdout, mildred.Options{
		Template:        r.Template,
		Variables:       vars,
		AlwaysRecompile: r.AlwaysRecompile,
		Debug:           r.Debug,
		ShowCompiled:    r.ShowCompiled,
	})
}

type compileCmd struct {
	Templates []string `arg:"" help:"Templates to compile."`
	Vars      string   `help:"YAML file of template variables." short:"v" type:"existingfile"`
	Debug     bool     `help:"Fail on undefined variables."`
}

func (c *compileCmd) Run(a *app) error {
	vars, err := loadVariables(c.Vars)
	if err != nil {
		return err
	}

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for _, tpl := range c.Templates {
		tpl := tpl
		g.Go(func() error {
			artifact, err := a.engine.Compile(mildred.Options{
				Template:  tpl,
				Variables: vars,
				Debug:     c.Debug,
			})
			if err != nil {
				return err
			}
			a.logger.Info("compiled", slog.String("template", tpl), slog.String("artifact", artifact))

			return nil
		})
	}

	return g.Wait()
}

type tokensCmd struct {
	Template string `arg:"" help:"Template to scan." type:"existingfile"`
}

func (t *tokensCmd) Run(a *app) error {
	bs, err := os.ReadFile(t.Template)
	if err != nil {
		return err
	}
	for _, tok := range mildred.Analyze(string(bs)) {
		fmt.Fprintf(a.stdout, "%s\t%s\n", tok, strings.Join(tok.Captures[1:], "\t"))
	}

	return nil
}
