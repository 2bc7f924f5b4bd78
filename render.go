package mildred

import (
	"io"
	"log/slog"

	"github.com/pkg/errors"
)

var (
	_engine = &Engine{
		lexer:     NewLexer(),
		generator: NewGenerator(),
		types:     type_map,
		logger:    discardLogger(),
	}
)

// Options are the per call render settings.
type Options struct {
	// Template is the path of the template to render. Required.
	Template string
	// Types overrides the engine's allowed capabilities for this call.
	Types []Capability
	// Variables are the values the template may show.
	Variables Params
	// AlwaysRecompile compiles the template even when an artifact exists.
	AlwaysRecompile bool
	// Debug reports undefined and invalid variables instead of dropping them.
	Debug bool
	// ShowCompiled writes the compiled text to the output before rendering.
	ShowCompiled bool
}

// Engine compiles, caches and renders templates.
type Engine struct {
	lexer     Lexer
	generator Generator
	types     *TypeMap
	config    *Config
	logger    *slog.Logger
}

type Option func(*Engine)

func WithLexer(lx Lexer) Option {
	return func(e *Engine) {
		e.lexer = lx
	}
}

func WithGenerator(g Generator) Option {
	return func(e *Engine) {
		e.generator = g
	}
}

// WithTypes sets the capabilities allowed when a call doesn't name any.
func WithTypes(caps ...Capability) Option {
	return func(e *Engine) {
		e.types = NewTypeMap(caps...)
	}
}

func WithConfig(c *Config) Option {
	return func(e *Engine) {
		e.config = c
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New returns an Engine with the default lexer and generator, allowing the
// capabilities currently registered with Allow.
func New(opts ...Option) *Engine {
	e := &Engine{
		lexer:     NewLexer(),
		generator: NewGenerator(),
		types:     type_map.clone(),
		logger:    discardLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Allow replaces the engine's default capabilities.
func (e *Engine) Allow(caps ...Capability) {
	if e.types == nil {
		e.types = NewTypeMap(caps...)
		return
	}
	e.types.Allow(caps...)
}

// Render renders the template named by opts to w with the package level
// engine.
func Render(w io.Writer, opts Options) error {
	return _engine.Render(w, opts)
}

// Render compiles the template unless a compiled artifact can be reused,
// then executes it with opts.Variables and writes the output to w.
func (e *Engine) Render(w io.Writer, opts Options) error {
	opts = e.options(opts)
	path, err := e.templatePath(opts.Template)
	if err != nil {
		return err
	}

	artifact, err := ResolveArtifactPath(path)
	if err != nil {
		return err
	}
	if !opts.AlwaysRecompile && IsFresh(path) {
		e.log().Debug("serve compiled template",
			slog.String("template", path),
			slog.String("artifact", artifact),
		)
	} else {
		compiled, err := e.compile(path, artifact, opts)
		if err != nil {
			return err
		}
		if opts.ShowCompiled {
			if _, err = io.WriteString(w, compiled); err != nil {
				return err
			}
		}
	}

	return e.host(opts).Execute(w, artifact, opts.Variables)
}

// Compile compiles the template named by opts and persists the artifact,
// returning its path.
func (e *Engine) Compile(opts Options) (string, error) {
	opts = e.options(opts)
	path, err := e.templatePath(opts.Template)
	if err != nil {
		return "", err
	}
	artifact, err := ResolveArtifactPath(path)
	if err != nil {
		return "", err
	}
	if _, err = e.compile(path, artifact, opts); err != nil {
		return "", err
	}

	return artifact, nil
}

func (e *Engine) compile(path, artifact string, opts Options) (string, error) {
	if e.lexer == nil || e.generator == nil {
		return "", errors.WithMessage(ErrEngineMisconfigured, "lexer and generator are required")
	}

	source, err := newSourceCodeFile(path)
	if err != nil {
		return "", err
	}
	tokens := e.lexer.Analyze(source.code)
	compiled, err := e.generator.Generate(source.code, tokens, GenerateOptions{
		Variables: opts.Variables,
		Debug:     opts.Debug,
	})
	if err != nil {
		if line := failedLine(err); line > 0 {
			e.log().Debug("template failed to compile",
				slog.String("template", path),
				slog.Int("line", line),
				slog.String("excerpt", source.excerpt(line)),
			)
		}
		return "", errors.WithMessagef(err, "compile %s", path)
	}
	if err = Persist(artifact, compiled); err != nil {
		return "", err
	}

	e.log().Debug("compiled template",
		slog.String("template", path),
		slog.String("source", source.identity),
		slog.Int("tokens", len(tokens)),
		slog.String("artifact", artifact),
	)

	return compiled, nil
}

func (e *Engine) options(opts Options) Options {
	if e.config != nil {
		opts.Debug = opts.Debug || e.config.Debug
		opts.AlwaysRecompile = opts.AlwaysRecompile || e.config.AlwaysRecompile
	}
	if opts.Variables == nil {
		opts.Variables = Params{}
	}

	return opts
}

func (e *Engine) templatePath(name string) (string, error) {
	if name == "" {
		return "", errors.WithMessage(ErrMissingTemplate, "no template specified")
	}

	return e.config.resolve(name), nil
}

func (e *Engine) host(opts Options) *Host {
	types := e.types
	if len(opts.Types) > 0 {
		types = NewTypeMap(opts.Types...)
	}

	return NewHost(types, opts.Debug)
}

func (e *Engine) log() *slog.Logger {
	if e.logger == nil {
		return discardLogger()
	}

	return e.logger
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
