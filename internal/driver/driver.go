// Package driver runs the minithon pipeline: tokenize, parse and generate
// intermediate code.
package driver

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/you-not-fish/minithon/internal/config"
	"github.com/you-not-fish/minithon/internal/icg"
	"github.com/you-not-fish/minithon/internal/logging"
	"github.com/you-not-fish/minithon/internal/syntax"
)

// Options selects the behavior of each stage.
type Options struct {
	StopOnError bool
	ICG         icg.Options
}

// OptionsFromConfig returns the pipeline options configured in cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		StopOnError: cfg.Lexer.StopOnError,
		ICG: icg.Options{
			ReuseRegisters:  cfg.ICG.ReuseRegisters,
			StackLoopLabels: cfg.ICG.StackLoopLabels,
			GuardBranches:   cfg.ICG.GuardBranches,
		},
	}
}

// Result holds the output of every stage that ran.
type Result struct {
	Source  *syntax.Source
	Tokens  []syntax.Token
	Program *syntax.Program
	Code    string
}

// Stage names a pipeline stage.
type Stage int

const (
	StageLex Stage = iota
	StageParse
	StageICG
)

func (s Stage) String() string {
	switch s {
	case StageLex:
		return "lex"
	case StageParse:
		return "parse"
	case StageICG:
		return "icg"
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// Driver runs the pipeline with fixed options.
type Driver struct {
	opts   Options
	logger *slog.Logger
}

// New creates a Driver. A nil logger discards all records.
func New(opts Options, logger *slog.Logger) *Driver {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Driver{opts: opts, logger: logger}
}

// Tokenize runs the lexer only. With StopOnError unset, the tokens are
// returned together with the collected lexical errors.
func (d *Driver) Tokenize(src *syntax.Source) ([]syntax.Token, error) {
	start := time.Now()
	toks, err := syntax.Tokenize(src, d.opts.StopOnError)
	d.logger.Debug("stage done",
		"stage", StageLex,
		"file", src.Name(),
		"tokens", len(toks),
		"elapsed", time.Since(start))
	return toks, err
}

// Parse runs the lexer and the parser. Lexical errors stop the pipeline
// before parsing.
func (d *Driver) Parse(src *syntax.Source) (*Result, error) {
	res := &Result{Source: src}

	toks, err := d.Tokenize(src)
	res.Tokens = toks
	if err != nil {
		return res, fmt.Errorf("%s: %w", StageLex, err)
	}

	start := time.Now()
	prog, err := syntax.Parse(toks, src)
	if err != nil {
		return res, fmt.Errorf("%s: %w", StageParse, err)
	}
	res.Program = prog
	d.logger.Debug("stage done",
		"stage", StageParse,
		"file", src.Name(),
		"blocks", countBlocks(prog),
		"elapsed", time.Since(start))
	return res, nil
}

// Compile runs the complete pipeline.
func (d *Driver) Compile(src *syntax.Source) (*Result, error) {
	res, err := d.Parse(src)
	if err != nil {
		return res, err
	}

	start := time.Now()
	code, err := icg.Generate(res.Program, src, d.opts.ICG)
	if err != nil {
		return res, fmt.Errorf("%s: %w", StageICG, err)
	}
	res.Code = code
	d.logger.Debug("stage done",
		"stage", StageICG,
		"file", src.Name(),
		"instructions", strings.Count(code, "\n"),
		"elapsed", time.Since(start))
	return res, nil
}

// Compile runs the complete pipeline on text with opts.
func Compile(name, text string, opts Options, logger *slog.Logger) (*Result, error) {
	return New(opts, logger).Compile(syntax.NewSource(name, text))
}

func countBlocks(prog *syntax.Program) int {
	n := 0
	syntax.Walk(prog, func(node syntax.Node) bool {
		if _, ok := node.(*syntax.Block); ok {
			n++
		}
		return true
	})
	return n
}
