package driver

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/you-not-fish/minithon/internal/config"
	"github.com/you-not-fish/minithon/internal/icg"
	"github.com/you-not-fish/minithon/internal/logging"
	"github.com/you-not-fish/minithon/internal/syntax"
)

func TestCompile(t *testing.T) {
	res, err := Compile("t.mipy", "x = 1\ny = x + 2\n", Options{}, nil)
	if err != nil {
		t.Fatalf("Compile error: %v", err)
	}

	want := "r1 = 1\nr2 = r1\nr3 = 2\nr4 = r2 + r3\n"
	if res.Code != want {
		t.Errorf("Code =\n%s\nwant\n%s", res.Code, want)
	}
	if res.Program == nil || res.Program.Block == nil || len(res.Program.Block.Stmts) != 2 {
		t.Errorf("Program = %+v", res.Program)
	}
	if len(res.Tokens) == 0 || res.Tokens[len(res.Tokens)-1].Kind != syntax.EOF {
		t.Errorf("Tokens = %v", res.Tokens)
	}
	if res.Source.Name() != "t.mipy" {
		t.Errorf("Source.Name() = %q", res.Source.Name())
	}
}

func TestCompileStageErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		prefix string
		check  func(error) bool
	}{
		{
			name:   "lex",
			input:  "x = 1 @\n",
			prefix: "lex: ",
			check: func(err error) bool {
				var list syntax.ErrorList
				return errors.As(err, &list)
			},
		},
		{
			name:   "parse",
			input:  "x 1\n",
			prefix: "parse: ",
			check: func(err error) bool {
				var serr *syntax.SyntaxError
				return errors.As(err, &serr)
			},
		},
		{
			name:   "icg",
			input:  "x = y\n",
			prefix: "icg: ",
			check: func(err error) bool {
				var uerr *icg.UndefinedVariableError
				return errors.As(err, &uerr)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Compile("", tt.input, Options{}, nil)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.HasPrefix(err.Error(), tt.prefix) {
				t.Errorf("error %q does not start with %q", err, tt.prefix)
			}
			if !tt.check(err) {
				t.Errorf("error %T has the wrong cause", err)
			}
			if res == nil || res.Code != "" {
				t.Errorf("Result = %+v", res)
			}
			var d syntax.Diagnosed
			if !errors.As(err, &d) && tt.name != "lex" {
				t.Errorf("error %v carries no diagnostic", err)
			}
		})
	}
}

func TestStopOnError(t *testing.T) {
	_, err := Compile("", "x = 1 @\n", Options{StopOnError: true}, nil)

	var lerr *syntax.LexError
	if !errors.As(err, &lerr) {
		t.Fatalf("error = %v, want *syntax.LexError", err)
	}
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Lexer.StopOnError = true
	cfg.ICG.ReuseRegisters = true
	cfg.ICG.GuardBranches = true

	got := OptionsFromConfig(cfg)
	want := Options{
		StopOnError: true,
		ICG:         icg.Options{ReuseRegisters: true, GuardBranches: true},
	}
	if got != want {
		t.Errorf("OptionsFromConfig() = %+v, want %+v", got, want)
	}
}

func TestCompileLogsStages(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(logging.LoggerConfig{Level: "debug", Format: "text"}, &buf)

	if _, err := Compile("t.mipy", "while True:\n  pass\n", Options{}, logger); err != nil {
		t.Fatalf("Compile error: %v", err)
	}

	out := buf.String()
	for _, part := range []string{"stage=lex", "stage=parse", "blocks=2", "stage=icg", "instructions=5", "file=t.mipy"} {
		if !strings.Contains(out, part) {
			t.Errorf("log output missing %q:\n%s", part, out)
		}
	}
}

func TestStageString(t *testing.T) {
	tests := []struct {
		stage Stage
		want  string
	}{
		{StageLex, "lex"},
		{StageParse, "parse"},
		{StageICG, "icg"},
		{Stage(9), "stage(9)"},
	}
	for _, tt := range tests {
		if got := tt.stage.String(); got != tt.want {
			t.Errorf("Stage(%d).String() = %q, want %q", int(tt.stage), got, tt.want)
		}
	}
}
