package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/you-not-fish/minithon/internal/diag"
	"github.com/you-not-fish/minithon/internal/driver"
	"github.com/you-not-fish/minithon/internal/syntax"
)

// ----------------------------------------------------------------------------
// Test helpers

func runCmd(t *testing.T, stdin string, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = run(args, strings.NewReader(stdin), &out, &errOut)
	return code, out.String(), errOut.String()
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func writeTempSource(t *testing.T, content string) string {
	t.Helper()
	return writeTempFile(t, "main.mipy", content)
}

func expectSuccess(t *testing.T, code int, stdout, stderr string) {
	t.Helper()
	if code != 0 {
		t.Fatalf("exit=%d\nstderr:\n%s\nstdout:\n%s", code, stderr, stdout)
	}
	if stderr != "" {
		t.Fatalf("unexpected stderr:\n%s", stderr)
	}
}

// ----------------------------------------------------------------------------
// build

func TestBuild(t *testing.T) {
	filename := writeTempSource(t, "x = 1\ny = x + 2\n")
	code, out, errOut := runCmd(t, "", "build", filename)
	expectSuccess(t, code, out, errOut)

	if want := "r1 = 1\nr2 = r1\nr3 = 2\nr4 = r2 + r3\n"; out != want {
		t.Errorf("stdout =\n%s\nwant\n%s", out, want)
	}
}

func TestBuildStdin(t *testing.T) {
	code, out, errOut := runCmd(t, "x = 7\n", "build", "-")
	expectSuccess(t, code, out, errOut)

	if out != "r1 = 7\n" {
		t.Errorf("stdout = %q", out)
	}
}

func TestBuildOutputFile(t *testing.T) {
	filename := writeTempSource(t, "x = 1\n")
	outPath := filepath.Join(t.TempDir(), "main.tac")

	code, out, errOut := runCmd(t, "", "build", filename, "-o", outPath)
	expectSuccess(t, code, out, errOut)
	if out != "" {
		t.Errorf("stdout = %q, want empty", out)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(data) != "r1 = 1\n" {
		t.Errorf("output file = %q", data)
	}
}

func TestBuildFlagsOverrideConfig(t *testing.T) {
	filename := writeTempSource(t, "a = 1\nif a:\n    b = 2\nc = 3\n")
	cfgPath := writeTempFile(t, "minithonc.toml", "[icg]\nreuse_registers = true\n")

	tests := []struct {
		name string
		args []string
		last string
	}{
		{"config", []string{"build", filename, "--config", cfgPath}, "r3 = 3"},
		{"flag off", []string{"build", filename, "--config", cfgPath, "--reuse-registers=false"}, "r4 = 3"},
		{"flag on", []string{"build", filename, "--reuse-registers"}, "r3 = 3"},
		{"default", []string{"build", filename}, "r4 = 3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out, errOut := runCmd(t, "", tt.args...)
			expectSuccess(t, code, out, errOut)

			instrs := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
			if got := instrs[len(instrs)-1]; got != tt.last {
				t.Errorf("last instruction = %q, want %q\n%s", got, tt.last, out)
			}
		})
	}
}

func TestBuildYAMLConfig(t *testing.T) {
	filename := writeTempSource(t, "i = 0\nwhile i:\n    j = 0\n    while j:\n        break\n    break\n")
	cfgPath := writeTempFile(t, "minithonc.yaml", "icg:\n  stack_loop_labels: true\n")

	code, out, errOut := runCmd(t, "", "build", filename, "--config", cfgPath)
	expectSuccess(t, code, out, errOut)

	// the outer break targets the outer exit again
	if !strings.Contains(out, "L4:\ngoto L2\ngoto L1\n") {
		t.Errorf("stdout =\n%s", out)
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		stderr  string
	}{
		{
			name:    "undefined variable",
			content: "x = 1\ny = z + 2\n",
			stderr:  "Undefined variable \"z\" at line 2:\ny = z + 2\n    ^\n",
		},
		{
			name:    "syntax",
			content: "while x\n",
			stderr:  "Expected colon \"x\" at line 1:\nwhile x\n      ^\n",
		},
		{
			name:    "lexical",
			content: "x = 1 @\n",
			stderr:  "Unrecognized token \"@\" at line 1:\nx = 1 @\n      ^\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filename := writeTempSource(t, tt.content)
			code, out, errOut := runCmd(t, "", "build", filename, "--no-color")

			if code != 1 {
				t.Fatalf("exit=%d, want 1", code)
			}
			if out != "" {
				t.Errorf("stdout = %q, want empty", out)
			}
			if errOut != tt.stderr {
				t.Errorf("stderr =\n%q\nwant\n%q", errOut, tt.stderr)
			}
		})
	}
}

func TestBuildMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.mipy")
	code, _, errOut := runCmd(t, "", "build", missing, "--no-color")

	if code != 1 {
		t.Fatalf("exit=%d, want 1", code)
	}
	if !strings.HasPrefix(errOut, "error: open ") {
		t.Errorf("stderr = %q", errOut)
	}
}

func TestBuildVerbose(t *testing.T) {
	filename := writeTempSource(t, "x = 1\n")
	code, out, errOut := runCmd(t, "", "-v", "build", filename)

	if code != 0 {
		t.Fatalf("exit=%d\nstderr:\n%s", code, errOut)
	}
	if out != "r1 = 1\n" {
		t.Errorf("stdout = %q", out)
	}
	for _, part := range []string{"level=DEBUG", "stage=lex", "stage=parse", "stage=icg"} {
		if !strings.Contains(errOut, part) {
			t.Errorf("stderr missing %q:\n%s", part, errOut)
		}
	}
}

func TestConfigNotFound(t *testing.T) {
	filename := writeTempSource(t, "x = 1\n")
	code, _, errOut := runCmd(t, "", "build", filename, "--config", filepath.Join(t.TempDir(), "none.toml"))

	if code != 1 {
		t.Fatalf("exit=%d, want 1", code)
	}
	if !strings.Contains(errOut, "config file not found") {
		t.Errorf("stderr = %q", errOut)
	}
}

func TestUnknownCommand(t *testing.T) {
	code, _, errOut := runCmd(t, "", "frobnicate")
	if code != 1 {
		t.Fatalf("exit=%d, want 1", code)
	}
	if !strings.HasPrefix(errOut, "error: unknown command") {
		t.Errorf("stderr = %q", errOut)
	}
}

// ----------------------------------------------------------------------------
// tokens

func tokenRow(pos, kind, class, lit string) string {
	return fmt.Sprintf("%-20s %-12s %-10s %s\n", pos, kind, class, lit)
}

func TestTokens(t *testing.T) {
	code, out, errOut := runCmd(t, "x = 1\n", "tokens", "-")
	expectSuccess(t, code, out, errOut)

	want := tokenRow("POSITION", "TOKEN", "CLASS", "LITERAL") +
		tokenRow("--------", "-----", "-----", "-------") +
		tokenRow("<stdin>:1:1", "IDENTIFIER", "name", `"x"`) +
		tokenRow("<stdin>:1:3", "ASSIGN", "operator", `"="`) +
		tokenRow("<stdin>:1:5", "INTEGER", "literal", `"1"`) +
		tokenRow("<stdin>:1:6", "NEWLINE", "trivia", `"\n"`) +
		tokenRow("<stdin>:2:1", "EOF", "-", `""`)
	if out != want {
		t.Errorf("stdout =\n%s\nwant\n%s", out, want)
	}
}

func TestTokenClass(t *testing.T) {
	tests := []struct {
		kind syntax.Kind
		want string
	}{
		{syntax.WHILE, "keyword"},
		{syntax.PASS, "keyword"},
		{syntax.GREATER_THAN_OR_EQUAL, "operator"},
		{syntax.NOT, "operator"},
		{syntax.BOOL_FALSE, "literal"},
		{syntax.STRING, "literal"},
		{syntax.COMMENT, "trivia"},
		{syntax.IDENTIFIER, "name"},
		{syntax.COLON, "punct"},
		{syntax.LPAREN, "punct"},
		{syntax.EOF, "-"},
	}

	for _, tt := range tests {
		if got := tokenClass(tt.kind); got != tt.want {
			t.Errorf("tokenClass(%s) = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestTokensWhitespace(t *testing.T) {
	code, out, errOut := runCmd(t, "a  b\n", "tokens", "-", "--whitespace")
	expectSuccess(t, code, out, errOut)

	if n := strings.Count(out, "WHITESPACE"); n != 2 {
		t.Errorf("got %d WHITESPACE rows, want 2:\n%s", n, out)
	}
}

func TestTokensLexErrors(t *testing.T) {
	code, out, errOut := runCmd(t, "x = @\ny = $\n", "tokens", "-", "--no-color")

	if code != 1 {
		t.Fatalf("exit=%d, want 1", code)
	}
	if !strings.Contains(out, tokenRow("<stdin>:2:1", "IDENTIFIER", "name", `"y"`)) {
		t.Errorf("table does not continue past the first error:\n%s", out)
	}
	if n := strings.Count(errOut, "Unrecognized token"); n != 2 {
		t.Errorf("stderr has %d diagnostics, want 2:\n%s", n, errOut)
	}

	// fail fast stops the table at the first error
	code, out, errOut = runCmd(t, "x = @\ny = $\n", "tokens", "-", "--no-color", "--stop-on-error")
	if code != 1 {
		t.Fatalf("exit=%d, want 1", code)
	}
	if strings.Contains(out, `"y"`) {
		t.Errorf("table continues past the first error:\n%s", out)
	}
	if n := strings.Count(errOut, "Unrecognized token"); n != 1 {
		t.Errorf("stderr has %d diagnostics, want 1:\n%s", n, errOut)
	}
}

func TestFormatLiteral(t *testing.T) {
	tests := []struct {
		lit  string
		want string
	}{
		{"", `""`},
		{"x", `"x"`},
		{"\n", `"\n"`},
		{"\t", `"\t"`},
		{"\r", `"\r"`},
		{`a\b`, `"a\\b"`},
		{`"hi"`, `"\"hi\""`},
		{"\x00", `"\0"`},
	}

	for _, tt := range tests {
		if got := formatLiteral(tt.lit); got != tt.want {
			t.Errorf("formatLiteral(%q) = %s, want %s", tt.lit, got, tt.want)
		}
	}
}

// ----------------------------------------------------------------------------
// ast

func TestAST(t *testing.T) {
	filename := writeTempSource(t, "x = 1\n")

	code, out, errOut := runCmd(t, "", "ast", filename)
	expectSuccess(t, code, out, errOut)

	want := "PROGRAM\n  BLOCK #1 @0 indent=0\n    ASSIGN_STMT @0 x\n      INTEGER @4 1\n"
	if out != want {
		t.Errorf("stdout =\n%s\nwant\n%s", out, want)
	}
}

func TestASTFormats(t *testing.T) {
	filename := writeTempSource(t, "while a:\n    pass\n")

	tests := []struct {
		format string
		parts  []string
	}{
		{"json", []string{`"type": "Program"`, `"type": "ControlFlowBlock"`, `"kind": "PASS"`}},
		{"dump", []string{"Program{", "ControlFlowBlock{", "GenericStmt{"}},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			code, out, errOut := runCmd(t, "", "ast", filename, "--format", tt.format)
			expectSuccess(t, code, out, errOut)

			for _, part := range tt.parts {
				if !strings.Contains(out, part) {
					t.Errorf("output missing %q:\n%s", part, out)
				}
			}
		})
	}
}

func TestASTUnknownFormat(t *testing.T) {
	filename := writeTempSource(t, "x = 1\n")
	code, _, errOut := runCmd(t, "", "ast", filename, "-f", "xml", "--no-color")

	if code != 1 {
		t.Fatalf("exit=%d, want 1", code)
	}
	if want := "error: unknown AST format \"xml\"\n"; errOut != want {
		t.Errorf("stderr = %q, want %q", errOut, want)
	}
}

func TestASTDoesNotCheckNames(t *testing.T) {
	code, out, errOut := runCmd(t, "y = z\n", "ast", "-")
	expectSuccess(t, code, out, errOut)
}

// ----------------------------------------------------------------------------
// version

func TestVersion(t *testing.T) {
	code, out, errOut := runCmd(t, "", "version")
	expectSuccess(t, code, out, errOut)

	if !strings.HasPrefix(out, "minithonc "+Version+"\n") || !strings.Contains(out, "Go: go") {
		t.Errorf("stdout = %q", out)
	}
}

// ----------------------------------------------------------------------------
// repl

type scriptPrompter struct {
	lines   []string
	prompts []string
	history []string
}

func (p *scriptPrompter) Prompt(prompt string) (string, error) {
	p.prompts = append(p.prompts, prompt)
	if len(p.lines) == 0 {
		return "", io.EOF
	}
	line := p.lines[0]
	p.lines = p.lines[1:]
	return line, nil
}

func (p *scriptPrompter) AppendHistory(item string) {
	p.history = append(p.history, item)
}

var errAborted = errors.New("prompt aborted")

type abortPrompter struct{ aborted bool }

func (p *abortPrompter) Prompt(string) (string, error) {
	if !p.aborted {
		p.aborted = true
		return "", errAborted
	}
	return "", io.EOF
}

func TestReadChunk(t *testing.T) {
	tests := []struct {
		name    string
		lines   []string
		want    string
		ok      bool
		prompts []string
	}{
		{"statement", []string{"x = 1"}, "x = 1\n", true, []string{">>> "}},
		{"empty", []string{""}, "", true, []string{">>> "}},
		{"command", []string{":quit"}, ":quit", true, []string{">>> "}},
		{
			name:    "block",
			lines:   []string{"while x:", "    x = 1", ""},
			want:    "while x:\n    x = 1\n",
			ok:      true,
			prompts: []string{">>> ", "... ", "... "},
		},
		{
			name:    "block at eof",
			lines:   []string{"if a:", "    pass"},
			want:    "if a:\n    pass\n",
			ok:      true,
			prompts: []string{">>> ", "... ", "... "},
		},
		{"eof", nil, "", false, []string{">>> "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &scriptPrompter{lines: tt.lines}
			got, ok := readChunk(p)
			if got != tt.want || ok != tt.ok {
				t.Errorf("readChunk() = %q, %v, want %q, %v", got, ok, tt.want, tt.ok)
			}
			if strings.Join(p.prompts, "|") != strings.Join(tt.prompts, "|") {
				t.Errorf("prompts = %q, want %q", p.prompts, tt.prompts)
			}
		})
	}
}

func TestReadChunkAbort(t *testing.T) {
	got, ok := readChunk(&abortPrompter{})
	if got != "" || !ok {
		t.Errorf("readChunk() = %q, %v, want \"\", true", got, ok)
	}
}

func newTestSession(out io.Writer) *session {
	return newSession(driver.New(driver.Options{}, nil), out)
}

func TestReplLoop(t *testing.T) {
	p := &scriptPrompter{lines: []string{
		"x = 1",
		"y = zz",
		"while x:",
		"    pass",
		"",
		"y = x",
		":code",
		":quit",
		"z = 2",
	}}

	var out, errOut bytes.Buffer
	replLoop(p, newTestSession(&out), diag.NewPrinter(&errOut, diag.Never))

	code := "r1 = 1\nL1:\nr2 = r1\nif (!r2) goto L2\ngoto L1\nL2:\nr3 = r1\n"
	want := code + code
	if got := out.String(); got != want {
		t.Errorf("stdout =\n%s\nwant\n%s", got, want)
	}

	if want := "Undefined variable \"zz\" at line 2:\ny = zz\n    ^^\n"; errOut.String() != want {
		t.Errorf("stderr =\n%q\nwant\n%q", errOut.String(), want)
	}

	wantHistory := []string{"x = 1", "while x:", "    pass", "y = x"}
	if strings.Join(p.history, "|") != strings.Join(wantHistory, "|") {
		t.Errorf("history = %q, want %q", p.history, wantHistory)
	}
	if len(p.lines) != 1 {
		t.Errorf("REPL did not stop at :quit, %d lines left", len(p.lines))
	}
}

func TestReplLoopElseChunk(t *testing.T) {
	p := &scriptPrompter{lines: []string{
		"a = 1",
		"if a:",
		"    x = 1",
		"",
		"else:",
		"    x = 2",
		"",
		"y = a",
	}}

	var out, errOut bytes.Buffer
	replLoop(p, newTestSession(&out), diag.NewPrinter(&errOut, diag.Never))

	want := "r1 = 1\n" +
		"r2 = r1\nif (r2) goto L2\nL2:\nr3 = 1\ngoto L1\nL1:\n" +
		"--- full listing ---\n" +
		"r1 = 1\nr2 = r1\nif (r2) goto L2\nL2:\nr3 = 1\ngoto L1\nr4 = 2\nL1:\n" +
		"r5 = r1\n" +
		"\n"
	if got := out.String(); got != want {
		t.Errorf("stdout =\n%s\nwant\n%s", got, want)
	}
	if errOut.Len() != 0 {
		t.Errorf("stderr = %q", errOut.String())
	}
}

func TestReplLoopEOF(t *testing.T) {
	var out bytes.Buffer
	replLoop(&scriptPrompter{}, newTestSession(&out), diag.NewPrinter(io.Discard, diag.Never))

	if out.String() != "\n" {
		t.Errorf("stdout = %q, want a single newline", out.String())
	}
}

func TestSessionCommands(t *testing.T) {
	var out bytes.Buffer
	s := newTestSession(&out)

	if err := s.eval("x = 1\n"); err != nil {
		t.Fatalf("eval error: %v", err)
	}
	s.command(":reset")
	if err := s.eval("y = x\n"); err == nil {
		t.Error("binding survived :reset")
	}

	out.Reset()
	if s.command(":bogus") {
		t.Error(":bogus ended the session")
	}
	if !strings.HasPrefix(out.String(), "unknown command") {
		t.Errorf("output = %q", out.String())
	}

	out.Reset()
	s.command(":help")
	if !strings.Contains(out.String(), ":reset") {
		t.Errorf("help = %q", out.String())
	}

	if !s.command(":Q") {
		t.Error(":Q did not end the session")
	}
}
