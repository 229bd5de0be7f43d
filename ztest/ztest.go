// Package ztest runs formulaic tests ("ztests") that can be (1) run in-process
// with the compiled-in code base or (2) run as a bash script running a sequence
// of arbitrary shell commands invoking the floyd executable.  The first case
// comprises the "Floyd test style" and the second the "script test style".
// Case (1) is easier to debug by simply running "go test" compared to
// replicating the test using "go run".  Script-style tests don't have this
// convenience.
//
// In the Floyd style, ztest parses a Floyd program, expression, or JSON AST
// and checks the result against an expected output.
//
// A Floyd-style test is defined in a YAML file.
//
//	floyd: |
//	  let x = 1;
//
//	output: |
//	  [
//	    [
//	      0,
//	      "bind",
//	      "undefined",
//	      "x",
//	      [
//	        "k",
//	        1,
//	        "int"
//	      ]
//	    ]
//	  ]
//
// The input is given by exactly one of floyd (program text, optionally
// preceded by a prelude text), expr (a single expression), or json (an AST
// in JSON form).  Output format defaults to indented JSON but can be set
// to "floyd" for canonical source text.
//
//	expr: (a + b) * c
//
//	format: floyd
//
//	output: |
//	  (a + b) * c
//
// A test expecting failure gives the expected error message instead of an
// output.  Every program or JSON AST that parses is also checked to survive
// a round trip through its JSON encoding unchanged.
//
// Alternatively, tests can be configured to run as shell scripts.
// Scripts are executed by "bash -e -o pipefail", and a nonzero shell exit
// code causes a test failure.  Here, the yaml sets up a collection of
// input files and stdin, the script runs, and the test driver compares
// expected output files, stdout, and stderr with data in the yaml file.
//
//	inputs:
//	  - name: prog.floyd
//	    data: |
//	      return 1;
//
//	script: |
//	  floyd fmt prog.floyd
//
//	outputs:
//	  - name: stdout
//	    data: |
//	      return 1;
//
// Each input and output has a name.  For inputs, a file (source) or inline
// data (data) may be specified.  If no data is specified, then a file of
// the same name as the name field is looked for in the same directory as
// the yaml file.  For outputs, a "regexp" string may be given instead of
// expected data.
//
// Ztest YAML files for a package should reside in a subdirectory named
// ztests.  pkg_test.go should contain a Go test named TestZTest that
// calls Run.
//
//	func TestZTest(t *testing.T) { ztest.Run(t, "ztests") }
//
// If the ZTEST_PATH environment variable is unset or empty, Run runs the
// Floyd-style tests in the current process and skips the script tests.
// Otherwise, Run runs only the script tests using the floyd executable in
// the directories specified by ZTEST_PATH.
//
// Tests of either style can be skipped by setting the skip field to a
// non-empty string.  A message containing the string will be written to
// the test log.
package ztest

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/brimdata/floyd/compiler/ast"
	"github.com/brimdata/floyd/compiler/astjson"
	"github.com/brimdata/floyd/compiler/parser"
	"github.com/brimdata/floyd/compiler/sfmt"
	"github.com/brimdata/floyd/compiler/srcfiles"
	"github.com/goccy/go-yaml"
	yamlparser "github.com/goccy/go-yaml/parser"
	"github.com/kr/pretty"
	"github.com/pmezard/go-difflib/difflib"
)

func ShellPath() string {
	return os.Getenv("ZTEST_PATH")
}

type Bundle struct {
	TestName string
	FileName string
	Test     *ZTest
	Error    error
}

func Load(dirname string) ([]Bundle, error) {
	var bundles []Bundle
	fileinfos, err := os.ReadDir(dirname)
	if err != nil {
		return nil, err
	}
	for _, fi := range fileinfos {
		filename := fi.Name()
		const dotyaml = ".yaml"
		if !strings.HasSuffix(filename, dotyaml) {
			continue
		}
		testname := strings.TrimSuffix(filename, dotyaml)
		filename = filepath.Join(dirname, filename)
		zt, err := FromYAMLFile(filename)
		bundles = append(bundles, Bundle{testname, filename, zt, err})
	}
	return bundles, nil
}

// Run runs the ztests in the directory named dirname.  For each file f.yaml in
// the directory, Run calls FromYAMLFile to load a ztest and then runs it in
// subtest named f.
func Run(t *testing.T, dirname string) {
	shellPath := ShellPath()
	bundles, err := Load(dirname)
	if err != nil {
		t.Fatal(err)
	}
	for _, b := range bundles {
		t.Run(b.TestName, func(t *testing.T) {
			t.Parallel()
			if b.Error != nil {
				t.Fatalf("%s: %s", b.FileName, b.Error)
			}
			b.Test.Run(t, shellPath, b.FileName)
		})
	}
}

type File struct {
	// Name is the name of the file with respect to the directory in which
	// the test script runs.  For inputs, if no data source is specified,
	// then name is also the name of a data file in the directory containing
	// the yaml test file, which is copied to the test script directory.
	// Name can also be stdin (for inputs) or stdout or stderr (for outputs).
	Name string `yaml:"name"`
	// Data and Source represent the different ways file data can
	// be defined for this file.  Data is a string turned into the contents
	// of the file.  Source is the pathname of a file relative to the yaml
	// file whose content comprises the data.
	Data   *string `yaml:"data,omitempty"`
	Source string  `yaml:"source,omitempty"`
	// Re is a regular expression describing the contents of the file,
	// which is only applicable to output files.
	Re string `yaml:"regexp,omitempty"`
}

func (f *File) check() error {
	if f.Data != nil && f.Source != "" {
		return fmt.Errorf("%s: must specify at most one of data or source", f.Name)
	}
	return nil
}

func (f *File) load(dir string) ([]byte, *regexp.Regexp, error) {
	if f.Data != nil {
		return []byte(*f.Data), nil, nil
	}
	if f.Source != "" {
		b, err := os.ReadFile(filepath.Join(dir, f.Source))
		return b, nil, err
	}
	if f.Re != "" {
		re, err := regexp.Compile(f.Re)
		return nil, re, err
	}
	b, err := os.ReadFile(filepath.Join(dir, f.Name))
	if err == nil {
		return b, nil, nil
	}
	if os.IsNotExist(err) {
		err = fmt.Errorf("%s: no data source", f.Name)
	}
	return nil, nil, err
}

// ZTest defines a ztest.
type ZTest struct {
	Skip string `yaml:"skip,omitempty"`
	Tag  string `yaml:"tag,omitempty"`

	// For Floyd-style tests.
	Prelude string  `yaml:"prelude,omitempty"`
	Floyd   string  `yaml:"floyd,omitempty"`
	Expr    string  `yaml:"expr,omitempty"`
	JSON    *string `yaml:"json,omitempty"`
	Format  string  `yaml:"format,omitempty"`
	Output  string  `yaml:"output,omitempty"`
	Error   string  `yaml:"error,omitempty"`

	// For script-style tests.
	Script  string   `yaml:"script,omitempty"`
	Inputs  []File   `yaml:"inputs,omitempty"`
	Outputs []File   `yaml:"outputs,omitempty"`
	Env     []string `yaml:"env,omitempty"`
}

func (z *ZTest) check() error {
	if z.Script != "" {
		if z.Outputs == nil {
			return errors.New("outputs field missing in a sh test")
		}
		for _, f := range z.Inputs {
			if err := f.check(); err != nil {
				return err
			}
			if f.Re != "" {
				return fmt.Errorf("%s: cannot use regexp in an input", f.Name)
			}
		}
		for _, f := range z.Outputs {
			if err := f.check(); err != nil {
				return err
			}
		}
		return nil
	}
	var n int
	if z.Floyd != "" {
		n++
	}
	if z.Expr != "" {
		n++
	}
	if z.JSON != nil {
		n++
	}
	if n != 1 {
		return errors.New("exactly one of a floyd, expr, json, or script field must be present")
	}
	if z.Prelude != "" && z.Floyd == "" {
		return errors.New("prelude requires a floyd field")
	}
	switch z.Format {
	case "", "json", "floyd":
	default:
		return fmt.Errorf("unknown format %q", z.Format)
	}
	return nil
}

// FromYAMLFile loads a ZTest from the YAML file named filename.
func FromYAMLFile(filename string) (*ZTest, error) {
	f, err := yamlparser.ParseFile(filename, 0)
	if err != nil {
		return nil, err
	}
	if len(f.Docs) != 1 {
		return nil, errors.New("file must contain one YAML document")
	}
	var z ZTest
	if err := yaml.NodeToValue(f.Docs[0].Body, &z, yaml.DisallowUnknownField()); err != nil {
		return nil, err
	}
	return &z, nil
}

func (z *ZTest) ShouldSkip(path string) string {
	switch {
	case z.Script != "" && path == "":
		return "script test on in-process run"
	case z.Script == "" && path != "":
		return "in-process test on script run"
	case z.Skip != "":
		return z.Skip
	case z.Tag != "" && z.Tag != os.Getenv("ZTEST_TAG"):
		return fmt.Sprintf("tag %q does not match ZTEST_TAG=%q", z.Tag, os.Getenv("ZTEST_TAG"))
	}
	return ""
}

func (z *ZTest) RunScript(ctx context.Context, shellPath, testDir string, tempDir func() string) error {
	if err := z.check(); err != nil {
		return fmt.Errorf("bad yaml format: %w", err)
	}
	return runsh(ctx, shellPath, testDir, tempDir(), z)
}

func (z *ZTest) RunInternal() error {
	if err := z.check(); err != nil {
		return fmt.Errorf("bad yaml format: %w", err)
	}
	return z.diffInternal(runInternal(z))
}

func (z *ZTest) diffInternal(out string, err error) error {
	var outDiffErr, errDiffErr error
	if z.Output != out {
		outDiffErr = diffErr("output", z.Output, out)
	}
	var errStr string
	if err != nil {
		// Append newline if err doesn't end with one.
		errStr = strings.TrimSuffix(err.Error(), "\n") + "\n"
	}
	if z.Error != errStr {
		errDiffErr = diffErr("error", z.Error, errStr)
	}
	return errors.Join(outDiffErr, errDiffErr)
}

func (z *ZTest) Run(t *testing.T, path, filename string) {
	if msg := z.ShouldSkip(path); msg != "" {
		t.Skip("skipping test:", msg)
	}
	var err error
	if z.Script != "" {
		err = z.RunScript(t.Context(), path, filepath.Dir(filename), t.TempDir)
	} else {
		err = z.RunInternal()
	}
	if err != nil {
		t.Fatalf("%s: %s", filename, err)
	}
}

func diffErr(name, expected, actual string) error {
	if !utf8.ValidString(expected) {
		expected = hex.Dump([]byte(expected))
		actual = hex.Dump([]byte(actual))
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(expected),
		FromFile: "expected",
		B:        difflib.SplitLines(actual),
		ToFile:   "actual",
		Context:  5,
	})
	if err != nil {
		panic("ztest: " + err.Error())
	}
	return fmt.Errorf("expected and actual %s differ:\n%s", name, diff)
}

func runsh(ctx context.Context, path, testDir, tempDir string, zt *ZTest) error {
	var stdin io.Reader
	for _, f := range zt.Inputs {
		b, _, err := f.load(testDir)
		if err != nil {
			return err
		}
		if f.Name == "stdin" {
			stdin = bytes.NewReader(b)
			continue
		}
		if err := os.WriteFile(filepath.Join(tempDir, f.Name), b, 0644); err != nil {
			return err
		}
	}
	stdout, stderr, err := RunShell(ctx, tempDir, path, zt.Script, stdin, zt.Env)
	if err != nil {
		return fmt.Errorf("script failed: %w\n=== stdout ===\n%s=== stderr ===\n%s",
			err, stdout, stderr)
	}
	for _, f := range zt.Outputs {
		var actual string
		switch f.Name {
		case "stdout":
			actual = stdout
		case "stderr":
			actual = stderr
		default:
			b, err := os.ReadFile(filepath.Join(tempDir, f.Name))
			if err != nil {
				return fmt.Errorf("%s: %w", f.Name, err)
			}
			actual = string(b)
		}
		expected, expectedRE, err := f.load(testDir)
		if err != nil {
			return err
		}
		if expected != nil && string(expected) != actual {
			return diffErr(f.Name, string(expected), actual)
		}
		if expectedRE != nil && !expectedRE.MatchString(actual) {
			return fmt.Errorf("%s: regexp %q does not match %q", f.Name, expectedRE, actual)
		}
	}
	return nil
}

// runInternal parses the input of z and returns it formatted as z.Format.
func runInternal(z *ZTest) (string, error) {
	if z.Expr != "" {
		e, err := parser.ParseExpression(z.Expr)
		if err != nil {
			return "", err
		}
		if z.Format == "floyd" {
			return sfmt.Expr(e) + "\n", nil
		}
		return marshal(astjson.EncodeExpr(e))
	}
	var tree ast.Tree
	if z.JSON != nil {
		var err error
		if tree, err = astjson.UnmarshalAST([]byte(*z.JSON)); err != nil {
			return "", err
		}
	} else {
		files := srcfiles.NewUnit(srcfiles.Source{Name: "prelude", Text: z.Prelude}, srcfiles.Source{Text: z.Floyd})
		a, err := parser.ParseProgram(files, 0)
		if err != nil {
			return "", err
		}
		tree = a.Parsed()
	}
	if err := checkRoundTrip(tree); err != nil {
		return "", err
	}
	if z.Format == "floyd" {
		return sfmt.AST(tree), nil
	}
	b, err := astjson.MarshalASTIndent(tree)
	if err != nil {
		return "", err
	}
	return string(b) + "\n", nil
}

func marshal(tree any) (string, error) {
	b, err := astjson.MarshalIndent(tree)
	if err != nil {
		return "", err
	}
	return string(b) + "\n", nil
}

// checkRoundTrip verifies that tree decodes from its own JSON encoding
// unchanged.
func checkRoundTrip(tree ast.Tree) error {
	b, err := astjson.MarshalAST(tree)
	if err != nil {
		return err
	}
	out, err := astjson.UnmarshalAST(b)
	if err != nil {
		return fmt.Errorf("JSON round trip: %w", err)
	}
	if !reflect.DeepEqual(tree, out) {
		return fmt.Errorf("JSON round trip changed the AST:\n%s", strings.Join(pretty.Diff(tree, out), "\n"))
	}
	return nil
}
