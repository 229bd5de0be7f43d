package cmd

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/brimdata/floyd/compiler/ast"
	"github.com/brimdata/floyd/compiler/astjson"
	"github.com/brimdata/floyd/compiler/parser"
	"github.com/brimdata/floyd/compiler/sfmt"
	"github.com/brimdata/floyd/compiler/srcfiles"
	"github.com/fatih/color"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	okLabel   = color.New(color.FgGreen).SprintFunc()
	failLabel = color.New(color.FgRed).SprintFunc()
)

var checkCmd = &cobra.Command{
	Use:   "check path...",
	Short: "verify that programs survive serialization",
	Long: `The check command loads each program and verifies that
  - every resolved address names a slot in an enclosing scope,
  - decoding its JSON encoding yields the same AST, and
  - its canonical text formats to itself.
Differences are shown as unified diffs.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		trees, err := loadAll(cmd.Context(), args)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		var failed int
		for k, t := range trees {
			if err := check(t); err != nil {
				failed++
				logger.Warn("check failed", zap.String("path", args[k]), zap.Error(err))
				fmt.Fprintf(w, "%s: %s\n%s\n", args[k], failLabel("FAIL"), err)
				continue
			}
			fmt.Fprintf(w, "%s: %s\n", args[k], okLabel("ok"))
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d programs failed", failed, len(trees))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func check(t ast.Tree) error {
	resolved, err := ast.Addresses(t)
	if err != nil {
		return err
	}
	before, err := astjson.MarshalASTIndent(t)
	if err != nil {
		return err
	}
	decoded, err := astjson.UnmarshalAST(before)
	if err != nil {
		return fmt.Errorf("JSON round trip: %w", err)
	}
	after, err := astjson.MarshalASTIndent(decoded)
	if err != nil {
		return err
	}
	if !bytes.Equal(before, after) {
		return diff("JSON round trip", string(before), string(after))
	}
	if resolved > 0 {
		// Resolved addresses have no source syntax to reparse.
		return nil
	}
	return checkFormat(t)
}

func checkFormat(t ast.Tree) error {
	text := sfmt.AST(t)
	a, err := parser.ParseProgram(srcfiles.NewList(srcfiles.Source{Text: text}), conf.MaxDepth)
	if err != nil {
		return fmt.Errorf("canonical text does not parse: %w", err)
	}
	if again := sfmt.AST(a.Parsed()); again != text {
		return diff("canonical text", text, again)
	}
	return nil
}

func diff(what, expected, actual string) error {
	s, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(expected),
		FromFile: "before",
		B:        difflib.SplitLines(actual),
		ToFile:   "after",
		Context:  3,
	})
	if err != nil {
		return err
	}
	return errors.New(what + " changed:\n" + s)
}
