package cmd

import (
	"fmt"

	"github.com/brimdata/floyd/compiler/astjson"
	"github.com/brimdata/floyd/compiler/parser"
	"github.com/brimdata/floyd/compiler/sfmt"
	"github.com/spf13/cobra"
)

var exprCanonical bool

var exprCmd = &cobra.Command{
	Use:   "expr [flags] text",
	Short: "print the JSON tree of an expression",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := parser.ParseExpression(args[0])
		if err != nil {
			return err
		}
		if exprCanonical {
			fmt.Fprintln(cmd.OutOrStdout(), sfmt.Expr(e))
			return nil
		}
		b, err := astjson.Marshal(astjson.EncodeExpr(e))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(b))
		return nil
	},
}

func init() {
	exprCmd.Flags().BoolVarP(&exprCanonical, "canonical", "C", false, "print canonical source text instead of JSON")
	rootCmd.AddCommand(exprCmd)
}
