package cmd

import (
	"bytes"

	"github.com/brimdata/floyd/compiler/astjson"
	"github.com/brimdata/floyd/pkg/storage"
	"github.com/kr/pretty"
	"github.com/spf13/cobra"
)

var (
	parsePretty bool
	parseOutput string
)

var parseCmd = &cobra.Command{
	Use:   "parse [flags] path...",
	Short: "print the JSON AST of programs",
	Long: `The parse command prints the AST of each program as indented JSON,
one document per program.  With -pretty it prints the Go values of the AST
instead.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		trees, err := loadAll(cmd.Context(), args)
		if err != nil {
			return err
		}
		var out bytes.Buffer
		for _, t := range trees {
			if parsePretty {
				pretty.Fprintf(&out, "%# v\n", t)
				continue
			}
			b, err := astjson.MarshalASTIndent(t)
			if err != nil {
				return err
			}
			out.Write(b)
			out.WriteByte('\n')
		}
		return storage.Put(cmd.Context(), engine, parseOutput, out.Bytes())
	},
}

func init() {
	parseCmd.Flags().BoolVar(&parsePretty, "pretty", false, "print Go values instead of JSON")
	parseCmd.Flags().StringVarP(&parseOutput, "output", "o", storage.StdioPath, "write output to file")
	rootCmd.AddCommand(parseCmd)
}
