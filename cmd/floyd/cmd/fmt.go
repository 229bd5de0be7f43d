package cmd

import (
	"errors"

	"github.com/brimdata/floyd/compiler"
	"github.com/brimdata/floyd/compiler/sfmt"
	"github.com/brimdata/floyd/pkg/storage"
	"github.com/spf13/cobra"
)

var fmtWrite bool

var fmtCmd = &cobra.Command{
	Use:   "fmt [flags] path...",
	Short: "print programs as canonical source text",
	Long: `The fmt command prints each program, given as source text or as a JSON
AST, in canonical form.  With -w the canonical text replaces the content
of each source file instead of being printed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if fmtWrite {
			for _, path := range args {
				if path == storage.StdioPath || compiler.IsJSON(path) {
					return errors.New("-w requires source text files")
				}
			}
		}
		trees, err := loadAll(cmd.Context(), args)
		if err != nil {
			return err
		}
		var out []byte
		for k, t := range trees {
			text := sfmt.AST(t)
			if fmtWrite {
				if err := storage.Put(cmd.Context(), engine, args[k], []byte(text)); err != nil {
					return err
				}
				continue
			}
			out = append(out, text...)
		}
		if fmtWrite {
			return nil
		}
		return storage.Put(cmd.Context(), engine, storage.StdioPath, out)
	},
}

func init() {
	fmtCmd.Flags().BoolVarP(&fmtWrite, "write", "w", false, "write result to source files")
	rootCmd.AddCommand(fmtCmd)
}
