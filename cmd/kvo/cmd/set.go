package cmd

import (
	"fmt"

	"github.com/atdiar/kvo"
	"github.com/spf13/cobra"
)

func newSetCmd() *cobra.Command {
	var watches []string
	var write bool
	setCmd := &cobra.Command{
		Use:   "set FILE PATH VALUE",
		Short: "set assigns VALUE along a key path.",
		Long: `
		set parses VALUE as YAML and assigns it to the last key of PATH on every
		object PATH reaches. Observers registered with --watch print the
		notifications they receive, then the resulting document is printed.
		With --write the document is saved back to FILE instead.

		VALUE follows YAML 1.1: unquoted y, n, yes, no, on and off are booleans
		and digits are numbers. Quote it to store a string, as in '"y"'.
		`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, path := args[0], args[1]
			g := kvo.NewGraph()
			root, err := loadDocument(g, file)
			if err != nil {
				return err
			}
			value, err := decodeDocument([]byte(args[2]))
			if err != nil {
				return fmt.Errorf("value: %w", err)
			}

			out := cmd.OutOrStdout()
			if _, err := observe(root, out, watches...); err != nil {
				return err
			}
			if err := kvo.SetAlongPath(root, path, g.Adapt(value)); err != nil {
				return err
			}

			if write {
				return writeDocument(file, root)
			}
			data, err := encode("yaml", kvo.Plain(root))
			if err != nil {
				return err
			}
			if len(watches) > 0 {
				fmt.Fprintln(out, "---")
			}
			_, err = out.Write(data)
			return err
		},
	}
	setCmd.Flags().StringArrayVarP(&watches, "watch", "w", nil, "key path to observe while setting (repeatable)")
	setCmd.Flags().BoolVar(&write, "write", false, "save the document back to FILE")
	return setCmd
}
