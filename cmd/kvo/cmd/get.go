package cmd

import (
	"github.com/atdiar/kvo"
	"github.com/spf13/cobra"
)

func newGetCmd() *cobra.Command {
	var format string
	getCmd := &cobra.Command{
		Use:   "get FILE PATH",
		Short: "get prints the value a key path resolves to.",
		Long: `
		get resolves PATH against the document in FILE. A path crossing a sequence
		yields one value per element, missing keys yield null.
		`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			g := kvo.NewGraph()
			root, err := loadDocument(g, args[0])
			if err != nil {
				return err
			}
			v, err := kvo.ValueForKeyPath(root, args[1])
			if err != nil {
				return err
			}
			data, err := encode(format, kvo.Plain(v))
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	getCmd.Flags().StringVarP(&format, "format", "f", "yaml", "output format: yaml or json")
	return getCmd
}
