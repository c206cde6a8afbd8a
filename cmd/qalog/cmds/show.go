package cmds

import (
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/go-go-golems/qalog/pkg/transcript"
	"github.com/go-go-golems/qalog/pkg/transcript/render"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

func NewShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the transcript as Markdown",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := load()
			if err != nil {
				return err
			}

			md := render.Markdown(res.Documents)

			raw, _ := cmd.Flags().GetBool("raw")
			if !raw && isatty.IsTerminal(os.Stdout.Fd()) {
				style, _ := cmd.Flags().GetString("style")
				out, err := glamour.Render(md, style)
				if err != nil {
					return err
				}
				md = out
			}

			fmt.Fprint(cmd.OutOrStdout(), md)
			return transcript.PrintWarnings(os.Stderr, res.Warnings)
		},
	}
	cmd.Flags().Bool("raw", false, "Print plain Markdown even on a terminal")
	cmd.Flags().String("style", "dark", "glamour style used on a terminal")
	return cmd
}
