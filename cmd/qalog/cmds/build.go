package cmds

import (
	"fmt"
	"os"

	"github.com/go-go-golems/qalog/pkg/transcript"
	"github.com/go-go-golems/qalog/pkg/transcript/build"
	"github.com/spf13/cobra"
)

func NewBuildCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Render the primary document and its variants into the output file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := runBuild(cmd)
			return err
		},
	}
}

func runBuild(cmd *cobra.Command) (*build.Result, error) {
	res, err := build.Run(buildSettings())
	if err != nil {
		return nil, err
	}

	status := "Generated"
	if !res.Changed {
		status = "Unchanged"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s with %d messages in %d conversations from %d documents\n",
		status, res.Output, res.Messages, res.Conversations, res.Documents)

	if err := transcript.PrintWarnings(os.Stderr, res.Warnings); err != nil {
		return nil, err
	}
	return res, nil
}
