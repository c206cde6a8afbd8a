package cmds

import (
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/go-go-golems/qalog/pkg/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Build, then serve the output directory until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := runBuild(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			s := server.NewServer(filepath.Dir(res.Output), viper.GetInt("port"))
			return s.Run(ctx)
		},
	}
}
