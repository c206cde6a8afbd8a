package cmds

import (
	"fmt"

	"github.com/go-go-golems/qalog/pkg/server"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newSupervisor() (*server.Supervisor, error) {
	options := []server.SupervisorOption{
		server.WithArgs(serveArgs()...),
		server.WithLogFile(viper.GetString("server-log")),
	}
	return server.NewSupervisor(viper.GetString("pid-file"), options...)
}

func NewStartCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start a detached server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSupervisor()
			if err != nil {
				return err
			}
			pid, err := s.Start()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Server started on port %d (pid %d)\n", viper.GetInt("port"), pid)
			return nil
		},
	}
}

func NewStopCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the detached server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSupervisor()
			if err != nil {
				return err
			}
			if err := s.Stop(); err != nil {
				if errors.Is(err, server.ErrNotRunning) {
					fmt.Fprintln(cmd.OutOrStdout(), "Server is not running")
					return nil
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Server stopped")
			return nil
		},
	}
}

func NewRestartCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "restart",
		Short: "Restart the detached server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSupervisor()
			if err != nil {
				return err
			}
			pid, err := s.Restart()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Server restarted on port %d (pid %d)\n", viper.GetInt("port"), pid)
			return nil
		},
	}
}

func NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report whether the detached server is running",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSupervisor()
			if err != nil {
				return err
			}
			pid, running, err := s.Status()
			if err != nil {
				return err
			}
			switch {
			case running:
				fmt.Fprintf(cmd.OutOrStdout(), "Server is running (pid %d)\n", pid)
			case pid != 0:
				fmt.Fprintf(cmd.OutOrStdout(), "Server is not running (stale pid %d)\n", pid)
			default:
				fmt.Fprintln(cmd.OutOrStdout(), "Server is not running")
			}
			return nil
		},
	}
}
