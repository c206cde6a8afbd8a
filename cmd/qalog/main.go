package main

import (
	"embed"
	"fmt"
	"os"

	clay "github.com/go-go-golems/clay/pkg"
	"github.com/go-go-golems/glazed/pkg/cli"
	"github.com/go-go-golems/glazed/pkg/help"
	"github.com/go-go-golems/qalog/cmd/qalog/cmds"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

//go:embed doc/*
var docFS embed.FS

var rootCmd = &cobra.Command{
	Use:   "qalog",
	Short: "qalog renders Q&A prompt logs into a static chat transcript",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// flags are parsed now, pick up --log-level and co
		err := clay.InitLogger()
		cobra.CheckErr(err)
	},
	SilenceUsage: true,
}

func initHelp(rootCmd *cobra.Command) error {
	helpSystem := help.NewHelpSystem()
	if err := helpSystem.LoadSectionsFromFS(docFS, "."); err != nil {
		return err
	}

	helpFunc, usageFunc := help.GetCobraHelpUsageFuncs(helpSystem)
	helpTemplate, usageTemplate := help.GetCobraHelpUsageTemplates(helpSystem)

	rootCmd.SetHelpFunc(helpFunc)
	rootCmd.SetUsageFunc(usageFunc)
	rootCmd.SetHelpTemplate(helpTemplate)
	rootCmd.SetUsageTemplate(usageTemplate)

	rootCmd.SetHelpCommand(help.NewCobraHelpCommand(helpSystem))
	return nil
}

func main() {
	err := initHelp(rootCmd)
	cobra.CheckErr(err)

	// transcript settings are registered before viper binds the persistent
	// flags, so QALOG_OUTPUT and the config file apply to them as well
	cmds.AddPersistentFlags(rootCmd)

	err = clay.InitViper("qalog", rootCmd)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error initializing config: %s\n", err)
		os.Exit(1)
	}
	err = clay.InitLogger()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error initializing logger: %s\n", err)
		os.Exit(1)
	}

	log.Debug().
		Str("config", viper.ConfigFileUsed()).
		Str("input-dir", viper.GetString("input-dir")).
		Str("primary", viper.GetString("primary")).
		Msg("Loaded configuration")

	statsCmd, err := cmds.NewStatsCommand()
	cobra.CheckErr(err)
	statsCobraCmd, err := cli.BuildCobraCommandFromGlazeCommand(statsCmd)
	cobra.CheckErr(err)

	rootCmd.AddCommand(
		cmds.NewBuildCommand(),
		cmds.NewServeCommand(),
		cmds.NewStartCommand(),
		cmds.NewStopCommand(),
		cmds.NewRestartCommand(),
		cmds.NewStatusCommand(),
		cmds.NewShowCommand(),
		statsCobraCmd,
		cmds.NewAskCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
