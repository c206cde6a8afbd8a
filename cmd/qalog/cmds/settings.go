package cmds

import (
	"strconv"

	"github.com/go-go-golems/qalog/pkg/server"
	"github.com/go-go-golems/qalog/pkg/transcript/build"
	"github.com/go-go-golems/qalog/pkg/transcript/loader"
	"github.com/go-go-golems/qalog/pkg/transcript/render"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const DefaultServerLog = ".qalog.log"

// AddPersistentFlags registers the transcript and server settings shared by
// every command. They are bound to viper (env prefix QALOG) by the root.
func AddPersistentFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.String("input-dir", ".", "Directory holding the primary document and its variants")
	flags.String("primary", build.DefaultPrimary, "Primary document, relative to input-dir")
	flags.String("output", build.DefaultOutput, "Rendered HTML file")
	flags.String("assets-dir", "", "Directory holding logo.png and microphone.png (default: output directory)")
	flags.String("title", render.DefaultTitle, "Page title")
	flags.Bool("markdown", false, "Render message bodies as Markdown")
	flags.Int("port", server.DefaultPort, "Port of the static server")
	flags.String("pid-file", server.DefaultPidFile, "Pid file of the detached server")
	flags.String("server-log", DefaultServerLog, "Output file of the detached server")
}

func buildSettings() *build.Settings {
	s := build.NewSettings()
	s.InputDir = viper.GetString("input-dir")
	s.Primary = viper.GetString("primary")
	s.Output = viper.GetString("output")
	s.AssetsDir = viper.GetString("assets-dir")
	s.Title = viper.GetString("title")
	s.Markdown = viper.GetBool("markdown")
	return s
}

func load() (*loader.Result, error) {
	return build.Load(buildSettings())
}

// serveArgs are the arguments of the detached "serve" child, carrying the
// effective settings of this invocation.
func serveArgs() []string {
	s := buildSettings()
	args := []string{
		"serve",
		"--input-dir", s.InputDir,
		"--primary", s.Primary,
		"--output", s.Output,
		"--title", s.Title,
		"--port", strconv.Itoa(viper.GetInt("port")),
	}
	// log flags belong to clay on the root command
	for _, flag := range []string{"log-level", "log-format"} {
		if v := viper.GetString(flag); v != "" {
			args = append(args, "--"+flag, v)
		}
	}
	if s.AssetsDir != "" {
		args = append(args, "--assets-dir", s.AssetsDir)
	}
	if s.Markdown {
		args = append(args, "--markdown")
	}
	if configFile := viper.ConfigFileUsed(); configFile != "" {
		args = append(args, "--config", configFile)
	}
	return args
}
