package cmds

import (
	"fmt"

	"github.com/go-go-golems/qalog/pkg/helpers"
	"github.com/go-go-golems/qalog/pkg/llm"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func NewAskCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask [prompt...]",
		Short: "Query the model and record the answers as a new variant",
		Long: `Sends each prompt to the model, one at a time. Without arguments, every
"P:" line of the primary document is sent. The exchanges are written to a new
timestamped variant next to the primary document; run build to render them.

The OpenAI key is read from OPENAI_API_KEY.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := load()
			if err != nil {
				return err
			}
			primary := res.Primary()

			prompts := args
			if len(prompts) == 0 {
				prompts = llm.PromptsFromDocument(primary)
			}
			if len(prompts) == 0 {
				return errors.Errorf("no prompts given and no \"%s\" lines found in %s", llm.PromptPrefix, primary.Name)
			}

			client, err := newClient(cmd, primary.Context)
			if err != nil {
				return err
			}

			ctx := helpers.ContextWithRequestID(cmd.Context(), uuid.NewString())

			dryRun, _ := cmd.Flags().GetBool("dry-run")
			var exchanges []llm.Exchange
			if dryRun {
				exchanges, err = llm.QueryAll(ctx, client, prompts)
				if err != nil {
					return err
				}
			} else {
				recorder := llm.NewRecorder(client, viper.GetString("input-dir"), viper.GetString("primary"))
				var path string
				path, exchanges, err = recorder.Record(ctx, prompts)
				if err != nil {
					return err
				}
				defer fmt.Fprintf(cmd.OutOrStdout(), "Recorded %d exchanges in %s\n", len(exchanges), path)
			}

			for _, e := range exchanges {
				fmt.Fprintf(cmd.OutOrStdout(), "Q: %s\nA: %s\n\n", e.Prompt, e.Response)
			}
			return nil
		},
	}
	cmd.Flags().String("model", "", "Model to query (default from QALOG_MODEL or gpt-3.5-turbo)")
	cmd.Flags().String("system", "", "System message (default: the document's context)")
	cmd.Flags().Bool("echo", false, "Answer every prompt with itself instead of calling the API")
	cmd.Flags().Bool("dry-run", false, "Print the exchanges without recording a variant")
	return cmd
}

func newClient(cmd *cobra.Command, systemMessage string) (llm.Client, error) {
	if echo, _ := cmd.Flags().GetBool("echo"); echo {
		return llm.NewEchoClient(), nil
	}

	settings, err := llm.LoadSettings()
	if err != nil {
		return nil, err
	}
	if model, _ := cmd.Flags().GetString("model"); model != "" {
		settings.Model = model
	}
	if system, _ := cmd.Flags().GetString("system"); system != "" {
		settings.SystemMessage = system
	} else if settings.SystemMessage == "" {
		settings.SystemMessage = systemMessage
	}

	return llm.NewOpenAIClient(settings)
}
