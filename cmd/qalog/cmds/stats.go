package cmds

import (
	"context"
	"os"

	"github.com/go-go-golems/glazed/pkg/cmds"
	"github.com/go-go-golems/glazed/pkg/cmds/layers"
	"github.com/go-go-golems/glazed/pkg/cmds/parameters"
	"github.com/go-go-golems/glazed/pkg/middlewares"
	"github.com/go-go-golems/glazed/pkg/settings"
	"github.com/go-go-golems/glazed/pkg/types"
	"github.com/go-go-golems/qalog/pkg/transcript"
	"github.com/go-go-golems/qalog/pkg/transcript/stats"
	"github.com/pkg/errors"
)

type StatsSettings struct {
	Tokens bool   `glazed.parameter:"tokens"`
	Model  string `glazed.parameter:"model"`
}

type StatsCommand struct {
	*cmds.CommandDescription
}

var _ cmds.GlazeCommand = (*StatsCommand)(nil)

func NewStatsCommand() (*StatsCommand, error) {
	glazedParameterLayer, err := settings.NewGlazedParameterLayers()
	if err != nil {
		return nil, errors.Wrap(err, "could not create Glazed parameter layer")
	}

	return &StatsCommand{
		CommandDescription: cmds.NewCommandDescription(
			"stats",
			cmds.WithShort("Print message, turn and token counts per conversation"),
			cmds.WithLong("One row per conversation, in load order, followed by a total row."),
			cmds.WithFlags(
				parameters.NewParameterDefinition(
					"tokens",
					parameters.ParameterTypeBool,
					parameters.WithHelp("Estimate token counts"),
					parameters.WithDefault(true),
				),
				parameters.NewParameterDefinition(
					"model",
					parameters.ParameterTypeString,
					parameters.WithHelp("Model whose tokenizer is used"),
					parameters.WithDefault(stats.DefaultModel),
				),
			),
			cmds.WithLayersList(glazedParameterLayer),
		),
	}, nil
}

func (c *StatsCommand) RunIntoGlazeProcessor(ctx context.Context, parsedLayers *layers.ParsedLayers, gp middlewares.Processor) error {
	s := &StatsSettings{}
	if err := parsedLayers.InitializeStruct(layers.DefaultSlug, s); err != nil {
		return errors.Wrap(err, "could not initialize settings")
	}

	rows, warnings, err := statsRows(s)
	if err != nil {
		return err
	}
	for _, row := range rows {
		if err := gp.AddRow(ctx, row); err != nil {
			return err
		}
	}
	return transcript.PrintWarnings(os.Stderr, warnings)
}

func statsRows(s *StatsSettings) ([]types.Row, []transcript.Warning, error) {
	res, err := load()
	if err != nil {
		return nil, nil, err
	}

	var counter stats.TokenCounter
	if s.Tokens {
		counter, err = stats.NewTokenCounter(s.Model)
		if err != nil {
			return nil, nil, err
		}
	}

	st, err := stats.Compute(res.Documents, counter)
	if err != nil {
		return nil, nil, err
	}
	return st.Rows(s.Tokens), res.Warnings, nil
}
