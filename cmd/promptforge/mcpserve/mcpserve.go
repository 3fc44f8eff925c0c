package mcpcmder

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/promptforge/promptforge/pkg/logger"
	"github.com/promptforge/promptforge/pkg/mcptools"
	"github.com/promptforge/promptforge/pkg/optimizer"
	"github.com/promptforge/promptforge/pkg/quality"
	"github.com/promptforge/promptforge/server"
)

const mcpLongDesc string = `Serve promptforge tools over MCP on stdio.

Registers promptforge_optimize and promptforge_analyze so MCP
clients (agent runtimes, editors) can optimize and score prompts
directly. Uses the same configuration as the HTTP server; without
an API key only heuristic analysis is available.

Examples:
  OPENAI_API_KEY=sk-... promptforge mcp
  promptforge mcp --config promptforge.toml`

const mcpShortDesc string = "Serve promptforge tools over MCP on stdio"

type mcpCommander struct {
	configPath string
	debug      bool
}

func NewMCPCmd() *cobra.Command {
	cmder := &mcpCommander{}

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: mcpShortDesc,
		Long:  mcpLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd)
		},
	}

	cmd.Flags().StringVarP(&cmder.configPath, "config", "c", "", "Path to TOML config file")
	cmd.Flags().BoolVar(&cmder.debug, "debug", false, "Enable debug logging")

	return cmd
}

func (c *mcpCommander) run(cmd *cobra.Command) error {
	config, err := server.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.debug {
		config.Debug = true
	}

	log := logger.NewLogger(config.Debug)
	defer log.Sync()

	var engine mcptools.Optimizer
	var grader quality.Grader

	if config.APIKey != "" {
		eng, err := optimizer.New(optimizer.Config{
			Provider:    config.Provider,
			Model:       config.Model,
			APIKey:      config.APIKey,
			Temperature: config.Temperature,
		}, log)
		if err != nil {
			return err
		}
		engine = eng
		grader = eng.Client()
	} else {
		log.Warn("no API key configured, promptforge_optimize is disabled and analysis is heuristic-only")
	}

	analyzer := quality.NewAnalyzer(grader, log)

	srv := mcp.NewServer(&mcp.Implementation{Name: "promptforge", Version: "0.1.0"}, nil)
	mcptools.Register(srv, engine, analyzer)

	return srv.Run(cmd.Context(), &mcp.StdioTransport{})
}
