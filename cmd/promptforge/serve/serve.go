package servecmder

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/promptforge/promptforge/pkg/logger"
	"github.com/promptforge/promptforge/server"
)

const serveLongDesc string = `Run the promptforge HTTP server.

Configuration comes from an optional TOML file, the environment
(PORT, OPENAI_API_KEY, OPENAI_MODEL, TEMPERATURE, FRONTEND_URL)
and flags, in increasing order of precedence. Without an API key
the server still starts: analysis falls back to heuristics and
/optimize returns 503.

Examples:
  promptforge serve
  promptforge serve --config promptforge.toml --db ~/.promptforge/history.db
  OPENAI_API_KEY=sk-... promptforge serve --listen :9000`

const serveShortDesc string = "Run the promptforge HTTP server"

type serveCommander struct {
	configPath string
	listenAddr string
	dbPath     string
	debug      bool
}

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run()
		},
	}

	cmd.Flags().StringVarP(&cmder.configPath, "config", "c", "", "Path to TOML config file")
	cmd.Flags().StringVarP(&cmder.listenAddr, "listen", "l", "", "Address to listen on (overrides config)")
	cmd.Flags().StringVar(&cmder.dbPath, "db", "", "Path to SQLite history database (default: in-memory)")
	cmd.Flags().BoolVar(&cmder.debug, "debug", false, "Enable debug logging")

	return cmd
}

func (c *serveCommander) run() error {
	config, err := server.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.listenAddr != "" {
		config.ListenAddr = c.listenAddr
	}
	if c.dbPath != "" {
		config.DBPath = c.dbPath
	}
	if c.debug {
		config.Debug = true
	}

	log := logger.NewLogger(config.Debug)
	defer log.Sync()

	log.Info("promptforge starting",
		zap.String("listen", config.ListenAddr),
		zap.String("model", config.Model),
		zap.Bool("debug", config.Debug),
	)

	srv, err := server.New(config, log)
	if err != nil {
		return err
	}
	defer srv.Close()

	return srv.Run()
}
