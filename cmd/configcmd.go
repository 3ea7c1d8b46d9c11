package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/cedric-bidet/n8n-webhook-watcher/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Prints the merged configuration from defaults, the config file, and
WATCHER_* environment variables. Secrets are masked.`,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	out, err := renderConfig(cfg)
	if err != nil {
		return fmt.Errorf("failed to render config: %w", err)
	}

	fmt.Print(string(out))
	return nil
}

// Views mirror the config sections with durations rendered as strings,
// since yaml would otherwise print them as raw nanosecond counts.
type configView struct {
	Database  databaseView  `yaml:"database"`
	Webhook   webhookView   `yaml:"webhook"`
	Reconnect reconnectView `yaml:"reconnect"`
	Server    serverView    `yaml:"server"`
	Logging   loggingView   `yaml:"logging"`
	Debug     bool          `yaml:"debug"`
}

type databaseView struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type webhookView struct {
	URL             string `yaml:"url"`
	Timeout         string `yaml:"timeout"`
	AuthHeaderName  string `yaml:"auth_header_name"`
	AuthHeaderValue string `yaml:"auth_header_value"`
}

type reconnectView struct {
	MaxAttempts int    `yaml:"max_attempts"`
	Delay       string `yaml:"delay"`
}

type serverView struct {
	Port         int    `yaml:"port"`
	ReadTimeout  string `yaml:"read_timeout"`
	WriteTimeout string `yaml:"write_timeout"`
	IdleTimeout  string `yaml:"idle_timeout"`
}

type loggingView struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func renderConfig(cfg *config.Config) ([]byte, error) {
	r := cfg.Redacted()

	return yaml.Marshal(configView{
		Database: databaseView{
			Host:     r.Database.Host,
			Port:     r.Database.Port,
			Database: r.Database.Database,
			User:     r.Database.User,
			Password: r.Database.Password,
			SSLMode:  r.Database.SSLMode,
		},
		Webhook: webhookView{
			URL:             r.Webhook.URL,
			Timeout:         r.Webhook.Timeout.String(),
			AuthHeaderName:  r.Webhook.AuthHeaderName,
			AuthHeaderValue: r.Webhook.AuthHeaderValue,
		},
		Reconnect: reconnectView{
			MaxAttempts: r.Reconnect.MaxAttempts,
			Delay:       r.Reconnect.Delay.String(),
		},
		Server: serverView{
			Port:         r.Server.Port,
			ReadTimeout:  r.Server.ReadTimeout.String(),
			WriteTimeout: r.Server.WriteTimeout.String(),
			IdleTimeout:  r.Server.IdleTimeout.String(),
		},
		Logging: loggingView{
			Level:  r.Logging.Level,
			Format: r.Logging.Format,
		},
		Debug: r.Debug,
	})
}
