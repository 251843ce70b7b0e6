package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// paths collects the on-disk locations every subcommand resolves its
// configuration and logs against, bound to persistent flags (and, via
// viper, their AGENTCORE_-prefixed environment equivalents).
type paths struct {
	configDir string
	logsDir   string
}

func (p paths) registryPath() string    { return p.configDir + "/models/registry.yaml" }
func (p paths) routingPath() string     { return p.configDir + "/routing.yaml" }
func (p paths) guardrailsPath() string  { return p.configDir + "/policies/guardrails.yaml" }
func (p paths) outputSchemaPath() string { return p.configDir + "/policies/output_schema.json" }
func (p paths) globalLogPath() string   { return p.logsDir + "/poc_timeline.log" }
func (p paths) sessionLogDir() string   { return p.logsDir + "/sessions" }

// NewRootCommand builds the agentcore root command and its four
// subcommands. Viper binds each persistent flag to an AGENTCORE_-
// prefixed environment variable so a deployment can configure paths
// without a wrapper script, matching the teacher's cobra+viper pairing
// in cmd/cobra_cli.go (there viper also loads a settings file; this
// CLI has no single settings file to load, so viper's role here is
// purely flag/env binding).
func NewRootCommand() *cobra.Command {
	p := &paths{}

	root := &cobra.Command{
		Use:   "agentcore",
		Short: "Routing and reliability core for multi-provider LLM task execution",
		Long: `agentcore routes a task to an ordered list of LLM backends and attempts
them sequentially under a policy envelope: latency caps, SLA deadlines,
cost/capability filters, circuit breakers, and structured-output
validation with bounded retries. Every attempt is recorded to a
per-session event timeline.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&p.configDir, "config-dir", ".", "directory containing models/, routing.yaml, and policies/")
	root.PersistentFlags().StringVar(&p.logsDir, "logs-dir", "logs", "directory for the global and per-session event timelines")

	viper.SetEnvPrefix("agentcore")
	_ = viper.BindPFlag("config-dir", root.PersistentFlags().Lookup("config-dir"))
	_ = viper.BindPFlag("logs-dir", root.PersistentFlags().Lookup("logs-dir"))
	viper.AutomaticEnv()

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		p.configDir = viper.GetString("config-dir")
		p.logsDir = viper.GetString("logs-dir")
		return nil
	}

	root.AddCommand(newRunCommand(p))
	root.AddCommand(newExplainCommand(p))
	root.AddCommand(newTimelineCommand(p))
	root.AddCommand(newValidateCommand(p))

	return root
}
