package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cklxx-labs/agentcore/internal/timeline"
)

func newTimelineCommand(p *paths) *cobra.Command {
	var summary bool

	cmd := &cobra.Command{
		Use:   "timeline <session-id>",
		Short: "Print a session's recorded event timeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sessionID := args[0]
			path := p.sessionLogDir() + "/" + sessionID + ".jsonl"

			events, err := timeline.ReadSessionEvents(path)
			if err != nil {
				return fmt.Errorf("read session %s: %w", sessionID, err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if summary {
				return enc.Encode(timeline.Summarize(events))
			}
			return enc.Encode(events)
		},
	}

	cmd.Flags().BoolVar(&summary, "summary", false, "print the event-count/success-rate/latency digest instead of the raw event sequence")
	return cmd
}
