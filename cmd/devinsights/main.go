// Command devinsights runs the lifecycle analytics engine over an offline
// work-item snapshot and prints the merged report as JSON.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ArakelyanK/dev-insights-dashboard-sub001/internal/analytics"
	"github.com/ArakelyanK/dev-insights-dashboard-sub001/internal/config"
	"github.com/ArakelyanK/dev-insights-dashboard-sub001/internal/domain"
	"github.com/ArakelyanK/dev-insights-dashboard-sub001/internal/service"
)

type analyzeCommand struct {
	rulesFile string
	clockMode string
	chunkSize int
	debug     bool
}

func newAnalyzeCommand() *cobra.Command {
	ac := &analyzeCommand{}
	cmd := &cobra.Command{
		Use:   "analyze <snapshot.json>",
		Short: "Analyze a work-item snapshot",
		Long:  "Run the lifecycle analyzers over a JSON snapshot of work items and pull-request threads and print the merged report.",
		Args:  cobra.ExactArgs(1),
		RunE:  func(cmd *cobra.Command, args []string) error { return ac.run(cmd, args[0]) },
	}
	cmd.Flags().StringVar(&ac.rulesFile, "rules", "", "Process rules file (defaults built in when omitted)")
	cmd.Flags().StringVar(&ac.clockMode, "clock", service.ClockCalendar, "Duration clock: wall or calendar")
	cmd.Flags().IntVar(&ac.chunkSize, "chunk-size", 0, "Items per analysis chunk (0 = rules default)")
	cmd.Flags().BoolVar(&ac.debug, "debug", false, "Include per-item diagnostics traces")
	return cmd
}

func (ac *analyzeCommand) run(cmd *cobra.Command, path string) error {
	switch ac.clockMode {
	case service.ClockWall, service.ClockCalendar:
	default:
		return fmt.Errorf("unknown clock mode %q", ac.clockMode)
	}

	rules := config.DefaultRules()
	if ac.rulesFile != "" {
		r, err := config.LoadRules(ac.rulesFile)
		if err != nil { return err }
		rules = r
	}
	if ac.chunkSize > 0 { rules.Limits.ChunkSize = ac.chunkSize }

	data, err := os.ReadFile(path)
	if err != nil { return err }
	var snap domain.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("parse snapshot %s: %w", path, err)
	}
	if len(snap.Items) == 0 { return errors.New("snapshot contains no work items") }

	eng := analytics.New(service.VocabularyFrom(rules), service.ClockFrom(rules, ac.clockMode), analytics.WithDebug(ac.debug))
	var chunks []*analytics.ChunkResult
	for _, part := range analytics.Chunk(snap.Items, rules.Limits.ChunkSize) {
		c, err := eng.AnalyzeChunk(part, snap.Threads)
		if err != nil { return err }
		chunks = append(chunks, c)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(analytics.MergeChunks(chunks))
}

func main() {
	root := &cobra.Command{
		Use:           "devinsights",
		Short:         "Work-item lifecycle analytics",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newAnalyzeCommand())
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
