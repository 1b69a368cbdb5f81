package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/nguyentantai21042004/chunkflow/internal/chunker"
	"github.com/nguyentantai21042004/chunkflow/internal/config"
	"github.com/nguyentantai21042004/chunkflow/internal/extract"
	"github.com/nguyentantai21042004/chunkflow/internal/logger"
	"github.com/nguyentantai21042004/chunkflow/pkg/executor"
	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:   "plan <file>",
	Short: "Show how a document would be chunked without calling Gemini",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlan,
}

func init() {
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	_ = godotenv.Load()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	doc, err := extract.New(executor.New(), logger.NewNop()).Extract(ctx, args[0])
	if err != nil {
		return err
	}

	return printPlan(cmd, cfg, doc)
}

func printPlan(cmd *cobra.Command, cfg *config.Config, doc extract.Document) error {
	c := chunker.New(chunker.Options{
		BatchSize:   cfg.Chunking.BatchSizeTokens,
		OverlapSize: cfg.OverlapSize(),
	})

	var chunks []chunker.Chunk
	if cfg.Chunking.StructureAware && len(doc.Elements) > 0 {
		chunks = c.SplitElements(doc.Elements)
	} else {
		chunks = c.Split(doc.Text)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintf(w, "%s: %d estimated tokens, %d chunks\n", doc.Title, chunker.EstimateTokens(doc.Text), len(chunks))
	_, _ = fmt.Fprintln(w, "CHUNK\tTOKENS\tOVERLAP\tSTART")
	for _, ch := range chunks {
		_, _ = fmt.Fprintf(w, "%d\t%d\t%d\t%s\n", ch.Index, ch.TokenEstimate, chunker.EstimateTokens(ch.Overlap), preview(ch.Text, 40))
	}
	return w.Flush()
}

func preview(s string, n int) string {
	r := []rune(s)
	for i, c := range r {
		if c == '\n' {
			r[i] = ' '
		}
	}
	if len(r) > n {
		return string(r[:n]) + "..."
	}
	return string(r)
}
