package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Kadirose05/superleaugechatbot-genai/internal/logging"
	"github.com/Kadirose05/superleaugechatbot-genai/internal/pipeline"
)

// NewAskCmd constructs the `superlig ask` command, which answers a single
// natural language question and prints the answer with its citations.
func NewAskCmd() *cobra.Command {
	var topK int
	var minScore float32

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a question about Süper Lig",
		Long: `Ask a natural language question about Süper Lig football facts.

The question is answered from the indexed corpus. Answers cite the source
passages they were grounded in. When no generation credential is configured,
the command reports how many relevant documents were found instead.

Examples:
  superlig ask "Galatasaray ne zaman kuruldu?"
  superlig ask --top-k 3 "Fenerbahçe'nin stadyumu hangisi?"
  superlig ask --min-score 0.3 "Trabzonspor kaç kez şampiyon oldu?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.New()
			ctx := logging.WithLogger(cmd.Context(), log)

			pipe, closePipe, err := buildPipeline(ctx, log)
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}
			defer closePipe()

			question := strings.Join(args, " ")
			res := pipe.Answer(ctx, pipeline.Query{
				Question: question,
				TopK:     topK,
				MinScore: minScore,
			})

			fmt.Println(res.Answer)

			if len(res.Citations) > 0 {
				fmt.Println("\nKaynaklar:")
				for _, c := range res.Citations {
					if c.URL != "" {
						fmt.Printf("  - %s (%.2f) %s\n", c.Title, c.Score, c.URL)
					} else {
						fmt.Printf("  - %s (%.2f)\n", c.Title, c.Score)
					}
				}
			}

			if !res.Success {
				return fmt.Errorf("ask: %s", res.ErrorDetail)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&topK, "top-k", "k", 0, "Number of passages to retrieve (default from config)")
	cmd.Flags().Float32Var(&minScore, "min-score", 0, "Minimum similarity score (default from config)")

	return cmd
}
