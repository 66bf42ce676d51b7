package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

var (
	queryText string
	queryTopK int
	queryJSON bool
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Show the chunks that best match a question",
	Long: `Embed the question and list the top-k chunks by cosine similarity.

Examples:
  teamassist query -q "who is on call this week"
  teamassist query -q "kafka migration" --top-k 5 --json`,
	RunE: runQuery,
}

var contextCmd = &cobra.Command{
	Use:   "context",
	Short: "Print the context string a question would be answered with",
	RunE:  runContext,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringVarP(&queryText, "query", "q", "", "search query (required)")
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "number of results (default from config)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output as JSON")
	queryCmd.MarkFlagRequired("query")

	rootCmd.AddCommand(contextCmd)
	contextCmd.Flags().StringVarP(&queryText, "query", "q", "", "question (required)")
	contextCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "number of chunks (default from config)")
	contextCmd.MarkFlagRequired("query")
}

type queryResult struct {
	Path    string  `json:"path"`
	Page    int     `json:"page,omitempty"`
	Index   int     `json:"index"`
	Start   int     `json:"start"`
	Score   float64 `json:"score"`
	Content string  `json:"content"`
}

func topK() int {
	if queryTopK > 0 {
		return queryTopK
	}
	return GetConfig().Retrieve.TopK
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	chunks, err := a.retrieve.Retrieve(ctx, queryText, topK())
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	results := make([]queryResult, 0, len(chunks))
	for _, c := range chunks {
		path := c.Chunk.SourcePath
		if rel, err := filepath.Rel(a.corpus.Dir(), path); err == nil {
			path = rel
		}
		results = append(results, queryResult{
			Path:    path,
			Page:    c.Chunk.Page,
			Index:   c.Chunk.Index,
			Start:   c.Chunk.Start,
			Score:   c.Score,
			Content: c.Chunk.Content,
		})
	}

	if queryJSON {
		output, _ := json.MarshalIndent(results, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}
	fmt.Printf("Found %d results for: %s\n\n", len(results), queryText)
	for i, r := range results {
		loc := r.Path
		if r.Page > 0 {
			loc = fmt.Sprintf("%s p.%d", loc, r.Page)
		}
		fmt.Printf("--- [%d] %s #%d (score: %.3f) ---\n", i+1, loc, r.Index, r.Score)
		text := []rune(r.Content)
		if len(text) > 500 {
			text = append(text[:500], []rune("...")...)
		}
		fmt.Println(string(text))
		fmt.Println()
	}
	return nil
}

func runContext(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	text, err := a.retrieve.RetrieveContext(ctx, queryText, topK())
	if err != nil {
		return err
	}
	fmt.Println(text)
	return nil
}
