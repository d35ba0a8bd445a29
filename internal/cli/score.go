package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"trf/config"
	"trf/internal/adapter/fs"
	"trf/internal/domain"
)

var (
	scoreVocab     string
	scoreModel     string
	scoreThreshold int
	scoreDelimiter string
	scoreTimeout   time.Duration
	scoreJSON      bool
)

var scoreCmd = &cobra.Command{
	Use:   "score [file]",
	Short: "Score the sentences of one text",
	Long: `Score every sentence of a text and print the unigram, external and
normalized scores. The text is read from the file argument, or from
stdin when the argument is absent or "-". PDF files are converted to text.

Examples:
  trf score essay.txt --vocab vocab.txt --model ja.rnnlm
  cat essay.txt | trf score --json
  trf score essay.txt --delimiter "。"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScore,
}

func init() {
	rootCmd.AddCommand(scoreCmd)
	addScoreFlags(scoreCmd)
	scoreCmd.Flags().BoolVar(&scoreJSON, "json", false, "output as JSON")
}

// addScoreFlags registers the flags shared by score and batch.
func addScoreFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&scoreVocab, "vocab", "", "vocabulary file (default from config)")
	cmd.Flags().StringVar(&scoreModel, "model", "", "external scorer model (default from config)")
	cmd.Flags().IntVar(&scoreThreshold, "threshold", 1, "counts at or below this fold into the unknown bucket")
	cmd.Flags().StringVar(&scoreDelimiter, "delimiter", "", `sentence delimiter, escapes allowed (default "\n")`)
	cmd.Flags().DurationVar(&scoreTimeout, "timeout", 0, "external scorer timeout (default from config)")
}

// applyScoreFlags overlays explicitly set flags on the loaded config.
func applyScoreFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("vocab") {
		cfg.Vocabulary.Path = scoreVocab
	}
	if flags.Changed("model") {
		cfg.Scorer.Model = scoreModel
	}
	if flags.Changed("threshold") {
		cfg.Vocabulary.Threshold = scoreThreshold
	}
	if flags.Changed("delimiter") {
		cfg.Text.Delimiter = unescape(scoreDelimiter)
	}
	if flags.Changed("timeout") {
		cfg.Scorer.Timeout = scoreTimeout
	}
}

func unescape(s string) string {
	if u, err := strconv.Unquote(`"` + s + `"`); err == nil {
		return u
	}
	return s
}

func runScore(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	applyScoreFlags(cmd, cfg)

	text, err := readInput(args)
	if err != nil {
		return err
	}

	uc, closeStore, err := newScoreUseCase(cfg, GetRootDir(), logger)
	if err != nil {
		return err
	}
	defer closeStore()

	report, err := uc.Score(cmd.Context(), text)
	if err != nil {
		return fmt.Errorf("scoring failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if scoreJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	printReport(out, report)
	return nil
}

func readInput(args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return strings.ReplaceAll(string(data), "\r\n", "\n"), nil
	}
	text, err := fs.NewReader().ReadText(args[0])
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	return text, nil
}

func printReport(w io.Writer, r *domain.Report) {
	fmt.Fprintf(w, "Report %s (scorer %s)\n", r.ID, r.Scorer)
	fmt.Fprintf(w, "Vocabulary: %d words, %d in unknown bucket\n\n", r.TotalWords, r.UnknownCount)

	fmt.Fprintf(w, "%4s %10s %10s %10s %10s %10s %10s  %s\n",
		"#", "external", "unigram", "mean", "div", "sub", "len", "sentence")
	for _, s := range r.Sentences {
		fmt.Fprintf(w, "%4d %10s %10.4f %10s %10s %10s %10s  %s\n",
			s.Ordinal,
			formatScore(s.ExternalScore),
			s.UnigramScore,
			formatScore(s.MeanUnigramScore),
			formatScore(s.NormalizedDiv),
			formatScore(s.NormalizedSub),
			formatScore(s.NormalizedLen),
			truncateText(s.Text, 60),
		)
	}
}

// formatScore renders an absent score as "-".
func formatScore(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', 4, 64)
}

func truncateText(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
