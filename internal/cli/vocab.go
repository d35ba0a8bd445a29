package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"trf/internal/domain"
)

var (
	vocabTop  int
	vocabJSON bool
)

var vocabCmd = &cobra.Command{
	Use:   "vocab",
	Short: "Summarize the vocabulary frequency model",
	Long: `Load the configured vocabulary and print its totals, the unknown
bucket and the most frequent words.

Examples:
  trf vocab --vocab vocab.txt --top 20
  trf vocab --threshold 3 --json`,
	Args: cobra.NoArgs,
	RunE: runVocab,
}

func init() {
	rootCmd.AddCommand(vocabCmd)
	vocabCmd.Flags().StringVar(&scoreVocab, "vocab", "", "vocabulary file (default from config)")
	vocabCmd.Flags().IntVar(&scoreThreshold, "threshold", 1, "counts at or below this fold into the unknown bucket")
	vocabCmd.Flags().IntVarP(&vocabTop, "top", "n", 10, "number of words to list")
	vocabCmd.Flags().BoolVar(&vocabJSON, "json", false, "output as JSON")
}

type vocabSummary struct {
	Path         string       `json:"path"`
	Threshold    int          `json:"threshold"`
	TotalWords   int          `json:"total_words"`
	Kept         int          `json:"kept"`
	UnknownCount int          `json:"unknown_count"`
	Fingerprint  string       `json:"fingerprint"`
	Top          []vocabEntry `json:"top"`
}

type vocabEntry struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

func runVocab(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	applyScoreFlags(cmd, cfg)

	v, err := loadVocabulary(cfg)
	if err != nil {
		return err
	}

	summary := vocabSummary{
		Path:         cfg.Vocabulary.Path,
		Threshold:    v.Threshold(),
		TotalWords:   v.TotalWords(),
		Kept:         v.Size(),
		UnknownCount: v.UnknownCount(),
		Fingerprint:  v.Fingerprint(),
	}
	for _, e := range v.Top(vocabTop) {
		summary.Top = append(summary.Top, vocabEntry{Word: e.Word, Count: e.Count})
	}

	out := cmd.OutOrStdout()
	if vocabJSON {
		output, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(output))
		return nil
	}

	fmt.Fprintf(out, "Vocabulary: %s\n", summary.Path)
	fmt.Fprintf(out, "  Threshold:   %d\n", summary.Threshold)
	fmt.Fprintf(out, "  Total words: %d\n", summary.TotalWords)
	fmt.Fprintf(out, "  Kept words:  %d\n", summary.Kept)
	if v.HasUnknown() {
		fmt.Fprintf(out, "  %s:      %d\n", domain.UnknownWord, summary.UnknownCount)
	} else {
		fmt.Fprintf(out, "  %s:      none\n", domain.UnknownWord)
	}
	if len(summary.Top) > 0 {
		fmt.Fprintf(out, "\nTop %d:\n", len(summary.Top))
		for _, e := range summary.Top {
			fmt.Fprintf(out, "  %-20s %d\n", e.Word, e.Count)
		}
	}
	return nil
}
