package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"trf/internal/adapter/normalizer"
)

var (
	normExternal string
	normUnigram  float64
	normLength   int
	normMethod   string
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize",
	Short: "Fuse one external score with one unigram score",
	Long: `Apply a normalization method to a single pair of scores. An external
score of "OOV" (or the configured OOV token) stands for an unscorable
sentence and yields "-".

Methods:
  div  -1 * external / unigram
  sub  external - unigram
  len  (external - unigram) / length

Examples:
  trf normalize --ext -10 --uni -8 --length 4 --method len`,
	Args: cobra.NoArgs,
	RunE: runNormalize,
}

func init() {
	rootCmd.AddCommand(normalizeCmd)
	normalizeCmd.Flags().StringVar(&normExternal, "ext", "", "external score, or the OOV token (required)")
	normalizeCmd.Flags().Float64Var(&normUnigram, "uni", 0, "unigram score")
	normalizeCmd.Flags().IntVar(&normLength, "length", 0, "sentence length in characters")
	normalizeCmd.Flags().StringVarP(&normMethod, "method", "m", "sub", "div, sub or len")
	_ = normalizeCmd.MarkFlagRequired("ext")
}

func runNormalize(cmd *cobra.Command, args []string) error {
	method, err := normalizer.ParseMethod(normMethod)
	if err != nil {
		return err
	}

	var external *float64
	if !strings.EqualFold(strings.TrimSpace(normExternal), GetConfig().Scorer.OOVToken) {
		v, err := strconv.ParseFloat(strings.TrimSpace(normExternal), 64)
		if err != nil {
			return fmt.Errorf("invalid --ext %q: %w", normExternal, err)
		}
		external = &v
	}

	result, err := normalizer.Normalize(external, normUnigram, normLength, method)
	if err != nil {
		return err
	}
	if result == nil {
		fmt.Fprintln(cmd.OutOrStdout(), "-")
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), strconv.FormatFloat(*result, 'g', -1, 64))
	return nil
}
