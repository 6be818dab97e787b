package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/aluiziolira/go-scrape-amazon/models"
)

type requestFlags struct {
	keyword     string
	asin        string
	number      int
	sponsored   bool
	sort        bool
	save        bool
	interactive bool
}

var productsFlags, reviewsFlags requestFlags

func init() {
	flags := productsCmd.Flags()
	flags.StringVarP(&productsFlags.keyword, "keyword", "k", "", "Search keyword")
	flags.BoolVar(&productsFlags.sponsored, "sponsored", false, "Keep sponsored results")
	addCommonRequestFlags(flags, &productsFlags, models.KindProducts)

	flags = reviewsCmd.Flags()
	flags.StringVarP(&reviewsFlags.asin, "asin", "a", "", "Product ASIN")
	addCommonRequestFlags(flags, &reviewsFlags, models.KindReviews)

	rootCmd.AddCommand(productsCmd, reviewsCmd, runCmd)
}

func addCommonRequestFlags(flags *pflag.FlagSet, rf *requestFlags, kind models.Kind) {
	flags.IntVarP(&rf.number, "number", "n", models.DefaultNumber, fmt.Sprintf("Records to collect (max %d)", kind.Ceiling()))
	flags.BoolVar(&rf.sort, "sort", false, "Sort by score (products) or rating (reviews), highest first")
	flags.BoolVar(&rf.save, "save", false, "Save results to a timestamped file")
	flags.BoolVar(&rf.interactive, "cli", false, "Show progress and print the results")
}

var productsCmd = &cobra.Command{
	Use:   "products --keyword <text> [--number N]",
	Short: "Scrapes product search results for a keyword.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runKind(cmd, models.KindProducts, &productsFlags)
	},
}

var reviewsCmd = &cobra.Command{
	Use:   "reviews --asin <ASIN> [--number N]",
	Short: "Scrapes customer reviews for a product.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runKind(cmd, models.KindReviews, &reviewsFlags)
	},
}

var runCmd = &cobra.Command{
	Use:   "run --config <file.yaml>",
	Short: "Runs the request described in a config file.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, fileReq, err := resolveConfig(cmd)
		if err != nil {
			return err
		}
		if fileReq == nil {
			return fmt.Errorf("run needs a config file with a request section")
		}
		return execute(cmd.Context(), cfg, *fileReq)
	},
}

// runKind starts from the config file's request when it has the same kind
// and overlays the flags given on the command line.
func runKind(cmd *cobra.Command, kind models.Kind, rf *requestFlags) error {
	cfg, fileReq, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	req := models.ScrapeRequest{Kind: kind, Number: rf.number}
	if fileReq != nil && fileReq.Kind == kind {
		req = *fileReq
	}

	flags := cmd.Flags()
	if flags.Changed("keyword") {
		req.Keyword = rf.keyword
	}
	if flags.Changed("asin") {
		req.ASIN = rf.asin
	}
	if flags.Changed("number") {
		req.Number = rf.number
	}
	if flags.Changed("sponsored") {
		req.IncludeSponsored = rf.sponsored
	}
	if flags.Changed("sort") {
		req.Sort = rf.sort
	}
	if flags.Changed("save") {
		req.Persist = rf.save
	}
	if flags.Changed("cli") {
		req.Interactive = rf.interactive
	}

	return execute(cmd.Context(), cfg, req)
}
