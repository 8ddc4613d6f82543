package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nmeo-op/palm-engine/internal/aggregation"
	"github.com/nmeo-op/palm-engine/pkg/types"
)

var (
	statsRegion   string
	statsYearType string
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print a region's price summary and seasonal profile",
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().StringVar(&statsRegion, "region", "telangana", "region ID")
	statsCmd.Flags().StringVar(&statsYearType, "year-type", string(types.FinancialYear), "financialYear or oilYear")
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, store, _, _, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	yt := types.YearType(statsYearType)
	if !yt.Valid() {
		return fmt.Errorf("unknown year type %q", statsYearType)
	}

	agg := aggregation.NewAggregator(store, cfg.Policy)

	years := store.Years(statsRegion, yt)
	if len(years) == 0 {
		fmt.Printf("No data for region %q (%s)\n", statsRegion, yt)
		return nil
	}

	fmt.Printf("Region %s (%s)\n\n", statsRegion, yt)
	for _, year := range years {
		cards := aggregation.Cards(store.YearSlice(statsRegion, yt, year), aggregation.MonthAll)
		fmt.Printf("  %-10s FFB: %s  CPO: %s  (%d months reported)\n",
			year, formatStat(cards.FFB), formatStat(cards.CPO), cards.MonthsWithData)
	}

	profile := agg.Seasonal(statsRegion, yt)
	if profile.PeakMonth != "" {
		fmt.Printf("\nSeasonal profile (FFB):\n")
		fmt.Printf("  peak %s, lean %s, volatility %.1f, variation %.1f%%\n",
			profile.PeakMonth, profile.LeanMonth, profile.Volatility, profile.VariationPercent)
	}

	return nil
}

func formatStat(s types.Stat) string {
	if !s.OK {
		return "—"
	}
	return fmt.Sprintf("₹%.0f/MT", s.Value)
}
