package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"energy-service/internal/analytics"
	"energy-service/internal/models"
	"energy-service/internal/service"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var submitFile string

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Analyse a billing submission against the local database",
	Long: `Reads a submission payload (the same JSON accepted by POST /api/submit_data),
stores it in the local database and prints the resulting forecasts.
Use --file - to read from stdin.`,
	RunE: runSubmit,
}

func init() {
	submitCmd.Flags().StringVar(&submitFile, "file", "", "submission JSON file, or - for stdin")
	submitCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(submitCmd)
}

func runSubmit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	sub, err := readSubmission(cmd.InOrStdin(), submitFile)
	if err != nil {
		return err
	}

	db, err := openDB(cfg)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	svc := service.New(service.Options{
		Repo:   db,
		Engine: analytics.NewEngine(cfg.Policy, nil),
		Logger: logger,
	})

	result, err := svc.Submit(cmd.Context(), sub)
	if err != nil {
		return err
	}

	printResult(cmd.OutOrStdout(), result)
	return nil
}

func readSubmission(stdin io.Reader, path string) (models.Submission, error) {
	var sub models.Submission

	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return sub, fmt.Errorf("opening submission file: %w", err)
		}
		defer f.Close()
		r = f
	}

	if err := json.NewDecoder(r).Decode(&sub); err != nil {
		return sub, fmt.Errorf("parsing submission: %w", err)
	}
	return sub, nil
}

func money(v float64) string {
	return humanize.FormatFloat("#,###.##", v)
}

func printResult(w io.Writer, result models.AnalyticsResult) {
	b, p := result.Bill, result.Predictions

	fmt.Fprintf(w, "Bill #%d  %s  (owner %q)\n", b.ID, b.PeriodLabel, b.OwnerID)
	fmt.Fprintln(w, "----------------------------------------")
	fmt.Fprintf(w, "%-28s %14s\n", "Units (kWh)", money(b.TotalUnits))
	fmt.Fprintf(w, "%-28s %14s\n", "Amount", money(b.BillAmount))
	fmt.Fprintf(w, "%-28s %14s\n", "Predicted next bill", money(p.PredictedNextBill))
	fmt.Fprintf(w, "%-28s %14s\n", "Predicted next units", money(p.PredictedNextTotalUnits))
	fmt.Fprintf(w, "%-28s %14s\n", "Seasonal consumption", money(p.PredictedSeasonalConsumption))
	fmt.Fprintf(w, "%-28s %14s\n", "Annual projection", money(p.AnnualFinancialProjection))
	fmt.Fprintf(w, "%-28s %14s\n", "Solar savings", money(p.SolarEnergySavings))
	fmt.Fprintf(w, "%-28s %14s\n", "Carbon footprint (kg)", money(p.CarbonFootprint))
	fmt.Fprintf(w, "%-28s %14s\n", "Usage benchmark", p.UsageBenchmark)
	fmt.Fprintf(w, "%-28s %14s\n", "Peak demand", p.PeakDemandPrediction)
	fmt.Fprintf(w, "%-28s %14t\n", "Anomaly", p.AnomalyFlag)
	fmt.Fprintln(w, "----------------------------------------")
	fmt.Fprintln(w, b.Recommendation)
	fmt.Fprintln(w, p.DynamicTariffSuggestion)

	if len(p.ApplianceLevelPredictions) == 0 {
		return
	}

	names := make([]string, 0, len(p.ApplianceLevelPredictions))
	for name := range p.ApplianceLevelPredictions {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%-16s %12s  %s\n", "Appliance", "Next (kWh)", "Status")
	for _, name := range names {
		fmt.Fprintf(w, "%-16s %12s  %s\n", name, money(p.ApplianceLevelPredictions[name]), p.ApplianceEfficiencyAlerts[name])
	}
}
