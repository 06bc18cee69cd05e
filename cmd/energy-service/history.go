package main

import (
	"fmt"

	"energy-service/internal/models"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var historyOwner string

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored billing records",
	Long:  `Displays stored billing records in recording order, optionally for a single owner.`,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&historyOwner, "owner", "", "Filter by owner id")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := openDB(cfg)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	var bills []models.BillingRecord
	if cmd.Flags().Changed("owner") {
		bills, err = db.HistoryFor(cmd.Context(), historyOwner)
	} else {
		bills, err = db.AllBills(cmd.Context())
	}
	if err != nil {
		return fmt.Errorf("listing bills: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(bills) == 0 {
		fmt.Fprintln(out, "No billing records found")
		return nil
	}

	fmt.Fprintln(out, "--------------------------------------------------------------------------")
	fmt.Fprintf(out, "%-6s  %-12s  %-14s  %10s  %12s  %s\n", "ID", "Owner", "Period", "kWh", "Amount", "Recorded")
	fmt.Fprintln(out, "--------------------------------------------------------------------------")

	var units, amount float64
	for _, b := range bills {
		fmt.Fprintf(out, "%-6d  %-12s  %-14s  %10s  %12s  %s\n",
			b.ID, b.OwnerID, b.PeriodLabel, money(b.TotalUnits), money(b.BillAmount), humanize.Time(b.RecordedAt))
		units += b.TotalUnits
		amount += b.BillAmount
	}

	fmt.Fprintln(out, "--------------------------------------------------------------------------")
	fmt.Fprintf(out, "Total: %s kWh, %s billed (%s records)\n", money(units), money(amount), humanize.Comma(int64(len(bills))))
	return nil
}
