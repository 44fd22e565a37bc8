package cmd

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"tripkit/balance"
	"tripkit/trip"
)

var inputPath string
var outputPath string

func settleCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "settle",
		Short:   "settle trip expenses from a CSV file",
		Long:    `accept two CSV file paths, one for input and one for output. It reads expense rows (title, amount, currency, paid_by, split_with), computes per-member balances per currency, and writes the transfer plan to the output CSV.`,
		Example: `tripkit settle --input expenses.csv --output plan.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if inputPath == "" || outputPath == "" {
				return cmd.Help()
			}

			inputFile, err := os.Open(inputPath)
			if err != nil {
				return err
			}
			defer func(inputFile *os.File) {
				err := inputFile.Close()
				if err != nil {
					log.Fatalf("Failed to close input file: %v", err)
				}
			}(inputFile)

			csvContent, err := csv.NewReader(inputFile).ReadAll()
			if err != nil {
				return err
			}

			members, expenses, err := ParseCSVToExpenses(csvContent)
			if err != nil {
				return fmt.Errorf("failed to parse CSV: %w", err)
			}
			if len(expenses) == 0 {
				return fmt.Errorf("no valid expense rows found in the CSV")
			}

			outputFile, err := os.Create(outputPath)
			if err != nil {
				return err
			}
			defer func(outputFile *os.File) {
				err := outputFile.Close()
				if err != nil {
					log.Fatalf("Failed to close output file: %v", err)
				}
			}(outputFile)

			names := make(map[string]string, len(members))
			for _, m := range members {
				names[m.ID.String()] = m.Name
			}

			w := csv.NewWriter(outputFile)
			if err := w.Write([]string{"currency", "from", "to", "amount"}); err != nil {
				return err
			}
			for _, cur := range balance.UsedCurrencies(expenses) {
				summaries := balance.Compute(members, expenses, cur)
				for _, t := range balance.Transfers(summaries) {
					row := []string{
						string(cur),
						names[t.From],
						names[t.To],
						strconv.FormatFloat(t.Amount, 'f', 2, 64),
					}
					if err := w.Write(row); err != nil {
						return err
					}
				}
			}
			w.Flush()
			return w.Error()
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "csv input file path (required)")
	err := cmd.MarkFlagRequired("input")
	if err != nil {
		log.Fatal(err)
		return nil
	}
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "csv output file path (required)")
	err = cmd.MarkFlagRequired("output")
	if err != nil {
		log.Fatal(err)
		return nil
	}

	return cmd
}

// ParseCSVToExpenses parses CSV rows of the form
// title,amount,currency,paid_by,split_with into members and expenses.
// Members are created on first mention; split_with holds names separated
// by commas inside a quoted field.
func ParseCSVToExpenses(csvContent [][]string) ([]trip.Member, []trip.Expense, error) {
	if len(csvContent) == 0 {
		return nil, nil, fmt.Errorf("CSV is empty")
	}

	// skip the header row
	dataRows := csvContent[1:]

	byName := make(map[string]trip.Member)
	var members []trip.Member
	member := func(name string) (trip.Member, error) {
		name = strings.TrimSpace(name)
		if name == "" {
			return trip.Member{}, fmt.Errorf("empty member name")
		}
		if m, ok := byName[name]; ok {
			return m, nil
		}
		m := trip.Member{ID: uuid.New(), Name: name}
		byName[name] = m
		members = append(members, m)
		return m, nil
	}

	var expenses []trip.Expense
	for i, row := range dataRows {
		if len(row) != 5 {
			return nil, nil, fmt.Errorf("row %d: expected 5 columns, but got %d", i+2, len(row)) // +2 to account for the header row
		}

		amount, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("row %d: failed to convert amount '%s' to float: %w", i+2, row[1], err)
		}

		cur := trip.Currency(strings.TrimSpace(row[2]))
		if !cur.Valid() {
			return nil, nil, fmt.Errorf("row %d: unsupported currency '%s'", i+2, row[2])
		}

		payer, err := member(row[3])
		if err != nil {
			return nil, nil, fmt.Errorf("row %d: %w", i+2, err)
		}

		var split []uuid.UUID
		for _, name := range strings.Split(row[4], ",") {
			m, err := member(name)
			if err != nil {
				return nil, nil, fmt.Errorf("row %d: %w", i+2, err)
			}
			split = append(split, m.ID)
		}

		expenses = append(expenses, trip.Expense{
			ID:        uuid.New(),
			Title:     strings.TrimSpace(row[0]),
			Amount:    amount,
			Currency:  cur,
			PaidBy:    payer.ID,
			SplitWith: split,
		})
	}

	return members, expenses, nil
}
