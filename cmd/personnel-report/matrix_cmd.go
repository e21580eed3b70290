package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/iota-uz/personnel/modules/personnel/infrastructure/persistence"
	"github.com/iota-uz/personnel/modules/personnel/services"
	"github.com/iota-uz/personnel/pkg/composables"
	"github.com/iota-uz/personnel/pkg/configuration"
)

type matrixOutput struct {
	Year       int                  `json:"year"`
	Month      int                  `json:"month"`
	Timezone   string               `json:"timezone"`
	DurationMS int64                `json:"duration_ms"`
	Persons    map[string][]*string `json:"persons"`
}

func newMatrixCmd() *cobra.Command {
	var (
		persons string
		year    int
		month   int
		tzName  string
	)

	cmd := &cobra.Command{
		Use:   "matrix",
		Short: "Resolve the per-day status matrix for a calendar month",
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parsePersonIDs(persons)
			if err != nil {
				return err
			}
			if month < 1 || month > 12 {
				return fmt.Errorf("invalid --month: %d", month)
			}

			conf := configuration.Use()
			if tzName == "" {
				tzName = conf.Lifecycle.ReportTimezone
			}
			loc, err := time.LoadLocation(tzName)
			if err != nil {
				return fmt.Errorf("invalid --tz: %w", err)
			}

			pool, err := connectDB(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			ctx := composables.WithPool(cmd.Context(), pool)
			svc := services.NewResolverService(
				persistence.NewPersonRepository(),
				statusKindRepo(),
				conf.Lifecycle.HomeStatusCode,
			)

			start := time.Now()
			matrix, err := svc.ResolveMonth(ctx, ids, year, time.Month(month), loc)
			if err != nil {
				return err
			}

			out := matrixOutput{
				Year:       year,
				Month:      month,
				Timezone:   tzName,
				DurationMS: time.Since(start).Milliseconds(),
				Persons:    make(map[string][]*string, len(matrix)),
			}
			for id, days := range matrix {
				cells := make([]*string, len(days))
				for i, day := range days {
					cells[i] = cellValue(day)
				}
				out.Persons[id.String()] = cells
			}
			return writeJSON(out)
		},
	}

	now := time.Now().UTC()
	cmd.Flags().StringVar(&persons, "persons", "", "Comma-separated person UUIDs (required)")
	cmd.Flags().IntVar(&year, "year", now.Year(), "Calendar year")
	cmd.Flags().IntVar(&month, "month", int(now.Month()), "Calendar month (1-12)")
	cmd.Flags().StringVar(&tzName, "tz", "", "IANA timezone (defaults to REPORT_TIMEZONE)")
	_ = cmd.MarkFlagRequired("persons")
	return cmd
}

func parsePersonIDs(raw string) ([]uuid.UUID, error) {
	parts := strings.Split(raw, ",")
	out := make([]uuid.UUID, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := uuid.Parse(part)
		if err != nil {
			return nil, fmt.Errorf("invalid person id %q: %w", part, err)
		}
		out = append(out, id)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("--persons is empty")
	}
	return out, nil
}

// cellValue renders one resolved day: a status code, "-" for the
// synthetic not-present marker, or nil when no status existed yet.
func cellValue(day *services.ResolvedStatus) *string {
	if day == nil {
		return nil
	}
	if day.NotPresent {
		absent := "-"
		return &absent
	}
	if day.Kind == nil {
		unknown := "?"
		return &unknown
	}
	code := day.Kind.Code
	return &code
}
