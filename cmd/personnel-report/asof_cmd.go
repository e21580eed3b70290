package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/iota-uz/personnel/modules/personnel/infrastructure/persistence"
	"github.com/iota-uz/personnel/modules/personnel/services"
	"github.com/iota-uz/personnel/pkg/composables"
	"github.com/iota-uz/personnel/pkg/configuration"
)

type asOfOutput struct {
	PersonID   string `json:"person_id"`
	At         string `json:"at"`
	StatusCode string `json:"status_code,omitempty"`
	StatusName string `json:"status_name,omitempty"`
	NotPresent bool   `json:"not_present,omitempty"`
}

func newAsOfCmd() *cobra.Command {
	var (
		personID string
		at       string
	)

	cmd := &cobra.Command{
		Use:   "asof",
		Short: "Resolve one person's status at an exact instant",
		RunE: func(cmd *cobra.Command, args []string) error {
			pid, err := uuid.Parse(personID)
			if err != nil {
				return fmt.Errorf("invalid --person: %w", err)
			}
			instant, err := time.Parse(time.RFC3339, at)
			if err != nil {
				return fmt.Errorf("invalid --at: %w", err)
			}

			pool, err := connectDB(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			conf := configuration.Use()
			ctx := composables.WithPool(cmd.Context(), pool)
			svc := services.NewResolverService(
				persistence.NewPersonRepository(),
				statusKindRepo(),
				conf.Lifecycle.HomeStatusCode,
			)

			resolved, err := svc.GetStatusAsOf(ctx, pid, instant)
			if err != nil {
				return err
			}

			out := asOfOutput{PersonID: pid.String(), At: instant.UTC().Format(time.RFC3339)}
			if resolved != nil {
				out.NotPresent = resolved.NotPresent
				if resolved.Kind != nil {
					out.StatusCode = resolved.Kind.Code
					out.StatusName = resolved.Kind.Name
				}
			}
			return writeJSON(out)
		},
	}

	cmd.Flags().StringVar(&personID, "person", "", "Person UUID (required)")
	cmd.Flags().StringVar(&at, "at", time.Now().UTC().Format(time.RFC3339), "Instant (RFC3339)")
	_ = cmd.MarkFlagRequired("person")
	return cmd
}
