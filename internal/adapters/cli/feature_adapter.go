package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/example/specfirst/internal/ports/primary"
)

// FeatureAdapter is a thin adapter that translates CLI operations to
// FeatureService calls. It depends only on the FeatureService interface,
// enabling easy testing with mocks.
type FeatureAdapter struct {
	service primary.FeatureService
	out     io.Writer
}

// NewFeatureAdapter creates a new FeatureAdapter with the given service.
func NewFeatureAdapter(service primary.FeatureService, out io.Writer) *FeatureAdapter {
	return &FeatureAdapter{
		service: service,
		out:     out,
	}
}

// Create registers a new feature and scaffolds its directory.
func (a *FeatureAdapter) Create(ctx context.Context, name string, priority int, effortLevel string) error {
	resp, err := a.service.CreateFeature(ctx, primary.CreateFeatureRequest{
		Name:        name,
		Priority:    priority,
		EffortLevel: effortLevel,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Created feature %s: %s\n", resp.FeatureID, resp.Feature.Name)
	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, "Next steps:")
	fmt.Fprintf(a.out, "  specfirst run propose %s\n", resp.Feature.Name)
	return nil
}

// List lists features with optional status filter.
func (a *FeatureAdapter) List(ctx context.Context, status string, limit int) error {
	features, err := a.service.ListFeatures(ctx, primary.FeatureFilters{
		Status: status,
		Limit:  limit,
	})
	if err != nil {
		return fmt.Errorf("failed to list features: %w", err)
	}

	if len(features) == 0 {
		fmt.Fprintln(a.out, "No features found.")
		fmt.Fprintln(a.out)
		fmt.Fprintln(a.out, "Create your first feature:")
		fmt.Fprintln(a.out, "  specfirst feature new user-auth")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPRIORITY\tSTATUS\tPHASE\tSESSION")
	fmt.Fprintln(w, "--\t----\t--------\t------\t-----\t-------")
	for _, f := range features {
		session := f.SessionID
		if session == "" {
			session = "-"
		}
		phase := f.Phase
		if phase == "" {
			phase = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\n", f.ID, f.Name, f.Priority, f.Status, phase, session)
	}
	w.Flush()

	return nil
}

// Show displays details for a single feature.
func (a *FeatureAdapter) Show(ctx context.Context, idOrName string) error {
	feature, err := a.service.GetFeature(ctx, idOrName)
	if err != nil {
		return fmt.Errorf("failed to get feature: %w", err)
	}

	fmt.Fprintf(a.out, "\nFeature: %s\n", feature.ID)
	fmt.Fprintf(a.out, "Name:     %s\n", feature.Name)
	fmt.Fprintf(a.out, "Status:   %s\n", feature.Status)
	fmt.Fprintf(a.out, "Priority: %d\n", feature.Priority)
	if feature.Phase != "" {
		fmt.Fprintf(a.out, "Phase:    %s\n", feature.Phase)
	}
	if feature.EffortLevel != "" {
		fmt.Fprintf(a.out, "Effort:   %s\n", feature.EffortLevel)
	}
	if feature.SessionID != "" {
		fmt.Fprintf(a.out, "Claimed by: %s\n", feature.SessionID)
	}
	fmt.Fprintf(a.out, "Created:  %s\n", feature.CreatedAt)
	if feature.StartedAt != "" {
		fmt.Fprintf(a.out, "Started:  %s\n", feature.StartedAt)
	}
	if feature.CompletedAt != "" {
		fmt.Fprintf(a.out, "Completed: %s\n", feature.CompletedAt)
	}
	fmt.Fprintln(a.out)

	return nil
}

// UpdateStatus transitions a feature's status.
func (a *FeatureAdapter) UpdateStatus(ctx context.Context, idOrName, status string) error {
	if err := a.service.UpdateStatus(ctx, idOrName, status); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Feature %s status set to %s\n", idOrName, status)
	return nil
}

// RecordPhase records a completed phase on the feature's store row.
func (a *FeatureAdapter) RecordPhase(ctx context.Context, idOrName, phaseName string) error {
	if err := a.service.RecordPhase(ctx, idOrName, phaseName); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Feature %s phase recorded: %s\n", idOrName, phaseName)
	return nil
}
