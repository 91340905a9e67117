package cli

import (
	gocontext "context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/specfirst/internal/ctxutil"
	"github.com/example/specfirst/internal/ports/primary"
	"github.com/example/specfirst/internal/wire"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage work sessions",
	Long:  "Start, inspect, and end work sessions; claim features for exclusive work",
}

var sessionStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a session, or resume the running one",
	Long: `Start a new work session. If a session is already running it is
resumed instead; there is at most one running session.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := gocontext.Background()

		resp, err := wire.SessionService().ResumeOrStart(ctx)
		if err != nil {
			return fmt.Errorf("failed to start session: %w", err)
		}

		if resp.Resumed {
			fmt.Printf("✓ Resumed session %s (started %s)\n", resp.Session.ID, resp.Session.StartedAt)
		} else {
			fmt.Printf("✓ Started session %s\n", resp.Session.ID)
		}
		if resp.Session.CurrentFeatureName != "" {
			fmt.Printf("  Working on: %s (%s)\n", resp.Session.CurrentFeatureName, resp.Session.CurrentFeatureID)
		}
		return nil
	},
}

var sessionCurrentCmd = &cobra.Command{
	Use:   "current",
	Short: "Show the running session",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := gocontext.Background()

		session, err := wire.SessionService().Current(ctx)
		if err != nil {
			return fmt.Errorf("failed to look up session: %w", err)
		}
		if session == nil {
			fmt.Println("No running session.")
			fmt.Println()
			fmt.Println("Start one:")
			fmt.Println("  specfirst session start")
			return nil
		}

		fmt.Printf("\nSession: %s\n", session.ID)
		fmt.Printf("Status:  %s\n", session.Status)
		fmt.Printf("Started: %s\n", session.StartedAt)
		if session.CurrentFeatureName != "" {
			fmt.Printf("Working on: %s (%s)\n", session.CurrentFeatureName, session.CurrentFeatureID)
		}
		fmt.Printf("Features completed: %d\n", session.FeaturesCompleted)
		fmt.Println()

		return nil
	},
}

var sessionClaimCmd = &cobra.Command{
	Use:   "claim [feature]",
	Short: "Claim a feature for the running session",
	Long: `Exclusively claim a feature. A feature claimed by another session is
not touched; the conflict is reported instead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := gocontext.Background()

		session, err := currentSession(ctx)
		if err != nil {
			return err
		}
		featureID, err := resolveFeatureID(ctx, args[0])
		if err != nil {
			return err
		}

		ctx = ctxutil.WithActorID(ctx, session.ID)
		claimed, err := wire.SessionService().ClaimFeature(ctx, session.ID, featureID)
		if err != nil {
			return fmt.Errorf("failed to claim feature: %w", err)
		}
		if !claimed {
			owner, ownerErr := wire.FeatureService().GetFeature(ctx, featureID)
			if ownerErr == nil && owner.SessionID != "" {
				fmt.Printf("✗ Feature %s is already claimed by session %s\n", featureID, owner.SessionID)
			} else {
				fmt.Printf("✗ Feature %s is already claimed\n", featureID)
			}
			return fmt.Errorf("claim conflict for %s", featureID)
		}

		fmt.Printf("✓ Claimed %s for session %s\n", featureID, session.ID)
		return nil
	},
}

var sessionReleaseCmd = &cobra.Command{
	Use:   "release [feature]",
	Short: "Release the session's claim on a feature",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := gocontext.Background()

		session, err := currentSession(ctx)
		if err != nil {
			return err
		}
		featureID, err := resolveFeatureID(ctx, args[0])
		if err != nil {
			return err
		}

		ctx = ctxutil.WithActorID(ctx, session.ID)
		released, err := wire.SessionService().ReleaseFeature(ctx, session.ID, featureID)
		if err != nil {
			return fmt.Errorf("failed to release feature: %w", err)
		}
		if !released {
			fmt.Printf("Feature %s was not claimed by this session. Nothing released.\n", featureID)
			return nil
		}

		fmt.Printf("✓ Released %s\n", featureID)
		return nil
	},
}

var sessionCompleteCmd = &cobra.Command{
	Use:   "complete [feature]",
	Short: "Complete the session's claimed feature",
	Long: `Mark the claimed feature completed, release the claim, and bump the
session's completion counter. Fails when the feature is claimed by a
different session.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := gocontext.Background()

		session, err := currentSession(ctx)
		if err != nil {
			return err
		}
		featureID, err := resolveFeatureID(ctx, args[0])
		if err != nil {
			return err
		}

		ctx = ctxutil.WithActorID(ctx, session.ID)
		if err := wire.SessionService().CompleteFeature(ctx, session.ID, featureID); err != nil {
			return fmt.Errorf("failed to complete feature: %w", err)
		}

		fmt.Printf("✓ Completed %s\n", featureID)
		return nil
	},
}

var sessionEndCmd = &cobra.Command{
	Use:   "end [status]",
	Short: "End the running session",
	Long: `End the running session with a terminal status: completed (default),
abandoned, or crashed. Any held feature claim is released first.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := gocontext.Background()

		session, err := currentSession(ctx)
		if err != nil {
			return err
		}

		status := "completed"
		if len(args) > 0 {
			status = args[0]
		}

		ctx = ctxutil.WithActorID(ctx, session.ID)
		if err := wire.SessionService().EndSession(ctx, session.ID, status); err != nil {
			return fmt.Errorf("failed to end session: %w", err)
		}

		fmt.Printf("✓ Session %s ended (%s)\n", session.ID, status)
		return nil
	},
}

// currentSession returns the running session, or an actionable error
// when none is running.
func currentSession(ctx gocontext.Context) (*primary.Session, error) {
	session, err := wire.SessionService().Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to look up session: %w", err)
	}
	if session == nil {
		return nil, fmt.Errorf("no running session - start one with: specfirst session start")
	}
	return session, nil
}

// resolveFeatureID accepts a FEAT-XXX ID or a feature name and returns
// the ID, validating existence either way.
func resolveFeatureID(ctx gocontext.Context, idOrName string) (string, error) {
	feature, err := wire.FeatureService().GetFeature(ctx, idOrName)
	if err != nil {
		return "", err
	}
	return feature.ID, nil
}

// SessionCmd returns the session command
func SessionCmd() *cobra.Command {
	sessionCmd.AddCommand(sessionStartCmd)
	sessionCmd.AddCommand(sessionCurrentCmd)
	sessionCmd.AddCommand(sessionClaimCmd)
	sessionCmd.AddCommand(sessionReleaseCmd)
	sessionCmd.AddCommand(sessionCompleteCmd)
	sessionCmd.AddCommand(sessionEndCmd)

	return sessionCmd
}
