package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/orderdesk/orderdesk/internal/analytics"
	"github.com/orderdesk/orderdesk/internal/chart"
	"github.com/orderdesk/orderdesk/internal/service"
)

func init() {
	var restaurantID int64
	var width int
	var statCmd = &cobra.Command{
		Use:   "stat",
		Short: "Top-5 rankings for a restaurant",
		Long:  `Print the most ordered and most viewed products as terminal bar charts.`,
	}
	statCmd.PersistentFlags().Int64VarP(&restaurantID, "restaurant", "r", 0, "Restaurant ID")
	statCmd.PersistentFlags().IntVarP(&width, "width", "w", 30, "Bar width in cells")

	// withAnalytics opens the app and hands the analytics service to fn.
	withAnalytics := func(cmd *cobra.Command, fn func(ctx context.Context, svc service.AnalyticsService, scope service.Scope) error) error {
		scope, err := scopeFor(restaurantID)
		if err != nil {
			return err
		}
		a, err := openApp(cmd.Context(), appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(cmd.Context(), a.analytics, scope)
	}

	statCmd.AddCommand(&cobra.Command{
		Use:   "top-ordered",
		Short: "Most ordered products (active orders only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAnalytics(cmd, func(ctx context.Context, svc service.AnalyticsService, scope service.Scope) error {
				ranked, err := svc.TopOrdered(ctx, scope)
				if err != nil {
					return err
				}
				printRanking(cmd.OutOrStdout(), chart.OrderedStyle.Label, ranked, width)
				return nil
			})
		},
	})

	statCmd.AddCommand(&cobra.Command{
		Use:   "top-viewed",
		Short: "Most viewed products",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAnalytics(cmd, func(ctx context.Context, svc service.AnalyticsService, scope service.Scope) error {
				ranked, err := svc.TopViewed(ctx, scope)
				if err != nil {
					return err
				}
				printRanking(cmd.OutOrStdout(), chart.ViewsStyle.Label, ranked, width)
				return nil
			})
		},
	})

	statCmd.AddCommand(&cobra.Command{
		Use:   "compare",
		Short: "Both rankings side by side",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAnalytics(cmd, func(ctx context.Context, svc service.AnalyticsService, scope service.Scope) error {
				ordered, err := svc.TopOrdered(ctx, scope)
				if err != nil {
					return err
				}
				viewed, err := svc.TopViewed(ctx, scope)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if !chart.Compare(ordered, viewed).Ready {
					fmt.Fprintln(out, "Sem dados suficientes para comparar.")
					return nil
				}
				printRanking(out, "Mais Pedidos", ordered, width)
				fmt.Fprintln(out)
				printRanking(out, "Mais Visualizados", viewed, width)
				return nil
			})
		},
	})

	rootCmd.AddCommand(statCmd)
}

func printRanking(out io.Writer, title string, ranked []analytics.Ranked, width int) {
	fmt.Fprintln(out, title)
	if len(ranked) == 0 {
		fmt.Fprintln(out, "  (sem dados)")
		return
	}
	fmt.Fprint(out, chart.Bars(ranked, width))
}

// stageRanking reuses the bar renderer for per-stage counts.
func stageRanking(in *service.Insights) []analytics.Ranked {
	out := make([]analytics.Ranked, 0, len(in.Stages))
	for _, s := range in.Stages {
		out = append(out, analytics.Ranked{Label: s.Stage, Metric: s.Count})
	}
	return out
}
