package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/orderdesk/orderdesk/internal/tui"
)

var tuiRestaurantID int64

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive order board",
	Long:  "Launch a terminal UI to follow a restaurant's orders and move them through their stages.",
	RunE:  runTUI,
}

func init() {
	tuiCmd.Flags().Int64VarP(&tuiRestaurantID, "restaurant", "r", 0, "Restaurant ID")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	scope, err := scopeFor(tuiRestaurantID)
	if err != nil {
		return err
	}
	a, err := openApp(cmd.Context(), appOptions{events: true})
	if err != nil {
		return err
	}
	defer a.Close()

	model := tui.NewModel(tui.Services{
		Orders:    a.orders,
		Tracker:   a.tracker,
		Analytics: a.analytics,
	}, scope)

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
