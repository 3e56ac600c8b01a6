package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/orderdesk/orderdesk/internal/chart"
	"github.com/orderdesk/orderdesk/internal/order"
	"github.com/orderdesk/orderdesk/internal/service"
)

func init() {
	var restaurantID int64
	var orderCmd = &cobra.Command{
		Use:   "order",
		Short: "Inspect and move orders through their stages",
	}
	orderCmd.PersistentFlags().Int64VarP(&restaurantID, "restaurant", "r", 0, "Restaurant ID")

	// order list
	var listStatus string
	var listLimit int
	var listCmd = &cobra.Command{
		Use:   "list",
		Short: "List recent orders",
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, err := scopeFor(restaurantID)
			if err != nil {
				return err
			}
			a, err := openApp(cmd.Context(), appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			items, err := a.orders.List(cmd.Context(), scope, service.OrderListInput{Status: listStatus, Limit: listLimit})
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "ID\tProduct\tCustomer\tQty\tStatus\tProgress\tCreated")
			for _, it := range items {
				fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%d%%\t%s\n",
					it.ID, it.ProductName, it.CustomerName, it.Quantity, it.Status, it.Percent,
					it.CreatedAt.Local().Format("2006-01-02 15:04"))
			}
			return w.Flush()
		},
	}
	listCmd.Flags().StringVar(&listStatus, "status", "", "Only orders in this stage")
	listCmd.Flags().IntVarP(&listLimit, "limit", "l", 20, "Maximum rows")
	orderCmd.AddCommand(listCmd)

	// order show <id>
	orderCmd.AddCommand(&cobra.Command{
		Use:   "show <order_id>",
		Short: "Show an order with its progress and history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, orderID, err := orderArgs(restaurantID, args[0])
			if err != nil {
				return err
			}
			a, err := openApp(cmd.Context(), appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			detail, err := a.orders.Detail(cmd.Context(), scope, orderID)
			if err != nil {
				return err
			}
			history, err := a.orders.History(cmd.Context(), scope, orderID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Order #%d  %s x%d  (%s)\n", detail.Order.ID, detail.Product.Name, detail.Order.Quantity, detail.Product.Total)
			fmt.Fprintf(out, "Customer: %s <%s> %s\n", detail.Customer.Name, detail.Customer.Email, detail.Customer.Phone)
			fmt.Fprintf(out, "Payment:  %s\n", detail.Order.PaymentMethod)
			fmt.Fprintf(out, "Status:   %s (%d%%)\n\n", detail.Order.Status, detail.Progress.Percent)

			if len(history) > 0 {
				w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
				fmt.Fprintln(w, "When\tAction\tFrom\tTo\tBy")
				for _, h := range history {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", h.CreatedAt.Local().Format("2006-01-02 15:04:05"), h.Action, h.From, h.To, h.Actor)
				}
				return w.Flush()
			}
			return nil
		},
	})

	for _, action := range []order.Action{order.ActionAdvance, order.ActionRetreat, order.ActionReject} {
		orderCmd.AddCommand(transitionCommand(action, &restaurantID))
	}

	// order insights
	orderCmd.AddCommand(&cobra.Command{
		Use:   "insights",
		Short: "Count orders per stage",
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, err := scopeFor(restaurantID)
			if err != nil {
				return err
			}
			a, err := openApp(cmd.Context(), appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			insights, err := a.orders.Insights(cmd.Context(), scope)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprint(out, chart.Bars(stageRanking(insights), 30))
			fmt.Fprintf(out, "\nTotal %d, active %d, other %d\n", insights.Total, insights.Active, insights.Other)
			return nil
		},
	})

	rootCmd.AddCommand(orderCmd)
}

func transitionCommand(action order.Action, restaurantID *int64) *cobra.Command {
	return &cobra.Command{
		Use:   string(action) + " <order_id>",
		Short: fmt.Sprintf("Apply %q to an order", action),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, orderID, err := orderArgs(*restaurantID, args[0])
			if err != nil {
				return err
			}
			a, err := openApp(cmd.Context(), appOptions{events: true})
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.tracker.Apply(cmd.Context(), scope, orderID, action)
			if err != nil {
				return err
			}
			if !result.Changed {
				fmt.Fprintf(cmd.OutOrStdout(), "Order #%d stays at %s\n", result.OrderID, result.To)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Order #%d: %s -> %s (%d%%)\n", result.OrderID, result.From, result.To, result.Percent)
			return nil
		},
	}
}

func orderArgs(restaurantID int64, raw string) (service.Scope, int64, error) {
	scope, err := scopeFor(restaurantID)
	if err != nil {
		return scope, 0, err
	}
	orderID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || orderID <= 0 {
		return scope, 0, fmt.Errorf("invalid order ID %q / 订单 ID 无效", raw)
	}
	return scope, orderID, nil
}
