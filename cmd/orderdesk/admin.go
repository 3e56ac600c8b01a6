package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/orderdesk/orderdesk/internal/service"
)

func init() {
	var adminCmd = &cobra.Command{
		Use:   "admin",
		Short: "Dashboard account management",
	}

	adminCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List dashboard accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			admins, err := a.admins.List(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "ID\tRestaurant\tEmail\tName\tLast login")
			for _, ad := range admins {
				last := "-"
				if !ad.LastLoginAt.IsZero() {
					last = ad.LastLoginAt.Local().Format("2006-01-02 15:04")
				}
				fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\n", ad.ID, ad.RestaurantID, ad.Email, ad.Name, last)
			}
			return w.Flush()
		},
	})

	var input service.CreateAdminInput
	var createCmd = &cobra.Command{
		Use:   "create",
		Short: "Create a dashboard account for a restaurant",
		RunE: func(cmd *cobra.Command, args []string) error {
			if input.Email == "" || input.Password == "" || input.RestaurantID <= 0 {
				return fmt.Errorf("--restaurant, --email and --password are required / 餐厅、邮箱与密码均为必填")
			}
			a, err := openApp(cmd.Context(), appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			view, err := a.admins.Create(cmd.Context(), input)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Admin %s created with ID %d\n", view.Email, view.ID)
			return nil
		},
	}
	createCmd.Flags().Int64Var(&input.RestaurantID, "restaurant", 0, "Restaurant ID")
	createCmd.Flags().StringVar(&input.Email, "email", "", "Login email")
	createCmd.Flags().StringVar(&input.Name, "name", "", "Display name")
	createCmd.Flags().StringVar(&input.Password, "password", "", "Password (min 8 chars)")
	adminCmd.AddCommand(createCmd)

	rootCmd.AddCommand(adminCmd)
}
