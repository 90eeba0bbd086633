package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change application preferences",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		settings, err := appInstance.SettingsService.GetSettings(ctx)
		if err != nil {
			return err
		}

		changed := false
		if cmd.Flags().Changed("unit-column") {
			settings.ShowUnitColumn, _ = cmd.Flags().GetBool("unit-column")
			changed = true
		}
		if cmd.Flags().Changed("manual-numbering") {
			settings.ManualInvoiceNumbering, _ = cmd.Flags().GetBool("manual-numbering")
			changed = true
		}
		if changed {
			if err := appInstance.SettingsService.SaveSettings(ctx, settings); err != nil {
				return fmt.Errorf("failed to save settings: %w", err)
			}
			fmt.Println("✓ Settings saved")
		}

		fmt.Printf("Show unit column:         %t\n", settings.ShowUnitColumn)
		fmt.Printf("Manual invoice numbering: %t\n", settings.ManualInvoiceNumbering)
		fmt.Printf("Database:                 %s\n", appInstance.Config.Database.Path)
		return nil
	},
}

var companyCmd = &cobra.Command{
	Use:   "company",
	Short: "Show or change the pharmacy identity printed on documents",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		company, err := appInstance.SettingsService.GetCompany(ctx)
		if err != nil {
			return err
		}

		changed := false
		for flag, dst := range map[string]*string{
			"name":    &company.Name,
			"slogan":  &company.Slogan,
			"address": &company.Address,
			"phone":   &company.Phone,
			"email":   &company.Email,
			"rccm":    &company.RCCM,
			"logo":    &company.Logo,
		} {
			if cmd.Flags().Changed(flag) {
				*dst, _ = cmd.Flags().GetString(flag)
				changed = true
			}
		}
		if changed {
			if err := appInstance.SettingsService.SaveCompany(ctx, company); err != nil {
				return fmt.Errorf("failed to save company: %w", err)
			}
			fmt.Println("✓ Company saved")
		}

		fmt.Printf("Name:    %s\n", company.Name)
		fmt.Printf("Slogan:  %s\n", company.Slogan)
		fmt.Printf("Address: %s\n", company.Address)
		fmt.Printf("Phone:   %s\n", company.Phone)
		fmt.Printf("Email:   %s\n", company.Email)
		fmt.Printf("RCCM:    %s\n", company.RCCM)
		return nil
	},
}

func init() {
	settingsCmd.Flags().Bool("unit-column", true, "Show the unit column on documents")
	settingsCmd.Flags().Bool("manual-numbering", false, "Type invoice numbers by hand")

	companyCmd.Flags().String("name", "", "Pharmacy name")
	companyCmd.Flags().String("slogan", "", "Slogan")
	companyCmd.Flags().String("address", "", "Address")
	companyCmd.Flags().String("phone", "", "Phone")
	companyCmd.Flags().String("email", "", "Email")
	companyCmd.Flags().String("rccm", "", "Trade register number")
	companyCmd.Flags().String("logo", "", "Logo (data URL or path)")
}
