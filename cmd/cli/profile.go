package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage your profile and feed preferences",
}

var getProfileCmd = &cobra.Command{
	Use:   "get",
	Short: "Show your current profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getProfile()
	},
}

var (
	updateBio       string
	updateSpecialty string
	updateHeadline  string
	updateLocation  string
)

var updateProfileCmd = &cobra.Command{
	Use:   "update",
	Short: "Update profile fields",
	RunE: func(cmd *cobra.Command, args []string) error {
		return updateProfile(cmd)
	},
}

var (
	prefFilter string
	prefSort   string
)

var prefsCmd = &cobra.Command{
	Use:   "set-feed-prefs",
	Short: "Set your default feed filter and sort",
	RunE: func(cmd *cobra.Command, args []string) error {
		return setFeedPrefs()
	},
}

func init() {
	updateProfileCmd.Flags().StringVar(&updateBio, "bio", "", "Profile bio")
	updateProfileCmd.Flags().StringVar(&updateSpecialty, "specialty", "", "Dental specialty")
	updateProfileCmd.Flags().StringVar(&updateHeadline, "headline", "", "Profile headline")
	updateProfileCmd.Flags().StringVar(&updateLocation, "location", "", "Practice location")

	prefsCmd.Flags().StringVar(&prefFilter, "filter", "all", "Default content filter")
	prefsCmd.Flags().StringVar(&prefSort, "sort", "latest", "Default feed ordering")

	profileCmd.AddCommand(getProfileCmd)
	profileCmd.AddCommand(updateProfileCmd)
	profileCmd.AddCommand(prefsCmd)
}

func getProfile() error {
	var resp struct {
		User map[string]interface{} `json:"user"`
	}
	if err := apiRequest("GET", "/api/v1/me", nil, &resp); err != nil {
		return err
	}

	if output == "json" {
		return printJSON(resp.User)
	}

	for _, key := range []string{"username", "display_name", "specialty", "credential", "headline", "location", "bio"} {
		if v, ok := resp.User[key].(string); ok && v != "" {
			fmt.Printf("%-13s %s\n", key+":", v)
		}
	}
	return nil
}

func updateProfile(cmd *cobra.Command) error {
	payload := map[string]interface{}{}
	if cmd.Flags().Changed("bio") {
		payload["bio"] = updateBio
	}
	if cmd.Flags().Changed("specialty") {
		payload["specialty"] = updateSpecialty
	}
	if cmd.Flags().Changed("headline") {
		payload["headline"] = updateHeadline
	}
	if cmd.Flags().Changed("location") {
		payload["location"] = updateLocation
	}
	if len(payload) == 0 {
		return fmt.Errorf("no fields to update, pass at least one flag")
	}

	var resp struct {
		User map[string]interface{} `json:"user"`
	}
	if err := apiRequest("PUT", "/api/v1/me", payload, &resp); err != nil {
		return err
	}

	if output == "json" {
		return printJSON(resp.User)
	}
	fmt.Println("Profile updated")
	return nil
}

func setFeedPrefs() error {
	payload := map[string]string{
		"default_filter": prefFilter,
		"default_sort":   prefSort,
	}
	if err := apiRequest("PUT", "/api/v1/feed/preferences", payload, nil); err != nil {
		return err
	}
	fmt.Printf("Feed preferences saved: filter=%s sort=%s\n", prefFilter, prefSort)
	return nil
}
