package main

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

var searchSpecialty string

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search for practitioners by username",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return searchUsers(args[0])
	},
}

func init() {
	searchCmd.Flags().StringVar(&searchSpecialty, "specialty", "", "Restrict results to a specialty")
}

func searchUsers(q string) error {
	query := url.Values{}
	query.Set("q", q)
	if searchSpecialty != "" {
		query.Set("specialty", searchSpecialty)
	}

	var resp struct {
		Users []map[string]interface{} `json:"users"`
	}
	if err := apiRequest("GET", "/api/v1/users/search?"+query.Encode(), nil, &resp); err != nil {
		return err
	}

	if output == "json" {
		return printJSON(resp.Users)
	}

	if len(resp.Users) == 0 {
		fmt.Println("No practitioners found.")
		return nil
	}
	for _, u := range resp.Users {
		username, _ := u["username"].(string)
		specialty, _ := u["specialty"].(string)
		followers, _ := u["follower_count"].(float64)
		fmt.Printf("%-24s %-20s %d followers\n", username, specialty, int(followers))
	}
	return nil
}
