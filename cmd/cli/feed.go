package main

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

var (
	feedFilter string
	feedSort   string
	feedLimit  int
)

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Preview your home feed",
	Long: `Fetch your home feed from the server and print it.
Filters: all, cases, threads, clinics, professionals.
Sorts: latest, trending, my_network.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return showFeed()
	},
}

func init() {
	feedCmd.Flags().StringVar(&feedFilter, "filter", "", "Content filter (defaults to your saved preference)")
	feedCmd.Flags().StringVar(&feedSort, "sort", "", "Feed ordering (defaults to your saved preference)")
	feedCmd.Flags().IntVar(&feedLimit, "limit", 20, "Number of items to fetch")
}

type feedItem struct {
	ID            string                 `json:"id"`
	Type          string                 `json:"type"`
	Payload       map[string]interface{} `json:"payload"`
	CreatedAt     time.Time              `json:"created_at"`
	ActivityScore int                    `json:"activity_score"`
}

type feedResponse struct {
	Items []feedItem             `json:"items"`
	Meta  map[string]interface{} `json:"meta"`
}

func showFeed() error {
	query := url.Values{}
	if feedFilter != "" {
		query.Set("filter", feedFilter)
	}
	if feedSort != "" {
		query.Set("sort", feedSort)
	}
	query.Set("limit", strconv.Itoa(feedLimit))

	var resp feedResponse
	if err := apiRequest("GET", "/api/v1/feed?"+query.Encode(), nil, &resp); err != nil {
		return err
	}

	if output == "json" {
		return printJSON(resp)
	}

	if len(resp.Items) == 0 {
		fmt.Println("Your feed is empty.")
		return nil
	}

	for _, item := range resp.Items {
		fmt.Printf("[%s] %s  (score %d, %s)\n",
			item.Type, itemTitle(item), item.ActivityScore,
			item.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	fmt.Printf("\n%d items\n", len(resp.Items))
	return nil
}

// itemTitle pulls a human-readable label out of the type-specific payload
func itemTitle(item feedItem) string {
	for _, key := range []string{"title", "name", "username"} {
		if v, ok := item.Payload[key].(string); ok && v != "" {
			return v
		}
	}
	return item.ID
}
