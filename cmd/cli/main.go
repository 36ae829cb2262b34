package main

import (
	"fmt"
	"os"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"

	"lubd/app/database"
	pjob "lubd/app/platform/job"
)

var (
	apiBaseURL  string
	accessToken string
)

type ResponseError struct {
	Message string `json:"message"`
}

var apiServiceBase = func() *resty.Client {
	return resty.New().
		SetBaseURL(apiBaseURL).
		SetHeader("Accept", "application/json").
		SetAuthToken(accessToken).
		SetError(&ResponseError{}).
		OnAfterResponse(func(c *resty.Client, resp *resty.Response) error {
			if resp.StatusCode() >= 400 {
				return fmt.Errorf(resp.Error().(*ResponseError).Message)
			}

			return nil
		})
}

var rootCmd = &cobra.Command{
	Use:   "lubd",
	Short: "Facility management CLI",
}

var loginCmd = &cobra.Command{
	Use:   "login <username> <password>",
	Short: "Obtain an access token",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		type tokenPair struct {
			Access  string `json:"access"`
			Refresh string `json:"refresh"`
		}

		resp, err := apiServiceBase().R().
			SetBody(map[string]string{
				"username": args[0],
				"password": args[1],
			}).
			SetResult(&tokenPair{}).
			Post("/api/token/")

		if err != nil {
			fmt.Println("Error:", err)
			return
		}

		pair := resp.Result().(*tokenPair)

		fmt.Println("Access :", pair.Access)
		fmt.Println("Refresh:", pair.Refresh)
	},
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
}

var userCreateCmd = &cobra.Command{
	Use:   "create <username> <email> <password>",
	Short: "Create a new user",
	Args:  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		resp, err := apiServiceBase().R().
			SetBody(map[string]string{
				"username": args[0],
				"email":    args[1],
				"password": args[2],
			}).
			SetResult(&database.User{}).
			Post("/api/auth/register")

		if err != nil {
			fmt.Println("Error:", err)
			return
		}

		user := resp.Result().(*database.User)

		fmt.Println("User ID  :", user.ID)
		fmt.Println("Username :", user.Username)
		fmt.Println("Positions:", user.Positions)
	},
}

var userAssignCmd = &cobra.Command{
	Use:   "assign <user_id> <property_id>",
	Short: "Link a property to a user",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		_, err := apiServiceBase().R().
			Post(fmt.Sprintf("/api/user-profiles/%s/add_property/%s/", args[0], args[1]))

		if err != nil {
			fmt.Println("Error:", err)
			return
		}

		fmt.Println("Property", args[1], "linked to user", args[0])
	},
}

var propertyCmd = &cobra.Command{
	Use:   "property",
	Short: "Manage properties",
}

var propertyCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new property",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		resp, err := apiServiceBase().R().
			SetBody(map[string]string{
				"name": args[0],
			}).
			SetResult(&database.Property{}).
			Post("/api/properties/")

		if err != nil {
			fmt.Println("Error:", err)
			return
		}

		property := resp.Result().(*database.Property)

		fmt.Println("ID         :", property.ID)
		fmt.Println("Property ID:", property.PropertyID)
		fmt.Println("Name       :", property.Name)
	},
}

var topicCmd = &cobra.Command{
	Use:   "topic",
	Short: "Manage topics",
}

var topicCreateCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create a new topic",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		resp, err := apiServiceBase().R().
			SetBody(map[string]string{
				"title": args[0],
			}).
			SetResult(&database.Topic{}).
			Post("/api/topics/")

		if err != nil {
			fmt.Println("Error:", err)
			return
		}

		topic := resp.Result().(*database.Topic)

		fmt.Println("ID   :", topic.ID)
		fmt.Println("Title:", topic.Title)
	},
}

var jobCmd = &cobra.Command{
	Use:   "job",
	Short: "Manage jobs",
}

var jobStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show job counts per status",
	Run: func(cmd *cobra.Command, args []string) {
		resp, err := apiServiceBase().R().
			SetResult(&pjob.Stats{}).
			Get("/api/jobs/stats/")

		if err != nil {
			fmt.Println("Error:", err)
			return
		}

		stats := resp.Result().(*pjob.Stats)

		fmt.Println("Total            :", stats.Total)
		fmt.Println("Pending          :", stats.Pending)
		fmt.Println("In progress      :", stats.InProgress)
		fmt.Println("Waiting sparepart:", stats.WaitingSparepart)
		fmt.Println("Completed        :", stats.Completed)
		fmt.Println("Cancelled        :", stats.Cancelled)
	},
}

func main() {
	userCmd.AddCommand(userCreateCmd)
	userCmd.AddCommand(userAssignCmd)
	propertyCmd.AddCommand(propertyCreateCmd)
	topicCmd.AddCommand(topicCreateCmd)
	jobCmd.AddCommand(jobStatsCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(propertyCmd)
	rootCmd.AddCommand(topicCmd)
	rootCmd.AddCommand(jobCmd)

	rootCmd.PersistentFlags().StringVarP(&apiBaseURL, "url", "u", "http://localhost:3000", "API base URL")
	rootCmd.PersistentFlags().StringVarP(&accessToken, "token", "t", "", "Access token")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
