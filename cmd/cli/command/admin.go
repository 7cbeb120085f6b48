package command

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Administrative commands (users and ratings)",
	Long:  `Inspect and delete users and ratings. Pass --admin-key or set CINERATE_ADMIN_KEY when the server requires one.`,
}

var adminUsersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage users",
}

var listUsersCmd = &cobra.Command{
	Use:   "list",
	Short: "List every user",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := requestContext(cmd)
		defer cancel()

		users, err := newClient().ListUsers(ctx)
		if err != nil {
			return fmt.Errorf("failed to list users: %w", err)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tUSERNAME\tEMAIL\tCREATED")
		for _, u := range users {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", u.UserID, u.Username, u.Email, u.CreatedAt.Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

var showUserCmd = &cobra.Command{
	Use:   "show [user-id]",
	Short: "Show a user and its ratings",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid user ID: %w", err)
		}

		ctx, cancel := requestContext(cmd)
		defer cancel()

		detail, err := newClient().GetUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to get user: %w", err)
		}

		fmt.Printf("User %d: %s <%s>\n", detail.User.UserID, detail.User.Username, detail.User.Email)
		if len(detail.Ratings) == 0 {
			fmt.Println("No ratings.")
			return nil
		}
		printRatings(detail.Ratings)
		return nil
	},
}

var deleteUserCmd = &cobra.Command{
	Use:   "delete [user-id]",
	Short: "Delete a user and all of its ratings",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid user ID: %w", err)
		}

		ctx, cancel := requestContext(cmd)
		defer cancel()

		resp, err := newClient().DeleteUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}

		fmt.Println("✓", resp.Message)
		fmt.Printf("Deleted %s and %d rating(s)\n", resp.DeletedUser.Username, resp.DeletedRatingsCount)
		return nil
	},
}

var adminRatingsCmd = &cobra.Command{
	Use:   "ratings",
	Short: "Manage ratings",
}

var deleteRatingCmd = &cobra.Command{
	Use:   "delete [rating-id]",
	Short: "Delete a single rating",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ratingID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid rating ID: %w", err)
		}

		ctx, cancel := requestContext(cmd)
		defer cancel()

		resp, err := newClient().DeleteRating(ctx, ratingID)
		if err != nil {
			return fmt.Errorf("failed to delete rating: %w", err)
		}

		fmt.Println("✓", resp.Message)
		fmt.Printf("Rating %d on %q by %s\n", resp.DeletedRating.RatingID, resp.DeletedRating.Moviename, resp.DeletedRating.Username)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(adminCmd)
	adminCmd.AddCommand(adminUsersCmd, adminRatingsCmd)
	adminUsersCmd.AddCommand(listUsersCmd, showUserCmd, deleteUserCmd)
	adminRatingsCmd.AddCommand(deleteRatingCmd)
}
