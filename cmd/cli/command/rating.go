package command

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"cinerate/cmd/cli/authentication"
	"cinerate/internal/microservices/http-api/dto"
	"cinerate/internal/microservices/http-api/models"

	"github.com/spf13/cobra"
)

var ratingCmd = &cobra.Command{
	Use:   "ratings",
	Short: "Submit and list ratings",
}

var submitRatingCmd = &cobra.Command{
	Use:   "submit",
	Short: "Rate a movie or series (1-10) as the signed-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		creds, err := authentication.GetTokens()
		if errors.Is(err, authentication.ErrNotSignedIn) {
			return fmt.Errorf("sign in first: cinerate signin -e <email> -p <password>")
		}
		if err != nil {
			return err
		}

		req := dto.SubmitRatingRequest{UserID: creds.UserID, Username: creds.Username}
		req.Rating, _ = cmd.Flags().GetInt("rating")
		req.Moviename, _ = cmd.Flags().GetString("name")
		req.MediaType, _ = cmd.Flags().GetString("type")
		req.MediaID, _ = cmd.Flags().GetString("media")
		req.Comment, _ = cmd.Flags().GetString("comment")

		if req.Rating < 1 || req.Rating > 10 {
			return fmt.Errorf("rating must be between 1 and 10")
		}

		ctx, cancel := requestContext(cmd)
		defer cancel()

		resp, err := newClient().SubmitRating(ctx, &req)
		if err != nil {
			return fmt.Errorf("failed to submit rating: %w", err)
		}

		fmt.Println("✓", resp.Message)
		fmt.Printf("RatingID: %d\n", resp.RatingID)
		return nil
	},
}

var listRatingsCmd = &cobra.Command{
	Use:   "list [media-id]",
	Short: "List every rating of a media item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := requestContext(cmd)
		defer cancel()

		ratings, err := newClient().ListRatings(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to list ratings: %w", err)
		}
		if len(ratings) == 0 {
			fmt.Println("No ratings yet.")
			return nil
		}
		printRatings(ratings)
		return nil
	},
}

func printRatings(ratings []models.Rating) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSER\tRATING\tTITLE\tDATE\tCOMMENT")
	for _, r := range ratings {
		fmt.Fprintf(w, "%d\t%s\t%d/10\t%s\t%04d-%02d-%02d\t%s\n",
			r.RatingID, r.Username, r.Rating, r.Moviename, r.Year, r.Month, r.Day, r.Comment)
	}
	w.Flush()
}

func init() {
	rootCmd.AddCommand(ratingCmd)
	ratingCmd.AddCommand(submitRatingCmd, listRatingsCmd)

	submitRatingCmd.Flags().IntP("rating", "r", 0, "Rating from 1 to 10")
	submitRatingCmd.Flags().StringP("name", "n", "", "Movie or series name")
	submitRatingCmd.Flags().StringP("type", "t", "movie", "Media type (movie, series, ...)")
	submitRatingCmd.Flags().StringP("media", "m", "", "Media id")
	submitRatingCmd.Flags().StringP("comment", "c", "", "Optional review text")
	submitRatingCmd.MarkFlagRequired("rating")
	submitRatingCmd.MarkFlagRequired("name")
	submitRatingCmd.MarkFlagRequired("media")
}
