package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/pageza/recipeshare/backend/internal/client"
	"github.com/pageza/recipeshare/backend/internal/identity"
	"github.com/pageza/recipeshare/backend/internal/model"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

var (
	serverURL   string
	sessionPath string
)

// newClient restores the saved session and keeps the session file in step
// with it. The caller must defer the returned func.
func newClient() (*client.Client, func(), error) {
	path := sessionPath
	if path == "" {
		p, err := client.DefaultSessionPath()
		if err != nil {
			return nil, nil, err
		}
		path = p
	}
	file := client.NewSessionFile(path)
	saved, err := file.Load()
	if err != nil {
		return nil, nil, err
	}

	session := identity.NewSession(saved)
	detach := file.Attach(session, func(err error) {
		fmt.Fprintf(os.Stderr, "warning: could not update %s: %v\n", file.Path(), err)
	})
	return client.New(serverURL, session), func() {
		detach()
		session.Close()
	}, nil
}

var rootCmd = &cobra.Command{
	Use:           "recipectl",
	Short:         "Command line client for recipeshare",
	SilenceUsage:  true,
}

var loginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Sign in and remember the session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, done, err := newClient()
		if err != nil {
			return err
		}
		defer done()

		password, err := readPassword("Password: ")
		if err != nil {
			return err
		}
		result, err := c.Login(cmd.Context(), args[0], password)
		if err != nil {
			return err
		}
		fmt.Printf("Signed in as %s (%s)\n", result.User.DisplayName, result.User.Email)
		return nil
	},
}

// readPassword prompts without echo on a terminal and reads a line otherwise.
func readPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, prompt)
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return string(b), nil
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, done, err := newClient()
		if err != nil {
			return err
		}
		defer done()
		if err := c.Logout(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("Signed out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, done, err := newClient()
		if err != nil {
			return err
		}
		defer done()
		if c.Session().Current() == nil {
			fmt.Println("Not signed in")
			return nil
		}
		p, err := c.Profile(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("%s <%s>\nid: %s\nsaved recipes: %d\n", p.DisplayName, p.Email, p.UserID, len(p.SavedRecipes))
		return nil
	},
}

var recipesCmd = &cobra.Command{
	Use:   "recipes",
	Short: "Browse and interact with recipes",
}

var listQuery struct {
	category string
	owner    string
	tag      string
	featured bool
	sort     string
	limit    int
	cursor   string
}

var recipesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recipes",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, done, err := newClient()
		if err != nil {
			return err
		}
		defer done()

		page, err := c.ListRecipes(cmd.Context(), model.ListQuery{
			Category:     listQuery.category,
			OwnerID:      listQuery.owner,
			Tag:          listQuery.tag,
			FeaturedOnly: listQuery.featured,
			Sort:         model.SortOrder(listQuery.sort),
			PageSize:     listQuery.limit,
			Cursor:       listQuery.cursor,
		})
		if err != nil {
			return err
		}
		for _, r := range page.Items {
			fmt.Printf("%s  %-40s  %-15s  likes:%d views:%d rating:%.1f\n",
				r.ID, r.Title, r.Category, r.LikesCount, r.ViewCount, r.AverageRating)
		}
		if page.NextCursor != "" {
			fmt.Printf("\nmore: --cursor %s\n", page.NextCursor)
		}
		return nil
	},
}

var recipesGetCmd = &cobra.Command{
	Use:   "get <recipe-id>",
	Short: "Show a recipe",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, done, err := newClient()
		if err != nil {
			return err
		}
		defer done()

		r, err := c.GetRecipe(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printRecipe(r)
		return nil
	},
}

func printRecipe(r *model.Recipe) {
	fmt.Printf("%s\n%s\n\n", r.Title, strings.Repeat("=", len(r.Title)))
	fmt.Printf("by %s | %s | %s | prep %dm, cook %dm | serves %d\n",
		r.UserName, r.Category, r.Difficulty, r.PrepTime, r.CookTime, r.Servings)
	fmt.Printf("likes %d | saves %d | views %d | rating %.1f (%d)\n\n",
		r.LikesCount, r.SavesCount, r.ViewCount, r.AverageRating, r.RatingCount)
	fmt.Println(r.Description)
	fmt.Println("\nIngredients:")
	for _, ing := range r.Ingredients {
		fmt.Printf("  - %s %s\n", ing.Amount, ing.Name)
	}
	fmt.Println("\nInstructions:")
	for i, step := range r.Instructions {
		fmt.Printf("  %d. %s\n", i+1, step.Step)
	}
	if len(r.Tips) > 0 {
		fmt.Println("\nTips:")
		for _, tip := range r.Tips {
			fmt.Printf("  * %s\n", tip)
		}
	}
	if len(r.Comments) > 0 {
		fmt.Printf("\nComments (%d):\n", len(r.Comments))
		for _, cm := range r.Comments {
			fmt.Printf("  %s: %s\n", cm.UserName, cm.Text)
		}
	}
}

func toggleCommand(use, short string, toggle func(*client.Client, *cobra.Command, string) (model.InteractionState, error), on, off string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <recipe-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, done, err := newClient()
			if err != nil {
				return err
			}
			defer done()

			state, err := toggle(c, cmd, args[0])
			if err != nil {
				return err
			}
			verb := off
			if state.Active {
				verb = on
			}
			fmt.Printf("%s %s (%d total)\n", verb, state.RecipeID, state.Count)
			return nil
		},
	}
}

var recipesRateCmd = &cobra.Command{
	Use:   "rate <recipe-id> <1-5>",
	Short: "Rate a recipe",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("rating must be a number: %w", err)
		}
		c, done, err := newClient()
		if err != nil {
			return err
		}
		defer done()

		state, err := c.Rate(cmd.Context(), args[0], value)
		if err != nil {
			return err
		}
		fmt.Printf("Rated %d; average %.1f from %d rating(s)\n", state.Value, state.Average, state.Count)
		return nil
	},
}

var recipesCommentCmd = &cobra.Command{
	Use:   "comment <recipe-id> <text>",
	Short: "Comment on a recipe",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, done, err := newClient()
		if err != nil {
			return err
		}
		defer done()

		comment, err := c.AddComment(cmd.Context(), args[0], strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		fmt.Printf("Comment %s added\n", comment.ID)
		return nil
	},
}

func init() {
	defaultServer := os.Getenv("RECIPESHARE_URL")
	if defaultServer == "" {
		defaultServer = "http://localhost:8080"
	}
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", defaultServer, "API base URL")
	rootCmd.PersistentFlags().StringVar(&sessionPath, "session", "", "session file (default ~/.config/recipeshare/session.toml)")

	f := recipesListCmd.Flags()
	f.StringVar(&listQuery.category, "category", "", "filter by category")
	f.StringVar(&listQuery.owner, "owner", "", "filter by owner user ID")
	f.StringVar(&listQuery.tag, "tag", "", "filter by tag")
	f.BoolVar(&listQuery.featured, "featured", false, "only featured recipes")
	f.StringVar(&listQuery.sort, "sort", "newest", "newest, popular or views")
	f.IntVar(&listQuery.limit, "limit", 0, "page size")
	f.StringVar(&listQuery.cursor, "cursor", "", "continue after a previous page")

	recipesCmd.AddCommand(recipesListCmd, recipesGetCmd, recipesRateCmd, recipesCommentCmd)
	recipesCmd.AddCommand(toggleCommand("like", "Like or unlike a recipe",
		func(c *client.Client, cmd *cobra.Command, id string) (model.InteractionState, error) {
			return c.ToggleLike(cmd.Context(), id)
		}, "Liked", "Unliked"))
	recipesCmd.AddCommand(toggleCommand("save", "Save or unsave a recipe",
		func(c *client.Client, cmd *cobra.Command, id string) (model.InteractionState, error) {
			return c.ToggleSave(cmd.Context(), id)
		}, "Saved", "Unsaved"))

	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd, recipesCmd)
}
