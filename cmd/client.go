package cmd

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"social-backend/internal/client"

	"github.com/spf13/cobra"
)

var errNotLoggedIn = errors.New("not logged in, run `client login` first")

// clientOptions are shared by every client subcommand
type clientOptions struct {
	serverURL   string
	sessionPath string
}

func (o *clientOptions) open() (*client.Client, *client.Session, error) {
	api := client.New(o.serverURL, nil)
	session, err := client.NewSession(api, o.sessionPath)
	if err != nil {
		return nil, nil, err
	}
	return api, session, nil
}

// openLoggedIn opens the session and fails unless it holds a token
func (o *clientOptions) openLoggedIn() (*client.Client, *client.Session, error) {
	api, session, err := o.open()
	if err != nil {
		return nil, nil, err
	}
	if !session.LoggedIn() {
		return nil, nil, errNotLoggedIn
	}
	return api, session, nil
}

func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "session.json"
	}
	return filepath.Join(dir, "social-backend", "session.json")
}

func newClientCommand() *cobra.Command {
	opts := &clientOptions{}

	cmd := &cobra.Command{
		Use:   "client",
		Short: "Use a running server as a logged-in user",
	}
	cmd.PersistentFlags().StringVar(&opts.serverURL, "server", "http://localhost:5001", "base URL of the API server")
	cmd.PersistentFlags().StringVar(&opts.sessionPath, "session", defaultSessionPath(), "path to the session file")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "signup <username> <email> <password>",
			Short: "Create an account and log in",
			Args:  cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				_, session, err := opts.open()
				if err != nil {
					return err
				}
				if err := session.Signup(cmd.Context(), args[0], args[1], args[2]); err != nil {
					return err
				}
				return printJSON(cmd, session.State().User)
			},
		},
		&cobra.Command{
			Use:   "login <email> <password>",
			Short: "Log in and remember the session",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				_, session, err := opts.open()
				if err != nil {
					return err
				}
				if err := session.Login(cmd.Context(), args[0], args[1]); err != nil {
					return err
				}
				return printJSON(cmd, session.State().User)
			},
		},
		&cobra.Command{
			Use:   "logout",
			Short: "Forget the stored session",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				_, session, err := opts.open()
				if err != nil {
					return err
				}
				return session.Logout()
			},
		},
		newFeedCommand(opts),
		&cobra.Command{
			Use:   "post <text>",
			Short: "Create a text post",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				api, _, err := opts.openLoggedIn()
				if err != nil {
					return err
				}
				post, err := api.CreatePost(cmd.Context(), strings.Join(args, " "), "")
				if err != nil {
					return err
				}
				return printJSON(cmd, post)
			},
		},
		&cobra.Command{
			Use:   "follow <userId>",
			Short: "Follow or unfollow a user",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				_, session, err := opts.openLoggedIn()
				if err != nil {
					return err
				}
				following := session.ToggleFollow(cmd.Context(), args[0])
				return printJSON(cmd, map[string]bool{"following": following})
			},
		},
		&cobra.Command{
			Use:   "save <postId>",
			Short: "Save or unsave a post",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				_, session, err := opts.openLoggedIn()
				if err != nil {
					return err
				}
				saved := session.ToggleSave(cmd.Context(), args[0])
				return printJSON(cmd, map[string]bool{"saved": saved})
			},
		},
		&cobra.Command{
			Use:   "search <query>",
			Short: "Search users and posts",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				api, _, err := opts.openLoggedIn()
				if err != nil {
					return err
				}
				result, err := api.Search(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd, result)
			},
		},
		&cobra.Command{
			Use:   "unread",
			Short: "Show the unread notification count",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				api, _, err := opts.openLoggedIn()
				if err != nil {
					return err
				}
				count, err := api.UnreadCount(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd, map[string]int{"count": count})
			},
		},
	)

	return cmd
}

func newFeedCommand(opts *clientOptions) *cobra.Command {
	var following bool

	cmd := &cobra.Command{
		Use:   "feed",
		Short: "List posts, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, _, err := opts.openLoggedIn()
			if err != nil {
				return err
			}
			list := api.Explore
			if following {
				list = api.FollowingFeed
			}
			posts, err := list(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, posts)
		},
	}
	cmd.Flags().BoolVar(&following, "following", false, "only posts from users you follow")

	return cmd
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
