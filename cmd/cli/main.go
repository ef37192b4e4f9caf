package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/wadjakorntonsri/favlinks/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/favlinks/pkg/adapters/security"
	"github.com/wadjakorntonsri/favlinks/pkg/config"
	"github.com/wadjakorntonsri/favlinks/pkg/core/domain"
	"github.com/wadjakorntonsri/favlinks/pkg/logging"
	"github.com/wadjakorntonsri/favlinks/pkg/ports"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openStore loads the configuration and opens the store. The caller must
// close the returned repository.
func openStore() (*config.Config, *sqlite.SQLiteRepository, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	if _, err := logging.Configure(logging.Options{Level: cfg.LogLevel, Writer: os.Stderr}); err != nil {
		return nil, nil, err
	}

	repo, err := sqlite.NewSQLiteRepository(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to db: %w", err)
	}
	return cfg, repo, nil
}

var rootCmd = &cobra.Command{
	Use:          "favlinks",
	Short:        "Operator tools for the favlinks store",
	SilenceUsage: true,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Dump all links as JSON to stdout",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, repo, err := openStore()
		if err != nil {
			return err
		}
		defer repo.Close()

		return exportLinks(cmd.Context(), repo, cmd.OutOrStdout())
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Insert links from a JSON export for one owner",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		owner, _ := cmd.Flags().GetString("owner")

		_, repo, err := openStore()
		if err != nil {
			return err
		}
		defer repo.Close()

		f, err := os.Open(file)
		if err != nil {
			return fmt.Errorf("opening %s: %w", file, err)
		}
		defer f.Close()

		n, err := importLinks(cmd.Context(), repo, f, owner)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d links\n", n)
		return nil
	},
}

var useraddCmd = &cobra.Command{
	Use:   "useradd USERNAME",
	Short: "Create a user, prompting for the password",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		admin, _ := cmd.Flags().GetBool("admin")
		fromStdin, _ := cmd.Flags().GetBool("password-stdin")

		cfg, repo, err := openStore()
		if err != nil {
			return err
		}
		defer repo.Close()

		password, err := readPassword(cmd.InOrStdin(), fromStdin)
		if err != nil {
			return err
		}

		u, err := addUser(cmd.Context(), repo, security.NewBcryptHasher(cfg.BcryptCost), args[0], password, admin)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created user %s (id %d, admin %t)\n", u.Username, u.ID, u.IsAdmin)
		return nil
	},
}

var grantAdminCmd = &cobra.Command{
	Use:   "grant-admin USERNAME",
	Short: "Promote an existing user to admin",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, repo, err := openStore()
		if err != nil {
			return err
		}
		defer repo.Close()

		u, err := grantAdmin(cmd.Context(), repo, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is now an admin\n", u.Username)
		return nil
	},
}

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List users",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, repo, err := openStore()
		if err != nil {
			return err
		}
		defer repo.Close()

		return listUsers(cmd.Context(), repo, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	rootCmd.AddCommand(importCmd)
	importCmd.Flags().StringP("file", "f", "", "JSON file to import")
	importCmd.Flags().StringP("owner", "o", "", "Username that will own the imported links")
	_ = importCmd.MarkFlagRequired("file")
	_ = importCmd.MarkFlagRequired("owner")

	rootCmd.AddCommand(useraddCmd)
	useraddCmd.Flags().Bool("admin", false, "Create the user as an admin")
	useraddCmd.Flags().Bool("password-stdin", false, "Read the password from stdin")

	rootCmd.AddCommand(grantAdminCmd)
	rootCmd.AddCommand(usersCmd)
}

func exportLinks(ctx context.Context, repo ports.LinkRepository, w io.Writer) error {
	links, err := repo.Dump(ctx)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(links); err != nil {
		return fmt.Errorf("encode failed: %w", err)
	}
	return nil
}

// importLinks inserts every link in r for owner. Ids and owners from the
// export are ignored; rows the store rejects are logged and skipped.
func importLinks(ctx context.Context, repo ports.Repository, r io.Reader, owner string) (int, error) {
	user, err := repo.GetUserByUsername(ctx, owner)
	if err != nil {
		return 0, fmt.Errorf("find owner: %w", err)
	}
	if user == nil {
		return 0, fmt.Errorf("no such user: %s", owner)
	}

	var links []domain.Link
	if err := json.NewDecoder(r).Decode(&links); err != nil {
		return 0, fmt.Errorf("decode failed: %w", err)
	}

	count := 0
	for _, l := range links {
		link := &domain.Link{Name: l.Name, URL: l.URL, UserID: user.ID, IsPublic: l.IsPublic, CreatedAt: l.CreatedAt}
		if err := repo.CreateLink(ctx, link); err != nil {
			logrus.WithError(err).WithField("url", l.URL).Warn("Failed to import link")
			continue
		}
		count++
	}
	return count, nil
}

// readPassword prompts twice on a terminal, or reads one line from in.
func readPassword(in io.Reader, fromStdin bool) (string, error) {
	if !fromStdin {
		fd := int(os.Stdin.Fd())
		if !term.IsTerminal(fd) {
			return "", errors.New("stdin is not a terminal; use --password-stdin")
		}
		fmt.Fprint(os.Stderr, "Password: ")
		p1, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		fmt.Fprint(os.Stderr, "Confirm password: ")
		p2, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		if string(p1) != string(p2) {
			return "", errors.New("passwords do not match")
		}
		return trimLineEnding(string(p1)), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return trimLineEnding(line), nil
}

// trimLineEnding drops only the line terminator; spaces belong to the password.
func trimLineEnding(s string) string {
	return strings.TrimRight(s, "\r\n")
}

func addUser(ctx context.Context, repo ports.UserRepository, hasher ports.PasswordHasher, username, password string, admin bool) (*domain.User, error) {
	if username == "" || password == "" {
		return nil, errors.New("username and password required")
	}
	if strings.TrimSpace(username) != username {
		return nil, errors.New("username must not start or end with whitespace")
	}

	hash, err := hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &domain.User{Username: username, PasswordHash: hash, IsAdmin: admin}
	if err := repo.CreateUser(ctx, u); err != nil {
		if errors.Is(err, ports.ErrDuplicate) {
			return nil, fmt.Errorf("username %q already exists", username)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// grantAdmin only promotes; demotion goes through the API so the admin
// checks apply.
func grantAdmin(ctx context.Context, repo ports.UserRepository, username string) (*domain.User, error) {
	u, err := repo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if u == nil {
		return nil, fmt.Errorf("no such user: %s", username)
	}

	updated, err := repo.SetAdmin(ctx, u.ID, true)
	if err != nil {
		return nil, fmt.Errorf("set admin: %w", err)
	}
	if updated == nil {
		return nil, fmt.Errorf("no such user: %s", username)
	}
	return updated, nil
}

func listUsers(ctx context.Context, repo ports.UserRepository, w io.Writer) error {
	users, err := repo.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUSERNAME\tADMIN\tCREATED")
	for _, u := range users {
		fmt.Fprintf(tw, "%d\t%s\t%t\t%s\n", u.ID, u.Username, u.IsAdmin, u.CreatedAt.Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}
