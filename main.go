package main

import (
	"fmt"
	"os"

	"delliapp/auth"
	"delliapp/config"
	"delliapp/models"
	"delliapp/store"
	"delliapp/tenancy"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "delli",
	Short:         "Delli multi-tenant restaurant ordering API",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		return serve(cmd.Context(), cfg)
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		db, err := config.OpenDB(cfg)
		if err != nil {
			return err
		}
		if err := config.Migrate(db); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
		return nil
	},
}

var teamCmd = &cobra.Command{
	Use:   "team",
	Short: "Manage teams",
}

var (
	teamSlug string
	teamName string
)

var teamCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a team with its default outlet",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		slug, err := tenancy.NormalizeSlug(teamSlug, tenancy.HostConfig{RootDomain: cfg.RootDomain, AdminLabel: cfg.AdminLabel})
		if err != nil {
			return fmt.Errorf("%w %q: use lower-case letters, digits and dashes, not %q or www", err, teamSlug, cfg.AdminLabel)
		}
		db, err := config.OpenDB(cfg)
		if err != nil {
			return err
		}
		team := models.Team{Name: teamName, Slug: slug, IsActive: true, Settings: models.DefaultSettings()}
		if err := store.NewTeamRepo(db).Create(cmd.Context(), &team); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created team %s (%s) at %s.%s\n", team.Name, team.ID, team.Slug, cfg.RootDomain)
		return nil
	},
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage user profiles",
}

var (
	userEmail    string
	userName     string
	userPassword string
	userRole     string
)

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user with any platform role, including admin",
	RunE: func(cmd *cobra.Command, _ []string) error {
		role := models.UserRole(userRole)
		if !models.ValidRole(role) {
			return fmt.Errorf("invalid role %q", userRole)
		}
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		db, err := config.OpenDB(cfg)
		if err != nil {
			return err
		}
		hash, err := auth.HashPassword(userPassword)
		if err != nil {
			return err
		}
		p := models.Profile{Name: userName, Email: userEmail, PasswordHash: hash, Role: role}
		if err := store.NewProfileRepo(db).Create(cmd.Context(), &p); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created %s user %s (%s)\n", p.Role, p.Email, p.ID)
		return nil
	},
}

func init() {
	teamCreateCmd.Flags().StringVar(&teamSlug, "slug", "", "subdomain label of the team")
	teamCreateCmd.Flags().StringVar(&teamName, "name", "", "display name")
	_ = teamCreateCmd.MarkFlagRequired("slug")
	_ = teamCreateCmd.MarkFlagRequired("name")
	teamCmd.AddCommand(teamCreateCmd)

	userCreateCmd.Flags().StringVar(&userEmail, "email", "", "login email")
	userCreateCmd.Flags().StringVar(&userName, "name", "", "display name")
	userCreateCmd.Flags().StringVar(&userPassword, "password", "", "initial password")
	userCreateCmd.Flags().StringVar(&userRole, "role", string(models.RoleCustomer), "platform role")
	for _, f := range []string{"email", "name", "password"} {
		_ = userCreateCmd.MarkFlagRequired(f)
	}
	userCmd.AddCommand(userCreateCmd)

	rootCmd.AddCommand(serveCmd, migrateCmd, teamCmd, userCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
