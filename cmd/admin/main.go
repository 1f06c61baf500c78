package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"complaintdesk/backend/internal/app"
	"complaintdesk/backend/internal/complaint"
	"complaintdesk/backend/internal/config"
	"complaintdesk/backend/internal/identity"
	"complaintdesk/backend/internal/logging"
	"complaintdesk/backend/internal/models"
	"complaintdesk/backend/internal/storage"

	"github.com/spf13/cobra"
)

var (
	adminName     string
	adminEmail    string
	adminPassword string
	actingAs      string
	feedback      string
	statusFilter  string

	rootCmd = &cobra.Command{
		Use:           "admin",
		Short:         "Operator tasks for the complaint desk backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE:  runMigrate,
	}

	createAdminCmd = &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account",
		Args:  cobra.NoArgs,
		RunE:  runCreateAdmin,
	}

	sweepCmd = &cobra.Command{
		Use:   "sweep",
		Short: "Delete resolved complaints past the retention window",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}

	setStatusCmd = &cobra.Command{
		Use:   "set-status <complaint_id> <status>",
		Short: "Change a complaint status on behalf of an admin",
		Args:  cobra.ExactArgs(2),
		RunE:  runSetStatus,
	}

	listCmd = &cobra.Command{
		Use:   "list",
		Short: "List complaints, newest first",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}
)

func init() {
	createAdminCmd.Flags().StringVar(&adminName, "name", "", "display name")
	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "login email")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "login password")
	_ = createAdminCmd.MarkFlagRequired("name")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("password")

	setStatusCmd.Flags().StringVar(&actingAs, "as", "", "email of the admin making the change")
	setStatusCmd.Flags().StringVar(&feedback, "feedback", "", "admin feedback; pass an empty value to clear it")
	_ = setStatusCmd.MarkFlagRequired("as")

	listCmd.Flags().StringVar(&statusFilter, "status", "", "only complaints with this status")

	rootCmd.AddCommand(migrateCmd, createAdminCmd, sweepCmd, setStatusCmd, listCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func setup(ctx context.Context) (*app.App, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	log := logging.Setup(cfg.LogLevel, cfg.LogFormat)
	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return a, log, nil
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logging.Setup(cfg.LogLevel, cfg.LogFormat)
	if err := storage.ApplyMigrations(cfg.DSN(), log); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Migrations applied to %s\n", cfg.MigrationURL())
	return nil
}

func runCreateAdmin(cmd *cobra.Command, _ []string) error {
	a, _, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := a.Identity.ProvisionAdmin(cmd.Context(), identity.AdminInput{
		Name: adminName, Email: adminEmail, Password: adminPassword,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Admin %s created with id %s\n", p.Email, p.ID)
	return nil
}

func runSweep(cmd *cobra.Command, _ []string) error {
	a, _, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.Sweeper.Run(cmd.Context())
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func runSetStatus(cmd *cobra.Command, args []string) error {
	a, _, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := actingAdmin(cmd.Context(), a)
	if err != nil {
		return err
	}

	in := complaint.StatusInput{Status: args[1]}
	if cmd.Flags().Changed("feedback") {
		in.Feedback = &feedback
	}
	c, err := a.Complaints.UpdateStatus(cmd.Context(), p, args[0], in)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Complaint %s is now %s\n", c.ID, c.Status)
	return nil
}

func runList(cmd *cobra.Command, _ []string) error {
	a, _, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	// the operator acts with admin visibility
	views, err := a.Complaints.List(cmd.Context(), models.Principal{Role: models.RoleAdmin, Name: "operator"},
		complaint.ListFilter{Status: statusFilter})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tCATEGORY\tSTUDENT\tCREATED")
	for _, v := range views {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", v.ID, v.Status, v.Category, v.StudentName, v.CreatedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func actingAdmin(ctx context.Context, a *app.App) (models.Principal, error) {
	p, err := a.Store.GetProfileByEmail(ctx, strings.ToLower(strings.TrimSpace(actingAs)))
	if err != nil {
		return models.Principal{}, err
	}
	if p == nil || !p.IsAdmin() {
		return models.Principal{}, fmt.Errorf("%s is not an admin account", actingAs)
	}
	return models.Principal{ID: p.ID, Role: p.Role, Name: p.Name}, nil
}
