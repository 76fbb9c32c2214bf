package seed

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/brightclass/backoffice/internal/config"
	"github.com/brightclass/backoffice/internal/database"
	"github.com/brightclass/backoffice/internal/domain"
	"github.com/brightclass/backoffice/internal/security"
	"github.com/brightclass/backoffice/internal/tools/common"
	"github.com/brightclass/backoffice/internal/tools/ui"
)

type options struct {
	envFile       string
	adminUsername string
	ci            bool
}

func NewRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{Use: "seed", Short: "Database seed and account tooling"}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "path to env file")
	cmd.PersistentFlags().StringVar(&opts.adminUsername, "bootstrap-admin-username", "", "override bootstrap admin username")
	cmd.PersistentFlags().BoolVar(&opts.ci, "ci", false, "non-interactive machine-readable output")
	cmd.AddCommand(newApplyCommand(opts), newDryRunCommand(opts), newResetPasswordCommand(opts))
	return cmd
}

func newApplyCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "apply",
		Short: "Migrate the schema and apply default seed data",
		RunE: func(cmd *cobra.Command, args []string) error {
			details, err := run(opts, "seed apply", func(ctx context.Context) ([]string, error) {
				cfg, db, err := loadConfigDB(opts.envFile)
				if err != nil {
					return nil, err
				}
				if err := database.Migrate(db); err != nil {
					return nil, err
				}
				username := cfg.BootstrapAdminUsername
				if opts.adminUsername != "" {
					username = opts.adminUsername
				}
				report, err := database.Seed(db, security.NewPasswordHasher(), username)
				if err != nil {
					return nil, err
				}
				details := []string{fmt.Sprintf("default school id: %d", report.DefaultSchool)}
				if report.CreatedSchool {
					details = append(details, "created default school")
				}
				if report.PromotedAdmin {
					details = append(details, "promoted existing user to platform_admin: "+report.AdminUsername)
				}
				if report.CreatedAdmin {
					details = append(details,
						"created platform_admin: "+report.AdminUsername,
						"one-time password: "+report.AdminPassword)
				}
				return details, nil
			})
			if opts.ci {
				common.PrintCIResult(err == nil, "seed apply", details, err)
			}
			if err != nil {
				os.Exit(3)
			}
			return nil
		},
	}
}

func newDryRunCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "dry-run",
		Short: "Show what seeding would do",
		RunE: func(cmd *cobra.Command, args []string) error {
			details, err := run(opts, "seed dry-run", func(ctx context.Context) ([]string, error) {
				cfg, _, err := loadConfigDB(opts.envFile)
				if err != nil {
					return nil, err
				}
				username := cfg.BootstrapAdminUsername
				if opts.adminUsername != "" {
					username = opts.adminUsername
				}
				details := []string{
					"would migrate schema: schools, users, mfa_settings, mfa_login_nonces, financial_reports",
					"would ensure default school exists",
				}
				if username != "" {
					details = append(details, "would create or promote platform_admin: "+username)
				}
				return details, nil
			})
			if opts.ci {
				common.PrintCIResult(err == nil, "seed dry-run", details, err)
			}
			if err != nil {
				os.Exit(3)
			}
			return nil
		},
	}
}

func newResetPasswordCommand(opts *options) *cobra.Command {
	var username string
	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Set a new one-time password for a user and clear its lockout",
		RunE: func(cmd *cobra.Command, args []string) error {
			details, err := run(opts, "seed reset-password", func(ctx context.Context) ([]string, error) {
				if strings.TrimSpace(username) == "" {
					return nil, fmt.Errorf("username is required")
				}
				_, db, err := loadConfigDB(opts.envFile)
				if err != nil {
					return nil, err
				}
				var u domain.User
				if err := db.Where("username = ?", username).First(&u).Error; err != nil {
					return nil, err
				}
				password, err := security.NewRandomString(24)
				if err != nil {
					return nil, err
				}
				hash, err := security.NewPasswordHasher().Hash(password)
				if err != nil {
					return nil, err
				}
				updates := map[string]any{
					"password_hash":         hash,
					"failed_login_attempts": 0,
					"last_failed_login_at":  gorm.Expr("NULL"),
					"last_failed_login_ip":  gorm.Expr("NULL"),
				}
				if err := db.Model(&u).Updates(updates).Error; err != nil {
					return nil, err
				}
				return []string{
					"reset password for: " + username,
					"one-time password: " + password,
				}, nil
			})
			if opts.ci {
				common.PrintCIResult(err == nil, "seed reset-password", details, err)
			}
			if err != nil {
				os.Exit(3)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "username to reset")
	return cmd
}

func run(opts *options, title string, fn func(context.Context) ([]string, error)) ([]string, error) {
	if opts.ci {
		return fn(context.Background())
	}
	return ui.Run(title, fn)
}

func loadConfigDB(envFile string) (*config.Config, *gorm.DB, error) {
	if err := common.LoadEnvFile(envFile); err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	db, err := database.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}
