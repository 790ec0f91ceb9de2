// Command resetmail renders and sends the password reset email.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pricetracker/web/internal/config"
	"github.com/pricetracker/web/internal/utils/email"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd(logger).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(logger *logrus.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:          "resetmail",
		Short:        "Render or send the PriceTracker password reset email",
		SilenceUsage: true,
	}
	root.AddCommand(newRenderCmd(), newSendCmd(logger))
	return root
}

func newRenderCmd() *cobra.Command {
	var (
		name         string
		link         string
		placeholders bool
		text         bool
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print the reset email",
		RunE: func(cmd *cobra.Command, args []string) error {
			data := email.ResetPasswordData{Name: name, ResetLink: link}
			if placeholders {
				data = email.PlaceholderData()
			}

			htmlBody, textBody, err := email.RenderResetPassword(data)
			if err != nil {
				return err
			}
			if text {
				_, err = fmt.Fprint(cmd.OutOrStdout(), textBody)
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), htmlBody)
			return err
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "recipient name")
	cmd.Flags().StringVar(&link, "link", "", "reset link")
	cmd.Flags().BoolVar(&placeholders, "placeholders", false, "keep {{ name }} and {{ resetLink }} for an external renderer")
	cmd.Flags().BoolVar(&text, "text", false, "print the plain text body instead of HTML")
	cmd.MarkFlagsMutuallyExclusive("placeholders", "link")
	return cmd
}

func newSendCmd(logger *logrus.Logger) *cobra.Command {
	var to, name, token string

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send the reset email for a token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
				logger.SetLevel(level)
			}

			sender := email.NewSender(cfg, logger)
			return sender.SendPasswordReset(cmd.Context(), to, name, email.ResetLink(cfg.AppHost, token))
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "recipient email address")
	cmd.Flags().StringVar(&name, "name", "", "recipient name")
	cmd.Flags().StringVar(&token, "token", "", "reset token issued by the API")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("token")
	return cmd
}
