package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"wedding-site/internal/config"
	"wedding-site/internal/session"
	"wedding-site/internal/whatsapp"
)

func newWhatsAppCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whatsapp",
		Short: "Manage the WhatsApp device used for notifications and invitations",
	}
	cmd.PersistentFlags().StringVar(&cfg.WhatsAppDataDir, "whatsapp-dir", cfg.WhatsAppDataDir, "WhatsApp device store directory")

	link := &cobra.Command{
		Use:   "link",
		Short: "Pair this program with a phone by scanning a QR code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger(cfg)
			svc, err := whatsapp.NewService(cmd.Context(), &whatsapp.Config{
				DataDir: cfg.WhatsAppDataDir,
				QROut:   cmd.OutOrStdout(),
			}, log)
			if err != nil {
				return err
			}
			defer svc.Disconnect()

			if err := svc.Connect(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✅ WhatsApp device linked")
			return nil
		},
	}

	invite := &cobra.Command{
		Use:   "invite <code> <phone>",
		Short: "Send a guest their invitation with a personal RSVP link",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			guest, err := a.guests.Lookup(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			svc, err := whatsapp.NewService(cmd.Context(), &whatsapp.Config{DataDir: cfg.WhatsAppDataDir}, a.log)
			if err != nil {
				return err
			}
			if !svc.Linked() {
				return fmt.Errorf("WhatsApp device is not linked; run `wedding-site whatsapp link` first")
			}
			if err := svc.Connect(cmd.Context()); err != nil {
				return err
			}
			defer svc.Disconnect()

			link := session.InviteLink(cfg.PublicURL, guest.InviteCode)
			if err := svc.SendMessage(cmd.Context(), args[1], whatsapp.InvitationMessage(a.event, guest, link)); err != nil {
				return fmt.Errorf("failed to send invitation: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Invitation sent to %s (%s)\n", guest.PartyLabel, whatsapp.NormalizePhoneNumber(args[1]))
			return nil
		},
	}
	invite.Flags().StringVar(&cfg.PublicURL, "public-url", cfg.PublicURL, "Base URL used in the invite link")

	cmd.AddCommand(link, invite)
	return cmd
}
