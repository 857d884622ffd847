package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/skip2/go-qrcode"
	"github.com/spf13/cobra"

	"wedding-site/internal/backup"
	"wedding-site/internal/config"
	"wedding-site/internal/models"
	"wedding-site/internal/report"
	"wedding-site/internal/session"
	"wedding-site/internal/storage"
)

func newExportCmd(cfg *config.Config) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:       "export <rsvps|pledges>",
		Short:     "Write a record table as CSV",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(storage.TableRSVP), string(storage.TablePledges)},
		RunE: func(cmd *cobra.Command, args []string) error {
			table := storage.Table(args[0])
			if !table.Valid() {
				return fmt.Errorf("unknown table %q", args[0])
			}

			a, err := loadApp(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			rows, err := a.store.ReadAll(cmd.Context(), table)
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", out, err)
				}
				defer f.Close()
				w = f
			}
			return report.WriteCSV(w, table.Columns(), rows)
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "Write to file instead of stdout")
	return cmd
}

func newBackupCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Upload both record tables to the backup bucket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			uploader, err := backup.NewUploader(cmd.Context(), cfg.Backup, a.log)
			if err != nil {
				return err
			}
			keys, err := uploader.Run(cmd.Context(), a.store)
			if err != nil {
				return err
			}
			for _, k := range keys {
				fmt.Fprintf(cmd.OutOrStdout(), "uploaded s3://%s/%s\n", cfg.Backup.Bucket, k)
			}
			return nil
		},
	}
}

// guestStatus filters the guests listing.
type guestStatus string

const (
	statusAll       guestStatus = "all"
	statusPending   guestStatus = "pending"
	statusAttending guestStatus = "attending"
	statusDeclined  guestStatus = "declined"
)

func newGuestsCmd(cfg *config.Config) *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "guests",
		Short: "List invited parties with their latest RSVP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cfg)
			if err != nil {
				return err
			}
			defer a.Close()
			return listGuests(cmd.Context(), cmd.OutOrStdout(), a, guestStatus(status))
		},
	}
	cmd.Flags().StringVar(&status, "status", string(statusAll), "Filter: all, pending, attending or declined")
	return cmd
}

func listGuests(ctx context.Context, w io.Writer, a *app, status guestStatus) error {
	switch status {
	case statusAll, statusPending, statusAttending, statusDeclined:
	default:
		return fmt.Errorf("unknown status %q", status)
	}

	all, err := a.guests.All(ctx)
	if err != nil {
		return err
	}
	rsvps, err := a.records.RSVPs(ctx)
	if err != nil {
		return err
	}
	latest := make(map[string]models.RSVPRecord, len(rsvps))
	for _, r := range rsvps {
		latest[r.InviteCode] = r
	}

	shown := 0
	for _, g := range all {
		rec, replied := latest[g.InviteCode]
		switch {
		case status == statusPending && replied,
			status == statusAttending && (!replied || rec.Attending != models.AttendingYes),
			status == statusDeclined && (!replied || rec.Attending != models.AttendingNo):
			continue
		}

		fmt.Fprintf(w, "Code: %s\n", g.InviteCode)
		fmt.Fprintf(w, "Party: %s (%d-%d)\n", g.PartyLabel, g.PartySizeMin, g.PartySizeMax)
		if replied {
			fmt.Fprintf(w, "RSVP: %s, %d attending (%s)\n", rec.Attending, rec.AttendeeCount, rec.Timestamp.Format("2006-01-02 15:04:05"))
		} else {
			fmt.Fprintln(w, "RSVP: pending")
		}
		fmt.Fprintln(w, strings.Repeat("-", 60))
		shown++
	}
	fmt.Fprintf(w, "%d of %d parties\n", shown, len(all))
	return nil
}

func newInviteQRCmd(cfg *config.Config) *cobra.Command {
	var (
		dir  string
		size int
	)
	cmd := &cobra.Command{
		Use:   "invite-qr [code...]",
		Short: "Write invite-link QR codes as PNG files (all guests when no code is given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			var codes []string
			if len(args) == 0 {
				all, err := a.guests.All(cmd.Context())
				if err != nil {
					return err
				}
				for _, g := range all {
					codes = append(codes, g.InviteCode)
				}
			} else {
				for _, c := range args {
					g, err := a.guests.Lookup(cmd.Context(), c)
					if err != nil {
						return fmt.Errorf("%s: %w", c, err)
					}
					codes = append(codes, g.InviteCode)
				}
			}

			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create %s: %w", dir, err)
			}
			for _, code := range codes {
				path := filepath.Join(dir, code+".png")
				if err := qrcode.WriteFile(session.InviteLink(cfg.PublicURL, code), qrcode.Medium, size, path); err != nil {
					return fmt.Errorf("failed to write %s: %w", path, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "invite-qr", "Output directory")
	cmd.Flags().IntVar(&size, "size", 512, "Image size in pixels")
	cmd.Flags().StringVar(&cfg.PublicURL, "public-url", cfg.PublicURL, "Base URL encoded in the QR codes")
	return cmd
}
