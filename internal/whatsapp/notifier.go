package whatsapp

import (
	"context"
	"fmt"
	"strings"

	"wedding-site/internal/config"
	"wedding-site/internal/models"
)

// Sender delivers a text message to a phone number.
type Sender interface {
	SendMessage(ctx context.Context, phoneNumber, message string) error
}

// Notifier tells the couple about new RSVPs and pledges.
type Notifier struct {
	sender     Sender
	recipients []string
}

// NewNotifier sends to every number in recipients.
func NewNotifier(sender Sender, recipients ...string) *Notifier {
	return &Notifier{sender: sender, recipients: recipients}
}

// RSVPReceived sends an RSVP summary to every recipient.
func (n *Notifier) RSVPReceived(ctx context.Context, rec models.RSVPRecord) error {
	return n.broadcast(ctx, RSVPMessage(rec))
}

// PledgeReceived sends a pledge summary to every recipient.
func (n *Notifier) PledgeReceived(ctx context.Context, rec models.PledgeRecord) error {
	return n.broadcast(ctx, PledgeMessage(rec))
}

func (n *Notifier) broadcast(ctx context.Context, message string) error {
	for _, to := range n.recipients {
		if err := n.sender.SendMessage(ctx, to, message); err != nil {
			return fmt.Errorf("failed to notify %s: %w", to, err)
		}
	}
	return nil
}

// RSVPMessage formats an RSVP notification.
func RSVPMessage(rec models.RSVPRecord) string {
	var b strings.Builder
	if rec.Attending == models.AttendingYes {
		fmt.Fprintf(&b, "🎉 *RSVP: %s is coming* (%d)\n", rec.PartyLabel, rec.AttendeeCount)
	} else {
		fmt.Fprintf(&b, "😢 *RSVP: %s can't make it*\n", rec.PartyLabel)
	}
	fmt.Fprintf(&b, "Code: %s\n", rec.InviteCode)
	writeOptional(&b, "Dietary", rec.Dietary)
	writeOptional(&b, "Allergies", rec.Allergies)
	writeOptional(&b, "Song", rec.SongRequest)
	writeOptional(&b, "Message", rec.Message)
	return strings.TrimRight(b.String(), "\n")
}

// PledgeMessage formats a pledge notification.
func PledgeMessage(rec models.PledgeRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "💸 *Pledge from %s*\n", rec.PartyLabel)
	fmt.Fprintf(&b, "%s: R%d (%s)\n", rec.Token, rec.Amount, rec.Area)
	fmt.Fprintf(&b, "Reference: %s\n", rec.ReferenceCode)
	writeOptional(&b, "Suggestion", rec.Suggestion)
	return strings.TrimRight(b.String(), "\n")
}

func writeOptional(b *strings.Builder, label, value string) {
	if value != "" {
		fmt.Fprintf(b, "%s: %s\n", label, value)
	}
}

// InvitationMessage formats the invitation sent to a guest, including the
// personal link that opens their RSVP page.
func InvitationMessage(event *config.Event, guest models.Guest, link string) string {
	return fmt.Sprintf(
		"🎉 *Wedding Invitation*\n\n"+
			"Dear %s,\n\n"+
			"You are invited to celebrate the wedding of *%s*\n\n"+
			"📅 Date: %s\n"+
			"📍 Location: %s\n"+
			"🕒 Time: %s\n\n"+
			"Please RSVP by %s here:\n%s",
		guest.PartyLabel, event.CoupleNames,
		event.WeddingDate.Format("Monday, 02 January 2006"),
		event.VenueName, event.StartTimeText,
		event.RSVPDeadline.Format("02 January 2006"), link,
	)
}
