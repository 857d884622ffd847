package whatsapp

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/skip2/go-qrcode"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types/events"
	"google.golang.org/protobuf/proto"
)

type Config struct {
	DataDir string
	// QROut receives the pairing QR code when the device is not linked yet.
	QROut io.Writer
}

// Service is a linked WhatsApp device used to send plain text messages.
type Service struct {
	client *whatsmeow.Client
	cfg    *Config
	log    zerolog.Logger
}

// NewService opens the device store in cfg.DataDir and prepares a client.
func NewService(ctx context.Context, cfg *Config, log zerolog.Logger) (*Service, error) {
	logger := log.With().Str("component", "WhatsApp").Logger()

	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	container, err := sqlstore.New(ctx, "sqlite3", fmt.Sprintf("file:%s/whatsmeow.db?_foreign_keys=on", cfg.DataDir), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create database: %w", err)
	}

	deviceStore, err := container.GetFirstDevice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get device: %w", err)
	}

	client := whatsmeow.NewClient(deviceStore, nil)

	service := &Service{
		client: client,
		cfg:    cfg,
		log:    logger,
	}
	client.AddEventHandler(service.eventHandler)

	return service, nil
}

// Linked reports whether the device has been paired with a phone.
func (s *Service) Linked() bool {
	return s.client.Store.ID != nil
}

// NormalizePhoneNumber strips formatting characters and an international
// "00" prefix, leaving digits only.
func NormalizePhoneNumber(phoneNumber string) string {
	var b strings.Builder
	for _, r := range phoneNumber {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return strings.TrimPrefix(b.String(), "00")
}

// Connect connects to WhatsApp. An unlinked device prints a pairing QR code
// to cfg.QROut and blocks until pairing succeeds or times out.
func (s *Service) Connect(ctx context.Context) error {
	if s.Linked() {
		if err := s.client.Connect(); err != nil {
			return fmt.Errorf("failed to connect: %w", err)
		}
		return nil
	}

	qrChan, err := s.client.GetQRChannel(ctx)
	if err != nil {
		return fmt.Errorf("failed to get QR channel: %w", err)
	}
	if err := s.client.Connect(); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	for evt := range qrChan {
		switch evt.Event {
		case "code":
			s.printQR(evt.Code)
		case "success":
			s.log.Info().Msg("Device linked")
			return nil
		default:
			s.log.Info().Str("event", evt.Event).Msg("Login event")
		}
	}
	if !s.Linked() {
		return fmt.Errorf("device was not linked")
	}
	return nil
}

func (s *Service) printQR(code string) {
	if s.cfg.QROut == nil {
		s.log.Warn().Msg("Device not linked and no QR output configured")
		return
	}
	q, err := qrcode.New(code, qrcode.Medium)
	if err != nil {
		fmt.Fprintf(s.cfg.QROut, "QR Code: %s\n", code)
		return
	}
	fmt.Fprintln(s.cfg.QROut, "\n"+q.ToSmallString(false))
	fmt.Fprintln(s.cfg.QROut, "Scan with WhatsApp: Settings > Linked Devices > Link a Device")
}

// Disconnect disconnects from WhatsApp
func (s *Service) Disconnect() {
	s.client.Disconnect()
}

// SendMessage sends a plain text message to a phone number
func (s *Service) SendMessage(ctx context.Context, phoneNumber, message string) error {
	phoneNumber = NormalizePhoneNumber(phoneNumber)
	if phoneNumber == "" {
		return fmt.Errorf("empty phone number")
	}

	resp, err := s.client.IsOnWhatsApp(ctx, []string{phoneNumber})
	if err != nil {
		return fmt.Errorf("failed to verify number on WhatsApp: %w", err)
	}
	if len(resp) == 0 || !resp[0].IsIn {
		return fmt.Errorf("number %s is not registered on WhatsApp", phoneNumber)
	}
	jid := resp[0].JID

	s.log.Debug().Str("jid", jid.String()).Msg("Sending message")

	sent, err := s.client.SendMessage(ctx, jid, &waE2E.Message{
		Conversation: proto.String(message),
	})
	if err != nil {
		return fmt.Errorf("failed to send message to %s: %w", jid.String(), err)
	}

	s.log.Debug().Str("id", string(sent.ID)).Time("timestamp", sent.Timestamp).Msg("Message sent")
	return nil
}

func (s *Service) eventHandler(evt interface{}) {
	switch evt.(type) {
	case *events.Connected:
		s.log.Info().Msg("Connected to WhatsApp")
	case *events.Disconnected:
		s.log.Info().Msg("Disconnected from WhatsApp")
	case *events.LoggedOut:
		s.log.Warn().Msg("Logged out from WhatsApp")
	}
}
