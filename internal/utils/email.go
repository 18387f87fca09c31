package utils

import (
	"context"
	"errors"
	"log"

	"disputeshield_back_end/internal/config"

	"github.com/wneessen/go-mail"
)

// Mailer envoie les e-mails transactionnels via SMTP
type Mailer struct {
	cfg config.SMTPConfig
}

// NewMailer renvoie nil si SMTP_HOST n'est pas configuré : les notifications restent alors in-app
func NewMailer(cfg config.SMTPConfig) *Mailer {
	if cfg.Host == "" {
		log.Println("⚠️ SMTP_HOST non défini: e-mails désactivés")
		return nil
	}
	return &Mailer{cfg: cfg}
}

func (m *Mailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	if m == nil {
		return errors.New("mailer non configuré")
	}

	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	client, err := mail.NewClient(m.cfg.Host,
		mail.WithPort(m.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(m.cfg.Username),
		mail.WithPassword(m.cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return err
	}

	log.Println("📤 Envoi de l'e-mail à", to)
	return client.DialAndSendWithContext(ctx, msg)
}
