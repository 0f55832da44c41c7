package email

import (
	"context"
	"fmt"
	"net/url"
)

// Mailer compone y envía los correos del ciclo de cuenta sobre un Sender.
type Mailer struct {
	sender  Sender
	baseURL string
}

func NewMailer(sender Sender, baseURL string) *Mailer {
	if sender == nil {
		sender = LogSender{}
	}
	return &Mailer{sender: sender, baseURL: baseURL}
}

// SendVerification envía el link de verificación con el token crudo.
func (m *Mailer) SendVerification(ctx context.Context, to, token string) error {
	link := m.link("/verify-email", token)
	html := fmt.Sprintf(
		`<p>Bienvenido a MachWork.</p><p>Confirmá tu cuenta haciendo clic <a href="%s">acá</a>.</p><p>El link vence en 24 horas.</p>`,
		link)
	text := fmt.Sprintf(
		"Bienvenido a MachWork.\n\nConfirmá tu cuenta abriendo este link:\n%s\n\nEl link vence en 24 horas.\n",
		link)
	return m.sender.Send(ctx, to, "Verificá tu cuenta de MachWork", html, text)
}

// SendPasswordReset envía el link de reset con el token crudo.
func (m *Mailer) SendPasswordReset(ctx context.Context, to, token string) error {
	link := m.link("/reset-password", token)
	html := fmt.Sprintf(
		`<p>Recibimos un pedido para restablecer tu contraseña.</p><p><a href="%s">Elegí una nueva contraseña</a>. El link vence en 2 horas.</p><p>Si no fuiste vos, ignorá este correo.</p>`,
		link)
	text := fmt.Sprintf(
		"Recibimos un pedido para restablecer tu contraseña.\n\nElegí una nueva abriendo este link:\n%s\n\nEl link vence en 2 horas. Si no fuiste vos, ignorá este correo.\n",
		link)
	return m.sender.Send(ctx, to, "Restablecé tu contraseña de MachWork", html, text)
}

func (m *Mailer) link(path, token string) string {
	return fmt.Sprintf("%s%s?token=%s", m.baseURL, path, url.QueryEscape(token))
}
