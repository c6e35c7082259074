package mail

import (
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"
)

// Mailer abstrae el envío de correos para poder inyectar
// una implementación de consola en dev/tests.
type Mailer interface {
	SendPasswordReset(to, username, resetLink string) error
}

// SMTPMailer envía correos HTML por SMTP plano (net/smtp).
type SMTPMailer struct {
	host     string
	port     string
	username string
	password string
	from     string
}

func NewSMTPMailer(host, port, username, password, from string) *SMTPMailer {
	return &SMTPMailer{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
}

func (m *SMTPMailer) SendPasswordReset(to, username, resetLink string) error {
	subject := "Restablecer tu contraseña"
	body := fmt.Sprintf(`
        <html>
        <body>
            <h1>Restablecer contraseña</h1>
            <p>Hola %s,</p>
            <p>Pediste restablecer tu contraseña. Hacé clic en el enlace para continuar:</p>
            <p><a href="%s">Restablecer mi contraseña</a></p>
            <p>Si no fuiste vos, ignorá este correo.</p>
        </body>
        </html>
    `, username, resetLink)

	return m.send(to, subject, body)
}

func (m *SMTPMailer) send(to, subject, body string) error {
	addr := fmt.Sprintf("%s:%s", m.host, m.port)
	auth := smtp.PlainAuth("", m.username, m.password, m.host)

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)

	return smtp.SendMail(addr, auth, m.from, []string{to}, []byte(b.String()))
}

// LogMailer es la variante dev: loguea el correo en vez de enviarlo.
type LogMailer struct {
	log *zap.Logger
}

func NewLogMailer(log *zap.Logger) *LogMailer {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogMailer{log: log}
}

func (m *LogMailer) SendPasswordReset(to, username, resetLink string) error {
	m.log.Info("password reset email (dev mode, not sent)",
		zap.String("to", to),
		zap.String("username", username),
		zap.String("reset_link", resetLink),
	)
	return nil
}
