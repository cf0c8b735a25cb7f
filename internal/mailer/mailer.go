package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"embed"
	"fmt"
	"html/template"
	"log"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/meowls-gov/visa-portal/internal/domain"
)

//go:embed templates/*.html templates/*.txt
var templateFS embed.FS

// SMTPMailer sends decision notifications. Send errors propagate so the review
// workflow can report email_sent accurately.
type SMTPMailer struct {
	host     string
	port     string
	username string
	password string
	from     string
	fromName string

	templates *template.Template
}

func New(host, port, username, password, from, fromName string) (*SMTPMailer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html", "templates/*.txt")
	if err != nil {
		return nil, err
	}
	return &SMTPMailer{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		from:      from,
		fromName:  fromName,
		templates: tmpl,
	}, nil
}

type emailData struct {
	FullName      string
	ApplicationID string
	VisaType      string
	ArrivalDate   string
	DepartureDate string
	Notes         string
	Letter        string
	IssueDate     string
}

func (m *SMTPMailer) SendApprovalEmail(ctx context.Context, app *domain.VisaApplication) error {
	data := m.buildData(app, "")

	letter, err := m.render("approval-letter.txt", data)
	if err != nil {
		return err
	}
	data.Letter = letter

	body, err := m.render("approval-email.html", data)
	if err != nil {
		return err
	}

	return m.send(ctx, app.PersonalInfo.Email, "Your Meowls Visa is APPROVED!", body)
}

func (m *SMTPMailer) SendRejectionEmail(ctx context.Context, app *domain.VisaApplication, notes string) error {
	data := m.buildData(app, notes)

	body, err := m.render("rejection-email.html", data)
	if err != nil {
		return err
	}

	return m.send(ctx, app.PersonalInfo.Email, "Meowls Visa Application Update", body)
}

func (m *SMTPMailer) buildData(app *domain.VisaApplication, notes string) emailData {
	return emailData{
		FullName:      app.PersonalInfo.FullName,
		ApplicationID: app.ApplicationID,
		VisaType:      titleCase(string(app.VisaType)),
		ArrivalDate:   app.TravelDetails.ArrivalDate,
		DepartureDate: app.TravelDetails.DepartureDate,
		Notes:         notes,
		IssueDate:     time.Now().UTC().Format("January 2, 2006"),
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func (m *SMTPMailer) render(name string, data emailData) (string, error) {
	var buf bytes.Buffer
	if err := m.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (m *SMTPMailer) send(ctx context.Context, to, subject, htmlBody string) error {
	if to == "" {
		return fmt.Errorf("no recipient address on application")
	}

	fromHeader := fmt.Sprintf("%s <%s>", m.fromName, m.from)

	msg := strings.Join([]string{
		fmt.Sprintf("From: %s", fromHeader),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		`Content-Type: text/html; charset="UTF-8"`,
		"",
		htmlBody,
	}, "\r\n")

	log.Printf("[MAIL] smtp sending to=%s via=%s", to, net.JoinHostPort(m.host, m.port))

	if err := m.sendSMTPWithTimeout(ctx, to, []byte(msg)); err != nil {
		return err
	}

	log.Printf("[MAIL] sent to=%s", to)
	return nil
}

func (m *SMTPMailer) sendSMTPWithTimeout(ctx context.Context, to string, msg []byte) error {
	addr := net.JoinHostPort(m.host, m.port)

	dialer := &net.Dialer{Timeout: 8 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	// deadline covers the whole SMTP conversation
	_ = conn.SetDeadline(time.Now().Add(15 * time.Second))

	c, err := smtp.NewClient(conn, m.host)
	if err != nil {
		return err
	}
	defer func() { _ = c.Quit() }()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: m.host}); err != nil {
			return err
		}
	}

	if m.username != "" {
		auth := smtp.PlainAuth("", m.username, m.password, m.host)
		if err := c.Auth(auth); err != nil {
			return err
		}
	}

	if err := c.Mail(m.from); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}

	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}
