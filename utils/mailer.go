package utils

import (
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/wanjohi/questioner/config"
)

// SendMail sends a plain text email using SMTP settings from config.
func SendMail(to, subject, body string) error {
	cfg := config.Get()
	if cfg.SMTPHost == "" || cfg.SMTPFrom == "" {
		return fmt.Errorf("smtp not configured")
	}
	addr := net.JoinHostPort(cfg.SMTPHost, strconv.Itoa(cfg.SMTPPort))
	auth := smtp.PlainAuth("", cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPHost)

	fromName := cfg.SMTPFromName
	if fromName == "" {
		fromName = "Questioner"
	}
	fromHeader := fmt.Sprintf("%s <%s>", encodeRFC2047(fromName), cfg.SMTPFrom)

	headers := map[string]string{
		"From":         fromHeader,
		"To":           to,
		"Subject":      encodeRFC2047(subject),
		"MIME-Version": "1.0",
		"Content-Type": "text/plain; charset=UTF-8",
	}
	var msg strings.Builder
	for k, v := range headers {
		msg.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	msg.WriteString("\r\n")
	msg.WriteString(body)

	if cfg.SMTPTLS {
		return sendWithStartTLS(addr, auth, cfg.SMTPFrom, cfg.SMTPUsername, to, msg.String())
	}
	return smtp.SendMail(addr, auth, cfg.SMTPFrom, []string{to}, []byte(msg.String()))
}

// ActivationMail composes the account activation message for a user.
func ActivationMail(name string, userID uint, token string) (subject, body string) {
	cfg := config.Get()
	link := fmt.Sprintf("%s/activate?uid=%d&token=%s", cfg.FrontendBaseURL, userID, token)
	subject = "Activate your Questioner account"
	body = fmt.Sprintf("Hello %s,\r\n\r\nWelcome to Questioner. Open the link below to activate your account:\r\n\r\n%s\r\n\r\nIf you did not sign up you can ignore this email.\r\n", name, link)
	return subject, body
}

// PasswordResetMail composes the password reset message for a user.
func PasswordResetMail(name string, userID uint, token string) (subject, body string) {
	cfg := config.Get()
	link := fmt.Sprintf("%s/reset_password?uid=%d&token=%s", cfg.FrontendBaseURL, userID, token)
	subject = "Reset your Questioner password"
	body = fmt.Sprintf("Hello %s,\r\n\r\nOpen the link below to choose a new password:\r\n\r\n%s\r\n\r\nIf you did not request a reset you can ignore this email.\r\n", name, link)
	return subject, body
}

// sendWithStartTLS delivers a message over a STARTTLS upgraded connection
// with connection deadlines so a stuck SMTP server cannot hang a request.
func sendWithStartTLS(addr string, auth smtp.Auth, from, username, to, msg string) error {
	d := net.Dialer{Timeout: 5 * time.Second}
	conn, err := d.Dial("tcp", addr)
	if err != nil {
		return err
	}
	_ = conn.SetDeadline(time.Now().Add(15 * time.Second))
	host, _, _ := net.SplitHostPort(addr)
	c, err := smtp.NewClient(conn, host)
	if err != nil {
		_ = conn.Close()
		return err
	}
	defer c.Close()
	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: host}); err != nil {
			return err
		}
	}
	if username != "" {
		if err := c.Auth(auth); err != nil {
			return err
		}
	}
	if err := c.Mail(from); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}
	wc, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := wc.Write([]byte(msg)); err != nil {
		_ = wc.Close()
		return err
	}
	return wc.Close()
}

// encodeRFC2047 encodes a string for non-ASCII mail headers.
func encodeRFC2047(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] >= 128 {
			return fmt.Sprintf("=?UTF-8?B?%s?=", base64.StdEncoding.EncodeToString([]byte(s)))
		}
	}
	return s
}
