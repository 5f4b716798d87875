package mail

import (
	"fmt"
	"log"
	"net/smtp"

	"github.com/saasbase-io/saasbase/internal/pkg/env"
)

// SendMail sends a single HTML email via SMTP.
func SendMail(to string, subject string, body string) error {
	host := env.GetEnv("SMTP_HOST", "")
	port := env.GetEnv("SMTP_PORT", "")
	username := env.GetEnv("SMTP_USERNAME", "")
	password := env.GetEnv("SMTP_PASSWORD", "")
	sender := env.GetEnv("SMTP_SENDER", "")

	if sender == "" {
		sender = fmt.Sprintf("no-reply@%s", "localhost")
		log.Printf("SMTP_SENDER not set, using default sender: %s", sender)
	}

	var auth smtp.Auth
	if username != "" && password != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}

	addr := fmt.Sprintf("%s:%s", host, port)

	msg := []byte(
		fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n", sender, to, subject) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=UTF-8\r\n\r\n" +
			body,
	)

	err := smtp.SendMail(addr, auth, sender, []string{to}, msg)
	if err != nil {
		log.Printf("SMTP send error: %v", err)
	} else {
		log.Printf("Email sent to %s via %s", to, addr)
	}
	return err
}

// SendWelcome greets a freshly registered user. Fire and forget,
// registration must not fail on mail problems.
func SendWelcome(to string, name string) {
	subject := "Welcome aboard"
	body := fmt.Sprintf("<p>Hi %s,</p><p>your account is ready. You can manage your subscription any time from the billing page.</p>", name)
	go func() {
		_ = SendMail(to, subject, body)
	}()
}

// SendPaymentFailed notifies a customer that an invoice payment did
// not go through so they can update their payment method.
func SendPaymentFailed(to string, amount int64, currency string) {
	subject := "Payment failed"
	body := fmt.Sprintf("<p>We could not collect %.2f %s for your subscription. Please update your payment method to keep your plan active.</p>",
		float64(amount)/100, currency)
	go func() {
		_ = SendMail(to, subject, body)
	}()
}
