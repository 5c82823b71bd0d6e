package utils

import (
	"fmt"
	"log"
	"net/smtp"
)

// Mailer sends plain-text mail through an SMTP relay. When no host is
// configured the mailer runs in log-only mode, which keeps local
// development working without a relay.
type Mailer struct {
	Host string
	Port string
	From string
}

// SendOTP delivers a password reset code to the given address. In log-only
// mode the code is printed to the server log instead.
func (m *Mailer) SendOTP(to, otp string) error {
	if m == nil || m.Host == "" {
		log.Printf("mailer: no SMTP relay configured, OTP for %s: %s", to, otp)
		return nil
	}
	body := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: Password reset code\r\n\r\nYour password reset code is %s. It expires shortly.\r\n",
		m.From, to, otp)
	addr := m.Host + ":" + m.Port
	return smtp.SendMail(addr, nil, m.From, []string{to}, []byte(body))
}
