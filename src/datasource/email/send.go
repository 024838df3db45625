// send.go
package email

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"os"
	"strings"

	"github.com/jordan-wright/email"

	"trafficstops/src/config"
)

// SendReport mails the rendered report workbook to the configured
// recipient over SMTP with explicit TLS.
func SendReport(c *config.Config, workbookPath string) error {
	from := c.SendEmail.Username

	e := email.NewEmail()
	e.From = fmt.Sprintf("Stop Report <%s>", from)
	e.To = []string{c.SendEmail.To}
	e.Subject = c.SendEmail.Subject
	e.Text = []byte("Attached is the latest traffic stop analysis report.")

	if _, err := os.Stat(workbookPath); err != nil {
		return fmt.Errorf("report workbook missing: %w", err)
	}
	if _, err := e.AttachFile(workbookPath); err != nil {
		return fmt.Errorf("cannot attach report: %w", err)
	}

	smtpAddr := c.SendEmail.Server
	if !strings.Contains(smtpAddr, ":") {
		smtpAddr += ":465"
	}
	host := strings.Split(smtpAddr, ":")[0]

	err := e.SendWithTLS(
		smtpAddr,
		smtp.PlainAuth("", from, c.SendEmail.Password, host),
		&tls.Config{ServerName: host},
	)
	if err != nil {
		return fmt.Errorf("report mail failed via %s: %w", smtpAddr, err)
	}

	return nil
}
