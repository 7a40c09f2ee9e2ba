// Package alert emails a failure notification when a run terminates with
// a runtime Error, the way this project's mail.send builtin composed and
// delivered a message with gomail — here repurposed from a scripted
// builtin into an ambient operational concern triggered by the executor
// itself rather than by program code.
package alert

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// SMTPConfig is the connection and routing info an alert is sent with.
// A zero-value Host disables alerting entirely (Notify becomes a no-op).
type SMTPConfig struct {
	Host string
	Port int
	User string
	Pass string
	From string
	To   string
}

func (c SMTPConfig) enabled() bool {
	return c.Host != "" && c.To != ""
}

// Notify sends a failure summary for moduleName. It is a no-op when cfg
// has no Host configured, so callers can construct a zero-value
// SMTPConfig and call Notify unconditionally.
func Notify(cfg SMTPConfig, moduleName string, runErr error) error {
	if !cfg.enabled() {
		return nil
	}

	from := cfg.From
	if from == "" {
		from = cfg.User
	}

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", cfg.To)
	m.SetHeader("Subject", fmt.Sprintf("postfix run failed: %s", moduleName))
	m.SetBody("text/plain", fmt.Sprintf("Module %s failed:\n\n%s\n", moduleName, runErr))

	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Pass)
	return d.DialAndSend(m)
}
