// Package mail abstracts outbound email. Actual delivery is an external
// collaborator (an SMTP relay or provider API behind the Mailer interface);
// the application only ever composes and hands off. LogMailer is the
// development implementation: it writes the mail to the application log so
// verification links are easy to grab locally.
package mail

import "github.com/sirupsen/logrus"

// Mailer sends a templated message to a list of recipients. Implementations
// must be safe for concurrent use; handlers call Send from request goroutines.
type Mailer interface {
	Send(to []string, template string, data map[string]string) error
}

// LogMailer logs outbound mail instead of delivering it.
type LogMailer struct {
	Log *logrus.Logger
}

func (m *LogMailer) Send(to []string, template string, data map[string]string) error {
	m.Log.WithFields(logrus.Fields{
		"to":       to,
		"template": template,
		"data":     data,
	}).Info("outbound mail")
	return nil
}
