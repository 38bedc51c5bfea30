// SPDX-License-Identifier: Apache-2.0
package cmdutil

import (
	"context"
	"fmt"
	"io"

	"github.com/Work-Fort/Intake/pkg/config"
	"github.com/Work-Fort/Intake/pkg/identity"
	"github.com/Work-Fort/Intake/pkg/notify"
)

// Console prints notices to w with the theme's icons
func Console(w io.Writer) notify.Notifier {
	theme := config.CurrentTheme
	return notify.Func(func(message string, severity notify.Severity) {
		switch severity {
		case notify.Success:
			fmt.Fprintln(w, theme.SuccessMessage(message))
		case notify.Error:
			fmt.Fprintln(w, theme.ErrorMessage(message))
		default:
			fmt.Fprintln(w, theme.InfoMessage(message))
		}
	})
}

// printMailer shows outgoing mail instead of queueing it
func printMailer(w io.Writer) identity.Mailer {
	theme := config.CurrentTheme
	return identity.MailerFunc(func(_ context.Context, msg identity.Message) error {
		fmt.Fprintln(w, theme.InfoMessage("Dry run: mail to "+msg.To+": "+msg.Subject))
		fmt.Fprintln(w, theme.SubtleStyle().Render(msg.Body))
		return nil
	})
}
