// Package mailer ships two NotificationSender implementations: WriterSender
// for development and tests, and SMTPSender for plain SMTP delivery.
package mailer
