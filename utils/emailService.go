package utils

import (
	"edumarket/config"
	"fmt"
	"html"
	"log"
	"net/http"
	"net/smtp"
	"strings"
	"time"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const (
	appName          = "EduMarket"
	sendgridEndpoint = "/v3/mail/send"
	sendgridHost     = "https://api.sendgrid.com"
)

// Generic Send Email
func SendEmail(to []string, subject string, htmlBody string) error {
	cfg := config.AppConfig
	if cfg == nil || cfg.EmailSender == "" || len(to) == 0 {
		log.Printf("[EMAIL] Skipping %q to %v: email not configured", subject, to)
		return nil
	}

	if cfg.SendGridAPIKey != "" {
		return sendWithSendGrid(cfg, to, subject, htmlBody)
	}
	if cfg.Password == "" {
		log.Printf("[EMAIL] Skipping %q to %v: no SMTP password", subject, to)
		return nil
	}
	return sendWithSMTP(cfg, to, subject, htmlBody)
}

func sendWithSendGrid(cfg *config.Config, to []string, subject, htmlBody string) error {
	p := sgmail.NewPersonalization()
	p.Subject = subject
	for _, addr := range to {
		p.AddTos(sgmail.NewEmail("", addr))
	}

	m := sgmail.NewV3Mail()
	m.SetFrom(sgmail.NewEmail(appName, cfg.EmailSender))
	m.AddPersonalizations(p)
	m.AddContent(sgmail.NewContent("text/html", htmlBody))

	req := sendgrid.GetRequest(cfg.SendGridAPIKey, sendgridEndpoint, sendgridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(m)

	res, err := sendgrid.API(req)
	if err != nil {
		log.Printf("[EMAIL] SendGrid error for %q: %v", subject, err)
		return err
	}
	if res.StatusCode >= http.StatusBadRequest {
		log.Printf("[EMAIL] SendGrid rejected %q: %d %s", subject, res.StatusCode, res.Body)
		return fmt.Errorf("sendgrid status %d", res.StatusCode)
	}
	log.Printf("[EMAIL] Sent %q to %v", subject, to)
	return nil
}

func sendWithSMTP(cfg *config.Config, to []string, subject, htmlBody string) error {
	msg := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n"
	msg += fmt.Sprintf("From: %s <%s>\r\n", appName, cfg.EmailSender)
	msg += fmt.Sprintf("To: %s\r\n", strings.Join(to, ","))
	msg += fmt.Sprintf("Subject: %s\r\n\r\n", subject)
	msg += htmlBody

	auth := smtp.PlainAuth("", cfg.EmailSender, cfg.Password, cfg.SMTPHost)
	if err := smtp.SendMail(cfg.SMTPHost+":"+cfg.SMTPPort, auth, cfg.EmailSender, to, []byte(msg)); err != nil {
		log.Printf("[EMAIL] SMTP error for %q: %v", subject, err)
		return err
	}
	log.Printf("[EMAIL] Sent %q to %v", subject, to)
	return nil
}

func frontendLink(path string) string {
	base := "http://localhost:5500"
	if config.AppConfig != nil && config.AppConfig.FrontendURL != "" {
		base = strings.TrimRight(config.AppConfig.FrontendURL, "/")
	}
	return base + path
}

func getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F4F6FB; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; }
			.header { background-color: #1C1D5E; padding: 28px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 22px; letter-spacing: 1px; }
			.content { padding: 36px 30px; color: #1C1D5E; line-height: 1.6; }
			.footer { background-color: #F4F6FB; padding: 18px; text-align: center; font-size: 12px; color: #666666; }
			.btn { display: inline-block; padding: 12px 24px; background-color: #5B5BD6; color: #FFFFFF; text-decoration: none; border-radius: 4px; font-weight: bold; margin-top: 16px; }
			.info-box { background: #EEF0FF; padding: 15px; border-radius: 4px; border-left: 4px solid #5B5BD6; margin: 20px 0; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header"><h1>%s</h1></div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
			<div class="footer">&copy; %d %s. All rights reserved.</div>
		</div>
	</body>
	</html>
	`, strings.ToUpper(appName), title, bodyContent, time.Now().Year(), appName)
}

// --- Triggers ---

func SendOTPEmail(email, otp, purpose string) {
	subject := "Your verification code"
	intro := "Use the code below to verify your email address."
	if purpose == "FORGOT_PASSWORD" {
		subject = "Reset your password"
		intro = "Use the code below to reset your password. If you did not request this, ignore this email."
	}
	body := fmt.Sprintf(`
		<p>%s</p>
		<div class="info-box" style="text-align:center;font-size:32px;letter-spacing:6px;"><strong>%s</strong></div>
		<p>The code expires in 10 minutes. Do not share it with anyone.</p>
	`, intro, otp)

	go SendEmail([]string{email}, subject, getEmailTemplate(subject, body))
}

func SendWelcomeEmail(email, name string) {
	subject := "Welcome to " + appName
	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>Your account is ready. Browse the catalog and start learning today.</p>
		<a href="%s" class="btn">Explore courses</a>
	`, html.EscapeString(name), frontendLink("/courses"))

	go SendEmail([]string{email}, subject, getEmailTemplate("Welcome aboard!", body))
}

func SendPurchaseEmail(email, name, orderCode string, titles []string, total string) {
	subject := "Order confirmed: " + orderCode
	var items strings.Builder
	for _, t := range titles {
		items.WriteString("<li>" + html.EscapeString(t) + "</li>")
	}
	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>Thanks for your purchase. Your payment of <strong>%s</strong> was received.</p>
		<div class="info-box"><strong>Order %s</strong><ul>%s</ul></div>
		<a href="%s" class="btn">Start learning</a>
	`, html.EscapeString(name), total, orderCode, items.String(), frontendLink("/my-courses"))

	go SendEmail([]string{email}, subject, getEmailTemplate("Payment successful", body))
}

func SendRefundEmail(email, name, orderCode, total string) {
	subject := "Refund processed: " + orderCode
	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>Your order <strong>%s</strong> has been refunded. <strong>%s</strong> will be returned to your original payment method.</p>
		<p>Access to the courses in this order has been removed.</p>
	`, html.EscapeString(name), orderCode, total)

	go SendEmail([]string{email}, subject, getEmailTemplate("Order refunded", body))
}

func SendCourseReviewedEmail(email, name, courseTitle string, approved bool, note string) {
	if approved {
		subject := "Course published: " + courseTitle
		body := fmt.Sprintf(`
			<p>Hi %s,</p>
			<p>Great news! <strong>%s</strong> has been approved and is now live in the catalog.</p>
		`, html.EscapeString(name), html.EscapeString(courseTitle))
		go SendEmail([]string{email}, subject, getEmailTemplate("Course approved", body))
		return
	}

	subject := "Changes requested: " + courseTitle
	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>Your course <strong>%s</strong> was not approved yet.</p>
		<div class="info-box"><strong>Reviewer note:</strong> %s</div>
		<p>Update the course and submit it again for review.</p>
	`, html.EscapeString(name), html.EscapeString(courseTitle), html.EscapeString(note))
	go SendEmail([]string{email}, subject, getEmailTemplate("Course needs changes", body))
}

func SendInstructorDecisionEmail(email, name string, approved bool, reason string) {
	if approved {
		body := fmt.Sprintf(`
			<p>Hi %s,</p>
			<p>Your instructor application has been approved. You can now create and publish courses.</p>
			<a href="%s" class="btn">Open instructor dashboard</a>
		`, html.EscapeString(name), frontendLink("/instructor"))
		go SendEmail([]string{email}, "You are now an instructor", getEmailTemplate("Application approved", body))
		return
	}

	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>Unfortunately your instructor application was not approved.</p>
		<div class="info-box"><strong>Reason:</strong> %s</div>
	`, html.EscapeString(name), html.EscapeString(reason))
	go SendEmail([]string{email}, "Instructor application update", getEmailTemplate("Application rejected", body))
}

func SendEnrollmentExpiringEmail(email, name, courseTitle string, expiresAt time.Time) {
	subject := "Your access to " + courseTitle + " ends soon"
	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>Your access to <strong>%s</strong> ends on <strong>%s</strong>.</p>
		<p>Finish the remaining lessons or renew your access to keep learning.</p>
	`, html.EscapeString(name), html.EscapeString(courseTitle), expiresAt.Format("January 2, 2006"))

	go SendEmail([]string{email}, subject, getEmailTemplate("Access ending soon", body))
}

func SendEnrollmentExpiredEmail(email, name, courseTitle string) {
	subject := "Your access to " + courseTitle + " has ended"
	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>Your access to <strong>%s</strong> has expired. Purchase the course again to continue where you left off.</p>
	`, html.EscapeString(name), html.EscapeString(courseTitle))

	go SendEmail([]string{email}, subject, getEmailTemplate("Access expired", body))
}
