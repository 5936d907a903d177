package utils

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/wneessen/go-mail"

	"github.com/Abhi-Verma2005/OMS-sub001/internal/models"
	"github.com/Abhi-Verma2005/OMS-sub001/internal/money"
)

// EmailNotifier sends order confirmations. It satisfies the
// reconciler's Notifier interface; sends run in a goroutine and a
// failure only ever costs the email, never the order.
type EmailNotifier struct{}

func NewEmailNotifier() *EmailNotifier { return &EmailNotifier{} }

func (n *EmailNotifier) OrderPaid(order models.Order, email string) {
	go func() {
		if err := SendOrderConfirmation(email, order); err != nil {
			log.Printf("❌ Confirmation email to %s failed: %v", email, err)
			return
		}
		log.Printf("📧 Confirmation email sent to %s for order %s", email, order.ID)
	}()
}

func SendOrderConfirmation(to string, order models.Order) error {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		return fmt.Errorf("SMTP_HOST not configured")
	}
	port := 587
	if p, err := strconv.Atoi(os.Getenv("SMTP_PORT")); err == nil && p > 0 {
		port = p
	}
	from := os.Getenv("MAIL_FROM")
	if from == "" {
		from = "noreply@example.com"
	}

	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject(fmt.Sprintf("Order confirmation %s", order.ID))
	msg.SetBodyString(mail.TypeTextHTML, GenerateOrderConfirmationHTML(order))

	client, err := mail.NewClient(host,
		mail.WithPort(port),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(os.Getenv("SMTP_USERNAME")),
		mail.WithPassword(os.Getenv("SMTP_PASSWORD")),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return err
	}

	log.Println("📤 Sending confirmation email to", to)
	return client.DialAndSend(msg)
}

// GenerateOrderConfirmationHTML renders the paid-order summary table.
func GenerateOrderConfirmationHTML(order models.Order) string {
	cur := order.Currency
	itemsHTML := ""
	for _, item := range order.Items {
		itemsHTML += fmt.Sprintf(`
			<tr>
				<td>%s</td>
				<td>%s %s</td>
			</tr>`, item.SiteName, money.FromMinorUnits(item.PriceCents, cur).StringFixed(2), cur)
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="UTF-8">
	<title>Order confirmation</title>
</head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Thank you for your order</h2>
		<p>Your payment was received and your placements are confirmed.</p>
		<p><strong>Order:</strong> %s</p>
		<table style="width: 100%%; border-collapse: collapse;">
			<tr><th align="left">Placement</th><th align="left">Price</th></tr>
			%s
		</table>
		<p style="margin-top: 16px;"><strong>Total: %s %s</strong></p>
	</div>
</body>
</html>`, order.ID, itemsHTML, money.FromMinorUnits(order.TotalAmount, cur).StringFixed(2), cur)
}
