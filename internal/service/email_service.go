package service

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/aurelia-jewelry/internal/config"
	"github.com/aurelia-jewelry/internal/constants"
	"github.com/aurelia-jewelry/internal/models"
)

const defaultEmailTimeout = 10 * time.Second

// mailSender 投递已组装的邮件，测试中可替换
type mailSender func(cfg *config.EmailConfig, to string, msg []byte) error

// EmailService 邮件发送服务
type EmailService struct {
	cfg  *config.EmailConfig
	send mailSender
}

// NewEmailService 创建邮件服务
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return &EmailService{cfg: cfg, send: deliverSMTP}
}

// SendOrderConfirmation 发送下单确认邮件
func (s *EmailService) SendOrderConfirmation(order *models.Order) error {
	subject, body, err := buildOrderConfirmationContent(order)
	if err != nil {
		return err
	}
	return s.sendTextEmail(order.CustomerEmail, subject, body)
}

// SendOrderStatusEmail 发送订单状态通知
func (s *EmailService) SendOrderStatusEmail(order *models.Order, status string) error {
	subject, body, err := buildOrderStatusContent(order, status)
	if err != nil {
		return err
	}
	return s.sendTextEmail(order.CustomerEmail, subject, body)
}

func (s *EmailService) sendTextEmail(toEmail, subject, body string) error {
	if s.cfg == nil || !s.cfg.Enabled {
		return ErrEmailServiceDisabled
	}
	if s.cfg.Host == "" || s.cfg.Port == 0 || s.cfg.From == "" {
		return ErrEmailServiceNotConfigured
	}
	if _, err := mail.ParseAddress(toEmail); err != nil {
		return ErrInvalidEmail
	}
	from := buildFromAddress(s.cfg.From, s.cfg.FromName)
	msg := buildEmailMessage(from, toEmail, subject, body)
	return normalizeEmailSendError(s.send(s.cfg, toEmail, []byte(msg)))
}

func deliverSMTP(cfg *config.EmailConfig, to string, msg []byte) error {
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	var auth smtp.Auth
	if cfg.Username != "" || cfg.Password != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	recipients := []string{to}
	timeout := emailTimeout(cfg)
	if cfg.UseSSL {
		return sendMailWithSSL(addr, timeout, auth, cfg.Host, cfg.From, recipients, msg)
	}
	if cfg.UseTLS {
		return sendMailWithStartTLS(addr, timeout, auth, cfg.Host, cfg.From, recipients, msg)
	}
	return sendMailPlain(addr, timeout, auth, cfg.Host, cfg.From, recipients, msg)
}

// emailTimeout 单次投递的整体超时，覆盖拨号与全部 SMTP 会话
func emailTimeout(cfg *config.EmailConfig) time.Duration {
	if cfg == nil || cfg.TimeoutSeconds <= 0 {
		return defaultEmailTimeout
	}
	return time.Duration(cfg.TimeoutSeconds) * time.Second
}

type orderEmailLine struct {
	Name     string
	Variant  string
	Quantity int
	Total    string
}

type orderEmailView struct {
	CustomerName   string
	OrderNo        string
	StatusLabel    string
	Currency       string
	Items          []orderEmailLine
	Subtotal       string
	Discount       string
	HasDiscount    bool
	CouponCode     string
	Shipping       string
	Total          string
	IsPickup       bool
	PickupLocation string
	Address        string
}

var orderConfirmationTemplate = template.Must(template.New("order_confirmation").Parse(`Hi {{.CustomerName}},

Thank you for your order {{.OrderNo}}. We have received your payment and will prepare your pieces shortly.

{{range .Items}}- {{.Name}}{{with .Variant}} ({{.}}){{end}} x{{.Quantity}}: {{.Total}}
{{end}}
Subtotal: {{.Subtotal}} {{.Currency}}
{{if .HasDiscount}}Discount{{with .CouponCode}} ({{.}}){{end}}: -{{.Discount}} {{.Currency}}
{{end}}Shipping: {{.Shipping}} {{.Currency}}
Total: {{.Total}} {{.Currency}}

{{if .IsPickup}}Pickup location: {{.PickupLocation}}{{else}}Shipping to: {{.Address}}{{end}}
`))

var orderStatusTemplate = template.Must(template.New("order_status").Parse(`Hi {{.CustomerName}},

Your order {{.OrderNo}} is now {{.StatusLabel}}.
Total: {{.Total}} {{.Currency}}
`))

func buildOrderConfirmationContent(order *models.Order) (string, string, error) {
	if order == nil {
		return "", "", ErrOrderNotFound
	}
	var buf bytes.Buffer
	if err := orderConfirmationTemplate.Execute(&buf, newOrderEmailView(order)); err != nil {
		return "", "", err
	}
	return fmt.Sprintf("Order confirmation %s", order.OrderNo), buf.String(), nil
}

func buildOrderStatusContent(order *models.Order, status string) (string, string, error) {
	if order == nil {
		return "", "", ErrOrderNotFound
	}
	view := newOrderEmailView(order)
	view.StatusLabel = orderStatusLabel(status)
	var buf bytes.Buffer
	if err := orderStatusTemplate.Execute(&buf, view); err != nil {
		return "", "", err
	}
	return fmt.Sprintf("Order %s %s", order.OrderNo, view.StatusLabel), buf.String(), nil
}

func newOrderEmailView(order *models.Order) orderEmailView {
	view := orderEmailView{
		CustomerName: order.CustomerName,
		OrderNo:      order.OrderNo,
		Currency:     strings.ToUpper(order.Currency),
		Subtotal:     order.SubtotalAmount.String(),
		Discount:     order.DiscountAmount.String(),
		HasDiscount:  order.DiscountAmount.IsPositive(),
		CouponCode:   order.CouponCode,
		Shipping:     order.ShippingCost.String(),
		Total:        order.TotalAmount.String(),
		IsPickup:     order.IsPickup,
	}
	for _, item := range order.Items {
		variant := make([]string, 0, 2)
		if item.Color != "" {
			variant = append(variant, item.Color)
		}
		if item.Size != "" {
			variant = append(variant, item.Size)
		}
		view.Items = append(view.Items, orderEmailLine{
			Name:     item.Name,
			Variant:  strings.Join(variant, ", "),
			Quantity: item.Quantity,
			Total:    item.TotalPrice.String(),
		})
	}
	if order.IsPickup {
		view.PickupLocation = jsonString(order.ShippingAddress, "pickup_location")
	} else {
		parts := make([]string, 0, 6)
		for _, key := range []string{"address_line1", "address_line2", "city", "state", "postal_code", "country"} {
			if v := jsonString(order.ShippingAddress, key); v != "" {
				parts = append(parts, v)
			}
		}
		view.Address = strings.Join(parts, ", ")
	}
	return view
}

func orderStatusLabel(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case constants.OrderStatusCompleted:
		return "completed"
	case constants.OrderStatusCancelled:
		return "cancelled"
	case constants.OrderStatusPending:
		return "being prepared"
	}
	return status
}

func jsonString(data models.JSON, key string) string {
	if data == nil {
		return ""
	}
	if v, ok := data[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func buildFromAddress(from, name string) string {
	if strings.TrimSpace(name) == "" {
		return from
	}
	encoded := mime.QEncoding.Encode("UTF-8", name)
	return (&mail.Address{Name: encoded, Address: from}).String()
}

func buildEmailMessage(from, to, subject, body string) string {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("From: %s\r\n", from))
	buf.WriteString(fmt.Sprintf("To: %s\r\n", to))
	buf.WriteString(fmt.Sprintf("Subject: %s\r\n", mime.QEncoding.Encode("UTF-8", subject)))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(body)
	return buf.String()
}

func sendMailWithSSL(addr string, timeout time.Duration, auth smtp.Auth, host, from string, to []string, msg []byte) error {
	conn, err := tls.DialWithDialer(&net.Dialer{Timeout: timeout}, "tcp", addr, &tls.Config{ServerName: host})
	if err != nil {
		return err
	}
	client, err := newSMTPClient(conn, host, timeout)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := authenticate(client, auth); err != nil {
		return err
	}
	return sendSMTPData(client, from, to, msg)
}

func sendMailWithStartTLS(addr string, timeout time.Duration, auth smtp.Auth, host, from string, to []string, msg []byte) error {
	client, err := dialSMTP(addr, host, timeout)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.StartTLS(&tls.Config{ServerName: host}); err != nil {
		return err
	}
	if err := authenticate(client, auth); err != nil {
		return err
	}
	return sendSMTPData(client, from, to, msg)
}

func sendMailPlain(addr string, timeout time.Duration, auth smtp.Auth, host, from string, to []string, msg []byte) error {
	client, err := dialSMTP(addr, host, timeout)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := authenticate(client, auth); err != nil {
		return err
	}
	return sendSMTPData(client, from, to, msg)
}

func dialSMTP(addr, host string, timeout time.Duration) (*smtp.Client, error) {
	conn, err := (&net.Dialer{Timeout: timeout}).Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	return newSMTPClient(conn, host, timeout)
}

// newSMTPClient 设置连接截止时间后再读取欢迎语，服务端不响应时按超时返回
func newSMTPClient(conn net.Conn, host string, timeout time.Duration) (*smtp.Client, error) {
	if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
		_ = conn.Close()
		return nil, err
	}
	client, err := smtp.NewClient(conn, host)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return client, nil
}

func authenticate(client *smtp.Client, auth smtp.Auth) error {
	if auth == nil {
		return nil
	}
	if ok, _ := client.Extension("AUTH"); !ok {
		return nil
	}
	return client.Auth(auth)
}

func sendSMTPData(client *smtp.Client, from string, to []string, msg []byte) error {
	if err := client.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

func normalizeEmailSendError(err error) error {
	if err == nil {
		return nil
	}
	if isEmailRecipientRejected(err) {
		return fmt.Errorf("%w: %v", ErrEmailRecipientRejected, err)
	}
	return fmt.Errorf("%w: smtp: %w", ErrExternalService, err)
}

func isEmailRecipientRejected(err error) bool {
	if err == nil {
		return false
	}
	message := strings.ToLower(strings.TrimSpace(err.Error()))
	if message == "" {
		return false
	}
	directKeywords := []string{
		"no such recipient",
		"no such user",
		"recipient not found",
		"recipient address rejected",
		"invalid recipient",
		"user unknown",
		"unknown user",
		"unknown mailbox",
		"mailbox unavailable",
	}
	for _, keyword := range directKeywords {
		if strings.Contains(message, keyword) {
			return true
		}
	}
	if strings.Contains(message, "550") {
		for _, hint := range []string{"recipient", "user", "mailbox", "address", "rcpt"} {
			if strings.Contains(message, hint) {
				return true
			}
		}
	}
	return false
}
