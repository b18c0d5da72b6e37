package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/sony/gobreaker"
	"gopkg.in/gomail.v2"

	"github.com/verdano/plantcore/internal/alert"
	"github.com/verdano/plantcore/internal/infrastructure/config"
)

// Logger defines the logging interface used by the Mailer.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// smtpSender is the transport surface the mailer needs.
// Satisfied by *gomail.Dialer.
type smtpSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Breaker settings: open after 3 consecutive failures, retry after 2 minutes.
// SMTP outages tend to last minutes, not milliseconds.
const (
	breakerFailures = 3
	breakerTimeout  = 2 * time.Minute
)

// Mailer sends HTML alert notifications over SMTP.
//
// Thread Safety: SendAlert is safe for concurrent use; gomail dials a fresh
// connection per send and the breaker is internally synchronised.
type Mailer struct {
	sender  smtpSender
	from    string
	breaker *gobreaker.CircuitBreaker
	logger  Logger
}

// NewMailer creates a mailer over the configured SMTP transport.
func NewMailer(cfg config.SMTPConfig) *Mailer {
	return newMailer(gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password), cfg.From)
}

func newMailer(sender smtpSender, from string) *Mailer {
	return &Mailer{
		sender: sender,
		from:   from,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "smtp",
			Timeout: breakerTimeout,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= breakerFailures
			},
		}),
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the mailer.
func (m *Mailer) SetLogger(logger Logger) {
	m.logger = logger
}

// SendAlert renders and sends the notification for an alert.
//
// Returns ErrNoRecipient for an empty address, gobreaker.ErrOpenState while
// the breaker is open, or ErrSendFailed wrapping the transport error.
func (m *Mailer) SendAlert(to string, a *alert.PlantAlert) error {
	if to == "" {
		return ErrNoRecipient
	}

	body, err := renderAlert(a)
	if err != nil {
		return fmt.Errorf("rendering alert email: %w", err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", fmt.Sprintf("[%s] Alerta planta %s", a.Severity, a.PlantID))
	msg.SetBody("text/html", body)

	_, err = m.breaker.Execute(func() (interface{}, error) {
		return nil, m.sender.DialAndSend(msg)
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSendFailed, err)
	}

	m.logger.Info("alert email sent", "to", to, "plant_id", a.PlantID, "severity", a.Severity)
	return nil
}

// severityColor matches the dashboard palette: red for CRITICA, orange
// otherwise.
func severityColor(severity string) string {
	if severity == "CRITICA" {
		return "#dc2626"
	}
	return "#ea580c"
}

type alertEmailData struct {
	Severity  string
	Color     string
	Message   string
	PlantID   string
	Metric    string
	Value     string
	Threshold string
	Timestamp string
}

func formatMetric(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.1f", *v)
}

func renderAlert(a *alert.PlantAlert) (string, error) {
	ts := a.CreatedAt
	if ts.IsZero() {
		ts = time.Now()
	}

	var buf bytes.Buffer
	err := alertTemplate.Execute(&buf, alertEmailData{
		Severity:  a.Severity,
		Color:     severityColor(a.Severity),
		Message:   a.Message,
		PlantID:   a.PlantID,
		Metric:    a.Metric,
		Value:     formatMetric(a.Value),
		Threshold: formatMetric(a.Threshold),
		Timestamp: ts.Format("02/01/2006 15:04:05"),
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

var alertTemplate = template.Must(template.New("alert").Parse(`<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: Arial, sans-serif; background-color: #f3f4f6; padding: 20px; }
        .container { max-width: 600px; margin: 0 auto; background: white; border-radius: 8px; overflow: hidden; box-shadow: 0 2px 8px rgba(0,0,0,0.1); }
        .header { background: {{.Color}}; color: white; padding: 20px; text-align: center; }
        .content { padding: 20px; }
        .alert-box { background: #fef2f2; border-left: 4px solid {{.Color}}; padding: 15px; margin: 15px 0; }
        table { width: 100%; border-collapse: collapse; margin: 15px 0; }
        th, td { padding: 12px; text-align: left; border-bottom: 1px solid #e5e7eb; }
        th { background: #f9fafb; font-weight: 600; }
        .footer { background: #f9fafb; padding: 15px; text-align: center; font-size: 12px; color: #6b7280; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Sistema de Riego IoT</h1>
        </div>
        <div class="content">
            <div class="alert-box">
                <h2 style="margin-top: 0; color: {{.Color}};">{{.Severity}}</h2>
                <p>{{.Message}}</p>
            </div>
            <h3>Detalles de la Planta</h3>
            <p><strong>ID de Planta:</strong> {{.PlantID}}</p>
            <table>
                <tr>
                    <th>Campo</th>
                    <th>Valor</th>
                </tr>
                {{if .Metric}}<tr><td>Metrica</td><td>{{.Metric}}</td></tr>{{end}}
                {{if .Value}}<tr><td>Valor medido</td><td>{{.Value}}</td></tr>{{end}}
                {{if .Threshold}}<tr><td>Umbral</td><td>{{.Threshold}}</td></tr>{{end}}
            </table>
            <p><strong>Fecha:</strong> {{.Timestamp}}</p>
        </div>
        <div class="footer">
            Sistema de Riego Inteligente IoT - Monitoreo Automatico
        </div>
    </div>
</body>
</html>
`))
