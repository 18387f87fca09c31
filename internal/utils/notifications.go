package utils

import (
	"bytes"
	"html/template"

	"disputeshield_back_end/internal/models"
)

// NotificationEmail : données injectées dans le gabarit HTML
type NotificationEmail struct {
	Type         string
	Title        string
	Message      string
	DashboardURL string
}

var notificationTemplate = template.Must(template.New("notification").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif; background-color: #f5f5f5;">
    <table role="presentation" style="width: 100%; border-collapse: collapse; background-color: #f5f5f5;">
        <tr>
            <td style="padding: 40px 20px;">
                <table role="presentation" style="max-width: 600px; margin: 0 auto; background-color: #ffffff; border-radius: 12px; box-shadow: 0 4px 6px rgba(0,0,0,0.1);">
                    <tr>
                        <td style="background: linear-gradient(135deg, #1e3a8a 0%, #3b82f6 100%); padding: 40px 30px; text-align: center; border-radius: 12px 12px 0 0;">
                            <h1 style="margin: 0; color: #ffffff; font-size: 26px; font-weight: 600;">{{.Icon}} DisputeShield</h1>
                        </td>
                    </tr>
                    <tr>
                        <td style="padding: 30px 30px 0 30px; text-align: center;">
                            <div style="display: inline-block; padding: 12px 24px; background-color: {{.Color}}; color: #ffffff; border-radius: 25px; font-weight: 600; font-size: 14px;">
                                {{.Title}}
                            </div>
                        </td>
                    </tr>
                    <tr>
                        <td style="padding: 30px;">
                            <p style="margin: 0 0 20px 0; color: #333333; font-size: 16px; line-height: 1.6;">{{.Message}}</p>
                            {{if .DashboardURL}}
                            <table role="presentation" style="width: 100%; margin: 30px 0;">
                                <tr>
                                    <td style="text-align: center;">
                                        <a href="{{.DashboardURL}}" style="display: inline-block; padding: 14px 32px; background-color: #1e3a8a; color: #ffffff; text-decoration: none; border-radius: 6px; font-weight: 600; font-size: 15px;">Open dashboard</a>
                                    </td>
                                </tr>
                            </table>
                            {{end}}
                        </td>
                    </tr>
                    <tr>
                        <td style="padding: 30px; background-color: #f8f9fa; border-radius: 0 0 12px 12px; text-align: center;">
                            <p style="margin: 0; color: #999999; font-size: 12px;">This email was sent automatically, please do not reply.</p>
                        </td>
                    </tr>
                </table>
            </td>
        </tr>
    </table>
</body>
</html>`))

// RenderNotificationEmail renvoie le sujet et le corps HTML (titre et message échappés)
func RenderNotificationEmail(n NotificationEmail) (string, string, error) {
	data := struct {
		NotificationEmail
		Icon  string
		Color string
	}{n, notificationIcon(n.Type), notificationColor(n.Type)}

	var buf bytes.Buffer
	if err := notificationTemplate.Execute(&buf, data); err != nil {
		return "", "", err
	}
	return notificationSubject(n), buf.String(), nil
}

func notificationSubject(n NotificationEmail) string {
	if n.Title != "" {
		return notificationIcon(n.Type) + " " + n.Title + " - DisputeShield"
	}
	switch n.Type {
	case models.NotificationDisputeCreated:
		return "⚠️ New dispute - DisputeShield"
	case models.NotificationDisputeWon:
		return "🎉 Dispute won - DisputeShield"
	case models.NotificationDisputeLost:
		return "❌ Dispute lost - DisputeShield"
	case models.NotificationEvidenceDue:
		return "⏰ Evidence due soon - DisputeShield"
	default:
		return "📋 Dispute update - DisputeShield"
	}
}

func notificationIcon(kind string) string {
	switch kind {
	case models.NotificationDisputeCreated:
		return "⚠️"
	case models.NotificationDisputeWon:
		return "🎉"
	case models.NotificationDisputeLost:
		return "❌"
	case models.NotificationEvidenceDue:
		return "⏰"
	default:
		return "📋"
	}
}

func notificationColor(kind string) string {
	switch kind {
	case models.NotificationDisputeCreated, models.NotificationEvidenceDue:
		return "#f59e0b"
	case models.NotificationDisputeWon:
		return "#10b981"
	case models.NotificationDisputeLost:
		return "#ef4444"
	default:
		return "#3b82f6"
	}
}
