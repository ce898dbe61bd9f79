package templates

import (
	"fmt"
	"strings"

	"github.com/opositest/notification-service/internal/models"
)

// Data carries everything a template may interpolate. Rendering never fails:
// missing optional fields fall back to safe defaults.
type Data struct {
	Name                  string
	DaysInactive          int
	DaysSinceRegistration int
	Items                 []models.DigestItem
	AdminResponse         string
	DisputeStatus         models.DisputeStatus
	TicketSubject         string
	AdminReply            string
	UnsubscribeURL        string
	PreferencesURL        string
	BaseURL               string
}

const defaultName = "opositor/a"

func (d Data) name() string {
	if strings.TrimSpace(d.Name) == "" {
		return defaultName
	}
	return d.Name
}

// Render produces subject and HTML body for a campaign category.
func Render(category models.Category, data Data) (string, string) {
	switch category {
	case models.CategoryInactivityGentle:
		return renderInactivityGentle(data)
	case models.CategoryInactivityUrgent:
		return renderInactivityUrgent(data)
	case models.CategoryMotivationalWelcome:
		return renderMotivationalWelcome(data)
	case models.CategoryImmediateWelcome:
		return renderImmediateWelcome(data)
	case models.CategoryWeeklyDigest:
		return renderWeeklyDigest(data)
	case models.CategorySupportReply:
		return renderSupportReply(data)
	default:
		return "Novedades de Opositest", wrap(fmt.Sprintf("<p>Hola %s,</p><p>Tienes novedades en tu cuenta de Opositest.</p>", data.name()), data)
	}
}

func renderInactivityGentle(data Data) (string, string) {
	subject := fmt.Sprintf("%s, tu plaza te está esperando", data.name())
	body := fmt.Sprintf(
		"<p>Hola %s,</p>"+
			"<p>Hace %d días que no haces ningún test. La constancia es lo que marca la diferencia en una oposición: "+
			"con solo 15 minutos al día mantienes el ritmo.</p>"+
			"<p><a href=\"%s/test\">Hacer un test ahora</a></p>",
		data.name(), data.DaysInactive, data.BaseURL)
	return subject, wrap(body, data)
}

func renderInactivityUrgent(data Data) (string, string) {
	subject := fmt.Sprintf("%s, llevas %d días sin practicar", data.name(), data.DaysInactive)
	body := fmt.Sprintf(
		"<p>Hola %s,</p>"+
			"<p>Llevas %d días sin entrar a practicar. Cada día que pasa, el temario se olvida un poco más. "+
			"Retoma hoy con un test corto y recupera el hábito.</p>"+
			"<p><a href=\"%s/test\">Volver a practicar</a></p>",
		data.name(), data.DaysInactive, data.BaseURL)
	return subject, wrap(body, data)
}

func renderMotivationalWelcome(data Data) (string, string) {
	subject := "Tu primer test te está esperando"
	body := fmt.Sprintf(
		"<p>Hola %s,</p>"+
			"<p>Te registraste hace %d días pero todavía no has hecho tu primer test. "+
			"Empezar es la parte más difícil: el primero solo te llevará 10 minutos.</p>"+
			"<p><a href=\"%s/test\">Hacer mi primer test</a></p>",
		data.name(), data.DaysSinceRegistration, data.BaseURL)
	return subject, wrap(body, data)
}

func renderImmediateWelcome(data Data) (string, string) {
	subject := "¡Bienvenido/a a Opositest!"
	body := fmt.Sprintf(
		"<p>Hola %s,</p>"+
			"<p>Tu cuenta ya está activa. Tienes tests de todas las materias, estadísticas de progreso "+
			"y simulacros de examen esperándote.</p>"+
			"<p><a href=\"%s/test\">Empezar ahora</a></p>",
		data.name(), data.BaseURL)
	return subject, wrap(body, data)
}

func renderWeeklyDigest(data Data) (string, string) {
	subject := fmt.Sprintf("Tu resumen semanal: %d temas que repasar", len(data.Items))

	var items strings.Builder
	for _, item := range data.Items {
		items.WriteString(fmt.Sprintf(
			"<li><strong>%s</strong>: %d fallos de %d preguntas (%.0f%%)</li>",
			item.Topic, item.Failures, item.Attempts, item.FailureRate*100))
	}

	body := fmt.Sprintf(
		"<p>Hola %s,</p>"+
			"<p>Esta semana estos temas se te han resistido:</p>"+
			"<ul>%s</ul>"+
			"<p>Dedícales un repaso esta semana y verás la mejora en tus estadísticas.</p>"+
			"<p><a href=\"%s/estadisticas\">Ver mis estadísticas</a></p>",
		data.name(), items.String(), data.BaseURL)
	return subject, wrap(body, data)
}

func renderSupportReply(data Data) (string, string) {
	subject := "Respuesta a tu consulta"
	if strings.TrimSpace(data.TicketSubject) != "" {
		subject = fmt.Sprintf("Respuesta a tu consulta: %s", data.TicketSubject)
	}
	body := fmt.Sprintf(
		"<p>Hola %s,</p>"+
			"<p>Hemos respondido a tu consulta:</p>"+
			"<blockquote>%s</blockquote>"+
			"<p>Si necesitas algo más, responde desde tu área de soporte.</p>",
		data.name(), data.AdminReply)
	return subject, wrap(body, data)
}

// RenderDispute produces the transactional email for a resolved dispute.
func RenderDispute(data Data) (string, string) {
	verdict := "revisada"
	switch data.DisputeStatus {
	case models.DisputeStatusAccepted:
		verdict = "aceptada"
	case models.DisputeStatusRejected:
		verdict = "rechazada"
	}

	subject := fmt.Sprintf("Tu impugnación ha sido %s", verdict)
	body := fmt.Sprintf(
		"<p>Hola %s,</p>"+
			"<p>Tu impugnación ha sido <strong>%s</strong>. Respuesta del equipo:</p>"+
			"<blockquote>%s</blockquote>",
		data.name(), verdict, data.AdminResponse)
	return subject, wrap(body, data)
}

// wrap adds the shared footer with the unsubscribe link. When no token could
// be issued the footer links to the generic preferences page instead.
func wrap(body string, data Data) string {
	link := data.UnsubscribeURL
	label := "Darse de baja de estos correos"
	if link == "" {
		link = data.PreferencesURL
		label = "Gestionar mis preferencias de correo"
	}

	footer := ""
	if link != "" {
		footer = fmt.Sprintf(
			"<hr><p style=\"font-size:12px;color:#888\"><a href=\"%s\">%s</a></p>",
			link, label)
	}

	return fmt.Sprintf(
		"<html><body style=\"font-family:Arial,sans-serif;color:#333\">%s%s</body></html>",
		body, footer)
}
