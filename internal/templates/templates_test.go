package templates

import (
	"testing"

	"github.com/opositest/notification-service/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestRenderUsesDefaultName(t *testing.T) {
	subject, body := Render(models.CategoryInactivityGentle, Data{DaysInactive: 7})
	assert.Contains(t, subject, "opositor/a")
	assert.Contains(t, body, "Hola opositor/a")
}

func TestRenderInactivityIncludesDays(t *testing.T) {
	subject, body := Render(models.CategoryInactivityUrgent, Data{Name: "María", DaysInactive: 15})
	assert.Contains(t, subject, "15 días")
	assert.Contains(t, body, "Hola María")
	assert.Contains(t, body, "15 días")
}

func TestRenderWeeklyDigestListsItems(t *testing.T) {
	subject, body := Render(models.CategoryWeeklyDigest, Data{
		Name: "Juan",
		Items: []models.DigestItem{
			{Topic: "Constitución Española", Attempts: 4, Failures: 3, FailureRate: 0.75},
			{Topic: "Procedimiento Administrativo", Attempts: 2, Failures: 2, FailureRate: 1.0},
		},
	})
	assert.Contains(t, subject, "2 temas")
	assert.Contains(t, body, "Constitución Española")
	assert.Contains(t, body, "3 fallos de 4 preguntas (75%)")
	assert.Contains(t, body, "Procedimiento Administrativo")
}

func TestRenderSupportReplySubject(t *testing.T) {
	subject, body := Render(models.CategorySupportReply, Data{
		TicketSubject: "No puedo acceder",
		AdminReply:    "Acceso restablecido.",
	})
	assert.Equal(t, "Respuesta a tu consulta: No puedo acceder", subject)
	assert.Contains(t, body, "Acceso restablecido.")

	subject, _ = Render(models.CategorySupportReply, Data{AdminReply: "ok"})
	assert.Equal(t, "Respuesta a tu consulta", subject)
}

func TestRenderDisputeVerdicts(t *testing.T) {
	cases := []struct {
		status  models.DisputeStatus
		verdict string
	}{
		{models.DisputeStatusAccepted, "aceptada"},
		{models.DisputeStatusRejected, "rechazada"},
		{models.DisputeStatusPending, "revisada"},
	}
	for _, tc := range cases {
		subject, body := RenderDispute(Data{AdminResponse: "Detalle.", DisputeStatus: tc.status})
		assert.Contains(t, subject, tc.verdict)
		assert.Contains(t, body, tc.verdict)
		assert.Contains(t, body, "Detalle.")
	}
}

func TestWrapFooterFallback(t *testing.T) {
	_, withToken := Render(models.CategoryInactivityGentle, Data{
		UnsubscribeURL: "https://opositest.example/unsubscribe?token=abc",
		PreferencesURL: "https://opositest.example/preferencias",
	})
	assert.Contains(t, withToken, "https://opositest.example/unsubscribe?token=abc")
	assert.Contains(t, withToken, "Darse de baja")

	_, withoutToken := Render(models.CategoryInactivityGentle, Data{
		PreferencesURL: "https://opositest.example/preferencias",
	})
	assert.NotContains(t, withoutToken, "/unsubscribe?token=")
	assert.Contains(t, withoutToken, "https://opositest.example/preferencias")
	assert.Contains(t, withoutToken, "Gestionar mis preferencias")
}
