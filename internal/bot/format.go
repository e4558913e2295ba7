package bot

import (
	"fmt"
	"strings"

	"lifeflow/internal/model"
)

const (
	iconDone    = "✅"
	iconPending = "⭕"
	iconOverdue = "🔴"
	iconSoon    = "🟠"
)

func paymentStatus(u model.Urgency) (icon, label string) {
	switch u {
	case model.UrgencyNone:
		return iconDone, ""
	case model.UrgencyOverdue:
		return iconOverdue, " <b>vencido</b>"
	case model.UrgencySoon:
		return iconSoon, " <i>pronto</i>"
	default:
		return iconPending, ""
	}
}

func formatPayment(p model.Payment, today model.Date) string {
	status, label := paymentStatus(p.Urgency(today))
	return fmt.Sprintf("%s %s %s · $%s · vence %s%s <code>%s</code>",
		status, p.Icon.Emoji(), escape(p.Description), p.Amount.StringFixed(2), p.DueDate, label, shortID(p.ID))
}

func formatPayments(payments []model.Payment, pendingTotal string, today model.Date) string {
	var sb strings.Builder
	sb.WriteString("💳 <b>Pagos</b>\n")
	if len(payments) == 0 {
		sb.WriteString("— no hay pagos\n")
	}
	for _, p := range payments {
		sb.WriteString(formatPayment(p, today))
		sb.WriteByte('\n')
	}
	sb.WriteString(fmt.Sprintf("\n💰 Pendiente: <b>$%s</b>", pendingTotal))
	return sb.String()
}

func formatHistory(paid, deleted []model.Payment, today model.Date) string {
	var sb strings.Builder
	sb.WriteString("📜 <b>Completados</b>\n")
	if len(paid) == 0 {
		sb.WriteString("— nada pagado todavía\n")
	}
	for _, p := range paid {
		sb.WriteString(formatPayment(p, today))
		sb.WriteByte('\n')
	}
	sb.WriteString("\n🗑 <b>Papelera</b>\n")
	if len(deleted) == 0 {
		sb.WriteString("— vacía\n")
	}
	for _, p := range deleted {
		sb.WriteString(formatPayment(p, today))
		sb.WriteByte('\n')
	}
	return strings.TrimSpace(sb.String())
}

func formatTask(t model.Task) string {
	status := iconPending
	if t.Done {
		status = iconDone
	}
	line := fmt.Sprintf("%s %s %s %s", status, t.Time, t.Icon.Emoji(), escape(t.Name))
	if t.HasReminder() {
		line += fmt.Sprintf(" (⏰ %d min)", t.ReminderMinutes)
	}
	line += fmt.Sprintf(" <code>%s</code>", shortID(t.ID))
	if t.Description != "" {
		line += "\n   📝 " + escape(t.Description)
	}
	return line
}

func formatTasks(byDay map[model.Weekday][]model.Task) string {
	var sb strings.Builder
	sb.WriteString("🗓 <b>Semana</b>\n")
	empty := true
	for _, day := range model.Days {
		tasks := byDay[day]
		if len(tasks) == 0 {
			continue
		}
		empty = false
		sb.WriteString(fmt.Sprintf("\n<b>%s</b>\n", day))
		for _, t := range tasks {
			sb.WriteString(formatTask(t))
			sb.WriteByte('\n')
		}
	}
	if empty {
		sb.WriteString("— no hay tareas\n")
	}
	return strings.TrimSpace(sb.String())
}
