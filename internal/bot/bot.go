package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"lifeflow/internal/model"
	"lifeflow/internal/notify"
	"lifeflow/internal/service"
)

const shortIDLen = 8

var (
	errNoMatch   = errors.New("no match")
	errAmbiguous = errors.New("ambiguous id")
)

// API is the subset of the Telegram client the bot uses.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Bot exposes the planner over Telegram commands. Only the registered chat
// may read or change data.
type Bot struct {
	api     API
	store   *service.Store
	planner *service.PlannerService
	alerts  *notify.Telegram
	clock   service.Clock
	log     *zap.Logger
}

// New builds the bot. clock decides "today" for due-date urgency, so it
// should read time in the planner's location.
func New(api API, store *service.Store, planner *service.PlannerService, alerts *notify.Telegram, clock service.Clock, log *zap.Logger) *Bot {
	return &Bot{
		api:     api,
		store:   store,
		planner: planner,
		alerts:  alerts,
		clock:   clock,
		log:     log.Named("bot"),
	}
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	b.log.Info("start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		if update.Message == nil || update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
			continue
		}
		if err := b.handleMessage(ctx, update.Message); err != nil {
			b.log.Warn("handle message", zap.Error(err))
		}
	}

	return ctx.Err()
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if !msg.IsCommand() {
		return b.sendText(msg.Chat.ID, "No entendí el mensaje. Usa /help para ver los comandos.")
	}

	command := msg.Command()
	b.log.Info("command", zap.Int64("chat_id", msg.Chat.ID), zap.String("command", command))

	if command == "start" {
		return b.handleStart(ctx, msg)
	}
	switch owner := b.alerts.ChatID(); owner {
	case msg.Chat.ID:
	case 0:
		return b.sendText(msg.Chat.ID, "👋 Envía /start para empezar a usar el planificador.")
	default:
		return b.sendText(msg.Chat.ID, "Este planificador ya tiene dueño.")
	}
	return b.handleCommand(ctx, msg, command)
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message, command string) error {
	chatID := msg.Chat.ID
	args := strings.TrimSpace(msg.CommandArguments())
	today := model.DateOf(b.clock.Now())

	switch command {
	case "help":
		return b.sendText(chatID, helpText)
	case "stop":
		b.alerts.SetMuted(ctx, true)
		return b.sendText(chatID, "🔕 Recordatorios desactivados. Usa /start para activarlos de nuevo.")
	case "payments":
		return b.sendText(chatID, formatPayments(b.store.PaymentsByDueDate(), b.store.PendingTotal().StringFixed(2), today))
	case "history":
		return b.sendText(chatID, formatHistory(b.store.PaidHistory(), b.store.DeletedPayments(), today))
	case "tasks":
		return b.sendText(chatID, formatTasks(b.store.TasksByDay()))
	case "addpayment":
		return b.handleAddPayment(ctx, chatID, args)
	case "addtask":
		return b.handleAddTask(ctx, chatID, args)
	case "editpayment":
		return b.handleEditPayment(ctx, chatID, args, today)
	case "edittask":
		return b.handleEditTask(ctx, chatID, args)
	case "paid":
		return b.withPayment(chatID, args, b.store.Payments(), func(p model.Payment) error {
			paid, _ := b.store.TogglePaid(ctx, p.ID)
			if paid {
				return b.sendText(chatID, fmt.Sprintf("✅ «%s» pagado.", escape(p.Description)))
			}
			return b.sendText(chatID, fmt.Sprintf("↩️ «%s» marcado como pendiente.", escape(p.Description)))
		})
	case "delpayment":
		return b.withPayment(chatID, args, b.store.Payments(), func(p model.Payment) error {
			b.store.SoftDeletePayment(ctx, p.ID)
			return b.sendText(chatID, fmt.Sprintf("🗑 «%s» movido a la papelera. /restore %s para recuperarlo.", escape(p.Description), shortID(p.ID)))
		})
	case "droppayment":
		return b.withPayment(chatID, args, b.store.Payments(), func(p model.Payment) error {
			b.store.RemovePayment(ctx, p.ID)
			return b.sendText(chatID, fmt.Sprintf("❌ «%s» eliminado sin pasar por la papelera.", escape(p.Description)))
		})
	case "restore":
		return b.withPayment(chatID, args, b.store.DeletedPayments(), func(p model.Payment) error {
			b.store.RestorePayment(ctx, p.ID)
			return b.sendText(chatID, fmt.Sprintf("♻️ «%s» restaurado.", escape(p.Description)))
		})
	case "purge":
		return b.withPayment(chatID, args, b.store.DeletedPayments(), func(p model.Payment) error {
			b.store.PurgeDeletedPayment(ctx, p.ID)
			return b.sendText(chatID, fmt.Sprintf("❌ «%s» eliminado para siempre.", escape(p.Description)))
		})
	case "purgeall":
		n := b.store.PurgeAllDeleted(ctx)
		return b.sendText(chatID, fmt.Sprintf("🧹 Papelera vaciada (%d pagos).", n))
	case "done":
		return b.withTask(chatID, args, func(t model.Task) error {
			done, _ := b.store.ToggleDone(ctx, t.ID)
			if done {
				return b.sendText(chatID, fmt.Sprintf("✅ «%s» hecha. Sus recordatorios quedan en pausa.", escape(t.Name)))
			}
			return b.sendText(chatID, fmt.Sprintf("↩️ «%s» pendiente otra vez.", escape(t.Name)))
		})
	case "deltask":
		return b.withTask(chatID, args, func(t model.Task) error {
			b.store.RemoveTask(ctx, t.ID)
			return b.sendText(chatID, fmt.Sprintf("🗑 «%s» eliminada.", escape(t.Name)))
		})
	case "remind":
		return b.handleRemind(ctx, chatID, args)
	default:
		return b.sendText(chatID, "Comando no soportado. Mira /help.")
	}
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) error {
	owner := b.alerts.ChatID()
	if owner != 0 && owner != msg.Chat.ID {
		return b.sendText(msg.Chat.ID, "Este planificador ya tiene dueño.")
	}
	if owner == 0 {
		b.alerts.Register(ctx, msg.Chat.ID)
	} else {
		b.alerts.SetMuted(ctx, false)
	}

	name := "amigo"
	if msg.From != nil && strings.TrimSpace(msg.From.FirstName) != "" {
		name = strings.TrimSpace(msg.From.FirstName)
	}
	text := fmt.Sprintf("👋 ¡Hola, %s!\n🔔 Recordatorios activados en este chat.\n\n%s", escape(name), helpText)
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleAddPayment(ctx context.Context, chatID int64, args string) error {
	input, err := parsePaymentArgs(args)
	if err != nil {
		return b.sendText(chatID, "Formato: /addpayment descripción; monto; AAAA-MM-DD[; icono]")
	}
	p, err := b.planner.CreatePayment(ctx, input)
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("No se pudo guardar: %s", escape(err.Error())))
	}
	today := model.DateOf(b.clock.Now())
	return b.sendText(chatID, fmt.Sprintf("✅ Pago guardado <code>%s</code>\n%s", shortID(p.ID), formatPayment(p, today)))
}

func (b *Bot) handleAddTask(ctx context.Context, chatID int64, args string) error {
	input, err := parseTaskArgs(args)
	if err != nil {
		return b.sendText(chatID, "Formato: /addtask nombre; día; HH:MM[; minutos de aviso[; descripción]]")
	}
	t, err := b.planner.CreateTask(ctx, input)
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("No se pudo guardar: %s", escape(err.Error())))
	}
	return b.sendText(chatID, fmt.Sprintf("✅ Tarea guardada <code>%s</code>\n%s", shortID(t.ID), formatTask(t)))
}

func (b *Bot) handleEditPayment(ctx context.Context, chatID int64, args string, today model.Date) error {
	id, opts, err := parseEditPaymentArgs(args)
	if err != nil {
		return b.sendText(chatID, "Formato: /editpayment id; descripción; monto; AAAA-MM-DD (deja vacío lo que no cambia)")
	}
	return b.withPayment(chatID, id, b.store.Payments(), func(p model.Payment) error {
		edited, err := b.planner.EditPayment(ctx, p.ID, opts...)
		if err != nil {
			return b.sendText(chatID, fmt.Sprintf("No se pudo guardar: %s", escape(err.Error())))
		}
		return b.sendText(chatID, "✏️ Pago actualizado\n"+formatPayment(edited, today))
	})
}

func (b *Bot) handleEditTask(ctx context.Context, chatID int64, args string) error {
	id, opts, err := parseEditTaskArgs(args)
	if err != nil {
		return b.sendText(chatID, "Formato: /edittask id; nombre; día; HH:MM[; descripción] (deja vacío lo que no cambia)")
	}
	return b.withTask(chatID, id, func(t model.Task) error {
		edited, err := b.planner.EditTask(ctx, t.ID, opts(t)...)
		if err != nil {
			return b.sendText(chatID, fmt.Sprintf("No se pudo guardar: %s", escape(err.Error())))
		}
		return b.sendText(chatID, "✏️ Tarea actualizada\n"+formatTask(edited))
	})
}

func (b *Bot) handleRemind(ctx context.Context, chatID int64, args string) error {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return b.sendText(chatID, "Formato: /remind &lt;id&gt; &lt;minutos&gt;")
	}
	minutes, err := strconv.Atoi(fields[1])
	if err != nil || minutes < 0 {
		return b.sendText(chatID, "Los minutos deben ser un número positivo (0 quita el aviso).")
	}
	return b.withTask(chatID, fields[0], func(t model.Task) error {
		edited, err := b.planner.EditTask(ctx, t.ID, service.WithReminderMinutes(minutes))
		if err != nil {
			return b.sendText(chatID, fmt.Sprintf("No se pudo guardar: %s", escape(err.Error())))
		}
		return b.sendText(chatID, "⏰ Aviso actualizado\n"+formatTask(edited))
	})
}

func (b *Bot) withPayment(chatID int64, prefix string, candidates []model.Payment, fn func(model.Payment) error) error {
	p, err := findByPrefix(candidates, prefix)
	if err != nil {
		return b.sendText(chatID, lookupMessage(err))
	}
	return fn(p)
}

func (b *Bot) withTask(chatID int64, prefix string, fn func(model.Task) error) error {
	t, err := findByPrefix(b.store.Tasks(), prefix)
	if err != nil {
		return b.sendText(chatID, lookupMessage(err))
	}
	return fn(t)
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err := b.api.Send(msg)
	return err
}

type identified interface {
	EntityID() string
}

// findByPrefix resolves an id or an unambiguous id prefix.
func findByPrefix[T identified](items []T, prefix string) (T, error) {
	var zero T
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return zero, errNoMatch
	}
	var found []T
	for _, item := range items {
		id := strings.ToLower(item.EntityID())
		if id == prefix {
			return item, nil
		}
		if strings.HasPrefix(id, prefix) {
			found = append(found, item)
		}
	}
	switch len(found) {
	case 0:
		return zero, errNoMatch
	case 1:
		return found[0], nil
	default:
		return zero, errAmbiguous
	}
}

func lookupMessage(err error) string {
	if errors.Is(err, errAmbiguous) {
		return "Hay varios elementos con ese id, escribe más caracteres."
	}
	return "No encontré ese id."
}

func splitArgs(args string) []string {
	parts := strings.Split(args, ";")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func parsePaymentArgs(args string) (service.PaymentInput, error) {
	parts := splitArgs(args)
	if len(parts) < 3 || len(parts) > 4 {
		return service.PaymentInput{}, fmt.Errorf("expected 3 or 4 fields, got %d", len(parts))
	}
	input := service.PaymentInput{Description: parts[0], Amount: parts[1], DueDate: parts[2]}
	if len(parts) == 4 {
		input.Icon = parts[3]
	}
	return input, nil
}

func parseTaskArgs(args string) (service.TaskInput, error) {
	parts := splitArgs(args)
	if len(parts) < 3 || len(parts) > 5 {
		return service.TaskInput{}, fmt.Errorf("expected 3 to 5 fields, got %d", len(parts))
	}
	input := service.TaskInput{Name: parts[0], Day: parts[1], Time: parts[2]}
	if len(parts) >= 4 {
		input.ReminderMinutes = parts[3]
	}
	if len(parts) == 5 {
		input.Description = parts[4]
	}
	return input, nil
}

// parseEditPaymentArgs reads "id; description; amount; date". Empty fields keep
// their current value.
func parseEditPaymentArgs(args string) (string, []service.PaymentOption, error) {
	parts := splitArgs(args)
	if len(parts) != 4 || parts[0] == "" {
		return "", nil, fmt.Errorf("expected 4 fields, got %d", len(parts))
	}
	var opts []service.PaymentOption
	if parts[1] != "" {
		opts = append(opts, service.WithPaymentDescription(parts[1]))
	}
	if parts[2] != "" {
		amount, err := decimal.NewFromString(strings.ReplaceAll(parts[2], ",", "."))
		if err != nil {
			return "", nil, fmt.Errorf("amount %q: %w", parts[2], err)
		}
		opts = append(opts, service.WithAmount(amount))
	}
	if parts[3] != "" {
		due, err := model.ParseDate(parts[3])
		if err != nil {
			return "", nil, err
		}
		opts = append(opts, service.WithDueDate(due))
	}
	if len(opts) == 0 {
		return "", nil, errors.New("nothing to change")
	}
	return parts[0], opts, nil
}

// parseEditTaskArgs reads "id; name; day; HH:MM[; description]". Empty fields
// keep their current value, so the options are built against the task being edited.
func parseEditTaskArgs(args string) (string, func(model.Task) []service.TaskOption, error) {
	parts := splitArgs(args)
	if len(parts) < 4 || len(parts) > 5 || parts[0] == "" {
		return "", nil, fmt.Errorf("expected 4 or 5 fields, got %d", len(parts))
	}
	name, rawDay, rawTime := parts[1], parts[2], parts[3]
	description := ""
	if len(parts) == 5 {
		description = parts[4]
	}
	if name == "" && rawDay == "" && rawTime == "" && description == "" {
		return "", nil, errors.New("nothing to change")
	}

	var day model.Weekday
	if rawDay != "" {
		d, err := model.ParseWeekday(rawDay)
		if err != nil {
			return "", nil, err
		}
		day = d
	}
	var at model.ClockTime
	if rawTime != "" {
		c, err := model.ParseClockTime(rawTime)
		if err != nil {
			return "", nil, err
		}
		at = c
	}

	build := func(t model.Task) []service.TaskOption {
		var opts []service.TaskOption
		if name != "" {
			opts = append(opts, service.WithTaskName(name))
		}
		if description != "" {
			opts = append(opts, service.WithTaskDescription(description))
		}
		if rawDay != "" || rawTime != "" {
			newDay, newAt := t.Day, t.Time
			if rawDay != "" {
				newDay = day
			}
			if rawTime != "" {
				newAt = at
			}
			opts = append(opts, service.WithSchedule(newDay, newAt))
		}
		return opts
	}
	return parts[0], build, nil
}

func escape(s string) string {
	return html.EscapeString(s)
}

func shortID(id string) string {
	if len(id) > shortIDLen {
		return id[:shortIDLen]
	}
	return id
}

const helpText = "ℹ️ <b>Comandos</b>\n" +
	"• /payments — pagos y total pendiente\n" +
	"• /addpayment desc; monto; AAAA-MM-DD[; icono]\n" +
	"• /editpayment id; desc; monto; AAAA-MM-DD\n" +
	"• /paid &lt;id&gt; — marcar pagado o pendiente\n" +
	"• /delpayment &lt;id&gt; — mover a la papelera\n" +
	"• /droppayment &lt;id&gt; — borrar sin papelera\n" +
	"• /history — pagados y papelera\n" +
	"• /restore &lt;id&gt; · /purge &lt;id&gt; · /purgeall\n" +
	"• /tasks — semana por días\n" +
	"• /addtask nombre; día; HH:MM[; minutos[; descripción]]\n" +
	"• /edittask id; nombre; día; HH:MM[; descripción]\n" +
	"• /done &lt;id&gt; — marcar hecha (pausa avisos)\n" +
	"• /remind &lt;id&gt; &lt;minutos&gt; — cambiar aviso\n" +
	"• /deltask &lt;id&gt;\n" +
	"• /stop — silenciar recordatorios"
