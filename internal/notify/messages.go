package notify

// All user-facing Telegram texts in one place.

const (
	msgScheduleHeader = "<b>Графік відключень</b>\n📍 %s\n"
	msgDayHeader      = "\n<b>%s %s</b> · %s\n"
	msgNoOutages      = "🟢 Відключень не заплановано\n"
	msgOutageLine     = "%s %s – %s\n"
	msgNoData         = "Даних про графік поки немає."
	msgUpdated        = "\n<i>Оновлено: %s</i>"
)

const (
	iconOff       = "🔴"
	iconUncertain = "🟡"
	iconPartial   = "🟠"
)
