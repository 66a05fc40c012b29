package create_booking

// Метки причин конфликтов для метрик
const (
	conflictSlotUnavailable = "slot_unavailable"
	conflictServiceInactive = "service_inactive"
)
