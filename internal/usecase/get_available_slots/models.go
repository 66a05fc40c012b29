package get_available_slots

import (
	"time"

	"github.com/google/uuid"
)

// Request модель запроса на получение доступных слотов
type Request struct {
	ProfessionalID uuid.UUID // ID специалиста из пути запроса
	ServiceID      uuid.UUID // ID услуги
	Date           time.Time // Дата для получения слотов (время игнорируется)
}

// Response модель ответа со списком слотов
type Response struct {
	Date           time.Time // Дата, на которую запрашивались слоты
	ProfessionalID uuid.UUID
	ServiceID      uuid.UUID
	Slots          []Slot // Все слоты рабочего окна в порядке времени
}

// Slot модель временного слота
type Slot struct {
	Start     time.Time
	End       time.Time
	Available bool
}
