package booking_flow

import (
	"github.com/m04kA/SMC-MarketplaceBooking/internal/orchestrator"
)

// View состояние сессии вместе с подсказками для клиента
type View struct {
	orchestrator.State
	CanProceed bool `json:"canProceed"`
	GoodDetail bool `json:"goodDetail"` // мягкий индикатор, шаг не блокирует
}

func newView(s orchestrator.State) *View {
	return &View{
		State:      s,
		CanProceed: orchestrator.CanProceed(s),
		GoodDetail: orchestrator.GoodDetail(s.Details.ProjectRequirements),
	}
}
