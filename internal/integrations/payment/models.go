package payment

// Authorization результат авторизации платежа.
// Approved=false означает отказ процессинга (Reason заполнен), а не сбой связи.
type Authorization struct {
	Approved  bool
	Reference string
	Reason    string
}

// Outcome метка исхода для метрик
func (a *Authorization) Outcome() string {
	if a.Approved {
		return OutcomeApproved
	}
	return OutcomeDeclined
}

const (
	OutcomeApproved = "approved"
	OutcomeDeclined = "declined"
	OutcomeError    = "error"
)
