package metrics

// Recorder доменные счетчики, привязанные к имени сервиса.
// Nil-safe: при выключенных метриках все методы ничего не делают.
type Recorder struct {
	m       *Metrics
	service string
}

// NewRecorder создает Recorder. m может быть nil.
func NewRecorder(m *Metrics, service string) *Recorder {
	return &Recorder{m: m, service: service}
}

func (r *Recorder) BookingCreated(serviceType string) {
	if r == nil || r.m == nil {
		return
	}
	r.m.BookingsCreated.WithLabelValues(r.service, serviceType).Inc()
}

func (r *Recorder) BookingConflict(reason string) {
	if r == nil || r.m == nil {
		return
	}
	r.m.BookingConflicts.WithLabelValues(r.service, reason).Inc()
}

func (r *Recorder) BookingTransition(from, to string) {
	if r == nil || r.m == nil {
		return
	}
	r.m.BookingTransitions.WithLabelValues(r.service, from, to).Inc()
}

func (r *Recorder) PaymentAuthorization(outcome string) {
	if r == nil || r.m == nil {
		return
	}
	r.m.PaymentAuthorizations.WithLabelValues(r.service, outcome).Inc()
}
