package transition_booking

// TransitionRequest HTTP request model
type TransitionRequest struct {
	Status string `json:"status" validate:"required"`
}
