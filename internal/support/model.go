package support

import "time"

// Ticket statuses.
const (
	StatusOpen   = "open"
	StatusClosed = "closed"
)

// Ticket is a help request filed by a signed-in user.
type Ticket struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}
