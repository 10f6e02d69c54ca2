package user

import "fmt"

// Record is one entry of the roster. Records are never updated in place.
type Record struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Location string `json:"location"`
	JoinedAt string `json:"joinedAt"`
}

type CreateRequest struct {
	Name     string `json:"name" binding:"required,max=120"`
	Role     string `json:"role" binding:"required,max=120"`
	Location string `json:"location" binding:"required,max=120"`
}

// NotFoundMessage is the client facing message for a missing id.
func NotFoundMessage(id int) string {
	return fmt.Sprintf("User with ID %d not found", id)
}
