package api

import "github.com/rpupo63/pustok-backend/models"

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	bookHandler    bookHandler
	catalogHandler catalogHandler
	healthHandler  healthHandler
}

// ErrorResponse represents an error response from the API
// @Description Error response structure
type ErrorResponse struct {
	Error   string `json:"error" example:"Internal Server Error"`
	Status  string `json:"status" example:"error"`
	Field   string `json:"field,omitempty" example:"genreId"`
	Details string `json:"details,omitempty" example:"Additional error details"`
	Cause   string `json:"cause,omitempty" example:"Underlying error cause"`
}

// BookCollection represents every live book
type BookCollection struct {
	Books []*models.Book `json:"books"`
	Total int            `json:"total"`
}

// NameRequest is the body of the reference-data create endpoints
type NameRequest struct {
	Name string `json:"name"`
}
