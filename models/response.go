package models

// DataResponse is the success envelope of every endpoint.
type DataResponse struct {
	Data any `json:"data"`
}

type ErrorResponse struct {
	Error string `json:"error" example:"error"`
}

type ListTransactionsResponse struct {
	Transactions []Transaction `json:"transactions"`
	Total        int           `json:"total" example:"100"`
	Page         int           `json:"page" example:"1"`
	Limit        int           `json:"limit" example:"20"`
}

type ProfileResponse struct {
	User       User       `json:"user"`
	Categories []Category `json:"categories"`
}

type DeletedResponse struct {
	ID int64 `json:"id" example:"1"`
}

type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}
