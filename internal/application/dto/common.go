package dto

// PageResponse lista paginada: {data, total, page, pageSize, totalPages}.
type PageResponse[T any] struct {
	Data       []T `json:"data"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalPages int `json:"totalPages"`
}

// NewPage arma la respuesta calculando totalPages (0 si no hay resultados).
func NewPage[T any](data []T, total, page, pageSize int) PageResponse[T] {
	if data == nil {
		data = []T{}
	}
	totalPages := 0
	if pageSize > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}
	return PageResponse[T]{Data: data, Total: total, Page: page, PageSize: pageSize, TotalPages: totalPages}
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
