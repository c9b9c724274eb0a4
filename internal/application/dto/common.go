package dto

// APIResponse es el sobre estándar de la API: {success, data|message}.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// OK construye una respuesta exitosa con payload.
func OK(data interface{}) APIResponse {
	return APIResponse{Success: true, Data: data}
}

// Fail construye una respuesta de error con mensaje.
func Fail(message string) APIResponse {
	return APIResponse{Success: false, Message: message}
}
