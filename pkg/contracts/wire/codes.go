package wire

// Códigos de erro do contrato wallet, carregados no campo code do corpo
// de erro. Cliente e simulador compartilham exatamente estes valores.
const (
	CodeValidation          = "validation"
	CodeInsufficientBalance = "insufficient-balance"
	CodeInvalidSession      = "invalid-session"
	CodeAuthTokenExpired    = "auth-token-expired"
	CodeGameLogic           = "game-logic-error"
	CodeLocationRestricted  = "location-restricted"
	CodeTransient           = "generic-transient"
	CodeMaintenance         = "maintenance"
)
