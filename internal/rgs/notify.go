package rgs

// Notifier recebe a notificação localizada de cada erro exposto; a camada
// de apresentação implementa e resolve MessageKey por idioma.
type Notifier interface {
	NotifyError(err *Error)
}

// NopNotifier descarta notificações (workers e testes).
type NopNotifier struct{}

func (NopNotifier) NotifyError(*Error) {}
