package mapview

import "github.com/sirupsen/logrus"

// Notifier показывает пользователю транзиентные уведомления об исходе операций
type Notifier interface {
	Success(title, message string)
	Error(title, message string)
	Info(title, message string)
}

// LogNotifier - реализация Notifier поверх логгера.
// Используется, когда интерфейсного слоя уведомлений нет
type LogNotifier struct {
	logger *logrus.Logger
}

func NewLogNotifier(logger *logrus.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Success(title, message string) {
	n.logger.WithField("notice", title).Info(message)
}

func (n *LogNotifier) Error(title, message string) {
	n.logger.WithField("notice", title).Warn(message)
}

func (n *LogNotifier) Info(title, message string) {
	n.logger.WithField("notice", title).Info(message)
}
