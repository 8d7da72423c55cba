// Package models содержит доменные структуры приложения: пользователей,
// игры, прогресс, транзакции и подписки.
package models

import "time"

// User представляет зарегистрированного пользователя системы.
// Email хранится в нижнем регистре и уникален глобально.
type User struct {
	UID          string // Уникальный идентификатор пользователя
	Email        string // Электронная почта (нижний регистр, уникальная)
	FirstName    string
	LastName     string
	PasswordHash string // bcrypt-хэш пароля

	// Состояние верификации почты. Токен одноразовый: успешная
	// верификация очищает VerificationToken и VerificationSentAt.
	EmailVerified      bool
	VerificationToken  *string
	VerificationSentAt *time.Time

	// Состояние политики смены имени. Поля изменяются только через
	// ProfileService вместе с самими именами в одной транзакции.
	NameChangeCount    int
	LastNameChangeDate *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
