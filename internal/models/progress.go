package models

import "time"

// Статусы прогресса пользователя по игре.
const (
	StatusPlaying   = "playing"
	StatusCompleted = "completed"
	StatusWishlist  = "wishlist"
)

// ValidProgressStatus проверяет, что статус входит в допустимый набор.
func ValidProgressStatus(status string) bool {
	switch status {
	case StatusPlaying, StatusCompleted, StatusWishlist:
		return true
	default:
		return false
	}
}

// ProgressRecord связывает пользователя и игру. Пара (UserUID, GameID)
// уникальна, повторная запись обновляет статус и время последней активности.
type ProgressRecord struct {
	ID         int
	UserUID    string
	GameID     int
	Status     string
	LastPlayed time.Time
	CreatedAt  time.Time
}

// UserPreference хранит предпочтение пользователя для рекомендаций:
// тип (genre, platform, price_range), значение и вес.
type UserPreference struct {
	ID              int
	UserUID         string
	PreferenceType  string
	PreferenceValue string
	Weight          float64
}
