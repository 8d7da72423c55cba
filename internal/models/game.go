package models

import (
	"strings"
	"time"
)

// Game представляет запись каталога игр. После первоначального
// заполнения каталога запись неизменяема, кроме административных правок.
type Game struct {
	ID          int
	Name        string
	Description string
	Price       float64
	Platforms   []string // Набор платформ, в базе хранится CSV-строкой
	ImageURL    string
	GameURL     string // Ссылка на играбельный веб-контент, может быть пустой
	Category    string
	CreatedAt   time.Time
}

// HasPlatform проверяет наличие платформы в наборе игры без учёта регистра.
func (g *Game) HasPlatform(platform string) bool {
	for _, p := range g.Platforms {
		if strings.EqualFold(strings.TrimSpace(p), platform) {
			return true
		}
	}
	return false
}
