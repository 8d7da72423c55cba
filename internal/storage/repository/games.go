package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/pixelpick/pixelpick-backend/internal/models"
)

// ListGames возвращает каталог игр в порядке добавления.
func (s *Storage) ListGames(ctx context.Context) ([]*models.Game, error) {
	const op = "storage.ListGames"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, description, price, platforms, image_url, game_url, category, created_at
			  FROM games
			  ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Game
	for rows.Next() {
		var item models.Game
		var platforms string
		if err := rows.Scan(&item.ID, &item.Name, &item.Description, &item.Price,
			&platforms, &item.ImageURL, &item.GameURL, &item.Category, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		item.Platforms = splitPlatforms(platforms)
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetGame возвращает игру по её ID.
func (s *Storage) GetGame(ctx context.Context, id int) (*models.Game, error) {
	const op = "storage.GetGame"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, description, price, platforms, image_url, game_url, category, created_at
			  FROM games WHERE id = $1`
	var item models.Game
	var platforms string
	if err := s.DB.QueryRowContext(ctx, query, id).Scan(&item.ID, &item.Name, &item.Description,
		&item.Price, &platforms, &item.ImageURL, &item.GameURL, &item.Category, &item.CreatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	item.Platforms = splitPlatforms(platforms)
	return &item, nil
}

// splitPlatforms разбирает CSV-строку платформ из базы.
func splitPlatforms(platforms string) []string {
	if platforms == "" {
		return nil
	}
	parts := strings.Split(platforms, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}
