// Package recommend реализует детерминированную рекомендацию игр
// по каталогу и истории пользователя.
package recommend

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/pixelpick/pixelpick-backend/internal/models"
	"github.com/pixelpick/pixelpick-backend/internal/services/progress"
)

// Аддитивные веса скоринга.
const (
	noveltyBonus   = 20
	categoryWeight = 5
	mobileBonus    = 3
	freeBonus      = 2
	playedPenalty  = -10

	mobilePlatform = "mobile"
	topN           = 3
)

// Repository определяет методы хранилища, нужные рекомендациям.
type Repository interface {
	ListGames(ctx context.Context) ([]*models.Game, error)
	ListProgressByUser(ctx context.Context, userUID string) ([]*models.ProgressRecord, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
}

// Recommendation — одна рекомендация с причиной выбора.
type Recommendation struct {
	Game   *models.Game `json:"game"`
	Score  int          `json:"score"`
	Reason string       `json:"reason"`
}

// Score — чистая функция скоринга одной игры: бонус за новизну,
// вес категории из истории, бонус за мобильную платформу и нулевую цену,
// штраф за уже сыгранную игру (штраф не исключает игру из выдачи).
func Score(game *models.Game, playedGameIDs map[int]bool, categoryFrequency map[string]int) int {
	score := 0
	if playedGameIDs[game.ID] {
		score += playedPenalty
	} else {
		score += noveltyBonus
	}
	if freq := categoryFrequency[game.Category]; freq > 0 {
		score += categoryWeight * freq
	}
	if game.HasPlatform(mobilePlatform) {
		score += mobileBonus
	}
	if game.Price == 0 {
		score += freeBonus
	}
	return score
}

// Reason выбирает шаблон причины детерминированно, без случайности.
func Reason(game *models.Game, playedGameIDs map[int]bool, categoryFrequency map[string]int) string {
	switch {
	case categoryFrequency[game.Category] > 0:
		return fmt.Sprintf("Porque juegas juegos de %s", game.Category)
	case !playedGameIDs[game.ID]:
		return "Algo nuevo para ti"
	default:
		return "Popular del catalogo"
	}
}

// RecommendService считает рекомендации и кеширует результат на пользователя.
type RecommendService struct {
	repo  Repository
	cache Cache
	log   *slog.Logger
}

// New создает новый экземпляр RecommendService.
func New(repo Repository, cache Cache, log *slog.Logger) *RecommendService {
	return &RecommendService{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// ForUser возвращает топ-3 рекомендации для пользователя. Сортировка по
// убыванию баллов устойчивая: при равенстве сохраняется порядок каталога.
// Если в каталоге меньше трёх игр, возвращается весь каталог.
func (s *RecommendService) ForUser(ctx context.Context, userUID string) ([]Recommendation, error) {
	cacheKey := progress.RecommendationCacheKey(userUID)
	var cached []Recommendation
	found, err := s.cache.Get(cacheKey, &cached)
	if err != nil {
		s.log.Warn("failed to read recommendations cache", slog.Any("err", err))
	}
	if found {
		return cached, nil
	}

	games, err := s.repo.ListGames(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	records, err := s.repo.ListProgressByUser(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("failed to list progress: %w", err)
	}

	gamesByID := make(map[int]*models.Game, len(games))
	for _, g := range games {
		gamesByID[g.ID] = g
	}

	playedGameIDs := make(map[int]bool, len(records))
	categoryFrequency := make(map[string]int)
	for _, rec := range records {
		playedGameIDs[rec.GameID] = true
		if g, ok := gamesByID[rec.GameID]; ok && g.Category != "" {
			categoryFrequency[g.Category]++
		}
	}

	scored := make([]Recommendation, 0, len(games))
	for _, g := range games {
		scored = append(scored, Recommendation{
			Game:   g,
			Score:  Score(g, playedGameIDs, categoryFrequency),
			Reason: Reason(g, playedGameIDs, categoryFrequency),
		})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > topN {
		scored = scored[:topN]
	}

	if err := s.cache.Set(cacheKey, scored, 30*time.Minute); err != nil {
		s.log.Warn("failed to cache recommendations", slog.Any("err", err))
	}
	return scored, nil
}
