// Package auth содержит логику регистрации, входа и верификации почты.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pixelpick/pixelpick-backend/internal/apperr"
	"github.com/pixelpick/pixelpick-backend/internal/lib/jwt"
	"github.com/pixelpick/pixelpick-backend/internal/lib/password"
	"github.com/pixelpick/pixelpick-backend/internal/lib/sl"
	"github.com/pixelpick/pixelpick-backend/internal/models"
)

// Жизненный цикл токена верификации: токен одноразовый, действует 24 часа,
// повторная отправка не чаще раза в час.
const (
	verificationTokenTTL = 24 * time.Hour
	resendCooldown       = time.Hour
)

// Ошибки верификации почты.
var (
	ErrInvalidToken    = fmt.Errorf("%w: invalid verification token", apperr.ErrValidation)
	ErrExpiredToken    = fmt.Errorf("%w: verification token expired", apperr.ErrValidation)
	ErrAlreadyVerified = fmt.Errorf("%w: email already verified", apperr.ErrValidation)
	ErrEmailTaken      = fmt.Errorf("%w: email already registered", apperr.ErrValidation)
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (string, error)
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByVerificationToken(ctx context.Context, token string) (*models.User, error)
	MarkEmailVerified(ctx context.Context, userUID string) error
	RotateVerificationToken(ctx context.Context, userUID, token string, sentAt time.Time) error
}

// EmailQueue публикует задания на отправку писем в очередь уведомлений.
type EmailQueue interface {
	PublishEmailJob(job models.EmailJob) error
}

// AuthService отвечает за регистрацию, авторизацию и верификацию почты.
type AuthService struct {
	users    UserRepository
	queue    EmailQueue
	jwtMaker jwt.Maker
	log      *slog.Logger
	baseURL  string
}

// New создает новый экземпляр AuthService.
func New(users UserRepository, queue EmailQueue, jwtMaker jwt.Maker, log *slog.Logger, baseURL string) *AuthService {
	return &AuthService{
		users:    users,
		queue:    queue,
		jwtMaker: jwtMaker,
		log:      log,
		baseURL:  baseURL,
	}
}

// NormalizeEmail приводит email к каноническому виду (нижний регистр).
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register создает нового пользователя с хэшированием пароля, выдаёт токен
// верификации и ставит письмо в очередь отправки. Отправка не блокирует
// ответ и не ретраится: ошибка публикации только логируется.
func (s *AuthService) Register(ctx context.Context, email, firstName, lastName, rawPassword string) (string, error) {
	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return "", err
	}

	token := uuid.New().String()
	now := time.Now().UTC()
	user := models.User{
		Email:              NormalizeEmail(email),
		FirstName:          firstName,
		LastName:           lastName,
		PasswordHash:       hashed,
		EmailVerified:      false,
		VerificationToken:  &token,
		VerificationSentAt: &now,
	}

	uid, err := s.users.CreateUser(ctx, user)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return "", ErrEmailTaken
		}
		return "", err
	}

	s.dispatchEmail(models.EmailJob{
		Email:     user.Email,
		FirstName: firstName,
		Kind:      models.EmailKindVerification,
		VerifyURL: s.verifyURL(token),
	})

	return uid, nil
}

// Login проверяет пароль пользователя и генерирует JWT сессии.
// Неверные учётные данные и неподтверждённая почта различаются:
// первое — 401, второе — 403.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (string, *models.User, error) {
	user, err := s.users.GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil, apperr.ErrAuth
		}
		return "", nil, err
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return "", nil, apperr.ErrAuth
	}
	if !user.EmailVerified {
		return "", nil, fmt.Errorf("%w: email not verified", apperr.ErrForbidden)
	}

	token, err := s.jwtMaker.GenerateToken(user.UID, user.Email)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// VerifyEmail подтверждает почту по одноразовому токену. Просроченный
// токен остаётся в базе, но считается недействительным: пользователь
// должен запросить новый.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	user, err := s.users.GetUserByVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrInvalidToken
		}
		return err
	}

	if user.VerificationSentAt == nil || time.Since(*user.VerificationSentAt) > verificationTokenTTL {
		return ErrExpiredToken
	}

	if err := s.users.MarkEmailVerified(ctx, user.UID); err != nil {
		return err
	}
	s.log.Info("email verified", slog.String("user_uid", user.UID))
	return nil
}

// ResendVerification выдаёт новый токен и ставит письмо в очередь.
// Повторная отправка чаще раза в час отклоняется с количеством минут
// до снятия ограничения; уже подтверждённая почта — ошибка.
func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	user, err := s.users.GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.ErrNotFound
		}
		return err
	}
	if user.EmailVerified {
		return ErrAlreadyVerified
	}

	now := time.Now().UTC()
	if user.VerificationSentAt != nil {
		since := now.Sub(*user.VerificationSentAt)
		if since < resendCooldown {
			remaining := int(math.Ceil((resendCooldown - since).Minutes()))
			return &apperr.RateLimited{MinutesRemaining: remaining}
		}
	}

	token := uuid.New().String()
	if err := s.users.RotateVerificationToken(ctx, user.UID, token, now); err != nil {
		return err
	}

	s.dispatchEmail(models.EmailJob{
		Email:     user.Email,
		FirstName: user.FirstName,
		Kind:      models.EmailKindResend,
		VerifyURL: s.verifyURL(token),
	})
	return nil
}

func (s *AuthService) verifyURL(token string) string {
	return s.baseURL + "/api/v1/verify-email?token=" + token
}

func (s *AuthService) dispatchEmail(job models.EmailJob) {
	go func() {
		if err := s.queue.PublishEmailJob(job); err != nil {
			s.log.Error("failed to publish email job", sl.Err(err),
				slog.String("email", job.Email))
		}
	}()
}
