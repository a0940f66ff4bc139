package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/zoyabites/zoyabites-system/internal/model"
	"github.com/zoyabites/zoyabites-system/internal/repository"
)

// GrantMaster и GrantCode — виды операторского доступа по коду.
const (
	GrantMaster = "master"
	GrantCode   = "code"
)

// VerifyAccessCode проверяет код доступа и возвращает вид гранта.
// Мастер-код сравнивается за константное время; обычный код должен быть
// активен и не истёкший.
func (s *Service) VerifyAccessCode(ctx context.Context, code string) (string, error) {
	if code == "" {
		return "", ErrInvalidAccessCode
	}

	if s.masterCode != "" &&
		subtle.ConstantTimeCompare([]byte(code), []byte(s.masterCode)) == 1 {
		return GrantMaster, nil
	}

	ac, err := s.repo.FindUsableAccessCode(ctx, code, s.now())
	if err != nil {
		if errors.Is(err, repository.ErrAccessCodeNotFound) {
			s.logger.Warn("access code rejected")
			return "", ErrInvalidAccessCode
		}
		return "", err
	}

	s.logger.Info("access code accepted", zap.String("label", ac.Label))
	return GrantCode, nil
}

// CreateAccessCode создаёт код доступа с окном действия в часах от текущего момента.
func (s *Service) CreateAccessCode(ctx context.Context, label, code string, validHours int) (*model.AccessCode, error) {
	if label == "" || code == "" {
		return nil, ErrInvalidPayload
	}
	if validHours <= 0 {
		validHours = 24
	}

	expiresAt := s.now().Add(time.Duration(validHours) * time.Hour)

	ac, err := s.repo.CreateAccessCode(ctx, label, code, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("create access code: %w", err)
	}

	s.logger.Info("access code created",
		zap.String("label", label),
		zap.Time("expires_at", expiresAt),
	)
	return ac, nil
}

// ListAccessCodes возвращает все коды доступа, включая истёкшие.
func (s *Service) ListAccessCodes(ctx context.Context) ([]model.AccessCode, error) {
	return s.repo.ListAccessCodes(ctx)
}

// ToggleAccessCode включает или выключает код доступа.
func (s *Service) ToggleAccessCode(ctx context.Context, id string, active bool) error {
	return s.repo.SetAccessCodeActive(ctx, id, active)
}

// DeleteAccessCode удаляет код доступа.
func (s *Service) DeleteAccessCode(ctx context.Context, id string) error {
	return s.repo.DeleteAccessCode(ctx, id)
}
