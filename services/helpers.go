package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/ligapro/liga-backend/models"
	"github.com/ligapro/liga-backend/repositories"
	"github.com/ligapro/liga-backend/storage"
)

// txRunner выполняет fn внутри транзакции. Если db == nil (юнит-тесты с
// фейковыми репозиториями), fn вызывается напрямую без транзакции.
type txRunner struct {
	db *sql.DB
}

func (r txRunner) run(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	if r.db == nil {
		return fn(nil)
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	var txErr error
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if txErr != nil {
			_ = tx.Rollback()
		} else {
			txErr = tx.Commit()
		}
	}()
	txErr = fn(tx)
	return txErr
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func intPtr(v int) *int { return &v }

// --- Хелперы для заполнения публичных URL изображений ---

func populateClubLogoURL(club *models.Club, uploader storage.FileUploader) {
	if club != nil && club.LogoKey != nil && *club.LogoKey != "" && uploader != nil {
		url := uploader.GetPublicURL(*club.LogoKey)
		if url != "" {
			club.LogoURL = &url
		}
	}
}

func populateTournamentImageURL(tournament *models.Tournament, uploader storage.FileUploader) {
	if tournament != nil && tournament.MainImageKey != nil && *tournament.MainImageKey != "" && uploader != nil {
		url := uploader.GetPublicURL(*tournament.MainImageKey)
		if url != "" {
			tournament.MainImageURL = &url
		}
	}
}

func populateMemberClubLogoURL(member *models.Member, uploader storage.FileUploader) {
	if member != nil {
		populateClubLogoURL(member.Club, uploader)
	}
}

// GetExtensionFromContentType подбирает расширение файла по Content-Type изображения.
func GetExtensionFromContentType(contentType string) (string, error) {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg", nil
	case "image/png":
		return ".png", nil
	case "image/gif":
		return ".gif", nil
	case "image/webp":
		return ".webp", nil
	default:
		parts := strings.Split(contentType, "/")
		if len(parts) == 2 && strings.HasPrefix(parts[0], "image") && parts[1] != "" {
			return "." + strings.Split(parts[1], "+")[0], nil
		}
		return "", fmt.Errorf("could not determine file extension from content type: '%s'", contentType)
	}
}
