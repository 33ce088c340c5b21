package drive

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	driveapi "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/candelento/balanza/internal/config"
)

const workbookMimeType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Repository defines the backup operations supported by the Google Drive adapter.
type Repository interface {
	UploadWorkbook(ctx context.Context, localPath, name string) (string, error)
}

// GoogleDriveRepository implements the Repository interface using the official Google Drive API.
type GoogleDriveRepository struct {
	service  *driveapi.Service
	folderID string
	logger   *zap.Logger
}

// NewGoogleDriveRepository builds a Google Drive backed repository instance.
func NewGoogleDriveRepository(ctx context.Context, cfg config.DriveConfig, logger *zap.Logger) (Repository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := driveapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(driveapi.DriveFileScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize drive client: %w", err)
	}

	return &GoogleDriveRepository{
		service:  service,
		folderID: cfg.FolderID,
		logger:   logger,
	}, nil
}

// UploadWorkbook uploads a local workbook file under the given name and
// returns the id of the created Drive file.
func (r *GoogleDriveRepository) UploadWorkbook(ctx context.Context, localPath, name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("name must not be empty")
	}

	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open workbook %s: %w", localPath, err)
	}
	defer f.Close()

	meta := &driveapi.File{
		Name:     name,
		MimeType: workbookMimeType,
	}
	if r.folderID != "" {
		meta.Parents = []string{r.folderID}
	}

	created, err := r.service.Files.Create(meta).Media(f).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("upload workbook %s: %w", name, err)
	}

	r.logger.Debug("workbook uploaded to drive", zap.String("name", name), zap.String("file_id", created.Id))
	return created.Id, nil
}
