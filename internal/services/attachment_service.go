package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"stocktrail/internal/common"
	"stocktrail/internal/repositories"
)

const attachmentBucket = "movement-attachments"

// AttachmentService stores supporting documents for stock movements.
// Attaching a file is the one mutation allowed on a terminal movement.
type AttachmentService interface {
	Attach(ctx context.Context, movementID uuid.UUID, filename string, reader io.Reader, size int64, contentType string) (string, error)
	PresignedURL(ctx context.Context, movementID uuid.UUID, expiry time.Duration) (string, error)
}

type attachmentService struct {
	client       *minio.Client
	movementRepo repositories.MovementRepository
}

func NewAttachmentService(endpoint, accessKey, secretKey string, useSSL bool, movementRepo repositories.MovementRepository) (AttachmentService, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}
	return &attachmentService{client: client, movementRepo: movementRepo}, nil
}

func (s *attachmentService) ensureBucket(ctx context.Context) error {
	found, err := s.client.BucketExists(ctx, attachmentBucket)
	if err != nil {
		return err
	}
	if !found {
		return s.client.MakeBucket(ctx, attachmentBucket, minio.MakeBucketOptions{})
	}
	return nil
}

func (s *attachmentService) Attach(ctx context.Context, movementID uuid.UUID, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	movement, err := s.movementRepo.GetByID(ctx, movementID)
	if err != nil {
		return "", err
	}

	if err := s.ensureBucket(ctx); err != nil {
		return "", common.NewStorageError("ensure attachment bucket", err)
	}

	objectName := fmt.Sprintf("%s/%s", movement.ID.String(), filename)
	if _, err := s.client.PutObject(ctx, attachmentBucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	}); err != nil {
		return "", common.NewStorageError("upload attachment", err)
	}

	if err := s.movementRepo.SetAttachmentURL(ctx, movement.ID, objectName); err != nil {
		return "", err
	}
	return objectName, nil
}

func (s *attachmentService) PresignedURL(ctx context.Context, movementID uuid.UUID, expiry time.Duration) (string, error) {
	movement, err := s.movementRepo.GetByID(ctx, movementID)
	if err != nil {
		return "", err
	}
	if movement.AttachmentURL == nil {
		return "", common.NewNotFoundError("attachment")
	}

	url, err := s.client.PresignedGetObject(ctx, attachmentBucket, *movement.AttachmentURL, expiry, nil)
	if err != nil {
		return "", common.NewStorageError("presign attachment", err)
	}
	return url.String(), nil
}
