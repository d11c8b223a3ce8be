package store

import (
	"bytes"
	"context"
	"encoding/json"
	"io"

	"nexus/nexus/chat"
	"nexus/nexus/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

const snapshotObject = "chat/snapshot.json"

// MinIOStore keeps the snapshot as a single JSON object in a bucket,
// for deployments where portal pods have no durable disk.
type MinIOStore struct {
	client *minio.Client
	bucket string
	log    *zap.Logger
}

func NewMinIOStore(cfg config.Config, log *zap.Logger) (*MinIOStore, error) {
	client, err := minio.New(cfg.MinIOEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinIOAccessKey, cfg.MinIOSecretKey, ""),
		Secure: false,
	})
	if err != nil {
		return nil, err
	}
	exists, err := client.BucketExists(context.Background(), cfg.MinIOBucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := client.MakeBucket(context.Background(), cfg.MinIOBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, err
		}
	}
	return &MinIOStore{client: client, bucket: cfg.MinIOBucket, log: log}, nil
}

func (s *MinIOStore) Load(ctx context.Context) (*chat.Snapshot, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, snapshotObject, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, nil
		}
		return nil, err
	}
	var snap chat.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		s.log.Warn("corrupt chat snapshot object, starting fresh", zap.Error(err))
		return nil, nil
	}
	if len(snap.Sessions) == 0 {
		return nil, nil
	}
	return &snap, nil
}

func (s *MinIOStore) Save(ctx context.Context, snap *chat.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	_, err = s.client.PutObject(ctx, s.bucket, snapshotObject,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"},
	)
	return err
}
