package gridfs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Abdurahmanit/GroupProject/classifieds-service/internal/config"
	"github.com/Abdurahmanit/GroupProject/classifieds-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/classifieds-service/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// AssetsPath is the HTTP route prefix under which stored files are served.
const AssetsPath = "/assets/"

var ErrAssetNotFound = errors.New("asset not found")

// Store keeps images in MongoDB GridFS. The handle is the hex file id.
type Store struct {
	db        *mongo.Database
	bucket    string
	publicURL string
	logger    *logger.Logger
}

func NewStore(db *mongo.Database, cfg *config.GridFSConfig, log *logger.Logger) *Store {
	name := cfg.Bucket
	if name == "" {
		name = options.DefaultName
	}
	return &Store{
		db:        db,
		bucket:    name,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
		logger:    log.Named("gridfs_store"),
	}
}

// open returns a bucket bound to ctx's deadline. Buckets carry deadlines as
// state, so one is created per call.
func (s *Store) open(ctx context.Context) (*gridfs.Bucket, error) {
	b, err := gridfs.NewBucket(s.db, options.GridFSBucket().SetName(s.bucket))
	if err != nil {
		return nil, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = b.SetReadDeadline(deadline)
		_ = b.SetWriteDeadline(deadline)
	}
	return b, nil
}

func (s *Store) Upload(ctx context.Context, upload domain.Upload, constraints domain.UploadConstraints) (domain.Image, error) {
	ext, err := constraints.Extension(upload.FileName)
	if err != nil {
		return domain.Image{}, err
	}
	b, err := s.open(ctx)
	if err != nil {
		return domain.Image{}, fmt.Errorf("failed to open gridfs bucket: %w", err)
	}

	contentType := upload.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(upload.Data)
	}

	id := primitive.NewObjectID()
	filename := fmt.Sprintf("%s/%s.%s", strings.Trim(constraints.Folder, "/"), id.Hex(), ext)
	opts := options.GridFSUpload().SetMetadata(bson.D{
		{Key: "contentType", Value: contentType},
		{Key: "folder", Value: constraints.Folder},
	})
	if err := b.UploadFromStreamWithID(id, filename, bytes.NewReader(upload.Data), opts); err != nil {
		s.logger.Error("Store.Upload: UploadFromStreamWithID failed", zap.String("filename", filename), zap.Error(err))
		return domain.Image{}, fmt.Errorf("failed to upload %s: %w", filename, err)
	}

	handle := id.Hex()
	s.logger.Info("Store.Upload: file uploaded", zap.String("handle", handle), zap.Int("size", len(upload.Data)))
	return domain.Image{URL: s.publicURL + AssetsPath + handle, Handle: handle}, nil
}

// Delete treats an unknown or malformed handle as already deleted.
func (s *Store) Delete(ctx context.Context, handle string) error {
	id, err := primitive.ObjectIDFromHex(handle)
	if err != nil {
		return nil
	}
	b, err := s.open(ctx)
	if err != nil {
		return fmt.Errorf("failed to open gridfs bucket: %w", err)
	}
	if err := b.Delete(id); err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil
		}
		s.logger.Error("Store.Delete: Delete failed", zap.String("handle", handle), zap.Error(err))
		return fmt.Errorf("failed to delete %s: %w", handle, err)
	}
	return nil
}

// Open streams the file behind handle. The caller closes the reader.
func (s *Store) Open(ctx context.Context, handle string) (io.ReadCloser, string, error) {
	id, err := primitive.ObjectIDFromHex(handle)
	if err != nil {
		return nil, "", ErrAssetNotFound
	}
	b, err := s.open(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open gridfs bucket: %w", err)
	}
	stream, err := b.OpenDownloadStream(id)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, "", ErrAssetNotFound
		}
		return nil, "", err
	}
	return stream, contentTypeOf(stream.GetFile()), nil
}

func contentTypeOf(f *gridfs.File) string {
	if f != nil && f.Metadata != nil {
		if v, ok := f.Metadata.Lookup("contentType").StringValueOK(); ok && v != "" {
			return v
		}
	}
	return "application/octet-stream"
}
