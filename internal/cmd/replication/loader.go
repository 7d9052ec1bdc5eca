package replication

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/turbolytics/curator/internal"
	"github.com/turbolytics/curator/internal/local"
	"github.com/turbolytics/curator/internal/s3"
)

// ReadConfig loads a replication config from a local path, an s3:// URL,
// or stdin when location is "-".
func ReadConfig(ctx context.Context, location string, logger *zap.Logger) ([]byte, error) {
	switch {
	case location == "-":
		return io.ReadAll(os.Stdin)
	case strings.HasPrefix(location, "s3://"):
		bucket, key, err := s3.ParseURL(location)
		if err != nil {
			return nil, err
		}
		repo, err := s3.New(
			s3.WithBucket(bucket),
			s3.WithRegion(viper.GetString("aws_region")),
			s3.WithLogger(logger),
		)
		if err != nil {
			return nil, err
		}
		rc, err := repo.Read(ctx, key)
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	default:
		return os.ReadFile(location)
	}
}

// NewRepository initializes the repository backing an output location.
// s3:// outputs write to S3, everything else writes to the local filesystem.
func NewRepository(output string, logger *zap.Logger) (internal.Repository, error) {
	if strings.HasPrefix(output, "s3://") {
		bucket, prefix, err := s3.ParseURL(output)
		if err != nil {
			return nil, err
		}
		return s3.New(
			s3.WithBucket(bucket),
			s3.WithPrefix(prefix),
			s3.WithRegion(viper.GetString("aws_region")),
			s3.WithLogger(logger),
		)
	}

	repo := local.New(
		output,
		local.WithLogger(logger),
	)
	return repo, nil
}
