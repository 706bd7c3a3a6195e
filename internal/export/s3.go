package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/hashicorp/go-hclog"
)

// S3Target names the destination of an uploaded report artifact.
type S3Target struct {
	Bucket string
	Region string
	// Prefix is prepended to the object key. The key is prefix/scanID.ext.
	Prefix string
}

// UploadS3 uploads a rendered report file to S3. Credentials come from the
// default AWS chain (environment, shared config, instance role).
func UploadS3(logger hclog.Logger, target S3Target, localPath, scanID string) (string, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(target.Region),
	})
	if err != nil {
		return "", fmt.Errorf("creating aws session: %w", err)
	}
	uploader := s3manager.NewUploader(sess)

	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("opening report file %q: %w", localPath, err)
	}
	defer f.Close()

	key := filepath.ToSlash(filepath.Join(target.Prefix, scanID+filepath.Ext(localPath)))
	result, err := uploader.Upload(&s3manager.UploadInput{
		Bucket: aws.String(target.Bucket),
		Key:    aws.String(key),
		Body:   f,
	})
	if err != nil {
		return "", fmt.Errorf("uploading report to s3: %w", err)
	}

	logger.Info("report uploaded", "bucket", target.Bucket, "key", key, "location", result.Location)
	return result.Location, nil
}
