package services

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/govkeeper/internal/common"
	sc "github.com/dmitrijs2005/govkeeper/internal/server/config"
	"github.com/dmitrijs2005/govkeeper/internal/server/models"
	"github.com/dmitrijs2005/govkeeper/internal/server/repositories/repomanager"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// StatementService renders an owner's audit trail as a JSON document,
// uploads it to object storage and hands back a short-lived download URL.
type StatementService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
	clock       Clock
}

func NewStatementService(db *sql.DB, m repomanager.RepositoryManager, config *sc.Config, clock Clock) *StatementService {
	return &StatementService{db: db, repomanager: m, config: config, clock: clock}
}

func statementStorageKey(owner string, d time.Time) (string, error) {
	suffix, err := common.MakeRandHexString(16)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("statements/%s/%d/%d/%d/%s", owner, d.Year(), d.Month(), d.Day(), suffix), nil
}

// statement is the exported document layout.
type statement struct {
	Owner       string               `json:"owner"`
	GeneratedAt int64                `json:"generated_at"`
	Events      []*models.AuditEvent `json:"events"`
}

func (s *StatementService) getS3Client() (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(context.Background(),
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,     // MINIO_ROOT_USER
			s.config.S3RootPassword, // MINIO_ROOT_PASSWORD
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
	}), nil
}

// Export uploads the owner's full audit trail and returns a presigned GET
// URL valid for 15 minutes.
func (s *StatementService) Export(ctx context.Context, owner string) (string, error) {
	events, err := s.repomanager.Events(s.db).ListByOwner(ctx, owner)
	if err != nil {
		return "", err
	}

	doc := &statement{
		Owner:       owner,
		GeneratedAt: s.clock.Now().Unix(),
		Events:      events,
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}

	client, err := s.getS3Client()
	if err != nil {
		return "", err
	}

	bucket := s.config.S3Bucket
	key, err := statementStorageKey(owner, s.clock.Now())
	if err != nil {
		return "", err
	}
	contentType := "application/json"

	_, err = putObject(client, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		Body:        bytes.NewReader(body),
		ContentType: &contentType,
	})
	if err != nil {
		return "", err
	}

	req, err := presignGetObject(newS3PresignClient(client), ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}

// Events returns the owner's audit trail without exporting it.
func (s *StatementService) Events(ctx context.Context, owner string) ([]*models.AuditEvent, error) {
	return s.repomanager.Events(s.db).ListByOwner(ctx, owner)
}
