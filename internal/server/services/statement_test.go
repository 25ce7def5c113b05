package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	sc "github.com/dmitrijs2005/govkeeper/internal/server/config"
	"github.com/dmitrijs2005/govkeeper/internal/server/models"
)

func newStatementHarness(t *testing.T) (*engineHarness, *StatementService) {
	t.Helper()
	h := newEngineHarness(t)
	cfg := &sc.Config{
		S3Region:       "us-east-1",
		S3RootUser:     "minioadmin",
		S3RootPassword: "minioadmin",
		S3BaseEndpoint: "http://127.0.0.1:9000",
		S3Bucket:       "statements",
	}
	return h, NewStatementService(h.db, &memRepoManager{h.state}, cfg, h.clock)
}

func stubS3(t *testing.T) {
	t.Helper()
	origLoad := loadDefaultAWSConfig
	origNewS3 := newS3ClientFromConfig
	origNewPre := newS3PresignClient
	origPut := putObject
	origGet := presignGetObject
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNewS3
		newS3PresignClient = origNewPre
		putObject = origPut
		presignGetObject = origGet
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return &s3.Client{}
	}
	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return &s3.PresignClient{}
	}
}

func TestStatementExport(t *testing.T) {
	h, svc := newStatementHarness(t)
	stubS3(t)

	h.state.events = append(h.state.events,
		&models.AuditEvent{ID: "e1", Owner: "alice", Action: models.ActionDeposit, Subject: "d1", Amount: 100, CreatedAt: 1},
		&models.AuditEvent{ID: "e2", Owner: "alice", Action: models.ActionClaim, Subject: "t1", Amount: 100, CreatedAt: 2},
		&models.AuditEvent{ID: "e3", Owner: "bob", Action: models.ActionDeposit, Subject: "d2", Amount: 5, CreatedAt: 3},
	)
	h.clock.now = 42

	var uploaded []byte
	var uploadedKey string
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		if *in.Bucket != "statements" {
			t.Fatalf("bucket = %q", *in.Bucket)
		}
		uploadedKey = *in.Key
		var err error
		uploaded, err = io.ReadAll(in.Body)
		if err != nil {
			t.Fatalf("reading body: %v", err)
		}
		return &s3.PutObjectOutput{}, nil
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		if *in.Key != uploadedKey {
			t.Fatalf("presigned key %q does not match uploaded key %q", *in.Key, uploadedKey)
		}
		return &v4.PresignedHTTPRequest{URL: "https://signed.example/" + *in.Key}, nil
	}

	url, err := svc.Export(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Export error: %v", err)
	}
	if url != "https://signed.example/"+uploadedKey {
		t.Fatalf("url = %q", url)
	}

	var doc statement
	if err := json.Unmarshal(uploaded, &doc); err != nil {
		t.Fatalf("unmarshal statement: %v", err)
	}
	if doc.Owner != "alice" || doc.GeneratedAt != 42 {
		t.Fatalf("statement header = %+v", doc)
	}
	// only alice's events appear
	if len(doc.Events) != 2 {
		t.Fatalf("statement events = %d, want 2", len(doc.Events))
	}
}

func TestStatementExport_UploadError(t *testing.T) {
	_, svc := newStatementHarness(t)
	stubS3(t)

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return nil, errors.New("put-fail")
	}

	if _, err := svc.Export(context.Background(), "alice"); err == nil || err.Error() != "put-fail" {
		t.Fatalf("expected put-fail, got %v", err)
	}
}

func TestStatementExport_LoadConfigError(t *testing.T) {
	_, svc := newStatementHarness(t)
	stubS3(t)

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("load-fail")
	}

	if _, err := svc.Export(context.Background(), "alice"); err == nil || err.Error() != "load-fail" {
		t.Fatalf("expected load-fail, got %v", err)
	}
}
