package blob

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/jhoicas/labstock-api/internal/application/ports"
)

// S3Config parámetros del bucket (AWS S3 o compatible, p. ej. MinIO).
type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	PathStyle       bool
	AccessKeyID     string
	SecretAccessKey string
	// Opciones extra del cliente (pruebas: HTTPClient falso).
	ClientOptions []func(*s3.Options)
}

// S3 archiva reportes en un único bucket; la clave del objeto es la clave del reporte.
type S3 struct {
	client *s3.Client
	bucket string
}

var _ ports.ReportStore = (*S3)(nil)

// NewS3 carga la configuración por defecto del SDK y aplica región, endpoint y credenciales.
func NewS3(ctx context.Context, cfg S3Config) (*S3, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("blob s3: bucket requerido")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("blob s3: %w", err)
	}
	opts := []func(*s3.Options){func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}}
	opts = append(opts, cfg.ClientOptions...)
	return &S3{client: s3.NewFromConfig(awsCfg, opts...), bucket: cfg.Bucket}, nil
}

// Put sube el objeto y devuelve su URI s3://bucket/key.
func (s *S3) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	k, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(k),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("blob s3: put %s: %w", k, err)
	}
	return fmt.Sprintf("s3://%s/%s", s.bucket, k), nil
}
