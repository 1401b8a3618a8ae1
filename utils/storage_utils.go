package utils

import (
	"bytes"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// Storage wraps an S3-compatible object store used for database backups.
type Storage struct {
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Endpoint  string
}

func (st *Storage) client() *s3.S3 {
	sess := session.Must(session.NewSession(&aws.Config{
		Region:      aws.String(st.Region),
		Endpoint:    aws.String(st.Endpoint),
		Credentials: credentials.NewStaticCredentials(st.AccessKey, st.SecretKey, ""),
	}))
	return s3.New(sess)
}

// UploadFile stores the file under folder/fileName and returns its URL.
func (st *Storage) UploadFile(file []byte, fileName string, folder string) (string, error) {
	filePath := fmt.Sprintf("%s/%s", folder, fileName)

	_, err := st.client().PutObject(&s3.PutObjectInput{
		Bucket:        aws.String(st.Bucket),
		Key:           aws.String(filePath),
		Body:          bytes.NewReader(file),
		ContentLength: aws.Int64(int64(len(file))),
		ContentType:   aws.String("application/sql"),
	})
	if err != nil {
		return "", fmt.Errorf("unable to upload file to S3: %v", err)
	}
	return fmt.Sprintf("%s/%s/%s", st.Endpoint, st.Bucket, filePath), nil
}
