// Package secrets reads runtime credentials from AWS Secrets Manager.
package secrets

import (
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/secretsmanager"
	"github.com/bytedance/sonic"
	"github.com/sirupsen/logrus"

	"github.com/pickup-archive/pickups-api/internal/config"
)

// Keys inside the JSON secret.
const (
	KeyJWTSecret     = "jwt_secret"
	KeyRedisPassword = "redis_password"
)

// Fetch loads the configured secret and decodes it as a flat JSON object.
func Fetch(awsCfg *config.AWSConfig, logger *logrus.Logger) (map[string]string, error) {
	if awsCfg.SecretName == "" {
		return nil, fmt.Errorf("AWS_SECRET_NAME is not set")
	}

	sessConfig := &aws.Config{
		Region: aws.String(awsCfg.Region),
	}
	if awsCfg.Profile != "" {
		sessConfig.WithCredentialsChainVerboseErrors(true)
	}

	sess, err := session.NewSessionWithOptions(session.Options{
		Config:  *sessConfig,
		Profile: awsCfg.Profile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	svc := secretsmanager.New(sess)
	result, err := svc.GetSecretValue(&secretsmanager.GetSecretValueInput{
		SecretId: aws.String(awsCfg.SecretName),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve secret '%s': %w", awsCfg.SecretName, err)
	}
	if result.SecretString == nil {
		return nil, fmt.Errorf("secret '%s' has no string value", awsCfg.SecretName)
	}

	values, err := Decode(*result.SecretString)
	if err != nil {
		return nil, fmt.Errorf("secret '%s': %w", awsCfg.SecretName, err)
	}

	logger.WithField("secret_name", awsCfg.SecretName).Info("Loaded secrets from Secrets Manager")
	return values, nil
}

// Decode parses a flat JSON object of string values.
func Decode(raw string) (map[string]string, error) {
	values := make(map[string]string)
	if err := sonic.UnmarshalString(raw, &values); err != nil {
		return nil, fmt.Errorf("secret is not a JSON object of strings: %w", err)
	}
	return values, nil
}

// Lookup returns a single required key.
func Lookup(values map[string]string, key string) (string, error) {
	v, ok := values[key]
	if !ok || v == "" {
		return "", fmt.Errorf("secret key %q is missing", key)
	}
	return v, nil
}
