package config

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rs/zerolog/log"
)

// parameterLister is the part of the SSM client used to page through a path.
type parameterLister interface {
	GetParametersByPath(ctx context.Context, params *ssm.GetParametersByPathInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error)
}

// LoadSSMParameters overlays the parameters stored under SSM_PARAMETER_PATH onto c.
// Nothing happens when the path is not configured.
func LoadSSMParameters(ctx context.Context, c Config) error {
	paramPath := GetString(c, "SSM_PARAMETER_PATH", "")
	if paramPath == "" {
		return nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return fmt.Errorf("load aws config: %w", err)
	}

	n, err := overlayParameters(ctx, ssm.NewFromConfig(awsCfg), paramPath, c)
	if err != nil {
		return err
	}
	log.Info().Str("path", paramPath).Int("count", n).Msg("Loaded configuration from SSM")
	return nil
}

// overlayParameters copies every parameter under paramPath into c using the
// upper-cased last path segment as key. Keys already set in c win.
func overlayParameters(ctx context.Context, client parameterLister, paramPath string, c Config) (int, error) {
	var (
		loaded    int
		nextToken *string
	)

	for {
		out, err := client.GetParametersByPath(ctx, &ssm.GetParametersByPathInput{
			Path:           aws.String(paramPath),
			Recursive:      aws.Bool(true),
			WithDecryption: aws.Bool(true),
			NextToken:      nextToken,
		})
		if err != nil {
			return loaded, fmt.Errorf("get ssm parameters under %s: %w", paramPath, err)
		}

		for _, p := range out.Parameters {
			name := aws.ToString(p.Name)
			key := strings.ToUpper(strings.ReplaceAll(path.Base(name), "-", "_"))
			if key == "" || key == "." || key == "/" {
				continue
			}
			if existing, ok := c[key]; ok && existing != "" {
				continue
			}
			c[key] = aws.ToString(p.Value)
			loaded++
		}

		if out.NextToken == nil || aws.ToString(out.NextToken) == "" {
			return loaded, nil
		}
		nextToken = out.NextToken
	}
}
