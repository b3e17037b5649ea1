// Package publish uploads finished council artifacts (results, reports,
// transcripts) to Azure Blob Storage.
package publish

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

// AzurePublisher uploads run artifacts to one blob container.
type AzurePublisher struct {
	client    *azblob.Client
	container string
}

// NewAzurePublisher creates a publisher for the given storage account and
// container, authenticating with the default Azure credential chain
// (environment, workload identity, managed identity, CLI).
func NewAzurePublisher(serviceURL, container string) (*AzurePublisher, error) {
	if serviceURL == "" {
		return nil, fmt.Errorf("publish: service URL is required")
	}
	if container == "" {
		return nil, fmt.Errorf("publish: container name is required")
	}

	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("building Azure credential: %w", err)
	}

	client, err := azblob.NewClient(serviceURL, cred, &azblob.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Retry: policy.RetryOptions{
				MaxRetries: 3,
				RetryDelay: 2 * time.Second,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("creating blob client: %w", err)
	}

	return &AzurePublisher{client: client, container: container}, nil
}

// PublishFile uploads one local file under the given run prefix and returns
// the blob name.
func (p *AzurePublisher) PublishFile(ctx context.Context, runPrefix, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}

	blobName := runPrefix + "/" + filepath.Base(path)
	if _, err := p.client.UploadBuffer(ctx, p.container, blobName, data, nil); err != nil {
		return "", fmt.Errorf("uploading %s: %w", blobName, err)
	}

	slog.Debug("published artifact", "container", p.container, "blob", blobName, "bytes", len(data))
	return blobName, nil
}

// PublishFiles uploads several files under one run prefix. It keeps going
// after individual failures and returns the uploaded blob names along with
// the first error encountered.
func (p *AzurePublisher) PublishFiles(ctx context.Context, runPrefix string, paths []string) ([]string, error) {
	var uploaded []string
	var firstErr error
	for _, path := range paths {
		name, err := p.PublishFile(ctx, runPrefix, path)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		uploaded = append(uploaded, name)
	}
	return uploaded, firstErr
}

// RunPrefix derives a blob prefix for one run from its start time.
func RunPrefix(startedAt time.Time) string {
	return "runs/" + startedAt.UTC().Format("20060102-150405")
}
