package feed

import (
	"archive/zip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/nordicgem/diamond-indexer/internal/adapter"
	"github.com/nordicgem/diamond-indexer/internal/domain"
	"github.com/nordicgem/diamond-indexer/internal/logger"
)

const (
	naturalFeedPath   = "/fullfeed"
	naturalDataFormat = "format_20220525_basis"
	labFeedPath       = "/labgrownfullfile"
	labDataFormat     = "format_lg_20221130"
)

// feedRequest is the supplier's feed download request payload
type feedRequest struct {
	AuthenticationDetails authenticationDetails `json:"authentication_details"`
	Parameters            requestParameters     `json:"parameters"`
}

type authenticationDetails struct {
	APIKey    string `json:"api_key"`
	APISecret string `json:"api_secret"`
}

type requestParameters struct {
	FileFormat    string `json:"file_format"`
	DataFormat    string `json:"data_format"`
	CreateZipFile bool   `json:"create_zip_file"`
}

// Client downloads feed files from the supplier API. The supplier returns a
// ZIP archive with a single CSV inside; the archive is spooled to a temporary
// file so the CSV can be streamed without holding the file in memory.
type Client struct {
	httpClient adapter.HTTPClient
	fs         adapter.FileSystem
	baseURL    string
	apiKey     string
	apiSecret  string
}

// NewClient creates a feed client against the given API base URL
func NewClient(httpClient adapter.HTTPClient, fs adapter.FileSystem, baseURL, apiKey, apiSecret string) *Client {
	return &Client{
		httpClient: httpClient,
		fs:         fs,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		apiSecret:  apiSecret,
	}
}

// Fetch downloads the full feed for a type and returns a stream over the CSV
// inside the archive. The caller must close the stream; closing removes the
// spooled archive.
func (c *Client) Fetch(ctx context.Context, feedType domain.FeedType) (io.ReadCloser, error) {
	path, dataFormat := naturalFeedPath, naturalDataFormat
	if feedType == domain.FeedTypeLab {
		path, dataFormat = labFeedPath, labDataFormat
	}

	payload, err := json.Marshal(feedRequest{
		AuthenticationDetails: authenticationDetails{
			APIKey:    c.apiKey,
			APISecret: c.apiSecret,
		},
		Parameters: requestParameters{
			FileFormat:    "csv",
			DataFormat:    dataFormat,
			CreateZipFile: true,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode feed request: %w", err)
	}

	logger.Info("downloading feed",
		zap.String("type", string(feedType)),
		zap.String("format", dataFormat))

	resp, err := c.httpClient.Post(ctx, c.baseURL+path, "application/json", payload)
	if err != nil {
		return nil, fmt.Errorf("failed to download feed: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Warn("failed to close feed response body", zap.Error(err))
		}
	}()

	archivePath, size, err := c.spool(resp.Body)
	if err != nil {
		return nil, err
	}

	logger.Info("feed archive downloaded",
		zap.String("type", string(feedType)),
		zap.Int64("bytes", size))

	stream, err := c.openCSV(archivePath)
	if err != nil {
		if removeErr := c.fs.Remove(archivePath); removeErr != nil {
			logger.Warn("failed to remove feed archive", zap.Error(removeErr))
		}
		return nil, err
	}

	return stream, nil
}

// spool copies the response body to a temporary file and returns its path
func (c *Client) spool(body io.Reader) (string, int64, error) {
	tmp, err := c.fs.CreateTemp("feed-*.zip")
	if err != nil {
		return "", 0, fmt.Errorf("failed to create temp file: %w", err)
	}

	size, err := io.Copy(tmp, body)
	closeErr := tmp.Close()
	if err != nil {
		if removeErr := c.fs.Remove(tmp.Name()); removeErr != nil {
			logger.Warn("failed to remove feed archive", zap.Error(removeErr))
		}
		return "", 0, fmt.Errorf("failed to spool feed archive: %w", err)
	}
	if closeErr != nil {
		if removeErr := c.fs.Remove(tmp.Name()); removeErr != nil {
			logger.Warn("failed to remove feed archive", zap.Error(removeErr))
		}
		return "", 0, fmt.Errorf("failed to close feed archive: %w", closeErr)
	}

	return tmp.Name(), size, nil
}

// openCSV opens the archive and returns a stream over its CSV entry
func (c *Client) openCSV(archivePath string) (io.ReadCloser, error) {
	archive, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open feed archive: %w", err)
	}

	for _, file := range archive.File {
		if !strings.HasSuffix(strings.ToLower(file.Name), ".csv") {
			continue
		}

		entry, err := file.Open()
		if err != nil {
			if closeErr := archive.Close(); closeErr != nil {
				logger.Warn("failed to close feed archive", zap.Error(closeErr))
			}
			return nil, fmt.Errorf("failed to open CSV entry: %w", err)
		}

		logger.Debug("found CSV in feed archive", zap.String("name", file.Name))
		return &archiveStream{
			entry:   entry,
			archive: archive,
			fs:      c.fs,
			path:    archivePath,
		}, nil
	}

	if closeErr := archive.Close(); closeErr != nil {
		logger.Warn("failed to close feed archive", zap.Error(closeErr))
	}
	return nil, domain.ErrNoCSVInArchive
}

// archiveStream streams one entry out of a spooled ZIP archive and cleans up
// the archive on close
type archiveStream struct {
	entry   io.ReadCloser
	archive *zip.ReadCloser
	fs      adapter.FileSystem
	path    string
}

func (s *archiveStream) Read(p []byte) (int, error) {
	return s.entry.Read(p)
}

func (s *archiveStream) Close() error {
	entryErr := s.entry.Close()
	archiveErr := s.archive.Close()
	removeErr := s.fs.Remove(s.path)

	if entryErr != nil {
		return entryErr
	}
	if archiveErr != nil {
		return archiveErr
	}
	return removeErr
}
