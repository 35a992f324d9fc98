package cloudbackup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const (
	backupPrefix = "productivity-app"
	appDataSpace = "appDataFolder"
)

var (
	ErrAccessTokenRequired = errors.New("access token is required")
	ErrThrottled           = errors.New("too many uploads")
)

// BackupFilename names a backup taken on date.
func BackupFilename(date time.Time) string {
	return backupPrefix + "-backup-" + date.Format("2006-01-02") + ".json"
}

type File struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ModifiedTime string `json:"modifiedTime"`
}

// Drive stores backups in the Google Drive app data folder of whoever owns the
// access token.
type Drive struct {
	limiter *rate.Limiter
	opts    []option.ClientOption
}

// NewDrive allows uploadsPerMinute uploads with a burst of one. Extra options
// are appended to every client.
func NewDrive(uploadsPerMinute int, opts ...option.ClientOption) *Drive {
	if uploadsPerMinute <= 0 {
		uploadsPerMinute = 1
	}
	return &Drive{
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(uploadsPerMinute)), 1),
		opts:    opts,
	}
}

func (d *Drive) service(ctx context.Context, accessToken string) (*drive.Service, error) {
	if accessToken == "" {
		return nil, ErrAccessTokenRequired
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
	opts := append([]option.ClientOption{option.WithTokenSource(ts)}, d.opts...)
	return drive.NewService(ctx, opts...)
}

func (d *Drive) Upload(ctx context.Context, accessToken, filename string, content []byte) (string, error) {
	srv, err := d.service(ctx, accessToken)
	if err != nil {
		return "", err
	}
	if err := d.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: %v", ErrThrottled, err)
	}

	meta := &drive.File{
		Name:     filename,
		Parents:  []string{appDataSpace},
		MimeType: "application/json",
	}
	f, err := srv.Files.Create(meta).
		Media(bytes.NewReader(content)).
		Fields("id").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("drive upload: %w", err)
	}
	return f.Id, nil
}

func (d *Drive) List(ctx context.Context, accessToken string) ([]File, error) {
	srv, err := d.service(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	res, err := srv.Files.List().
		Spaces(appDataSpace).
		Q(fmt.Sprintf("name contains '%s'", backupPrefix)).
		Fields("files(id, name, modifiedTime)").
		OrderBy("modifiedTime desc").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("drive list: %w", err)
	}

	out := make([]File, 0, len(res.Files))
	for _, f := range res.Files {
		out = append(out, File{ID: f.Id, Name: f.Name, ModifiedTime: f.ModifiedTime})
	}
	return out, nil
}

func (d *Drive) Download(ctx context.Context, accessToken, fileID string) ([]byte, error) {
	if fileID == "" {
		return nil, errors.New("file id is required")
	}
	srv, err := d.service(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	resp, err := srv.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("drive download: %w", err)
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}
