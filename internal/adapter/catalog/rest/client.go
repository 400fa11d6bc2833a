// Package rest implements the catalog client against the music server's JSON API.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tejashwikalptaru/tunestream/internal/domain"
	"github.com/tejashwikalptaru/tunestream/internal/ports"
)

// APIPrefix is the path prefix of every catalog endpoint.
const APIPrefix = "/api/v1"

// DefaultTimeout bounds a single catalog request.
const DefaultTimeout = 30 * time.Second

// maxErrorBody caps how much of an error response is read into the message.
const maxErrorBody = 4096

// Client provides access to the catalog API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithLogger sets the client logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a new catalog client for the server at baseURL
// (e.g. "http://localhost:8080"). A trailing slash is ignored.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListArtists returns every artist.
func (c *Client) ListArtists(ctx context.Context) ([]domain.Artist, error) {
	var artists []domain.Artist
	if err := c.doJSON(ctx, "list artists", http.MethodGet, "/artists", nil, &artists); err != nil {
		return nil, err
	}
	return nonNil(artists), nil
}

// ListAlbums returns the albums of one artist.
func (c *Client) ListAlbums(ctx context.Context, artistID string) ([]domain.Album, error) {
	q := url.Values{}
	if artistID != "" {
		q.Set("artist_id", artistID)
	}
	var albums []domain.Album
	if err := c.doJSON(ctx, "list albums", http.MethodGet, withQuery("/albums", q), nil, &albums); err != nil {
		return nil, err
	}
	return nonNil(albums), nil
}

// ListSongs returns songs scoped by album, by artist, or all songs.
func (c *Client) ListSongs(ctx context.Context, filter domain.SongFilter) ([]domain.Song, error) {
	q := url.Values{}
	switch {
	case filter.AlbumID != "":
		q.Set("album_id", filter.AlbumID)
	case filter.ArtistID != "":
		q.Set("artist_id", filter.ArtistID)
	}
	var songs []domain.Song
	if err := c.doJSON(ctx, "list songs", http.MethodGet, withQuery("/songs", q), nil, &songs); err != nil {
		return nil, err
	}
	return nonNil(songs), nil
}

// CreateArtist creates an artist.
func (c *Client) CreateArtist(ctx context.Context, patch domain.ArtistPatch) (domain.Artist, error) {
	var artist domain.Artist
	err := c.doJSON(ctx, "create artist", http.MethodPost, "/artists", patch, &artist)
	return artist, err
}

// UpdateArtist replaces the editable fields of an artist.
func (c *Client) UpdateArtist(ctx context.Context, id string, patch domain.ArtistPatch) (domain.Artist, error) {
	var artist domain.Artist
	err := c.doJSON(ctx, "update artist", http.MethodPut, "/artists/"+url.PathEscape(id), patch, &artist)
	return artist, err
}

// DeleteArtist deletes an artist.
func (c *Client) DeleteArtist(ctx context.Context, id string) error {
	return c.doJSON(ctx, "delete artist", http.MethodDelete, "/artists/"+url.PathEscape(id), nil, nil)
}

// CreateAlbum creates an album.
func (c *Client) CreateAlbum(ctx context.Context, patch domain.AlbumPatch) (domain.Album, error) {
	var album domain.Album
	err := c.doJSON(ctx, "create album", http.MethodPost, "/albums", patch, &album)
	return album, err
}

// UpdateAlbum replaces the editable fields of an album.
func (c *Client) UpdateAlbum(ctx context.Context, id string, patch domain.AlbumPatch) (domain.Album, error) {
	var album domain.Album
	err := c.doJSON(ctx, "update album", http.MethodPut, "/albums/"+url.PathEscape(id), patch, &album)
	return album, err
}

// DeleteAlbum deletes an album.
func (c *Client) DeleteAlbum(ctx context.Context, id string) error {
	return c.doJSON(ctx, "delete album", http.MethodDelete, "/albums/"+url.PathEscape(id), nil, nil)
}

// UpdateSong replaces the editable fields of a song.
func (c *Client) UpdateSong(ctx context.Context, id string, patch domain.SongPatch) (domain.Song, error) {
	var song domain.Song
	err := c.doJSON(ctx, "update song", http.MethodPut, "/songs/"+url.PathEscape(id), patch, &song)
	return song, err
}

// DeleteSong deletes a song and its stored audio.
func (c *Client) DeleteSong(ctx context.Context, id string) error {
	return c.doJSON(ctx, "delete song", http.MethodDelete, "/songs/"+url.PathEscape(id), nil, nil)
}

// UploadSong sends an audio file as a multipart form.
func (c *Client) UploadSong(ctx context.Context, upload ports.UploadRequest) (domain.Song, error) {
	const op = "upload song"

	if upload.Body == nil {
		return domain.Song{}, domain.NewCatalogError(op, 0, "no file", nil)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	filename := upload.Filename
	if filename == "" {
		filename = "upload.mp3"
	}
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return domain.Song{}, domain.NewCatalogError(op, 0, "create form file", err)
	}
	if _, err := io.Copy(part, upload.Body); err != nil {
		return domain.Song{}, domain.NewCatalogError(op, 0, "read file", err)
	}

	fields := [][2]string{
		{"title", upload.Title},
		{"artist_id", upload.ArtistID},
		{"album_id", upload.AlbumID},
	}
	if upload.TrackNumber > 0 {
		fields = append(fields, [2]string{"track_number", strconv.Itoa(upload.TrackNumber)})
	}
	for _, f := range fields {
		if f[1] == "" {
			continue
		}
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return domain.Song{}, domain.NewCatalogError(op, 0, "write field "+f[0], err)
		}
	}
	if err := mw.Close(); err != nil {
		return domain.Song{}, domain.NewCatalogError(op, 0, "close form", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/songs/upload", &buf)
	if err != nil {
		return domain.Song{}, domain.NewCatalogError(op, 0, "create request", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var song domain.Song
	if err := c.do(op, req, &song); err != nil {
		return domain.Song{}, err
	}
	return song, nil
}

// StreamURL returns the URL of the song's audio stream.
func (c *Client) StreamURL(songID string) string {
	return c.baseURL + APIPrefix + "/songs/" + url.PathEscape(songID) + "/stream"
}

// doJSON sends an optional JSON body and decodes an optional JSON response.
func (c *Client) doJSON(ctx context.Context, op, method, path string, body, out any) error {
	var reader io.Reader = http.NoBody
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return domain.NewCatalogError(op, 0, "marshal request", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := c.newRequest(ctx, method, path, reader)
	if err != nil {
		return domain.NewCatalogError(op, 0, "create request", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(op, req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+APIPrefix+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	return req, nil
}

// do executes the request and maps failures onto *domain.CatalogError.
func (c *Client) do(op string, req *http.Request, out any) error {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("catalog request failed",
			slog.String("op", op),
			slog.String("request_id", req.Header.Get("X-Request-Id")),
			slog.Any("error", err))
		return domain.NewCatalogError(op, 0, "execute request", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("catalog request",
		slog.String("op", op),
		slog.String("method", req.Method),
		slog.String("path", req.URL.Path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(start)),
		slog.String("request_id", req.Header.Get("X-Request-Id")))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = strings.ToLower(http.StatusText(resp.StatusCode))
			if op == "upload song" {
				msg = "upload failed"
			}
		}
		return domain.NewCatalogError(op, resp.StatusCode, msg, nil)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.NewCatalogError(op, resp.StatusCode, "decode response", err)
	}
	return nil
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

// nonNil turns a JSON null list into an empty one.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

// Verify that Client implements the CatalogClient interface
var _ ports.CatalogClient = (*Client)(nil)
