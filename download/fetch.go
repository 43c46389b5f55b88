package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"protonup-go/types"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

const copyBufferSize = 32 * 1024

// ErrCancelled is returned when the request context is cancelled.
var ErrCancelled = errors.New("operation cancelled")

func cancelled(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrCancelled, err)
	}
	return nil
}

// contextReader checks the context before every chunk it hands out.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (cr *contextReader) Read(p []byte) (int, error) {
	if err := cancelled(cr.ctx); err != nil {
		return 0, err
	}
	return cr.r.Read(p)
}

// progressWriter counts bytes only after the underlying write returns.
type progressWriter struct {
	w        io.Writer
	progress *ProgressState
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n, err := pw.w.Write(p)
	pw.progress.add(int64(n))
	if err != nil {
		return n, types.Wrap(types.ErrFilesystem, err, "failed to write archive")
	}
	return n, nil
}

// fetchArchive streams url into out and closes it. It returns the number of
// bytes written. A partial file is left in place on failure.
func (in *Installer) fetchArchive(ctx context.Context, url string, out afero.File, progress *ProgressState) (int64, error) {
	closed := false
	defer func() {
		if !closed {
			_ = out.Close()
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return 0, types.Wrap(types.ErrNetwork, err, "failed to create request")
	}

	resp, err := in.httpClient.Do(req)
	if err != nil {
		if cerr := cancelled(ctx); cerr != nil {
			return 0, cerr
		}
		return 0, types.Wrap(types.ErrNetwork, err, "http request failed")
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close response body")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return 0, types.Wrap(types.ErrNetwork, nil, "bad status fetching %s: %s", url, resp.Status)
	}

	buf := make([]byte, copyBufferSize)
	written, err := io.CopyBuffer(
		&progressWriter{w: out, progress: progress},
		&contextReader{ctx: ctx, r: resp.Body},
		buf,
	)
	closeErr := out.Close()
	closed = true

	switch {
	case err == nil:
	case errors.Is(err, ErrCancelled), types.Kind(err) != nil:
		return written, err
	default:
		if cerr := cancelled(ctx); cerr != nil {
			return written, cerr
		}
		return written, types.Wrap(types.ErrNetwork, err, "failed during download of %s", url)
	}
	if closeErr != nil {
		return written, types.Wrap(types.ErrFilesystem, closeErr, "failed to close download file")
	}

	if resp.ContentLength > 0 && written != resp.ContentLength {
		return written, types.Wrap(types.ErrNetwork, nil, "download incomplete: expected %d bytes, got %d", resp.ContentLength, written)
	}
	return written, nil
}
