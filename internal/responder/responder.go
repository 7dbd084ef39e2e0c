package responder

import (
	"bufio"
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/campi/campi/internal/models"
)

// MaxRequestLine bounds how much is read while looking for the request line.
const MaxRequestLine = 8 << 10

const (
	indexFile    = "index.html"
	notFoundFile = "404.html"
)

var (
	//go:embed static/index.html static/404.html
	defaultStatics embed.FS

	badRequestBody  = []byte("bad request\n")
	unavailableBody = []byte("camera unavailable\n")

	ErrEmptyRequestLine   = errors.New("empty request line")
	ErrRequestLineTooLong = errors.New("request line too long")
)

// Framer hands out JPEG frames. services.Capture implements it.
type Framer interface {
	Frame(ctx context.Context) ([]byte, error)
}

type handlerFunc func(ctx context.Context) (status int, payload []byte, err error)

// Responder reads one request line from a connection and writes one response.
// It holds no per-connection state and is safe for concurrent use.
type Responder struct {
	routes   map[string]handlerFunc
	index    []byte
	notFound []byte
	frames   Framer
}

// New builds a Responder. Pages are loaded from staticsFolder when it is set,
// falling back to the embedded defaults for files the folder lacks.
func New(staticsFolder string, frames Framer) (*Responder, error) {
	index, err := loadPage(staticsFolder, indexFile)
	if err != nil {
		return nil, err
	}
	notFound, err := loadPage(staticsFolder, notFoundFile)
	if err != nil {
		return nil, err
	}

	r := &Responder{
		index:    index,
		notFound: notFound,
		frames:   frames,
	}
	r.routes = map[string]handlerFunc{
		"GET / HTTP/1.1":            r.serveIndex,
		"GET /capture HTTP/1.1":     r.serveCapture,
		"GET /capture.jpg HTTP/1.1": r.serveCapture,
	}

	return r, nil
}

func loadPage(folder, name string) ([]byte, error) {
	if folder != "" {
		data, err := os.ReadFile(filepath.Join(folder, name))
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
	}
	return defaultStatics.ReadFile("static/" + name)
}

// ServeConn handles exactly one request on conn. It never closes conn.
func (r *Responder) ServeConn(ctx context.Context, conn io.ReadWriter) models.Response {
	start := time.Now()

	line, err := readRequestLine(conn)
	resp := models.Response{RequestLine: line, Path: pathOf(line)}

	var (
		status  int
		payload []byte
	)
	switch {
	case err != nil:
		status, payload = http.StatusBadRequest, badRequestBody
		resp.Err = err
	default:
		handler, ok := r.routes[line]
		if !ok {
			handler = r.serveNotFound
		}
		status, payload, resp.Err = handler(ctx)
	}

	resp.Status = status
	n, werr := writeResponse(conn, status, payload)
	resp.Bytes = n
	if werr != nil {
		resp.Err = errors.Join(resp.Err, fmt.Errorf("failed to write response: %w", werr))
	}
	resp.Duration = time.Since(start)

	return resp
}

func (r *Responder) serveIndex(context.Context) (int, []byte, error) {
	return http.StatusOK, r.index, nil
}

func (r *Responder) serveNotFound(context.Context) (int, []byte, error) {
	return http.StatusNotFound, r.notFound, nil
}

func (r *Responder) serveCapture(ctx context.Context) (int, []byte, error) {
	if r.frames == nil {
		return http.StatusServiceUnavailable, unavailableBody, errors.New("no camera configured")
	}

	frame, err := r.frames.Frame(ctx)
	if err != nil {
		zap.S().Named("responder").Warnw("capture failed", "error", err)
		return http.StatusServiceUnavailable, unavailableBody, err
	}
	return http.StatusOK, frame, nil
}

// readRequestLine returns the first line without its terminator. A line cut
// short by EOF is accepted as long as it is not empty.
func readRequestLine(r io.Reader) (string, error) {
	br := bufio.NewReaderSize(io.LimitReader(r, MaxRequestLine+1), 512)

	line, err := br.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	if !strings.HasSuffix(line, "\n") && len(line) > MaxRequestLine {
		return "", ErrRequestLineTooLong
	}

	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", ErrEmptyRequestLine
	}
	return line, nil
}

func pathOf(line string) string {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return ""
	}
	return fields[1]
}

func writeResponse(w io.Writer, status int, payload []byte) (int, error) {
	header := fmt.Sprintf("HTTP/1.1 %d %s\r\nContent-Length: %d\r\n\r\n", status, http.StatusText(status), len(payload))

	n, err := io.WriteString(w, header)
	if err != nil {
		return n, err
	}
	m, err := w.Write(payload)
	return n + m, err
}
