package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os/exec"
	"strings"
	"time"

	"github.com/mnemoware/mnemo/pkg/embeddings"
)

const (
	listTimeout = 5 * time.Second
	pullTimeout = 600 * time.Second

	launchPollInterval = 500 * time.Millisecond
	launchPollAttempts = 30
)

// Server is a thin client for Ollama's management endpoints: liveness,
// installed-model listing, and model pulls with streamed progress.
type Server struct {
	baseURL string
	logger  *slog.Logger
}

// NewServer creates a management client for the Ollama server at baseURL.
func NewServer(baseURL string, logger *slog.Logger) *Server {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Server{baseURL: baseURL, logger: logger}
}

// BaseURL returns the server URL this client talks to.
func (s *Server) BaseURL() string {
	return s.baseURL
}

// Launch starts a detached "ollama serve" and polls until the server
// answers or the bounded wait runs out. The spawned process outlives this
// invocation.
func (s *Server) Launch(ctx context.Context) error {
	bin, err := exec.LookPath("ollama")
	if err != nil {
		return fmt.Errorf("%w: ollama binary not found in PATH", embeddings.ErrUnreachable)
	}

	s.logger.Info("starting ollama server")

	// Deliberately not CommandContext: the server must survive this
	// process.
	cmd := exec.Command(bin, "serve")
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: starting ollama: %v", embeddings.ErrUnreachable, err)
	}
	go func() {
		_ = cmd.Wait()
	}()

	for i := 0; i < launchPollAttempts; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(launchPollInterval):
		}

		if embeddings.PingOllama(ctx, s.baseURL) {
			s.logger.Info("ollama server started")
			return nil
		}
	}

	return fmt.Errorf("%w: ollama started but not reachable after %s",
		embeddings.ErrUnreachable, launchPollAttempts*launchPollInterval)
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// ListModels returns the installed model names with any ":tag" suffix removed.
func (s *Server) ListModels(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, fmt.Errorf("creating tags request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("listing models: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("listing models: status %d: %s", resp.StatusCode, string(body))
	}

	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, fmt.Errorf("decoding tags response: %w", err)
	}

	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		name, _, _ := strings.Cut(m.Name, ":")
		names = append(names, name)
	}
	return names, nil
}

// HasModel reports whether the named model is installed.
func (s *Server) HasModel(ctx context.Context, model string) (bool, error) {
	names, err := s.ListModels(ctx)
	if err != nil {
		return false, err
	}
	base, _, _ := strings.Cut(model, ":")
	for _, name := range names {
		if name == base {
			return true, nil
		}
	}
	return false, nil
}

type pullRequest struct {
	Name   string `json:"name"`
	Stream bool   `json:"stream"`
}

// pullStatus is one NDJSON line of pull progress.
type pullStatus struct {
	Status    string `json:"status"`
	Total     int64  `json:"total"`
	Completed int64  `json:"completed"`
}

// Pull downloads the named model, streaming progress lines to the logger.
// Individual malformed progress lines are skipped; the pull itself only
// fails on transport or HTTP errors.
func (s *Server) Pull(ctx context.Context, model string) error {
	s.logger.Info("pulling model, this may take a few minutes", "model", model)

	ctx, cancel := context.WithTimeout(ctx, pullTimeout)
	defer cancel()

	body, err := json.Marshal(pullRequest{Name: model, Stream: true})
	if err != nil {
		return fmt.Errorf("marshaling pull request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/pull", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating pull request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("pulling model %s: %w", model, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("pulling model %s: status %d: %s", model, resp.StatusCode, string(respBody))
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		var status pullStatus
		if err := json.Unmarshal(line, &status); err != nil {
			// Progress lines are advisory; a garbled one must not
			// abort the pull.
			continue
		}
		s.logProgress(status)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading pull stream for %s: %w", model, err)
	}

	s.logger.Info("model pulled", "model", model)
	return nil
}

func (s *Server) logProgress(status pullStatus) {
	if status.Status == "" {
		return
	}

	downloading := strings.Contains(status.Status, "pulling") ||
		strings.Contains(status.Status, "downloading")
	if downloading && status.Total > 0 {
		pct := int(float64(status.Completed) / float64(status.Total) * 100)
		s.logger.Info(status.Status, "percent", pct)
		return
	}
	s.logger.Info(status.Status)
}
