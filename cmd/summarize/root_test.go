package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/ai-summarizer/internal/domain/auth"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func writeArticle(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "harbor_history.txt")
	body := strings.Repeat("The harbor grew quickly after the railway arrived.\n\n", 20)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestSummarizeWithEchoProvider(t *testing.T) {
	out, err := execute(t, "--article_file_path", writeArticle(t), "--provider", "echo", "--length", "120")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "* "), out)
}

func TestSummarizeRequiresSource(t *testing.T) {
	_, err := execute(t, "--provider", "echo")
	require.Error(t, err)
}

func TestSummarizeRequiresKey(t *testing.T) {
	t.Setenv("LLM_API_KEY", "")
	_, err := execute(t, "--article_file_path", writeArticle(t))
	require.ErrorContains(t, err, "API key is required")
}

func TestSummarizeRejectsShortLength(t *testing.T) {
	_, err := execute(t, "--article_file_path", writeArticle(t), "--provider", "echo", "--length", "1")
	require.Error(t, err)
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "cli-secret")
	out, err := execute(t, "token", "--subject", "nightly-digest", "--ttl", "1h")
	require.NoError(t, err)

	svc := auth.NewService(auth.Config{Secret: "cli-secret", TokenTTL: time.Hour}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	claims, err := svc.ValidateToken(context.Background(), strings.TrimSpace(out))
	require.NoError(t, err)
	require.Equal(t, "nightly-digest", claims.Subject)
}
