package main

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	llmprovider "github.com/haowjy/meridian-status-go"
	"github.com/haowjy/meridian-status-go/statusreport"
)

const greenReportYAML = `tier: green
project_name: Atlas
executive_summary: Data migration is on schedule.
target_date: "2026-12-15"
weekly_status: On Track
activities_this_week: Migrated the billing tables.
activities_next_week: Cut over the reporting jobs.
`

// isolate runs the test in an empty directory with static AWS credentials and
// no shared AWS config.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	clearEnv(t)
	t.Setenv("AWS_ACCESS_KEY_ID", "AKIDEXAMPLE")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "secret")
	t.Setenv("AWS_SESSION_TOKEN", "")
	t.Setenv("AWS_PROFILE", "")
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(dir, "aws-config"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(dir, "aws-credentials"))
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")
	return dir
}

func TestRunGenerate_Lorem(t *testing.T) {
	dir := isolate(t)
	cfgPath := writeFile(t, "statusreport.yaml", "provider: lorem\nmodel: lorem-fast\nparams:\n  max_tokens: 30\n")
	reportPath := filepath.Join(dir, "weekly.yaml")
	require.NoError(t, writeTo(reportPath, greenReportYAML))

	var stdout bytes.Buffer
	err := runGenerate(t.Context(), cmdGenerate{Report: reportPath, Raw: true},
		globals{configPath: cfgPath, configExplicit: true}, &stdout, io.Discard)
	require.NoError(t, err)

	out := strings.TrimSpace(stdout.String())
	require.NotEmpty(t, out)
	require.LessOrEqual(t, len(strings.Fields(out)), 30)
}

func TestRunGenerate_ModelFlagOverridesConfig(t *testing.T) {
	dir := isolate(t)
	cfgPath := writeFile(t, "statusreport.yaml", "provider: lorem\nmodel: lorem-fast\n")
	reportPath := filepath.Join(dir, "weekly.yaml")
	require.NoError(t, writeTo(reportPath, greenReportYAML))

	err := runGenerate(t.Context(), cmdGenerate{Report: reportPath, Model: "lorem-empty", Raw: true},
		globals{configPath: cfgPath, configExplicit: true}, io.Discard, io.Discard)
	require.ErrorIs(t, err, llmprovider.ErrMissingCompletion)
}

func TestRunGenerate_IncompleteReport(t *testing.T) {
	dir := isolate(t)
	cfgPath := writeFile(t, "statusreport.yaml", "provider: lorem\nmodel: lorem-fast\n")
	reportPath := filepath.Join(dir, "weekly.yaml")
	require.NoError(t, writeTo(reportPath, "tier: red\nproject_name: Atlas\n"))

	err := runGenerate(t.Context(), cmdGenerate{Report: reportPath, Raw: true},
		globals{configPath: cfgPath, configExplicit: true}, io.Discard, io.Discard)
	var fieldErr *statusreport.FieldError
	require.ErrorAs(t, err, &fieldErr)
	require.Contains(t, failureNotice(err), "Please fill in all the fields")
}

func TestRunInvoke(t *testing.T) {
	isolate(t)

	var gotPath, gotAuth string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		gotBody, _ = io.ReadAll(r.Body)
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"completion":" Hi there","stop_reason":"stop_sequence"}`)
	}))
	t.Cleanup(srv.Close)

	cfgPath := writeFile(t, "statusreport.yaml", "provider: bedrock\nmodel: anthropic.claude-v2:1\nendpoint: "+srv.URL+"\n")

	var stdout bytes.Buffer
	err := runInvoke(t.Context(), cmdInvoke{
		Prompt: "hello",
		Param:  map[string]string{"temperature": "0.5", "anthropic_version": "bedrock-2023-05-31"},
		Wrap:   true,
	}, globals{configPath: cfgPath, configExplicit: true}, &stdout, io.Discard)
	require.NoError(t, err)
	require.Equal(t, " Hi there\n", stdout.String())

	require.Equal(t, "/model/anthropic.claude-v2:1/invoke", gotPath)
	require.Contains(t, gotAuth, "AWS4-HMAC-SHA256 Credential=AKIDEXAMPLE/")
	body := gjson.ParseBytes(gotBody)
	require.Equal(t, "\n\nHuman: hello\n\nAssistant:", body.Get("prompt").String())
	require.Equal(t, gjson.Number, body.Get("temperature").Type)
	require.InDelta(t, 0.5, body.Get("temperature").Float(), 1e-9)
	require.Equal(t, "bedrock-2023-05-31", body.Get("anthropic_version").String())
}

func TestRunInvoke_NoCompletion(t *testing.T) {
	isolate(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"stop_reason":"max_tokens"}`)
	}))
	t.Cleanup(srv.Close)
	cfgPath := writeFile(t, "statusreport.yaml", "provider: bedrock\nmodel: anthropic.claude-v2:1\nendpoint: "+srv.URL+"\n")

	err := runInvoke(t.Context(), cmdInvoke{Prompt: "hello"},
		globals{configPath: cfgPath, configExplicit: true}, io.Discard, io.Discard)
	require.ErrorIs(t, err, llmprovider.ErrMissingCompletion)
}

func TestRunInvoke_Throttled(t *testing.T) {
	isolate(t)
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.Header().Set("X-Amzn-Errortype", "ThrottlingException:http://internal.amazon.com/coral/com.amazon.bedrock/")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"message":"Too many requests"}`)
	}))
	t.Cleanup(srv.Close)
	cfgPath := writeFile(t, "statusreport.yaml", "provider: bedrock\nmodel: anthropic.claude-v2:1\nendpoint: "+srv.URL+"\n")

	err := runInvoke(t.Context(), cmdInvoke{Prompt: "hello"},
		globals{configPath: cfgPath, configExplicit: true}, io.Discard, io.Discard)
	require.ErrorIs(t, err, llmprovider.ErrRateLimited)
	require.Equal(t, 1, calls)
}

func TestRunModels(t *testing.T) {
	isolate(t)

	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = io.WriteString(w, `{"modelSummaries":[
			{"modelId":"anthropic.claude-v2:1","providerName":"Anthropic","outputModalities":["TEXT"],"modelLifecycle":{"status":"ACTIVE"}},
			{"modelId":"anthropic.claude-instant-v1","providerName":"Anthropic","outputModalities":["TEXT"],"modelLifecycle":{"status":"LEGACY"}}
		]}`)
	}))
	t.Cleanup(srv.Close)
	cfgPath := writeFile(t, "statusreport.yaml", "control_endpoint: "+srv.URL+"\n")

	var stdout bytes.Buffer
	err := runModels(t.Context(), cmdModels{Vendor: "Anthropic"},
		globals{configPath: cfgPath, configExplicit: true}, &stdout, io.Discard)
	require.NoError(t, err)
	require.Equal(t, "byOutputModality=TEXT&byProvider=Anthropic", gotQuery)

	out := stdout.String()
	for _, s := range []string{"MODEL ID", "anthropic.claude-v2:1", "anthropic.claude-instant-v1", "LEGACY"} {
		require.Contains(t, out, s)
	}
}

func TestRunModels_Empty(t *testing.T) {
	isolate(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"modelSummaries":[]}`)
	}))
	t.Cleanup(srv.Close)
	cfgPath := writeFile(t, "statusreport.yaml", "control_endpoint: "+srv.URL+"\n")

	err := runModels(t.Context(), cmdModels{All: true},
		globals{configPath: cfgPath, configExplicit: true}, io.Discard, io.Discard)
	require.Error(t, err)
	require.False(t, errors.Is(err, llmprovider.ErrInvalidModel))
}

func TestRunInvoke_WarnsOnMessagesModel(t *testing.T) {
	isolate(t)
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		_, _ = io.WriteString(w, `{"completion":"ok"}`)
	}))
	t.Cleanup(srv.Close)
	cfgPath := writeFile(t, "statusreport.yaml", "provider: bedrock\nmodel: anthropic.claude-3-sonnet-20240229-v1:0\nendpoint: "+srv.URL+"\n")

	var stderr bytes.Buffer
	err := runInvoke(t.Context(), cmdInvoke{Prompt: "hello", Wrap: true},
		globals{configPath: cfgPath, configExplicit: true}, io.Discard, &stderr)
	require.NoError(t, err)

	logs := stderr.String()
	require.Contains(t, logs, "typed params dropped")
	require.Contains(t, logs, "code=API_MISMATCH")

	var keys []string
	gjson.ParseBytes(gotBody).ForEach(func(k, _ gjson.Result) bool {
		keys = append(keys, k.String())
		return true
	})
	require.Equal(t, []string{"prompt"}, keys)
}

func TestRunInvoke_WarnsOnPromptCollision(t *testing.T) {
	isolate(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"completion":"ok"}`)
	}))
	t.Cleanup(srv.Close)
	cfgPath := writeFile(t, "statusreport.yaml", "provider: bedrock\nmodel: anthropic.claude-v2:1\nendpoint: "+srv.URL+"\n")

	var stderr bytes.Buffer
	err := runInvoke(t.Context(), cmdInvoke{Prompt: "hello", Param: map[string]string{"prompt": "other"}},
		globals{configPath: cfgPath, configExplicit: true}, io.Discard, &stderr)
	require.NoError(t, err)
	require.Contains(t, stderr.String(), "code=PARAM_COLLIDES_WITH_PROMPT")
	require.NotContains(t, stderr.String(), "typed params dropped")
}
