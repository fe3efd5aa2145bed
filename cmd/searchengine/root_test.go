package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Adithya-Monish-Kumar-K/concurrent-search-engine/pkg/errors"
)

func testFlags() *pflag.FlagSet {
	return newRootCmd().Flags()
}

func TestNormalizeArgs(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"single dash with value", []string{"-text", "in", "-index", "out.json"}, []string{"--text=in", "--index=out.json"}},
		{"bare output flag keeps default", []string{"--index", "--exact"}, []string{"--index", "--exact"}},
		{"bare flag without default", []string{"-query"}, []string{"--query="}},
		{"trailing bare output flag", []string{"-results"}, []string{"--results"}},
		{"negative number is a value", []string{"-threads", "-3"}, []string{"--threads=-3"}},
		{"equals form untouched", []string{"--max=4"}, []string{"--max=4"}},
		{"bool never eats a value", []string{"-exact", "-counts", "c.json"}, []string{"--exact", "--counts=c.json"}},
		{"unknown flags pass through", []string{"-zzz", "x"}, []string{"-zzz", "x"}},
		{"terminator", []string{"--", "-text"}, []string{"--", "-text"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeArgs(tt.in, testFlags()))
		})
	}
}

func writeCorpus(t *testing.T) (dir, input, queries string) {
	t.Helper()
	dir = t.TempDir()
	input = filepath.Join(dir, "input")
	require.NoError(t, os.MkdirAll(filepath.Join(input, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(input, "one.txt"), []byte("The cats are running.\nCats love running!"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(input, "sub", "two.text"), []byte("A dog runs past the cat"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(input, "ignored.md"), []byte("cats cats cats"), 0o644))
	queries = filepath.Join(dir, "queries.txt")
	require.NoError(t, os.WriteFile(queries, []byte("cats\nrunning dog\n\ncat\nzebra\n"), 0o644))
	return dir, input, queries
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func readJSON(t *testing.T, path string, v any) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, v))
}

type resultJSON struct {
	Where string  `json:"where"`
	Count int     `json:"count"`
	Score float64 `json:"score"`
}

func TestSingleThreadedRun(t *testing.T) {
	dir, input, queries := writeCorpus(t)
	out := func(name string) string { return filepath.Join(dir, name) }

	code, stdout, _ := runCLI(t,
		"-text", input, "-query", queries, "-exact",
		"-index", out("index.json"), "-counts", out("counts.json"), "-results", out("results.json"))
	require.Equal(t, apperrors.ExitOK, code)
	assert.Contains(t, stdout, "Elapsed: ")

	one := filepath.Join(input, "one.txt")
	two := filepath.Join(input, "sub", "two.text")

	var idx map[string]map[string][]int
	readJSON(t, out("index.json"), &idx)
	assert.Equal(t, []int{2, 5}, idx["cat"][one])
	assert.Equal(t, []int{6}, idx["cat"][two])
	assert.Equal(t, []int{4, 7}, idx["run"][one])

	var counts map[string]int
	readJSON(t, out("counts.json"), &counts)
	assert.Equal(t, map[string]int{one: 7, two: 6}, counts)

	var results map[string][]resultJSON
	readJSON(t, out("results.json"), &results)
	assert.ElementsMatch(t, []string{"cat", "dog run", "zebra"}, keysOf(results))
	require.Len(t, results["cat"], 2)
	assert.Equal(t, resultJSON{Where: one, Count: 2, Score: 0.28571429}, results["cat"][0])
	assert.Empty(t, results["zebra"])

	raw, err := os.ReadFile(out("results.json"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"score": 0.28571429`)
}

func TestThreadedRunMatchesSingleThreaded(t *testing.T) {
	dir, input, queries := writeCorpus(t)
	out := func(name string) string { return filepath.Join(dir, name) }

	code, _, _ := runCLI(t, "-text", input, "-query", queries,
		"-index", out("single-index.json"), "-results", out("single-results.json"))
	require.Equal(t, apperrors.ExitOK, code)

	code, _, _ = runCLI(t, "-text", input, "-query", queries, "-threads", "3",
		"-index", out("multi-index.json"), "-results", out("multi-results.json"))
	require.Equal(t, apperrors.ExitOK, code)

	for _, pair := range [][2]string{{"single-index.json", "multi-index.json"}, {"single-results.json", "multi-results.json"}} {
		a, err := os.ReadFile(out(pair[0]))
		require.NoError(t, err)
		b, err := os.ReadFile(out(pair[1]))
		require.NoError(t, err)
		assert.Equal(t, string(a), string(b), pair[0])
	}
}

func TestDefaultOutputNames(t *testing.T) {
	_, input, _ := writeCorpus(t)
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	code, _, _ := runCLI(t, "-text", input, "-index", "-counts", "-threads", "0")
	require.Equal(t, apperrors.ExitOK, code)
	assert.FileExists(t, "index.json")
	assert.FileExists(t, "counts.json")
	assert.NoFileExists(t, "results.json")
}

func TestCrawlRun(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><body>welcome home <a href="/next">next</a> <a href="/other">other</a></body></html>`)
	})
	mux.HandleFunc("/next", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<p>next page</p>`)
	})
	mux.HandleFunc("/other", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<p>other page</p>`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	dir := t.TempDir()
	counts := filepath.Join(dir, "counts.json")
	code, _, _ := runCLI(t, "-html", srv.URL+"/", "-max", "2", "-counts", counts)
	require.Equal(t, apperrors.ExitOK, code)

	var got map[string]int
	readJSON(t, counts, &got)
	assert.Equal(t, map[string]int{srv.URL + "/": 4, srv.URL + "/next": 2}, got)
}

func TestBadSeedExitsWithUsage(t *testing.T) {
	code, stdout, _ := runCLI(t, "-html", "not-a-url")
	assert.Equal(t, apperrors.ExitUsage, code)
	assert.Contains(t, stdout, "Elapsed: ")
}

func TestMissingInputFails(t *testing.T) {
	code, _, _ := runCLI(t, "-text", filepath.Join(t.TempDir(), "missing"))
	assert.Equal(t, apperrors.ExitFailure, code)
}

func TestUnknownSink(t *testing.T) {
	code, _, stderr := runCLI(t, "-sink", "s3")
	assert.Equal(t, apperrors.ExitUsage, code)
	assert.Contains(t, stderr, "unknown output sink")
}

func TestBareTextIsIgnored(t *testing.T) {
	code, _, stderr := runCLI(t, "-text")
	assert.Equal(t, apperrors.ExitOK, code)
	assert.Contains(t, stderr, "no input path")
}

func TestRepeatedRunsWithMetrics(t *testing.T) {
	dir, input, _ := writeCorpus(t)
	for i := 0; i < 2; i++ {
		counts := filepath.Join(dir, fmt.Sprintf("counts-%d.json", i))
		code, _, stderr := runCLI(t, "-text", input, "-counts", counts, "-metrics-port", "0")
		require.Equal(t, 0, code, "run %d: %s", i, stderr)
		assert.FileExists(t, counts)
	}
}

func keysOf[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
